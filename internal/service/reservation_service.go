package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ivyresort/internal/database"
	"ivyresort/internal/domain"
	"ivyresort/internal/events"
	"ivyresort/internal/models"
	"ivyresort/internal/worker"

	"github.com/rs/zerolog"
)

// ErrValidation marks a request rejected before any write.
var ErrValidation = errors.New("validation failed")

// requiredFields is checked in order; the first empty one names the error.
var requiredFields = []struct {
	name  string
	empty func(*models.Reservation) bool
}{
	{"guest_name", func(r *models.Reservation) bool { return r.GuestName == "" }},
	{"email", func(r *models.Reservation) bool { return r.Email == "" }},
	{"room_name", func(r *models.Reservation) bool { return r.RoomName == "" }},
	{"check_in", func(r *models.Reservation) bool { return r.CheckIn == "" }},
	{"check_out", func(r *models.Reservation) bool { return r.CheckOut == "" }},
	{"total_amount", func(r *models.Reservation) bool { return r.TotalAmount == 0 }},
}

// ReservationService implements the reservation lifecycle over the store,
// publishing events and scheduling mirror work on every change.
type ReservationService struct {
	store    domain.Store
	bus      domain.EventPublisher
	mailer   domain.Mailer
	enqueuer domain.SyncEnqueuer
	now      func() time.Time
	logger   zerolog.Logger
}

func NewReservationService(store domain.Store, bus domain.EventPublisher, mailer domain.Mailer, enqueuer domain.SyncEnqueuer, logger zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:    store,
		bus:      bus,
		mailer:   mailer,
		enqueuer: enqueuer,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("component", "reservation_service").Logger(),
	}
}

// NewConfirmationID builds a guest-facing booking reference.
func NewConfirmationID(now time.Time) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// Degrade to a time-derived suffix rather than fail the create.
		for i := range buf {
			buf[i] = charset[int(now.UnixNano()>>uint(i*5))%len(charset)]
		}
	} else {
		for i, b := range buf {
			buf[i] = charset[int(b)%len(charset)]
		}
	}
	return fmt.Sprintf("%s-%s-%s", models.ConfirmationPrefix,
		strconv.FormatInt(now.UnixMilli(), 36), string(buf))
}

// Create validates, persists the reservation as pending and attempts the
// confirmation email. A failed send leaves the reservation pending; the
// create itself still succeeds.
func (s *ReservationService) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	for _, f := range requiredFields {
		if f.empty(res) {
			return nil, fmt.Errorf("%w: missing required field: %s", ErrValidation, f.name)
		}
	}
	if res.Guests <= 0 {
		res.Guests = 1
	}
	if rt, ok := s.store.GetRoomTypeByName(res.RoomName); ok {
		if res.Guests > rt.Capacity {
			return nil, fmt.Errorf("%w: room %q sleeps at most %d guests", ErrValidation, rt.Name, rt.Capacity)
		}
	}

	res.ConfirmationID = NewConfirmationID(s.now())
	res.Status = models.StatusPending
	res.EmailSent = false

	if err := s.store.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.publishEvent(events.EventReservationCreated, res)
	s.enqueueSync(ctx, worker.TaskUpsert, res)

	if err := s.mailer.SendConfirmation(ctx, res); err != nil {
		s.logger.Warn().Err(err).Int64("id", res.ID).
			Str("confirmation_id", res.ConfirmationID).
			Msg("confirmation email failed, reservation stays pending")
		return res, nil
	}

	if err := s.store.SetEmailSent(ctx, res.ID, true); err != nil {
		s.logger.Error().Err(err).Int64("id", res.ID).Msg("flag email sent")
	}
	if err := s.store.UpdateReservationStatus(ctx, res.ID, models.StatusConfirmed); err != nil {
		s.logger.Error().Err(err).Int64("id", res.ID).Msg("confirm after email")
		return res, nil
	}

	updated, err := s.store.GetReservation(ctx, res.ID)
	if err != nil {
		return res, nil
	}
	s.publishEvent(events.EventReservationConfirmed, updated)
	s.enqueueSync(ctx, worker.TaskUpsert, updated)
	return updated, nil
}

// Get returns one reservation by id.
func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

// List returns reservations matching the filter, newest update first.
func (s *ReservationService) List(ctx context.Context, filter models.ReservationFilter) ([]*models.Reservation, error) {
	return s.store.ListReservations(ctx, filter)
}

// Update merges the provided fields into the stored row. A status change
// runs through the transition guard first.
func (s *ReservationService) Update(ctx context.Context, id int64, patch models.ReservationPatch) (*models.Reservation, error) {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != current.Status {
		if err := s.guardStatusChange(current.Status, *patch.Status); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateReservation(ctx, id, patch); err != nil {
		return nil, err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventReservationUpdated, updated)
	s.enqueueSync(ctx, worker.TaskUpsert, updated)
	return updated, nil
}

// guardStatusChange maps a desired target status back to its action and
// checks the transition table.
func (s *ReservationService) guardStatusChange(current, target string) error {
	for action, produced := range actionTarget {
		if produced != target {
			continue
		}
		if !ValidTransition(action, current) {
			return fmt.Errorf("%w: %v", ErrValidation, TransitionError(action, current))
		}
		return nil
	}
	if target == models.StatusPending {
		return fmt.Errorf("%w: cannot move a reservation back to pending", ErrValidation)
	}
	return fmt.Errorf("%w: unknown status %q", ErrValidation, target)
}

// Confirm moves a pending reservation to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.transition(ctx, id, ActionConfirm, events.EventReservationConfirmed)
}

// CheckIn moves a confirmed reservation to checked-in.
func (s *ReservationService) CheckIn(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.transition(ctx, id, ActionCheckIn, events.EventReservationCheckedIn)
}

// Cancel moves an active reservation to cancelled.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.transition(ctx, id, ActionCancel, events.EventReservationCancelled)
}

func (s *ReservationService) transition(ctx context.Context, id int64, action, eventType string) (*models.Reservation, error) {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ValidTransition(action, current.Status) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, TransitionError(action, current.Status))
	}

	target := actionTarget[action]
	if err := s.store.UpdateReservationStatus(ctx, id, target); err != nil {
		return nil, err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(eventType, updated)
	s.enqueueSync(ctx, worker.TaskUpdateStatus, updated)
	return updated, nil
}

// CheckOut is an explicit two-phase transition: it writes the checked-out
// state against the version it read, and puts the old status back if any
// follow-up work fails so the row never sticks in a half-written state.
func (s *ReservationService) CheckOut(ctx context.Context, id int64) (*models.Reservation, error) {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ValidTransition(ActionCheckOut, current.Status) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, TransitionError(ActionCheckOut, current.Status))
	}

	if err := s.store.UpdateReservationStatusWithVersion(ctx, id, current.Version, models.StatusCheckedOut); err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			return nil, fmt.Errorf("%w: reservation changed while checking out, retry", ErrValidation)
		}
		return nil, err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err != nil {
		// Replay the inverse so the guest is not checked out on a row we
		// could not re-read.
		if revertErr := s.store.UpdateReservationStatus(ctx, id, current.Status); revertErr != nil {
			s.logger.Error().Err(revertErr).Int64("id", id).Msg("revert check-out")
		}
		return nil, err
	}

	s.publishEvent(events.EventReservationCheckedOut, updated)
	s.enqueueSync(ctx, worker.TaskUpdateStatus, updated)
	return updated, nil
}

// Delete removes the reservation permanently.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	res, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return err
	}
	s.enqueueSync(ctx, worker.TaskDelete, res)
	return nil
}

// Stats aggregates counts and revenue over the trailing window.
func (s *ReservationService) Stats(ctx context.Context) (*models.Stats, error) {
	since := s.now().AddDate(0, 0, -models.StatsWindowDays)
	return s.store.GetStats(ctx, since)
}

// Cleanup runs the retention sweep on demand and reports what it removed.
func (s *ReservationService) Cleanup(ctx context.Context, windowDays int) (int64, error) {
	if windowDays <= 0 {
		windowDays = models.DefaultRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -windowDays)
	deleted, err := s.store.SweepExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if err := s.store.RecordCleanupRun(ctx, s.now(), deleted, windowDays); err != nil {
		s.logger.Error().Err(err).Msg("record cleanup run")
	}
	return deleted, nil
}

// LastCleanup returns the most recent sweep record, nil if none yet.
func (s *ReservationService) LastCleanup(ctx context.Context) (*models.CleanupRun, error) {
	return s.store.LastCleanupRun(ctx)
}

// RoomTypes returns the static catalog.
func (s *ReservationService) RoomTypes() []models.RoomType {
	return s.store.GetRoomTypes()
}

func (s *ReservationService) publishEvent(eventType string, res *models.Reservation) {
	if s.bus == nil {
		return
	}
	payload := events.ReservationEventPayload{
		ReservationID:  res.ID,
		ConfirmationID: res.ConfirmationID,
		GuestName:      res.GuestName,
		RoomName:       res.RoomName,
		Status:         res.Status,
		CheckIn:        res.CheckIn,
		CheckOut:       res.CheckOut,
		TotalAmount:    res.TotalAmount,
		EmailSent:      res.EmailSent,
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context, taskType string, res *models.Reservation) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueTask(ctx, taskType, res); err != nil {
		s.logger.Error().Err(err).Str("task_type", taskType).Int64("id", res.ID).Msg("enqueue sync task")
	}
}
