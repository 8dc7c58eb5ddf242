package domain

import (
	"context"
	"time"

	"ivyresort/internal/models"
)

// Store is the persistent reservation store.
type Store interface {
	CreateReservation(ctx context.Context, res *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context, filter models.ReservationFilter) ([]*models.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, patch models.ReservationPatch) error
	UpdateReservationStatus(ctx context.Context, id int64, status string) error
	UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	SetEmailSent(ctx context.Context, id int64, sent bool) error
	DeleteReservation(ctx context.Context, id int64) error
	GetStats(ctx context.Context, since time.Time) (*models.Stats, error)
	SweepExpired(ctx context.Context, cutoff time.Time) (int64, error)
	RecordCleanupRun(ctx context.Context, ranAt time.Time, deleted int64, windowDays int) error
	LastCleanupRun(ctx context.Context) (*models.CleanupRun, error)
	GetRoomTypes() []models.RoomType
	GetRoomTypeByName(name string) (models.RoomType, bool)
}

// UserStore is the dashboard-account store.
type UserStore interface {
	CreateDashboardUser(ctx context.Context, user *models.DashboardUser) error
	GetDashboardUser(ctx context.Context, id int64) (*models.DashboardUser, error)
	ListDashboardUsers(ctx context.Context) ([]*models.DashboardUser, error)
	UpdateDashboardUser(ctx context.Context, user *models.DashboardUser) error
	DeleteDashboardUser(ctx context.Context, id int64) error
}

// EventPublisher hands domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Mailer delivers the confirmation message for a reservation.
type Mailer interface {
	SendConfirmation(ctx context.Context, res *models.Reservation) error
}

// SyncEnqueuer schedules outbound mirror work for a reservation change.
type SyncEnqueuer interface {
	EnqueueTask(ctx context.Context, taskType string, res *models.Reservation) error
}

// MirrorRepository holds the shared reservation snapshot other consumers
// poll, plus a change announcement channel.
type MirrorRepository interface {
	GetSnapshot(ctx context.Context) ([]*models.Reservation, error)
	SetSnapshot(ctx context.Context, reservations []*models.Reservation) error
	Announce(ctx context.Context) error
}
