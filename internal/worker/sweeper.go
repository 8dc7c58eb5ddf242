package worker

import (
	"context"
	"time"

	"ivyresort/internal/database"
	"ivyresort/internal/events"
	"ivyresort/internal/metrics"
	"ivyresort/internal/models"

	"github.com/rs/zerolog"
)

// Sweeper periodically purges terminal reservations older than the retention
// window and records each run.
type Sweeper struct {
	db         *database.DB
	bus        *events.EventBus
	windowDays int
	interval   time.Duration
	logger     zerolog.Logger
}

func NewSweeper(db *database.DB, bus *events.EventBus, windowDays int, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if windowDays <= 0 {
		windowDays = models.DefaultRetentionDays
	}
	if interval <= 0 {
		interval = time.Duration(models.DefaultSweepIntervalMinutes) * time.Minute
	}
	return &Sweeper{
		db:         db,
		bus:        bus,
		windowDays: windowDays,
		interval:   interval,
		logger:     logger.With().Str("component", "sweeper").Logger(),
	}
}

// Start runs one sweep immediately, then on every tick until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().Int("window_days", s.windowDays).Dur("interval", s.interval).Msg("started")
	defer s.logger.Info().Msg("stopped")

	if _, err := s.SweepOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial sweep failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// SweepOnce deletes expired terminal reservations and records the run.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.windowDays)

	deleted, err := s.db.SweepExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	ranAt := time.Now().UTC()
	if err := s.db.RecordCleanupRun(ctx, ranAt, deleted, s.windowDays); err != nil {
		s.logger.Error().Err(err).Msg("record cleanup run")
	}

	if deleted > 0 {
		metrics.AddSweepDeleted(float64(deleted))
		s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("sweep completed")
	}

	if s.bus != nil {
		if err := s.bus.PublishJSON(events.EventCleanupCompleted, map[string]interface{}{
			"deleted_count": deleted,
			"window_days":   s.windowDays,
			"ran_at":        ranAt,
		}); err != nil {
			s.logger.Error().Err(err).Msg("publish cleanup event")
		}
	}

	return deleted, nil
}
