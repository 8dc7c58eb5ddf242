package repository

import (
	"context"
	"sync/atomic"
	"time"

	"ivyresort/internal/domain"
	"ivyresort/internal/models"

	"github.com/rs/zerolog"
)

// FailoverMirrorRepository serves from the primary mirror until it
// fails, then falls back to the secondary and probes the primary again
// after a minute.
type FailoverMirrorRepository struct {
	primary   domain.MirrorRepository
	fallback  domain.MirrorRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverMirrorRepository(primary, fallback domain.MirrorRepository, logger *zerolog.Logger) *FailoverMirrorRepository {
	return &FailoverMirrorRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverMirrorRepository) GetSnapshot(ctx context.Context) ([]*models.Reservation, error) {
	if !r.isDown.Load() {
		snapshot, err := r.primary.GetSnapshot(ctx)
		if err == nil {
			return snapshot, nil
		}
		r.logger.Error().Err(err).Msg("primary mirror failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Probe the primary again after a minute.
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		snapshot, err := r.primary.GetSnapshot(ctx)
		if err == nil {
			r.isDown.Store(false)
			return snapshot, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSnapshot(ctx)
}

func (r *FailoverMirrorRepository) SetSnapshot(ctx context.Context, reservations []*models.Reservation) error {
	if !r.isDown.Load() {
		err := r.primary.SetSnapshot(ctx, reservations)
		if err == nil {
			// Keep the fallback warm so a later failover serves data.
			_ = r.fallback.SetSnapshot(ctx, reservations)
			return nil
		}
		r.logger.Error().Err(err).Msg("primary mirror failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetSnapshot(ctx, reservations)
}

func (r *FailoverMirrorRepository) Announce(ctx context.Context) error {
	if !r.isDown.Load() {
		err := r.primary.Announce(ctx)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("primary mirror failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Announce(ctx)
}
