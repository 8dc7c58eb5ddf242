package repository

import (
	"context"
	"sync"

	"ivyresort/internal/models"
)

// MemoryMirrorRepository keeps the shared snapshot in process memory.
// It backs the failover wrapper when redis is down or absent.
type MemoryMirrorRepository struct {
	mu       sync.RWMutex
	snapshot []*models.Reservation
}

func NewMemoryMirrorRepository() *MemoryMirrorRepository {
	return &MemoryMirrorRepository{}
}

func (r *MemoryMirrorRepository) GetSnapshot(ctx context.Context) ([]*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Reservation, len(r.snapshot))
	copy(out, r.snapshot)
	return out, nil
}

func (r *MemoryMirrorRepository) SetSnapshot(ctx context.Context, reservations []*models.Reservation) error {
	copied := make([]*models.Reservation, len(reservations))
	copy(copied, reservations)
	r.mu.Lock()
	r.snapshot = copied
	r.mu.Unlock()
	return nil
}

func (r *MemoryMirrorRepository) Announce(ctx context.Context) error {
	// In-memory mirror has no cross-process subscribers.
	return nil
}
