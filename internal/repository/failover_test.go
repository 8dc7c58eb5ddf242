package repository

import (
	"context"
	"errors"
	"testing"

	"ivyresort/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyMirror struct {
	inner *MemoryMirrorRepository
	fail  bool
	calls int
}

func newFlakyMirror() *flakyMirror {
	return &flakyMirror{inner: NewMemoryMirrorRepository()}
}

func (m *flakyMirror) GetSnapshot(ctx context.Context) ([]*models.Reservation, error) {
	m.calls++
	if m.fail {
		return nil, errors.New("mirror unavailable")
	}
	return m.inner.GetSnapshot(ctx)
}

func (m *flakyMirror) SetSnapshot(ctx context.Context, reservations []*models.Reservation) error {
	m.calls++
	if m.fail {
		return errors.New("mirror unavailable")
	}
	return m.inner.SetSnapshot(ctx, reservations)
}

func (m *flakyMirror) Announce(ctx context.Context) error {
	m.calls++
	if m.fail {
		return errors.New("mirror unavailable")
	}
	return nil
}

func TestFailover_UsesPrimaryWhenHealthy(t *testing.T) {
	primary := newFlakyMirror()
	fallback := NewMemoryMirrorRepository()
	logger := zerolog.Nop()
	repo := NewFailoverMirrorRepository(primary, fallback, &logger)
	ctx := context.Background()

	want := snapshotReservations()
	require.NoError(t, repo.SetSnapshot(ctx, want))

	got, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// The fallback was kept warm by the successful primary write.
	warm, err := fallback.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, warm, 2)
}

func TestFailover_FallsBackAndStaysDown(t *testing.T) {
	primary := newFlakyMirror()
	fallback := NewMemoryMirrorRepository()
	logger := zerolog.Nop()
	repo := NewFailoverMirrorRepository(primary, fallback, &logger)
	ctx := context.Background()

	// Warm both while healthy, then kill the primary.
	require.NoError(t, repo.SetSnapshot(ctx, snapshotReservations()))
	primary.fail = true

	got, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Subsequent reads skip the primary until the probe window passes.
	callsAfterFailover := primary.calls
	_, err = repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFailover, primary.calls)
}

func TestFailover_WritesLandInFallbackWhileDown(t *testing.T) {
	primary := newFlakyMirror()
	primary.fail = true
	fallback := NewMemoryMirrorRepository()
	logger := zerolog.Nop()
	repo := NewFailoverMirrorRepository(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SetSnapshot(ctx, snapshotReservations()))

	got, err := fallback.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.NoError(t, repo.Announce(ctx))
}
