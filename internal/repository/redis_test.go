package repository

import (
	"context"
	"testing"
	"time"

	"ivyresort/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func snapshotReservations() []*models.Reservation {
	now := time.Now().UTC().Truncate(time.Second)
	return []*models.Reservation{
		{ID: 1, ConfirmationID: "IVY-a-AAAAAA", GuestName: "alice", Status: models.StatusConfirmed, Version: 2, UpdatedAt: now},
		{ID: 2, ConfirmationID: "IVY-b-BBBBBB", GuestName: "bob", Status: models.StatusPending, Version: 1, UpdatedAt: now.Add(-time.Minute)},
	}
}

func TestRedisMirrorRepository_RoundTrip(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()
	repo := NewRedisMirrorRepository(client, "reservations:mirror", "reservations:updates")
	ctx := context.Background()

	// Empty key reads as an empty snapshot, not an error.
	snapshot, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	want := snapshotReservations()
	require.NoError(t, repo.SetSnapshot(ctx, want))

	got, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].GuestName)
	assert.Equal(t, int64(2), got[0].Version)
}

func TestRedisMirrorRepository_Announce(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()
	repo := NewRedisMirrorRepository(client, "reservations:mirror", "reservations:updates")
	ctx := context.Background()

	sub := repo.Subscribe(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Announce(ctx))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "reservations:updates", msg.Channel)
		assert.Contains(t, msg.Payload, "updated_at")
	case <-time.After(2 * time.Second):
		t.Fatal("no announcement received")
	}
}

func TestPing(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()
	assert.NoError(t, Ping(context.Background(), client))
}

func TestMemoryMirrorRepository(t *testing.T) {
	repo := NewMemoryMirrorRepository()
	ctx := context.Background()

	snapshot, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	want := snapshotReservations()
	require.NoError(t, repo.SetSnapshot(ctx, want))

	got, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// The returned slice is a copy; appending does not corrupt the store.
	_ = append(got, &models.Reservation{ID: 3})
	again, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 2)

	assert.NoError(t, repo.Announce(ctx))
}
