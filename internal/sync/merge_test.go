package sync

import (
	"testing"
	"time"

	"ivyresort/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func res(id, version int64, status string, updated time.Time) *models.Reservation {
	return &models.Reservation{
		ID:        id,
		Status:    status,
		Version:   version,
		UpdatedAt: updated,
	}
}

func TestMerge_HigherVersionWins(t *testing.T) {
	now := time.Now().UTC()

	local := []*models.Reservation{res(1, 3, models.StatusConfirmed, now.Add(-time.Hour))}
	remote := []*models.Reservation{res(1, 2, models.StatusCancelled, now)}

	merged := Merge(local, remote)
	require.Len(t, merged, 1)
	// Version beats wall clock.
	assert.Equal(t, models.StatusConfirmed, merged[0].Status)
	assert.Equal(t, int64(3), merged[0].Version)
}

func TestMerge_TiedVersionFallsBackToUpdatedAt(t *testing.T) {
	now := time.Now().UTC()

	local := []*models.Reservation{res(1, 2, models.StatusConfirmed, now.Add(-time.Minute))}
	remote := []*models.Reservation{res(1, 2, models.StatusCheckedIn, now)}

	merged := Merge(local, remote)
	require.Len(t, merged, 1)
	assert.Equal(t, models.StatusCheckedIn, merged[0].Status)
}

func TestMerge_UnionsDisjointIDs(t *testing.T) {
	now := time.Now().UTC()

	local := []*models.Reservation{res(1, 1, models.StatusPending, now.Add(-2*time.Minute))}
	remote := []*models.Reservation{
		res(2, 1, models.StatusConfirmed, now.Add(-time.Minute)),
		res(3, 1, models.StatusPending, now),
	}

	merged := Merge(local, remote)
	require.Len(t, merged, 3)
	// Most recently updated first.
	assert.Equal(t, int64(3), merged[0].ID)
	assert.Equal(t, int64(2), merged[1].ID)
	assert.Equal(t, int64(1), merged[2].ID)
}

func TestMerge_PerIDWinnerProperty(t *testing.T) {
	now := time.Now().UTC()

	local := []*models.Reservation{
		res(1, 5, models.StatusCheckedIn, now.Add(-time.Hour)),
		res(2, 1, models.StatusPending, now.Add(-time.Hour)),
	}
	remote := []*models.Reservation{
		res(1, 4, models.StatusConfirmed, now),
		res(2, 2, models.StatusCancelled, now.Add(-2*time.Hour)),
	}

	merged := Merge(local, remote)
	byID := make(map[int64]*models.Reservation)
	for _, r := range merged {
		byID[r.ID] = r
	}

	// Every id appears exactly once, carrying its winning copy.
	require.Len(t, merged, 2)
	assert.Equal(t, int64(5), byID[1].Version)
	assert.Equal(t, int64(2), byID[2].Version)
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))

	now := time.Now().UTC()
	only := []*models.Reservation{res(1, 1, models.StatusPending, now)}
	assert.Len(t, Merge(only, nil), 1)
	assert.Len(t, Merge(nil, only), 1)
}
