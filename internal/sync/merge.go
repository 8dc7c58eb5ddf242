package sync

import (
	"sort"

	"ivyresort/internal/models"
)

// Merge reconciles two snapshots per reservation id. The copy with the
// higher version wins; on equal versions (or rows from stores that do
// not track versions) the newer updated_at wins. Last-writer-wins, no
// conflict detection beyond that.
func Merge(local, remote []*models.Reservation) []*models.Reservation {
	byID := make(map[int64]*models.Reservation, len(local)+len(remote))

	for _, res := range local {
		byID[res.ID] = res
	}
	for _, res := range remote {
		current, ok := byID[res.ID]
		if !ok || newer(res, current) {
			byID[res.ID] = res
		}
	}

	merged := make([]*models.Reservation, 0, len(byID))
	for _, res := range byID {
		merged = append(merged, res)
	}
	// Most-recently-updated first, matching the list endpoint ordering.
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})
	return merged
}

func newer(a, b *models.Reservation) bool {
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
