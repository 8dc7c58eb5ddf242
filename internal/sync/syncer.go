package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ivyresort/internal/domain"
	"ivyresort/internal/metrics"
	"ivyresort/internal/models"

	"github.com/rs/zerolog"
)

// Syncer polls the peer endpoint and the shared mirror on a fixed
// interval, merges everything with the local store snapshot, and
// publishes the result back to the mirror. Replaces the old
// localStorage-polling scheme with the same last-writer-wins semantics.
type Syncer struct {
	store    domain.Store
	mirror   domain.MirrorRepository
	peerURL  string
	interval time.Duration
	client   *http.Client
	logger   *zerolog.Logger
}

func NewSyncer(store domain.Store, mirror domain.MirrorRepository, peerURL string, interval time.Duration, logger *zerolog.Logger) *Syncer {
	if interval <= 0 {
		interval = models.DefaultSyncIntervalSeconds * time.Second
	}
	return &Syncer{
		store:    store,
		mirror:   mirror,
		peerURL:  peerURL,
		interval: interval,
		client:   &http.Client{Timeout: 8 * time.Second},
		logger:   logger,
	}
}

// Start runs the poll loop until ctx is done.
func (s *Syncer) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("syncer started")
	defer s.logger.Info().Msg("syncer stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sync round failed")
			}
		}
	}
}

// SyncOnce performs a single poll-merge-publish round.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	// Hidden rows still travel so peers converge on the same state.
	local, err := s.store.ListReservations(ctx, models.ReservationFilter{IncludeDeleted: true})
	if err != nil {
		return fmt.Errorf("list local reservations: %w", err)
	}

	merged := local

	if shared, err := s.mirror.GetSnapshot(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("mirror snapshot unavailable, merging without it")
	} else if len(shared) > 0 {
		merged = Merge(merged, shared)
	}

	if s.peerURL != "" {
		peer, err := s.fetchPeer(ctx)
		if err != nil {
			// Peer being down must not block the local mirror refresh.
			s.logger.Warn().Err(err).Str("peer_url", s.peerURL).Msg("peer fetch failed")
		} else {
			merged = Merge(merged, peer)
		}
	}

	if err := s.mirror.SetSnapshot(ctx, merged); err != nil {
		return fmt.Errorf("write mirror snapshot: %w", err)
	}
	if err := s.mirror.Announce(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("announce failed")
	}

	metrics.IncSyncMerge()
	return nil
}

type peerResponse struct {
	Success bool                  `json:"success"`
	Data    []*models.Reservation `json:"data"`
	Error   string                `json:"error"`
}

func (s *Syncer) fetchPeer(ctx context.Context) ([]*models.Reservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.peerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build peer request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("peer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer returned status %d", resp.StatusCode)
	}

	var body peerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode peer response: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("peer reported failure: %s", body.Error)
	}
	return body.Data, nil
}
