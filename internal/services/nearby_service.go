package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/match"
	"github.com/zerowastechef/zwc-backend/internal/models"
	"github.com/zerowastechef/zwc-backend/internal/realtime"
)

const (
	pendingSnapshotKey = "nearby:pending"
	pendingSnapshotTTL = 30 * time.Second
)

// NearbyService serves the receiver's browsing view. Each request ranks a
// self-consistent snapshot of pending donations; a hub subscription drops the
// cached snapshot on any donations change so the next read re-fetches, which
// is the whole reaction — no incremental patching.
type NearbyService struct {
	donations gateway.Donations
	cache     *redis.Client
	hub       *realtime.Hub
	subID     int
	now       func() time.Time
}

// NewNearbyService wires the service to the hub. cache may be nil, in which
// case every request goes straight to the gateway.
func NewNearbyService(donations gateway.Donations, cache *redis.Client, hub *realtime.Hub) *NearbyService {
	s := &NearbyService{donations: donations, cache: cache, hub: hub, now: time.Now}
	if hub != nil {
		s.subID = hub.Subscribe("donations", nil, s.onChange)
	}
	return s
}

// WithClock overrides the time source, for tests.
func (s *NearbyService) WithClock(now func() time.Time) *NearbyService {
	s.now = now
	return s
}

// Close deregisters the hub subscription.
func (s *NearbyService) Close() {
	if s.hub != nil {
		s.hub.Unsubscribe(s.subID)
	}
}

// Nearby returns the ranked, filtered pending donations for a viewer. viewer
// may be nil; distance is then omitted and never used for ordering.
func (s *NearbyService) Nearby(ctx context.Context, viewer *match.Point, order match.Order) ([]match.Result, error) {
	pending, err := s.pendingSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return match.Rank(pending, viewer, s.now(), order), nil
}

func (s *NearbyService) pendingSnapshot(ctx context.Context) ([]models.Donation, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, pendingSnapshotKey).Result(); err == nil {
			var cached []models.Donation
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	pending, err := s.donations.ListByStatus(ctx, lifecycle.StatusPending)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(pending); err == nil {
			if err := s.cache.Set(ctx, pendingSnapshotKey, raw, pendingSnapshotTTL).Err(); err != nil {
				slog.Warn("pending snapshot cache write failed", "error", err)
			}
		}
	}
	return pending, nil
}

// onChange invalidates the cached snapshot; the next Nearby call re-fetches.
func (s *NearbyService) onChange(realtime.Event) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Del(ctx, pendingSnapshotKey).Err(); err != nil {
		slog.Warn("pending snapshot invalidation failed", "error", err)
	}
}
