package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zerowastechef/zwc-backend/internal/dto"
	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
)

const (
	adminStatsKey = "stats:admin"
	adminStatsTTL = 1 * time.Minute
)

// StatsService computes the admin panel aggregates.
type StatsService struct {
	profiles gateway.Profiles
	stats    gateway.Stats
	cache    *redis.Client
}

// NewStatsService builds the service. cache may be nil.
func NewStatsService(profiles gateway.Profiles, stats gateway.Stats, cache *redis.Client) *StatsService {
	return &StatsService{profiles: profiles, stats: stats, cache: cache}
}

func (s *StatsService) AdminStats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, adminStatsKey).Result(); err == nil {
			var cached dto.AdminStatsResponse
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	out := &dto.AdminStatsResponse{}
	var err error

	if out.TotalUsers, err = s.profiles.CountProfiles(ctx); err != nil {
		return nil, err
	}
	if out.Donors, err = s.profiles.CountProfilesByType(ctx, string(lifecycle.RoleDonor)); err != nil {
		return nil, err
	}
	if out.Receivers, err = s.profiles.CountProfilesByType(ctx, string(lifecycle.RoleReceiver)); err != nil {
		return nil, err
	}
	if out.TotalDonations, err = s.stats.CountDonations(ctx); err != nil {
		return nil, err
	}
	if out.Pending, err = s.stats.CountDonationsByStatus(ctx, lifecycle.StatusPending); err != nil {
		return nil, err
	}
	if out.Collected, err = s.stats.CountDonationsByStatus(ctx, lifecycle.StatusCollected); err != nil {
		return nil, err
	}
	if out.Delivered, err = s.stats.CountDonationsByStatus(ctx, lifecycle.StatusDelivered); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, adminStatsKey, raw, adminStatsTTL).Err(); err != nil {
				slog.Warn("admin stats cache write failed", "error", err)
			}
		}
	}
	return out, nil
}
