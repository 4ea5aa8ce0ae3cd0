package services

import (
	"context"
	"testing"
	"time"

	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/match"
	"github.com/zerowastechef/zwc-backend/internal/realtime"
)

func TestNearbyReflectsClaims(t *testing.T) {
	gw := newStubGateway()
	hub := realtime.NewHub()
	svc := NewNearbyService(gw, nil, hub).WithClock(func() time.Time { return testNow })
	defer svc.Close()
	donationSvc := newTestService(gw)

	fresh := seedPending(gw, testNow.Add(3*time.Hour))
	urgent := seedPending(gw, testNow.Add(90*time.Minute))
	seedPending(gw, testNow.Add(-time.Minute)) // already expired, never shown

	results, err := svc.Nearby(context.Background(), nil, match.OrderNewestFirst)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (expired filtered)", len(results))
	}
	for _, r := range results {
		switch r.Donation.ID {
		case urgent.ID:
			if !r.Urgent {
				t.Error("90 minutes remaining must be flagged urgent")
			}
		case fresh.ID:
			if r.Urgent {
				t.Error("3 hours remaining must not be urgent")
			}
		}
		if r.DistanceKm != nil {
			t.Error("distance must be omitted for a viewer without location")
		}
	}

	if _, err := donationSvc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, fresh.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	results, err = svc.Nearby(context.Background(), nil, match.OrderNewestFirst)
	if err != nil {
		t.Fatalf("nearby after claim: %v", err)
	}
	if len(results) != 1 || results[0].Donation.ID != urgent.ID {
		t.Fatalf("claimed donation must drop from the feed, got %d results", len(results))
	}
}

func TestNearbyHubInvalidationWithoutCache(t *testing.T) {
	gw := newStubGateway()
	hub := realtime.NewHub()
	svc := NewNearbyService(gw, nil, hub).WithClock(func() time.Time { return testNow })
	defer svc.Close()

	// With no cache configured the change callback is a no-op; publishing must
	// not panic and the next read still hits the gateway.
	hub.Publish(realtime.Event{Table: "donations", Kind: realtime.EventUpdate})

	seedPending(gw, testNow.Add(time.Hour))
	results, err := svc.Nearby(context.Background(), nil, match.OrderNewestFirst)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}
