package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/models"
)

var (
	testNow    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	donorID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	receiverID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type logEntry struct {
	donationID uuid.UUID
	receiverID uuid.UUID
	at         time.Time
}

// stubGateway is an in-memory gateway.Donations with injectable failures.
type stubGateway struct {
	donations map[uuid.UUID]*models.Donation
	logs      []logEntry

	createErr     error
	transitionErr error
	logErr        error
	deleteCalls   int
}

func newStubGateway() *stubGateway {
	return &stubGateway{donations: make(map[uuid.UUID]*models.Donation)}
}

func (s *stubGateway) Create(_ context.Context, d *models.Donation) (uuid.UUID, error) {
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	cp := *d
	s.donations[d.ID] = &cp
	return d.ID, nil
}

func (s *stubGateway) Get(_ context.Context, id uuid.UUID) (*models.Donation, error) {
	d, ok := s.donations[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *stubGateway) ListByStatus(_ context.Context, status lifecycle.Status) ([]models.Donation, error) {
	var out []models.Donation
	for _, d := range s.donations {
		if d.Status == string(status) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *stubGateway) ListByOwner(_ context.Context, donorID uuid.UUID) ([]models.Donation, error) {
	var out []models.Donation
	for _, d := range s.donations {
		if d.DonorID == donorID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *stubGateway) ListByReceiver(_ context.Context, receiverID uuid.UUID) ([]models.Donation, error) {
	var out []models.Donation
	for _, d := range s.donations {
		if d.ReceiverID != nil && *d.ReceiverID == receiverID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *stubGateway) Transition(_ context.Context, id uuid.UUID, expectedFrom lifecycle.Status, fields gateway.TransitionFields) error {
	if s.transitionErr != nil {
		return s.transitionErr
	}
	d, ok := s.donations[id]
	if !ok {
		return gateway.ErrNotFound
	}
	if d.Status != string(expectedFrom) {
		return gateway.ErrConflict
	}
	d.Status = string(fields.Status)
	if fields.ReceiverID != nil {
		d.ReceiverID = fields.ReceiverID
	}
	if fields.PickupTime != nil {
		d.PickupTime = fields.PickupTime
	}
	return nil
}

func (s *stubGateway) AppendCollectionLog(_ context.Context, donationID, receiverID uuid.UUID, collectedAt time.Time, _ *string) error {
	if s.logErr != nil {
		return s.logErr
	}
	s.logs = append(s.logs, logEntry{donationID: donationID, receiverID: receiverID, at: collectedAt})
	return nil
}

func (s *stubGateway) Delete(_ context.Context, id uuid.UUID) error {
	s.deleteCalls++
	if _, ok := s.donations[id]; !ok {
		return gateway.ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func newTestService(gw *stubGateway) *DonationService {
	return NewDonationService(gw).WithClock(func() time.Time { return testNow })
}

func validInput() lifecycle.CreateInput {
	lat, lon := 12.97, 77.59
	return lifecycle.CreateInput{
		DonorID:    donorID,
		ItemName:   "Chapati",
		Quantity:   "Feeds 50 people",
		FoodType:   "veg",
		ExpiryTime: testNow.Add(2 * time.Hour),
		Latitude:   &lat,
		Longitude:  &lon,
		Address:    "MG Road, Bengaluru",
	}
}

func seedPending(gw *stubGateway, expiry time.Time) *models.Donation {
	d := &models.Donation{
		ID:         uuid.New(),
		DonorID:    donorID,
		ItemName:   "Rice",
		Quantity:   "10kg",
		FoodType:   "veg",
		Status:     string(lifecycle.StatusPending),
		ExpiryTime: expiry,
		CreatedAt:  testNow.Add(-time.Hour),
	}
	gw.donations[d.ID] = d
	return d
}

func TestCreateWithoutLocation(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)

	in := validInput()
	in.Latitude = nil
	in.Longitude = nil

	_, err := svc.Create(context.Background(), lifecycle.RoleDonor, in)
	if !errors.Is(err, lifecycle.ErrPreconditionFailed) {
		t.Fatalf("got %v, want ErrPreconditionFailed", err)
	}
	if len(gw.donations) != 0 {
		t.Error("no record may be created when the precondition fails")
	}
}

func TestCreatePendingWithToken(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)

	d, err := svc.Create(context.Background(), lifecycle.RoleDonor, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Status != string(lifecycle.StatusPending) {
		t.Errorf("status = %s, want pending", d.Status)
	}
	if !strings.HasPrefix(d.QRCode, "ZWC-") {
		t.Errorf("tracking token %q missing ZWC prefix", d.QRCode)
	}
	if d.ReceiverID != nil || d.PickupTime != nil {
		t.Error("receiver and pickup time must be unset while pending")
	}
	if _, ok := gw.donations[d.ID]; !ok {
		t.Error("donation not persisted through the gateway")
	}
}

func TestClaimSetsReceiverAndLogs(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(time.Hour))

	d, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	if d.Status != string(lifecycle.StatusCollected) {
		t.Errorf("status = %s, want collected", d.Status)
	}
	if d.ReceiverID == nil || *d.ReceiverID != receiverID {
		t.Error("receiver reference must be set with the claim")
	}
	if d.PickupTime == nil || !d.PickupTime.Equal(testNow) {
		t.Error("pickup time must be set to the claim instant")
	}

	stored := gw.donations[seeded.ID]
	if stored.Status != string(lifecycle.StatusCollected) || stored.ReceiverID == nil {
		t.Error("stored record must carry the committed claim")
	}

	if len(gw.logs) != 1 {
		t.Fatalf("got %d collection logs, want 1", len(gw.logs))
	}
	if gw.logs[0].donationID != seeded.ID || gw.logs[0].receiverID != receiverID {
		t.Errorf("collection log references wrong parties: %+v", gw.logs[0])
	}

	// The claimed donation no longer shows up among pending candidates.
	pending, _ := gw.ListByStatus(context.Background(), lifecycle.StatusPending)
	for _, p := range pending {
		if p.ID == seeded.ID {
			t.Error("claimed donation still listed as pending")
		}
	}
}

func TestClaimLostRace(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(time.Hour))

	if _, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	other := uuid.New()
	_, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, other, seeded.ID)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("second claim: got %v, want ErrInvalidTransition", err)
	}

	stored := gw.donations[seeded.ID]
	if *stored.ReceiverID != receiverID {
		t.Error("losing claim must not overwrite the committed receiver")
	}
	if len(gw.logs) != 1 {
		t.Errorf("got %d collection logs, want 1 (loser must not log)", len(gw.logs))
	}
}

func TestClaimRaceAtGateway(t *testing.T) {
	// The local guard passed but the conditional update lost at the backend.
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(time.Hour))
	gw.transitionErr = gateway.ErrConflict

	_, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
	if len(gw.logs) != 0 {
		t.Error("no collection log may be appended for a lost race")
	}
}

func TestClaimExpired(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(-time.Minute))

	_, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
	if gw.donations[seeded.ID].Status != string(lifecycle.StatusPending) {
		t.Error("guard failure must not mutate the record")
	}
}

func TestClaimLogFailureKeepsClaim(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(time.Hour))
	gw.logErr = gateway.ErrUnavailable

	d, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID)
	if err != nil {
		t.Fatalf("claim must survive a failed audit append: %v", err)
	}
	if d.Status != string(lifecycle.StatusCollected) {
		t.Error("claim must stay committed when logging fails")
	}
}

func TestDeliverGuards(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(time.Hour))

	// Deliver before collection is an invalid transition.
	err := svc.Deliver(context.Background(), lifecycle.RoleDonor, donorID, seeded.ID)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("deliver pending: got %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Only the owning donor may finalize.
	err = svc.Deliver(context.Background(), lifecycle.RoleDonor, uuid.New(), seeded.ID)
	if !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("deliver by stranger: got %v, want ErrForbidden", err)
	}

	if err := svc.Deliver(context.Background(), lifecycle.RoleDonor, donorID, seeded.ID); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if gw.donations[seeded.ID].Status != string(lifecycle.StatusDelivered) {
		t.Error("donation must be delivered")
	}

	// Delivered is terminal: further claims and deletes fail.
	if _, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, uuid.New(), seeded.ID); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("claim delivered: got %v, want ErrInvalidTransition", err)
	}
	if err := svc.Delete(context.Background(), lifecycle.RoleDonor, donorID, seeded.ID); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("delete delivered: got %v, want ErrInvalidTransition", err)
	}
}

func TestDeleteGuards(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)
	seeded := seedPending(gw, testNow.Add(time.Hour))

	if _, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, seeded.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	err := svc.Delete(context.Background(), lifecycle.RoleDonor, donorID, seeded.ID)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("delete collected: got %v, want ErrInvalidTransition", err)
	}
	if gw.deleteCalls != 0 {
		t.Error("guard failures must never reach the gateway")
	}
	if _, ok := gw.donations[seeded.ID]; !ok {
		t.Error("record must be unchanged after a rejected delete")
	}

	// A fresh pending donation deletes cleanly, but only for its owner.
	fresh := seedPending(gw, testNow.Add(time.Hour))
	if err := svc.Delete(context.Background(), lifecycle.RoleDonor, uuid.New(), fresh.ID); !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("delete by stranger: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), lifecycle.RoleDonor, donorID, fresh.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := gw.donations[fresh.ID]; ok {
		t.Error("pending donation must be removed")
	}
}

func TestClaimUnknownDonation(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)

	_, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, uuid.New())
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDashboardCounts(t *testing.T) {
	gw := newStubGateway()
	svc := newTestService(gw)

	first := seedPending(gw, testNow.Add(time.Hour))
	seedPending(gw, testNow.Add(2*time.Hour))
	if _, err := svc.Claim(context.Background(), lifecycle.RoleReceiver, receiverID, first.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	donations, counts, err := svc.ForDonor(context.Background(), donorID)
	if err != nil {
		t.Fatalf("for donor: %v", err)
	}
	if len(donations) != 2 {
		t.Errorf("donor sees %d donations, want 2", len(donations))
	}
	if counts.Total != 2 || counts.Pending != 1 || counts.Collected != 1 || counts.Delivered != 0 {
		t.Errorf("unexpected counts %+v", counts)
	}

	collected, rcounts, err := svc.ForReceiver(context.Background(), receiverID)
	if err != nil {
		t.Fatalf("for receiver: %v", err)
	}
	if len(collected) != 1 || rcounts.Collected != 1 {
		t.Errorf("receiver dashboard wrong: %d donations, counts %+v", len(collected), rcounts)
	}
}
