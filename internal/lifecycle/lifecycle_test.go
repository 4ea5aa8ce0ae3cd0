package lifecycle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/models"
)

var (
	testNow   = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	donorID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	otherID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	floatPtr  = func(f float64) *float64 { return &f }
	pendingAt = func(expiry time.Time) *models.Donation {
		return &models.Donation{
			ID:         uuid.New(),
			DonorID:    donorID,
			Status:     string(StatusPending),
			ExpiryTime: expiry,
		}
	}
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleDonor, ActionCreate, true},
		{RoleDonor, ActionDeliver, true},
		{RoleDonor, ActionDelete, true},
		{RoleDonor, ActionClaim, false},
		{RoleReceiver, ActionClaim, true},
		{RoleReceiver, ActionCreate, false},
		{RoleReceiver, ActionDeliver, false},
		{RoleReceiver, ActionDelete, false},
		{RoleAdmin, ActionCreate, false},
		{RoleAdmin, ActionClaim, false},
	}
	for _, tc := range cases {
		if got := Allows(tc.role, tc.action); got != tc.want {
			t.Errorf("Allows(%s, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusCollected, true},
		{StatusPending, StatusExpired, true},
		{StatusCollected, StatusDelivered, true},
		{StatusPending, StatusDelivered, false},
		{StatusCollected, StatusPending, false},
		{StatusDelivered, StatusCollected, false},
		{StatusExpired, StatusCollected, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}

	if Terminal(StatusPending) || Terminal(StatusCollected) {
		t.Error("pending and collected must not be terminal")
	}
	if !Terminal(StatusDelivered) || !Terminal(StatusExpired) {
		t.Error("delivered and expired must be terminal")
	}
}

func validCreateInput() CreateInput {
	return CreateInput{
		DonorID:    donorID,
		ItemName:   "Biryani",
		Quantity:   "20 plates",
		FoodType:   "veg",
		ExpiryTime: testNow.Add(2 * time.Hour),
		Latitude:   floatPtr(12.97),
		Longitude:  floatPtr(77.59),
		Address:    "MG Road, Bengaluru",
	}
}

func TestValidateCreate(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		mutate  func(*CreateInput)
		wantErr error
	}{
		{"valid", RoleDonor, func(in *CreateInput) {}, nil},
		{"receiver role", RoleReceiver, func(in *CreateInput) {}, ErrForbidden},
		{"missing item name", RoleDonor, func(in *CreateInput) { in.ItemName = "" }, ErrPreconditionFailed},
		{"missing quantity", RoleDonor, func(in *CreateInput) { in.Quantity = "" }, ErrPreconditionFailed},
		{"bad food type", RoleDonor, func(in *CreateInput) { in.FoodType = "frozen" }, ErrPreconditionFailed},
		{"past expiry", RoleDonor, func(in *CreateInput) { in.ExpiryTime = testNow.Add(-time.Minute) }, ErrPreconditionFailed},
		{"missing latitude", RoleDonor, func(in *CreateInput) { in.Latitude = nil }, ErrPreconditionFailed},
		{"missing longitude", RoleDonor, func(in *CreateInput) { in.Longitude = nil }, ErrPreconditionFailed},
		{"missing address", RoleDonor, func(in *CreateInput) { in.Address = "" }, ErrPreconditionFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateInput()
			tc.mutate(&in)
			err := ValidateCreate(tc.role, in, testNow)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateClaim(t *testing.T) {
	fresh := pendingAt(testNow.Add(time.Hour))

	if err := ValidateClaim(RoleReceiver, fresh, testNow); err != nil {
		t.Fatalf("claim on fresh pending donation: %v", err)
	}

	if err := ValidateClaim(RoleDonor, fresh, testNow); !errors.Is(err, ErrForbidden) {
		t.Errorf("donor claim: got %v, want ErrForbidden", err)
	}

	expired := pendingAt(testNow.Add(-time.Minute))
	if err := ValidateClaim(RoleReceiver, expired, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expired claim: got %v, want ErrInvalidTransition", err)
	}

	// A donation expiring exactly now is no longer claimable.
	boundary := pendingAt(testNow)
	if err := ValidateClaim(RoleReceiver, boundary, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("boundary claim: got %v, want ErrInvalidTransition", err)
	}

	collected := pendingAt(testNow.Add(time.Hour))
	collected.Status = string(StatusCollected)
	if err := ValidateClaim(RoleReceiver, collected, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("claim on collected: got %v, want ErrInvalidTransition", err)
	}
}

func TestValidateDeliver(t *testing.T) {
	d := pendingAt(testNow.Add(time.Hour))
	d.Status = string(StatusCollected)

	if err := ValidateDeliver(RoleDonor, donorID, d); err != nil {
		t.Fatalf("deliver by owner: %v", err)
	}
	if err := ValidateDeliver(RoleDonor, otherID, d); !errors.Is(err, ErrForbidden) {
		t.Errorf("deliver by non-owner: got %v, want ErrForbidden", err)
	}
	if err := ValidateDeliver(RoleReceiver, donorID, d); !errors.Is(err, ErrForbidden) {
		t.Errorf("deliver by receiver: got %v, want ErrForbidden", err)
	}

	d.Status = string(StatusPending)
	if err := ValidateDeliver(RoleDonor, donorID, d); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("deliver from pending: got %v, want ErrInvalidTransition", err)
	}
}

func TestValidateDelete(t *testing.T) {
	d := pendingAt(testNow.Add(time.Hour))

	if err := ValidateDelete(RoleDonor, donorID, d); err != nil {
		t.Fatalf("delete pending by owner: %v", err)
	}
	if err := ValidateDelete(RoleDonor, otherID, d); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete by non-owner: got %v, want ErrForbidden", err)
	}

	for _, status := range []Status{StatusCollected, StatusDelivered} {
		d.Status = string(status)
		if err := ValidateDelete(RoleDonor, donorID, d); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("delete %s donation: got %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestNewTrackingToken(t *testing.T) {
	token := NewTrackingToken(testNow)
	parts := strings.SplitN(token, "-", 3)
	if len(parts) != 3 || parts[0] != "ZWC" {
		t.Fatalf("unexpected token shape: %q", token)
	}
	if parts[1] != "1717243200000" {
		t.Errorf("timestamp part = %q, want unix millis of fixed now", parts[1])
	}
	if len(parts[2]) != 9 {
		t.Errorf("suffix length = %d, want 9", len(parts[2]))
	}

	if NewTrackingToken(testNow) == token {
		t.Error("tokens for the same instant should differ in their random suffix")
	}
}
