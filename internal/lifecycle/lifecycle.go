// Package lifecycle defines the donation state machine and the guarded
// transitions available to each actor role.
package lifecycle

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/models"
)

var (
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrForbidden          = errors.New("forbidden")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCollected Status = "collected"
	StatusDelivered Status = "delivered"
	StatusExpired   Status = "expired"
)

type Role string

const (
	RoleDonor    Role = "donor"
	RoleReceiver Role = "receiver"
	RoleAdmin    Role = "admin"
)

type Action string

const (
	ActionCreate  Action = "create"
	ActionClaim   Action = "claim"
	ActionDeliver Action = "deliver"
	ActionDelete  Action = "delete"
)

// capabilities is the closed role -> action table. Ownership and state guards
// are checked separately; this answers only "may this role ever do this".
var capabilities = map[Role]map[Action]bool{
	RoleDonor: {
		ActionCreate:  true,
		ActionDeliver: true,
		ActionDelete:  true,
	},
	RoleReceiver: {
		ActionClaim: true,
	},
	RoleAdmin: {},
}

// Allows reports whether the role may ever perform the action.
func Allows(role Role, action Action) bool {
	return capabilities[role][action]
}

// transitions maps each status to the set of statuses reachable from it.
// Expired is a read-time classification of a pending donation whose expiry has
// passed; nothing writes it back to storage.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCollected, StatusExpired},
	StatusCollected: {StatusDelivered},
	StatusDelivered: {},
	StatusExpired:   {},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Expired reports whether the donation's expiry time has passed at now.
// A donation expires at exactly ExpiryTime: remaining time must be strictly
// positive for the donation to still be claimable.
func Expired(d *models.Donation, now time.Time) bool {
	return !d.ExpiryTime.After(now)
}

// CreateInput carries the donor-supplied fields for a new donation.
type CreateInput struct {
	DonorID     uuid.UUID
	ItemName    string
	Quantity    string
	Description string
	FoodType    string
	ExpiryTime  time.Time
	ImageURL    *string
	Latitude    *float64
	Longitude   *float64
	Address     string
}

// ValidateCreate checks the creation guard: item name, quantity, food type,
// a future expiry, and a confirmed pickup location must all be supplied.
// Returns ErrPreconditionFailed before any write is attempted.
func ValidateCreate(role Role, in CreateInput, now time.Time) error {
	if !Allows(role, ActionCreate) {
		return fmt.Errorf("%w: only donors may post donations", ErrForbidden)
	}
	if in.ItemName == "" {
		return fmt.Errorf("%w: item name is required", ErrPreconditionFailed)
	}
	if in.Quantity == "" {
		return fmt.Errorf("%w: quantity is required", ErrPreconditionFailed)
	}
	if !models.ValidFoodType(in.FoodType) {
		return fmt.Errorf("%w: invalid food type %q", ErrPreconditionFailed, in.FoodType)
	}
	if !in.ExpiryTime.After(now) {
		return fmt.Errorf("%w: expiry time must be in the future", ErrPreconditionFailed)
	}
	if in.Latitude == nil || in.Longitude == nil {
		return fmt.Errorf("%w: pickup location is required", ErrPreconditionFailed)
	}
	if in.Address == "" {
		return fmt.Errorf("%w: pickup address is required", ErrPreconditionFailed)
	}
	return nil
}

// ValidateClaim checks the pending -> collected guard for a receiver.
func ValidateClaim(role Role, d *models.Donation, now time.Time) error {
	if !Allows(role, ActionClaim) {
		return fmt.Errorf("%w: only receivers may collect donations", ErrForbidden)
	}
	if Status(d.Status) != StatusPending {
		return fmt.Errorf("%w: donation is %s, not pending", ErrInvalidTransition, d.Status)
	}
	if Expired(d, now) {
		return fmt.Errorf("%w: donation has expired", ErrInvalidTransition)
	}
	return nil
}

// ValidateDeliver checks the collected -> delivered guard for the owning donor.
func ValidateDeliver(role Role, actorID uuid.UUID, d *models.Donation) error {
	if !Allows(role, ActionDeliver) {
		return fmt.Errorf("%w: only donors may mark deliveries", ErrForbidden)
	}
	if d.DonorID != actorID {
		return fmt.Errorf("%w: not the owning donor", ErrForbidden)
	}
	if Status(d.Status) != StatusCollected {
		return fmt.Errorf("%w: donation is %s, not collected", ErrInvalidTransition, d.Status)
	}
	return nil
}

// ValidateDelete checks the deletion guard: only the owning donor, only while
// the donation is still pending.
func ValidateDelete(role Role, actorID uuid.UUID, d *models.Donation) error {
	if !Allows(role, ActionDelete) {
		return fmt.Errorf("%w: only donors may delete donations", ErrForbidden)
	}
	if d.DonorID != actorID {
		return fmt.Errorf("%w: not the owning donor", ErrForbidden)
	}
	if Status(d.Status) != StatusPending {
		return fmt.Errorf("%w: cannot delete a %s donation", ErrInvalidTransition, d.Status)
	}
	return nil
}

const trackingAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewTrackingToken builds the human-scannable identifier printed on QR labels:
// a ZWC prefix, the creation time in unix milliseconds and a random base36
// suffix. It is not a security credential.
func NewTrackingToken(now time.Time) string {
	suffix := make([]byte, 9)
	if _, err := rand.Read(suffix); err != nil {
		// Fall back to the donation's creation nanos; the token only has to
		// be unique enough to scan.
		return fmt.Sprintf("ZWC-%d-%09d", now.UnixMilli(), now.Nanosecond())
	}
	for i, b := range suffix {
		suffix[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return fmt.Sprintf("ZWC-%d-%s", now.UnixMilli(), suffix)
}
