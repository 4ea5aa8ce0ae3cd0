// Package gateway is the data-access boundary for donation records. Services
// validate lifecycle guards locally before calling any mutating operation
// here; the gateway's only concurrency-safety mechanism is the atomic
// conditional update in Transition.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a conditional update matched no row because the
	// expected source status no longer holds (e.g. a lost claim race).
	ErrConflict = errors.New("status conflict")

	// ErrUnavailable wraps network or backend failures, opaque to callers.
	ErrUnavailable = errors.New("gateway unavailable")
)

// TransitionFields carries the columns written together with a status change.
// Receiver and pickup time travel atomically with pending -> collected.
type TransitionFields struct {
	Status     lifecycle.Status
	ReceiverID *uuid.UUID
	PickupTime *time.Time
}

// Donations is the external-collaborator interface from the core's point of
// view. Every operation may fail with ErrUnavailable independent of the
// lifecycle's own guards.
type Donations interface {
	Create(ctx context.Context, d *models.Donation) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Donation, error)

	// ListByStatus returns donations in the given status, newest first.
	ListByStatus(ctx context.Context, status lifecycle.Status) ([]models.Donation, error)
	ListByOwner(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.Donation, error)

	// Transition performs an atomic conditional update: the write succeeds
	// only if the donation is still in expectedFrom, otherwise ErrConflict.
	Transition(ctx context.Context, id uuid.UUID, expectedFrom lifecycle.Status, fields TransitionFields) error

	// AppendCollectionLog is a fire-and-forget audit append; a failure here
	// never rolls back an already-committed claim.
	AppendCollectionLog(ctx context.Context, donationID, receiverID uuid.UUID, collectedAt time.Time, notes *string) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// Profiles exposes the profile reads and writes the dashboards and the admin
// panel need.
type Profiles interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	CountProfilesByType(ctx context.Context, userType string) (int64, error)
	CountProfiles(ctx context.Context) (int64, error)
}

// Stats exposes the aggregate donation counts for the admin panel.
type Stats interface {
	CountDonations(ctx context.Context) (int64, error)
	CountDonationsByStatus(ctx context.Context, status lifecycle.Status) (int64, error)
}
