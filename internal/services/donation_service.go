package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/models"
)

// DonationService drives the donation lifecycle. Every guard is validated
// locally before a mutating gateway call is issued, so guard failures never
// reach the backend; the gateway's conditional update remains the only
// defense against concurrent claims.
type DonationService struct {
	donations gateway.Donations
	now       func() time.Time
}

func NewDonationService(donations gateway.Donations) *DonationService {
	return &DonationService{donations: donations, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *DonationService) WithClock(now func() time.Time) *DonationService {
	s.now = now
	return s
}

// Create posts a new pending donation for the donor and generates its
// tracking token.
func (s *DonationService) Create(ctx context.Context, role lifecycle.Role, in lifecycle.CreateInput) (*models.Donation, error) {
	now := s.now()
	if err := lifecycle.ValidateCreate(role, in, now); err != nil {
		return nil, err
	}

	d := &models.Donation{
		ID:          uuid.New(),
		DonorID:     in.DonorID,
		ItemName:    in.ItemName,
		Quantity:    in.Quantity,
		Description: in.Description,
		FoodType:    in.FoodType,
		ExpiryTime:  in.ExpiryTime,
		ImageURL:    in.ImageURL,
		Latitude:    *in.Latitude,
		Longitude:   *in.Longitude,
		Address:     in.Address,
		Status:      string(lifecycle.StatusPending),
		QRCode:      lifecycle.NewTrackingToken(now),
	}

	if _, err := s.donations.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Claim performs the pending -> collected transition for a receiver. The
// status change, receiver reference and pickup timestamp are written in one
// atomic conditional update; of two concurrent claims at most one succeeds
// and the loser gets ErrInvalidTransition. The audit-log append afterwards is
// best-effort and never reverses the committed claim.
func (s *DonationService) Claim(ctx context.Context, role lifecycle.Role, receiverID, donationID uuid.UUID) (*models.Donation, error) {
	d, err := s.donations.Get(ctx, donationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := lifecycle.ValidateClaim(role, d, now); err != nil {
		return nil, err
	}

	pickup := now
	err = s.donations.Transition(ctx, donationID, lifecycle.StatusPending, gateway.TransitionFields{
		Status:     lifecycle.StatusCollected,
		ReceiverID: &receiverID,
		PickupTime: &pickup,
	})
	if errors.Is(err, gateway.ErrConflict) {
		return nil, lifecycle.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	if err := s.donations.AppendCollectionLog(ctx, donationID, receiverID, pickup, nil); err != nil {
		slog.Error("collection log append failed",
			"action", "claim",
			"donation_id", donationID.String(),
			"user_id", receiverID.String(),
			"error", err.Error())
	}

	d.Status = string(lifecycle.StatusCollected)
	d.ReceiverID = &receiverID
	d.PickupTime = &pickup
	return d, nil
}

// Deliver performs the collected -> delivered transition for the owning donor.
func (s *DonationService) Deliver(ctx context.Context, role lifecycle.Role, donorID, donationID uuid.UUID) error {
	d, err := s.donations.Get(ctx, donationID)
	if err != nil {
		return err
	}

	if err := lifecycle.ValidateDeliver(role, donorID, d); err != nil {
		return err
	}

	err = s.donations.Transition(ctx, donationID, lifecycle.StatusCollected, gateway.TransitionFields{
		Status: lifecycle.StatusDelivered,
	})
	if errors.Is(err, gateway.ErrConflict) {
		return lifecycle.ErrInvalidTransition
	}
	return err
}

// Delete removes a pending donation owned by the donor.
func (s *DonationService) Delete(ctx context.Context, role lifecycle.Role, donorID, donationID uuid.UUID) error {
	d, err := s.donations.Get(ctx, donationID)
	if err != nil {
		return err
	}

	if err := lifecycle.ValidateDelete(role, donorID, d); err != nil {
		return err
	}

	return s.donations.Delete(ctx, donationID)
}

// ForDonor lists the donor's own donations with per-status counts for the
// dashboard strip.
func (s *DonationService) ForDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, StatusCounts, error) {
	donations, err := s.donations.ListByOwner(ctx, donorID)
	if err != nil {
		return nil, StatusCounts{}, err
	}
	return donations, countStatuses(donations), nil
}

// ForReceiver lists the donations the receiver has collected.
func (s *DonationService) ForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.Donation, StatusCounts, error) {
	donations, err := s.donations.ListByReceiver(ctx, receiverID)
	if err != nil {
		return nil, StatusCounts{}, err
	}
	return donations, countStatuses(donations), nil
}

// StatusCounts is the dashboard stats strip.
type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Collected int `json:"collected"`
	Delivered int `json:"delivered"`
}

func countStatuses(donations []models.Donation) StatusCounts {
	c := StatusCounts{Total: len(donations)}
	for _, d := range donations {
		switch lifecycle.Status(d.Status) {
		case lifecycle.StatusPending:
			c.Pending++
		case lifecycle.StatusCollected:
			c.Collected++
		case lifecycle.StatusDelivered:
			c.Delivered++
		}
	}
	return c
}
