package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/models"
	"github.com/zerowastechef/zwc-backend/internal/realtime"
)

const donationsTable = "donations"

// GormGateway implements Donations, Profiles and Stats over GORM/Postgres and
// publishes a change event to the hub after every committed mutation.
type GormGateway struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewGormGateway(db *gorm.DB, hub *realtime.Hub) *GormGateway {
	return &GormGateway{db: db, hub: hub}
}

func (g *GormGateway) Create(ctx context.Context, d *models.Donation) (uuid.UUID, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := g.db.WithContext(ctx).Create(d).Error; err != nil {
		return uuid.Nil, fmt.Errorf("%w: create donation: %v", ErrUnavailable, err)
	}
	g.publish(realtime.EventInsert, d.ID)
	return d.ID, nil
}

func (g *GormGateway) Get(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var d models.Donation
	err := g.db.WithContext(ctx).Preload("Donor").First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get donation: %v", ErrUnavailable, err)
	}
	return &d, nil
}

func (g *GormGateway) ListByStatus(ctx context.Context, status lifecycle.Status) ([]models.Donation, error) {
	var donations []models.Donation
	err := g.db.WithContext(ctx).
		Preload("Donor").
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list by status: %v", ErrUnavailable, err)
	}
	return donations, nil
}

func (g *GormGateway) ListByOwner(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error) {
	var donations []models.Donation
	err := g.db.WithContext(ctx).
		Preload("Receiver").
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list by owner: %v", ErrUnavailable, err)
	}
	return donations, nil
}

func (g *GormGateway) ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.Donation, error) {
	var donations []models.Donation
	err := g.db.WithContext(ctx).
		Preload("Donor").
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list by receiver: %v", ErrUnavailable, err)
	}
	return donations, nil
}

// Transition performs the conditional status update that resolves claim races:
// the UPDATE carries the expected source status in its WHERE clause, so of two
// concurrent claims at most one matches a row.
func (g *GormGateway) Transition(ctx context.Context, id uuid.UUID, expectedFrom lifecycle.Status, fields TransitionFields) error {
	updates := map[string]interface{}{
		"status":     string(fields.Status),
		"updated_at": time.Now().UTC(),
	}
	if fields.ReceiverID != nil {
		updates["receiver_id"] = *fields.ReceiverID
	}
	if fields.PickupTime != nil {
		updates["pickup_time"] = *fields.PickupTime
	}

	result := g.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, string(expectedFrom)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("%w: transition: %v", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a lost race from a missing row.
		var count int64
		if err := g.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: transition recheck: %v", ErrUnavailable, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	g.publish(realtime.EventUpdate, id)
	return nil
}

func (g *GormGateway) AppendCollectionLog(ctx context.Context, donationID, receiverID uuid.UUID, collectedAt time.Time, notes *string) error {
	log := models.CollectionLog{
		ID:          uuid.New(),
		DonationID:  donationID,
		ReceiverID:  receiverID,
		CollectedAt: collectedAt,
		Notes:       notes,
	}
	if err := g.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("%w: append collection log: %v", ErrUnavailable, err)
	}
	return nil
}

func (g *GormGateway) Delete(ctx context.Context, id uuid.UUID) error {
	result := g.db.WithContext(ctx).Delete(&models.Donation{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("%w: delete donation: %v", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	g.publish(realtime.EventDelete, id)
	return nil
}

func (g *GormGateway) publish(kind realtime.EventKind, id uuid.UUID) {
	if g.hub != nil {
		g.hub.Publish(realtime.Event{Table: donationsTable, Kind: kind, RecordID: id})
	}
}

// --- Profiles ---

func (g *GormGateway) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get profile: %v", ErrUnavailable, err)
	}
	return &p, nil
}

func (g *GormGateway) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := g.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("%w: update profile: %v", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormGateway) CountProfilesByType(ctx context.Context, userType string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Profile{}).Where("user_type = ?", userType).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count profiles: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (g *GormGateway) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&models.Profile{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: count profiles: %v", ErrUnavailable, err)
	}
	return count, nil
}

// --- Stats ---

func (g *GormGateway) CountDonations(ctx context.Context) (int64, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&models.Donation{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: count donations: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (g *GormGateway) CountDonationsByStatus(ctx context.Context, status lifecycle.Status) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Donation{}).Where("status = ?", string(status)).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count donations: %v", ErrUnavailable, err)
	}
	return count, nil
}
