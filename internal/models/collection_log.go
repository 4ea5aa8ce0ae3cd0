package models

import (
	"time"

	"github.com/google/uuid"
)

// CollectionLog is an append-only audit record of a collection event. Rows are
// written once per successful claim and never updated or deleted.
type CollectionLog struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DonationID  uuid.UUID `gorm:"type:uuid;not null;index" json:"donation_id"`
	ReceiverID  uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	CollectedAt time.Time `gorm:"not null" json:"collected_at"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`

	Donation *Donation `gorm:"foreignKey:DonationID" json:"-"`
	Receiver *Profile  `gorm:"foreignKey:ReceiverID" json:"-"`
}
