package models

import (
	"time"

	"github.com/google/uuid"
)

// Donation is the central marketplace entity. Pickup coordinates and address
// are required at creation; ReceiverID and PickupTime are set atomically with
// the pending -> collected transition and immutable afterwards.
type Donation struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DonorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"donor_id"`
	ItemName    string     `gorm:"not null;size:255" json:"item_name"`
	Quantity    string     `gorm:"not null;size:255" json:"quantity"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	FoodType    string     `gorm:"size:20;not null" json:"food_type"`
	ExpiryTime  time.Time  `gorm:"not null;index" json:"expiry_time"`
	ImageURL    *string    `gorm:"type:text" json:"image_url,omitempty"`
	Latitude    float64    `gorm:"not null" json:"latitude"`
	Longitude   float64    `gorm:"not null" json:"longitude"`
	Address     string     `gorm:"type:text;not null" json:"address"`
	Status      string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReceiverID  *uuid.UUID `gorm:"type:uuid;index" json:"receiver_id,omitempty"`
	PickupTime  *time.Time `json:"pickup_time,omitempty"`
	QRCode      string     `gorm:"size:64" json:"qr_code,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Donor    *Profile `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Receiver *Profile `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

var FoodTypes = []string{"veg", "non-veg", "vegan"}

// ValidFoodType reports whether t is one of the accepted food categories.
func ValidFoodType(t string) bool {
	for _, f := range FoodTypes {
		if f == t {
			return true
		}
	}
	return false
}
