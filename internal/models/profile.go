package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a user account. UserType is assigned at signup and never changes.
type Profile struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string         `gorm:"not null" json:"-"`
	Name             string         `gorm:"not null;size:255" json:"name"`
	UserType         string         `gorm:"size:20;not null;index" json:"user_type"`
	Phone            *string        `gorm:"size:20" json:"phone,omitempty"`
	Latitude         *float64       `json:"latitude,omitempty"`
	Longitude        *float64       `json:"longitude,omitempty"`
	Address          *string        `gorm:"type:text" json:"address,omitempty"`
	OrganizationType *string        `gorm:"size:50" json:"organization_type,omitempty"`
	Verified         bool           `gorm:"default:false" json:"verified"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// Donor subtypes: hotel, event, canteen, household.
// Receiver subtypes: ngo, individual, community.
var OrganizationTypes = map[string][]string{
	"donor":    {"hotel", "event", "canteen", "household"},
	"receiver": {"ngo", "individual", "community"},
}

// HasLocation reports whether the profile carries confirmed coordinates.
func (p *Profile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}
