package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDonationRequest struct {
	ItemName    string   `json:"item_name"`
	Quantity    string   `json:"quantity"`
	Description string   `json:"description,omitempty"`
	FoodType    string   `json:"food_type"`
	ExpiryHours int      `json:"expiry_hours"`
	ImageURL    string   `json:"image_url,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address"`
}

type DonationResponse struct {
	ID          uuid.UUID  `json:"id"`
	DonorID     uuid.UUID  `json:"donor_id"`
	DonorName   string     `json:"donor_name,omitempty"`
	ItemName    string     `json:"item_name"`
	Quantity    string     `json:"quantity"`
	Description string     `json:"description,omitempty"`
	FoodType    string     `json:"food_type"`
	ExpiryTime  time.Time  `json:"expiry_time"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Address     string     `json:"address"`
	Status      string     `json:"status"`
	ReceiverID  *uuid.UUID `json:"receiver_id,omitempty"`
	PickupTime  *time.Time `json:"pickup_time,omitempty"`
	QRCode      string     `json:"qr_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NearbyDonationResponse is one card in the receiver's browsing view:
// the donation plus its per-viewer distance and urgency annotations.
type NearbyDonationResponse struct {
	DonationResponse
	DonorOrganization *string  `json:"donor_organization,omitempty"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	TimeRemaining     string   `json:"time_remaining"`
	Urgent            bool     `json:"urgent"`
}

type NearbyListResponse struct {
	Donations []NearbyDonationResponse `json:"donations"`
	Total     int                      `json:"total"`
}

type DashboardResponse struct {
	Donations []DonationResponse `json:"donations"`
	Stats     StatusCountsDTO    `json:"stats"`
}

type StatusCountsDTO struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Collected int `json:"collected"`
	Delivered int `json:"delivered"`
}

type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}
