package dto

type UpdateProfileRequest struct {
	Name             string `json:"name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	OrganizationType string `json:"organization_type,omitempty"`
}

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
}

type AdminStatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	Donors         int64 `json:"donors"`
	Receivers      int64 `json:"receivers"`
	TotalDonations int64 `json:"total_donations"`
	Pending        int64 `json:"pending"`
	Collected      int64 `json:"collected"`
	Delivered      int64 `json:"delivered"`
}
