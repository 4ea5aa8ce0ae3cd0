package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/dto"
	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/models"
)

var ErrImmutableRole = errors.New("user type cannot be changed")

// ProfileService handles profile reads and edits. The role is fixed at signup
// and never updatable through this service.
type ProfileService struct {
	profiles gateway.Profiles
}

func NewProfileService(profiles gateway.Profiles) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profiles.GetProfile(ctx, id)
}

// Update applies the editable profile fields. Empty strings leave a field
// untouched, mirroring the profile form's partial submits.
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	current, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.Address != "" {
		fields["address"] = req.Address
	}
	if req.OrganizationType != "" {
		if !validOrganizationType(current.UserType, req.OrganizationType) {
			return nil, fmt.Errorf("invalid organization type %q for %s", req.OrganizationType, current.UserType)
		}
		fields["organization_type"] = req.OrganizationType
	}

	if len(fields) > 0 {
		if err := s.profiles.UpdateProfile(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.profiles.GetProfile(ctx, id)
}

// UpdateLocation stores the confirmed coordinates (and derived address) from
// the client's geolocation flow.
func (s *ProfileService) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, address string) (*models.Profile, error) {
	if address == "" {
		address = fmt.Sprintf("Lat: %.6f, Long: %.6f", lat, lon)
	}
	fields := map[string]interface{}{
		"latitude":  lat,
		"longitude": lon,
		"address":   address,
	}
	if err := s.profiles.UpdateProfile(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.profiles.GetProfile(ctx, id)
}
