package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/zerowastechef/zwc-backend/internal/dto"
	"github.com/zerowastechef/zwc-backend/internal/match"
	"github.com/zerowastechef/zwc-backend/internal/middleware"
	"github.com/zerowastechef/zwc-backend/internal/services"
)

type NearbyHandler struct {
	nearbyService  *services.NearbyService
	profileService *services.ProfileService
}

func NewNearbyHandler(nearbyService *services.NearbyService, profileService *services.ProfileService) *NearbyHandler {
	return &NearbyHandler{nearbyService: nearbyService, profileService: profileService}
}

// List handles GET /nearby - the receiver's browsing view. The viewer
// location comes from lat/lon query params, falling back to the profile's
// stored coordinates; with neither, distances are omitted.
func (h *NearbyHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	viewer := viewerFromQuery(c)
	if viewer == nil {
		if profile, err := h.profileService.Get(c.Context(), actor.ID); err == nil && profile.HasLocation() {
			viewer = &match.Point{Latitude: *profile.Latitude, Longitude: *profile.Longitude}
		}
	}

	order := match.OrderNewestFirst
	if c.Query("sort") == "distance" {
		order = match.OrderNearestFirst
	}

	results, err := h.nearbyService.Nearby(c.Context(), viewer, order)
	if err != nil {
		return donationError(c, err)
	}

	responses := make([]dto.NearbyDonationResponse, len(results))
	for i, r := range results {
		responses[i] = dto.NearbyDonationResponse{
			DonationResponse: toDonationResponse(&r.Donation),
			DistanceKm:       r.DistanceKm,
			TimeRemaining:    r.RemainingLabel(),
			Urgent:           r.Urgent,
		}
		if r.Donation.Donor != nil {
			responses[i].DonorOrganization = r.Donation.Donor.OrganizationType
		}
	}

	return c.JSON(dto.NearbyListResponse{Donations: responses, Total: len(responses)})
}

func viewerFromQuery(c *fiber.Ctx) *match.Point {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil
	}
	return &match.Point{Latitude: lat, Longitude: lon}
}
