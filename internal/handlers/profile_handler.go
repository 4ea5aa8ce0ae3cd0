package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/zerowastechef/zwc-backend/internal/dto"
	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/middleware"
	"github.com/zerowastechef/zwc-backend/internal/models"
	"github.com/zerowastechef/zwc-backend/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get handles GET /profile - the caller's own profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.profileService.Get(c.Context(), actor.ID)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(toProfileResponse(profile))
}

// Update handles PUT /profile - editable fields only; user_type never changes.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	profile, err := h.profileService.Update(c.Context(), actor.ID, &req)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) || errors.Is(err, gateway.ErrUnavailable) {
			return profileError(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(toProfileResponse(profile))
}

// UpdateLocation handles PUT /profile/location - stores confirmed coordinates.
func (h *ProfileHandler) UpdateLocation(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Latitude == nil || req.Longitude == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "latitude and longitude are required",
		})
	}

	profile, err := h.profileService.UpdateLocation(c.Context(), actor.ID, *req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		return profileError(c, err)
	}
	return c.JSON(toProfileResponse(profile))
}

func profileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Profile not found",
		})
	case errors.Is(err, gateway.ErrUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Backend temporarily unavailable",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}

func toProfileResponse(p *models.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:               p.ID,
		Email:            p.Email,
		Name:             p.Name,
		UserType:         p.UserType,
		Phone:            p.Phone,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Address:          p.Address,
		OrganizationType: p.OrganizationType,
		Verified:         p.Verified,
		CreatedAt:        p.CreatedAt,
	}
}
