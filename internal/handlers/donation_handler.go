package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/dto"
	"github.com/zerowastechef/zwc-backend/internal/gateway"
	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
	"github.com/zerowastechef/zwc-backend/internal/middleware"
	"github.com/zerowastechef/zwc-backend/internal/models"
	"github.com/zerowastechef/zwc-backend/internal/services"
)

type DonationHandler struct {
	donationService *services.DonationService
	imageService    *services.ImageService
}

// NewDonationHandler builds the handler. imageService may be nil when
// Cloudinary is not configured; uploads then return 503.
func NewDonationHandler(donationService *services.DonationService, imageService *services.ImageService) *DonationHandler {
	return &DonationHandler{donationService: donationService, imageService: imageService}
}

// Create handles POST /donations - posts a new pending donation.
func (h *DonationHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.ExpiryHours < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "expiry_hours must be at least 1",
		})
	}

	in := lifecycle.CreateInput{
		DonorID:     actor.ID,
		ItemName:    req.ItemName,
		Quantity:    req.Quantity,
		Description: req.Description,
		FoodType:    req.FoodType,
		ExpiryTime:  time.Now().Add(time.Duration(req.ExpiryHours) * time.Hour),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
	}
	if req.ImageURL != "" {
		in.ImageURL = &req.ImageURL
	}

	d, err := h.donationService.Create(c.Context(), actor.Role, in)
	if err != nil {
		return donationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toDonationResponse(d))
}

// Claim handles POST /donations/:id/collect - the receiver claim action.
func (h *DonationHandler) Claim(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid donation ID",
		})
	}

	d, err := h.donationService.Claim(c.Context(), actor.Role, actor.ID, donationID)
	if err != nil {
		return donationError(c, err)
	}

	return c.JSON(toDonationResponse(d))
}

// Deliver handles POST /donations/:id/deliver - the donor finalize action.
func (h *DonationHandler) Deliver(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid donation ID",
		})
	}

	if err := h.donationService.Deliver(c.Context(), actor.Role, actor.ID, donationID); err != nil {
		return donationError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Donation marked as delivered"})
}

// Delete handles DELETE /donations/:id.
func (h *DonationHandler) Delete(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid donation ID",
		})
	}

	if err := h.donationService.Delete(c.Context(), actor.Role, actor.ID, donationID); err != nil {
		return donationError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Donation deleted"})
}

// Dashboard handles GET /donations/mine - the caller's own donations with
// per-status counts. Donors see what they posted, receivers what they
// collected.
func (h *DonationHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var (
		donations []models.Donation
		counts    services.StatusCounts
	)
	switch actor.Role {
	case lifecycle.RoleReceiver:
		donations, counts, err = h.donationService.ForReceiver(c.Context(), actor.ID)
	default:
		donations, counts, err = h.donationService.ForDonor(c.Context(), actor.ID)
	}
	if err != nil {
		return donationError(c, err)
	}

	responses := make([]dto.DonationResponse, len(donations))
	for i := range donations {
		responses[i] = toDonationResponse(&donations[i])
	}

	return c.JSON(dto.DashboardResponse{
		Donations: responses,
		Stats: dto.StatusCountsDTO{
			Total:     counts.Total,
			Pending:   counts.Pending,
			Collected: counts.Collected,
			Delivered: counts.Delivered,
		},
	})
}

// UploadImage handles POST /donations/image - uploads a donation photo and
// returns the hosted URL to include in a subsequent create request.
func (h *DonationHandler) UploadImage(c *fiber.Ctx) error {
	if h.imageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Image upload is not configured",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Image file is required",
		})
	}
	if file.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Image size must be less than 10MB",
		})
	}

	contentType := file.Header.Get("Content-Type")
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
	if !validTypes[contentType] {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid image format. Only JPEG, PNG and WebP are allowed",
		})
	}

	url, err := h.imageService.Upload(c.Context(), file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to upload image",
		})
	}

	return c.JSON(dto.UploadImageResponse{ImageURL: url})
}

// donationError maps lifecycle and gateway errors to HTTP statuses.
func donationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrPreconditionFailed):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, lifecycle.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, gateway.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Donation not found",
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

func toDonationResponse(d *models.Donation) dto.DonationResponse {
	resp := dto.DonationResponse{
		ID:          d.ID,
		DonorID:     d.DonorID,
		ItemName:    d.ItemName,
		Quantity:    d.Quantity,
		Description: d.Description,
		FoodType:    d.FoodType,
		ExpiryTime:  d.ExpiryTime,
		ImageURL:    d.ImageURL,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Address:     d.Address,
		Status:      d.Status,
		ReceiverID:  d.ReceiverID,
		PickupTime:  d.PickupTime,
		QRCode:      d.QRCode,
		CreatedAt:   d.CreatedAt,
	}
	if d.Donor != nil {
		resp.DonorName = d.Donor.Name
	}
	return resp
}
