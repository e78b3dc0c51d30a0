package handlers

import (
	"errors"
	"fmt"
	"strings"

	"servicehub/internal/core/domain"
	"servicehub/internal/core/services"
	"servicehub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProviderHandler handles provider profile endpoints
type ProviderHandler struct {
	providerService   *services.ProviderService
	moderationService *services.ModerationService
	maxUploadBytes    int64
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(
	providerService *services.ProviderService,
	moderationService *services.ModerationService,
	maxUploadMB int,
) *ProviderHandler {
	return &ProviderHandler{
		providerService:   providerService,
		moderationService: moderationService,
		maxUploadBytes:    int64(maxUploadMB) << 20,
	}
}

// ProviderRequest represents the provider profile fields, sent as multipart form or JSON
type ProviderRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=100"`
	Service      string `json:"service" form:"service" validate:"required,max=100"`
	Contact      string `json:"contact" form:"contact" validate:"max=100"`
	Location     string `json:"location" form:"location" validate:"max=100"`
	Experience   string `json:"experience" form:"experience" validate:"max=100"`
	Availability string `json:"availability" form:"availability" validate:"max=100"`
	Rate         string `json:"rate" form:"rate" validate:"max=50"`
}

func (r *ProviderRequest) fields() domain.ProviderFields {
	return domain.ProviderFields{
		Name:         strings.TrimSpace(r.Name),
		Service:      strings.TrimSpace(r.Service),
		Contact:      strings.TrimSpace(r.Contact),
		Location:     strings.TrimSpace(r.Location),
		Experience:   strings.TrimSpace(r.Experience),
		Availability: strings.TrimSpace(r.Availability),
		Rate:         strings.TrimSpace(r.Rate),
	}
}

// Register handles provider profile creation
// @Summary Register provider profile
// @Description Create the caller's provider profile with an optional photo. New profiles are pending.
// @Tags Providers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param service formData string true "Service"
// @Param contact formData string false "Contact"
// @Param location formData string false "Location"
// @Param experience formData string false "Experience"
// @Param availability formData string false "Availability"
// @Param rate formData string false "Rate"
// @Param photo formData file false "Photo"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /providers [post]
func (h *ProviderHandler) Register(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ProviderRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	photo, closePhoto, err := h.photoFrom(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	defer closePhoto()

	provider, err := h.providerService.Register(c.UserContext(), userID, req.fields(), photo)
	if err != nil {
		return respondError(c, err, "Failed to register provider")
	}

	return response.Created(c, "Provider registered, awaiting approval", fiber.Map{
		"provider": provider,
	})
}

// UpdateMe handles updating the caller's provider profile
// @Summary Update own provider profile
// @Description Overwrite profile fields. Without a photo part the current photo is kept.
// @Tags Providers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param service formData string true "Service"
// @Param photo formData file false "Photo"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /providers/me [put]
func (h *ProviderHandler) UpdateMe(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ProviderRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	photo, closePhoto, err := h.photoFrom(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	defer closePhoto()

	provider, err := h.providerService.Update(c.UserContext(), userID, req.fields(), photo)
	if err != nil {
		return respondError(c, err, "Failed to update provider")
	}

	return response.Success(c, "Provider updated successfully", fiber.Map{
		"provider": provider,
	})
}

// Search handles the public provider search
// @Summary Search approved providers
// @Description Case-insensitive match on name, service or location. Only approved providers are returned.
// @Tags Providers
// @Produce json
// @Param search query string false "Search text"
// @Success 200 {object} response.Response
// @Router /providers [get]
func (h *ProviderHandler) Search(c *fiber.Ctx) error {
	providers, err := h.moderationService.SearchPublic(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, err, "Failed to search providers")
	}

	return response.Success(c, "Providers retrieved successfully", fiber.Map{
		"providers": providers,
	})
}

// GetByUser handles fetching the provider profile of an account
// @Summary Get provider by user
// @Tags Providers
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /providers/user/{userId} [get]
func (h *ProviderHandler) GetByUser(c *fiber.Ctx) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	provider, err := h.providerService.GetByUserID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get provider")
	}

	return response.Success(c, "Provider retrieved successfully", fiber.Map{
		"provider": provider,
	})
}

// AdminEdit handles admin edits of provider fields
// @Summary Edit provider (Admin only)
// @Tags Admin Providers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider ID"
// @Param body body ProviderRequest true "Provider fields"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/providers/{id} [put]
func (h *ProviderHandler) AdminEdit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid provider ID")
	}

	var req ProviderRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	provider, err := h.providerService.AdminEdit(c.UserContext(), id, req.fields())
	if err != nil {
		return respondError(c, err, "Failed to edit provider")
	}

	return response.Success(c, "Provider updated successfully", fiber.Map{
		"provider": provider,
	})
}

// Delete handles removing a provider and its owning account
// @Summary Delete provider (Admin only)
// @Tags Admin Providers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/providers/{id} [delete]
func (h *ProviderHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid provider ID")
	}

	if err := h.providerService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete provider")
	}

	return response.Success(c, "Provider deleted successfully", nil)
}

// photoFrom opens the optional "photo" part. A missing part yields a nil upload.
func (h *ProviderHandler) photoFrom(c *fiber.Ctx) (*services.PhotoUpload, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return nil, noop, nil
	}
	if fh.Size == 0 {
		return nil, noop, nil
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return nil, noop, fmt.Errorf("photo exceeds %d MB", h.maxUploadBytes>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, errors.New("cannot read photo")
	}

	return &services.PhotoUpload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
