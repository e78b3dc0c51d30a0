package handlers

import (
	"strings"

	"servicehub/internal/core/services"
	"servicehub/internal/pkg/pagination"
	"servicehub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ModerationHandler handles the admin moderation endpoints
type ModerationHandler struct {
	moderationService *services.ModerationService
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
	}
}

// SetStatusRequest represents a moderation decision
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// List handles listing providers by status
// @Summary List providers (Admin only)
// @Tags Admin Providers
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/providers [get]
func (h *ModerationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))

	result, err := h.moderationService.ListByStatus(c.UserContext(), status, params.Page, params.Limit)
	if err != nil {
		return respondError(c, err, "Failed to list providers")
	}

	return response.Success(c, "Providers retrieved successfully", result)
}

// Stats handles provider counts per status
// @Summary Provider statistics (Admin only)
// @Tags Admin Providers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/providers/stats [get]
func (h *ModerationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.moderationService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to get provider stats")
	}

	return response.Success(c, "Stats retrieved successfully", stats)
}

// Approve handles approving a provider
// @Summary Approve provider (Admin only)
// @Tags Admin Providers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/providers/{id}/approve [post]
func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, func(providerID, adminID uint) (interface{}, error) {
		return h.moderationService.Approve(c.UserContext(), providerID, adminID)
	}, "Provider approved")
}

// Reject handles rejecting a provider
// @Summary Reject provider (Admin only)
// @Tags Admin Providers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/providers/{id}/reject [post]
func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, func(providerID, adminID uint) (interface{}, error) {
		return h.moderationService.Reject(c.UserContext(), providerID, adminID)
	}, "Provider rejected")
}

// SetStatus handles an explicit status change
// @Summary Set provider status (Admin only)
// @Tags Admin Providers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider ID"
// @Param body body SetStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/providers/{id}/status [put]
func (h *ModerationHandler) SetStatus(c *fiber.Ctx) error {
	var req SetStatusRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))

	return h.decide(c, func(providerID, adminID uint) (interface{}, error) {
		return h.moderationService.SetStatus(c.UserContext(), providerID, adminID, status)
	}, "Provider status updated")
}

// History handles listing the moderation events of a provider
// @Summary Moderation history (Admin only)
// @Tags Admin Providers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Provider ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/providers/{id}/history [get]
func (h *ModerationHandler) History(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid provider ID")
	}

	events, err := h.moderationService.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to get moderation history")
	}

	return response.Success(c, "History retrieved successfully", fiber.Map{
		"events": events,
	})
}

func (h *ModerationHandler) decide(c *fiber.Ctx, apply func(providerID, adminID uint) (interface{}, error), message string) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid provider ID")
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	provider, err := apply(id, adminID)
	if err != nil {
		return respondError(c, err, "Failed to update provider status")
	}

	return response.Success(c, message, fiber.Map{
		"provider": provider,
	})
}
