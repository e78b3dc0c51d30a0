package handlers

import (
	"strings"

	"servicehub/internal/core/services"
	"servicehub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles review and complaint endpoints
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// ReviewRequest represents a review
type ReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review" validate:"required"`
}

// ComplaintRequest represents a complaint about a provider
type ComplaintRequest struct {
	ProviderID uint   `json:"provider_id" validate:"required"`
	Complaint  string `json:"complaint" validate:"required"`
}

// ListReviews handles the public review listing
// @Summary List reviews
// @Description Latest review of every reviewer, newest first
// @Tags Feedback
// @Produce json
// @Success 200 {object} response.Response
// @Router /reviews [get]
func (h *FeedbackHandler) ListReviews(c *fiber.Ctx) error {
	reviews, err := h.feedbackService.ListLatestPerReviewer(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to list reviews")
	}

	return response.Success(c, "Reviews retrieved successfully", fiber.Map{
		"reviews": reviews,
	})
}

// AddReview handles posting a review
// @Summary Post review
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReviewRequest true "Review"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reviews [post]
func (h *FeedbackHandler) AddReview(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	username, _ := c.Locals("username").(string)

	var req ReviewRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	review, err := h.feedbackService.AddReview(c.UserContext(), userID, username, req.Rating, strings.TrimSpace(req.Review))
	if err != nil {
		return respondError(c, err, "Failed to post review")
	}

	return response.Created(c, "Review posted successfully", fiber.Map{
		"review": review,
	})
}

// AddComplaint handles filing a complaint
// @Summary File complaint
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ComplaintRequest true "Complaint"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /complaints [post]
func (h *FeedbackHandler) AddComplaint(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ComplaintRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	complaint, err := h.feedbackService.AddComplaint(c.UserContext(), userID, req.ProviderID, strings.TrimSpace(req.Complaint))
	if err != nil {
		return respondError(c, err, "Failed to file complaint")
	}

	return response.Created(c, "Complaint filed successfully", fiber.Map{
		"complaint": complaint,
	})
}

// ListComplaints handles the admin complaint listing
// @Summary List complaints (Admin only)
// @Tags Admin Complaints
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/complaints [get]
func (h *FeedbackHandler) ListComplaints(c *fiber.Ctx) error {
	complaints, err := h.feedbackService.ListComplaints(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to list complaints")
	}

	return response.Success(c, "Complaints retrieved successfully", fiber.Map{
		"complaints": complaints,
	})
}

// ResolveComplaint handles marking a complaint resolved
// @Summary Resolve complaint (Admin only)
// @Tags Admin Complaints
// @Produce json
// @Security BearerAuth
// @Param id path int true "Complaint ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/complaints/{id}/resolve [post]
func (h *FeedbackHandler) ResolveComplaint(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid complaint ID")
	}

	if err := h.feedbackService.ResolveComplaint(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to resolve complaint")
	}

	return response.Success(c, "Complaint resolved", nil)
}
