package handlers

import (
	"strings"

	"servicehub/internal/core/services"
	"servicehub/internal/pkg/pagination"
	"servicehub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account management endpoints
type UserHandler struct {
	accountService *services.AccountService
}

// NewUserHandler creates a new user handler
func NewUserHandler(accountService *services.AccountService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
	}
}

// SetRoleRequest represents a role change; an empty role unsets it
type SetRoleRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=client provider admin"`
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all accounts (Admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.accountService.ListAccounts(c.UserContext(), params.Page, params.Limit)
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// SetRole handles changing a user's role (Admin only)
// @Summary Set user role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "Role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetRoleRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.accountService.SetRole(c.UserContext(), id, strings.TrimSpace(req.Role))
	if err != nil {
		return respondError(c, err, "Failed to update role")
	}

	return response.Success(c, "Role updated successfully", fiber.Map{
		"user": user,
	})
}

// DeleteUser handles removing another account (Admin only)
// @Summary Delete user
// @Description Delete an account with its provider record and photo. Reviews and complaints are kept.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.accountService.RemoveAccount(c.UserContext(), id, adminID); err != nil {
		return respondError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// DeleteMe handles deleting the caller's own account
// @Summary Delete own account
// @Description Admin accounts cannot delete themselves.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /account [delete]
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.accountService.DeleteOwnAccount(c.UserContext(), userID); err != nil {
		return respondError(c, err, "Failed to delete account")
	}

	return response.Success(c, "Account deleted successfully", nil)
}
