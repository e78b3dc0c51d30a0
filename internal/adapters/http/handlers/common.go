package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"servicehub/internal/core/domain"
	"servicehub/internal/pkg/response"
	"servicehub/internal/pkg/sl"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// errorStatus maps domain sentinels to HTTP status codes; first match wins
var errorStatus = []struct {
	target error
	status int
}{
	{domain.ErrUserNotFound, fiber.StatusNotFound},
	{domain.ErrProviderNotFound, fiber.StatusNotFound},
	{domain.ErrComplaintNotFound, fiber.StatusNotFound},
	{domain.ErrNotFound, fiber.StatusNotFound},

	{domain.ErrUserAlreadyExists, fiber.StatusConflict},
	{domain.ErrProviderAlreadyExists, fiber.StatusConflict},
	{domain.ErrConcurrentUpdate, fiber.StatusConflict},
	{domain.ErrConflict, fiber.StatusConflict},

	{domain.ErrInvalidStatus, fiber.StatusBadRequest},
	{domain.ErrInvalidTransition, fiber.StatusBadRequest},
	{domain.ErrInvalidRole, fiber.StatusBadRequest},
	{domain.ErrInvalidRating, fiber.StatusBadRequest},
	{domain.ErrInvalidInput, fiber.StatusBadRequest},

	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized},
	{domain.ErrTokenInvalid, fiber.StatusUnauthorized},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized},

	{domain.ErrCannotDeleteSelf, fiber.StatusForbidden},
	{domain.ErrForbidden, fiber.StatusForbidden},
}

// respondError writes the response for a service error.
// Unknown errors are logged and reported as 500 with fallback as the message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return response.Error(c, e.status, e.target.Error())
		}
	}
	slog.Default().Error(fallback,
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		sl.Err(err),
	)
	return response.InternalServerError(c, fallback)
}

// bind parses the request body into dst and validates it.
// When it returns false a 400 response has already been written.
func bind(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, response.Validation(c, verrs)
		}
		return false, response.BadRequest(c, err.Error())
	}
	return true, nil
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the user id set by the auth middleware
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}
