package httpx

import (
	"errors"
	"fmt"

	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/logger"
	"lifeops/internal/shared/response"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler returns the single place where errors become envelopes.
// In development the error text and request body are exposed, plus the panic
// stack when Recover caught one.
func NewErrorHandler(log logger.Logger, development bool) fiber.ErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("http")

	return func(c *fiber.Ctx, err error) error {
		fields := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		}
		var stack string
		if development {
			stack, _ = c.Locals(panicStackLocalsKey).(string)
			if stack != "" {
				fields["stack"] = stack
			}
			if body := c.Body(); len(body) > 0 {
				fields["body"] = string(body)
			}
		}
		entry := log.WithContext(c.UserContext()).WithFields(fields)

		status, code, message, details := classify(err, development, stack)
		if status >= fiber.StatusInternalServerError {
			entry.Errorf("%s %s - %v", c.Method(), c.Path(), err)
		} else {
			entry.Warnf("%s %s - %v", c.Method(), c.Path(), err)
		}

		return response.Error(c, status, code, message, details)
	}
}

func classify(err error, development bool, stack string) (int, string, string, interface{}) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.HTTPCode, appErr.Code, appErr.Message, appErr.Details
	}

	var fieldErrs apperrors.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fiber.StatusBadRequest, apperrors.CodeValidation, "Validation failed", fieldErrs
	}

	if dbErr, ok := apperrors.AsDatabaseError(err); ok {
		switch dbErr.Kind {
		case apperrors.DatabaseErrorUniqueViolation:
			return fiber.StatusConflict, apperrors.CodeConflict, "A record with this value already exists", nil
		case apperrors.DatabaseErrorRecordNotFound:
			return fiber.StatusNotFound, apperrors.CodeNotFound, "Record not found", nil
		default:
			return fiber.StatusInternalServerError, apperrors.CodeDatabase, "Database error", nil
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErrorCode(fiberErr.Code), fiberErr.Message, nil
	}

	if development {
		if stack == "" {
			return fiber.StatusInternalServerError, apperrors.CodeInternal, err.Error(), nil
		}
		return fiber.StatusInternalServerError, apperrors.CodeInternal, err.Error(), fiber.Map{"stack": stack}
	}
	return fiber.StatusInternalServerError, apperrors.CodeInternal, "An unexpected error occurred", nil
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	case fiber.StatusUnauthorized:
		return apperrors.CodeAuthentication
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound:
		return apperrors.CodeRouteNotFound
	case fiber.StatusTooManyRequests:
		return apperrors.CodeRateLimit
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUpgradeRequired:
		return "UPGRADE_REQUIRED"
	default:
		if status >= fiber.StatusInternalServerError {
			return apperrors.CodeInternal
		}
		return "HTTP_ERROR"
	}
}

// NotFound is the terminal handler for unmatched routes
func NotFound() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return response.Error(c, fiber.StatusNotFound, apperrors.CodeRouteNotFound,
			fmt.Sprintf("Route %s %s not found", c.Method(), c.Path()), nil)
	}
}
