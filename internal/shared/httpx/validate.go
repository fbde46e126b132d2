package httpx

import (
	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys of validated request sections
const (
	bodyLocalsKey   = "httpx.validated.body"
	queryLocalsKey  = "httpx.validated.query"
	paramsLocalsKey = "httpx.validated.params"
)

// ValidateBody parses the JSON body into T, normalizes and validates it
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := new(T)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(in); err != nil {
				return apperrors.NewValidationError("Invalid request body",
					apperrors.ValidationErrors{{Message: "Malformed request body"}}).WithCause(err)
			}
		}
		if errs := validation.Validate(in); len(errs) > 0 {
			return apperrors.NewValidationError("Invalid request body", errs)
		}
		c.Locals(bodyLocalsKey, in)
		return c.Next()
	}
}

// ValidateQuery parses the query string into T, normalizes and validates it
func ValidateQuery[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := new(T)
		if err := c.QueryParser(in); err != nil {
			return apperrors.NewValidationError("Invalid query parameters",
				apperrors.ValidationErrors{{Message: "Malformed query string"}}).WithCause(err)
		}
		if errs := validation.Validate(in); len(errs) > 0 {
			return apperrors.NewValidationError("Invalid query parameters", errs)
		}
		c.Locals(queryLocalsKey, in)
		return c.Next()
	}
}

// ValidateParams parses route parameters into T, normalizes and validates it
func ValidateParams[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := new(T)
		if err := c.ParamsParser(in); err != nil {
			return apperrors.NewValidationError("Invalid URL parameters",
				apperrors.ValidationErrors{{Message: "Malformed URL parameters"}}).WithCause(err)
		}
		if errs := validation.Validate(in); len(errs) > 0 {
			return apperrors.NewValidationError("Invalid URL parameters", errs)
		}
		c.Locals(paramsLocalsKey, in)
		return c.Next()
	}
}

// Body returns the body validated by ValidateBody[T]
func Body[T any](c *fiber.Ctx) *T {
	return validated[T](c, bodyLocalsKey)
}

// Query returns the query validated by ValidateQuery[T]
func Query[T any](c *fiber.Ctx) *T {
	return validated[T](c, queryLocalsKey)
}

// Params returns the parameters validated by ValidateParams[T]
func Params[T any](c *fiber.Ctx) *T {
	return validated[T](c, paramsLocalsKey)
}

func validated[T any](c *fiber.Ctx, key string) *T {
	if v, ok := c.Locals(key).(*T); ok && v != nil {
		return v
	}
	return new(T)
}
