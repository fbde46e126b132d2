package httpx

import (
	"runtime/debug"
	"strings"
	"time"

	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/response"
	"lifeops/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// CORS header values
const (
	AllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	AllowedHeaders = "Content-Type, Authorization, X-Requested-With"
	corsMaxAge     = 86400
)

const panicStackLocalsKey = "httpx.panicStack"

// Recover turns panics into errors for the error handler. With captureStack the
// goroutine stack at the panic is kept for the error handler to report.
func Recover(captureStack bool) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: captureStack,
		StackTraceHandler: func(c *fiber.Ctx, _ interface{}) {
			c.Locals(panicStackLocalsKey, string(debug.Stack()))
		},
	})
}

// RequestID assigns or propagates X-Request-ID
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: response.RequestIDLocalsKey,
	})
}

// RequestContext copies the request id stored by RequestID onto c.UserContext()
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(response.RequestIDLocalsKey).(string); ok && id != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// CORS allows credentialed requests from the trusted origins
func CORS(origins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     AllowedMethods,
		AllowHeaders:     AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}

// EndPreflight answers any OPTIONS request that CORS let through with an empty 204
func EndPreflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return response.NoContent(c)
		}
		return c.Next()
	}
}

// SecurityHeaders adds the usual hardening headers
func SecurityHeaders(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if production {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	}
}

// TrustProxies makes c.IP() read X-Forwarded-For, but only on connections from one of
// proxies. Without proxies c.IP() is always the socket peer.
func TrustProxies(cfg *fiber.Config, proxies []string) {
	if len(proxies) == 0 {
		return
	}
	cfg.ProxyHeader = fiber.HeaderXForwardedFor
	cfg.EnableTrustedProxyCheck = true
	cfg.TrustedProxies = proxies
	cfg.EnableIPValidation = true
}

// RateLimitConfig bounds requests per client per window
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// Storage is optional; nil keeps counters in memory
	Storage fiber.Storage
}

// RateLimiter limits requests per client IP and route with a sliding window
func RateLimiter(cfg RateLimitConfig) fiber.Handler {
	lc := limiter.Config{
		Max:               cfg.Max,
		Expiration:        cfg.Window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewRateLimitError("")
		},
	}
	if cfg.Storage != nil {
		lc.Storage = cfg.Storage
	}
	return limiter.New(lc)
}
