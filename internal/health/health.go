// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"sync"
	"time"

	apperrors "lifeops/internal/shared/errors"
	"lifeops/internal/shared/logger"
	"lifeops/internal/shared/response"

	"github.com/gofiber/fiber/v2"
)

const (
	statusOK    = "ok"
	statusError = "error"

	defaultCheckTimeout = 5 * time.Second
	timestampLayout     = "2006-01-02T15:04:05.000Z07:00"
)

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) error

// Checker names a readiness probe
type Checker struct {
	Name  string
	Check CheckFunc
}

// Handler serves /health and /health/ready
type Handler struct {
	checkers []Checker
	started  time.Time
	timeout  time.Duration
	now      func() time.Time
	log      logger.Logger
}

// NewHandler creates a health handler; every checker runs on each readiness probe
func NewHandler(log logger.Logger, checkers ...Checker) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		checkers: checkers,
		started:  time.Now(),
		timeout:  defaultCheckTimeout,
		now:      time.Now,
		log:      log.WithComponent("health"),
	}
}

// RegisterRoutes mounts the probes on router
func (h *Handler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/health")
	group.Get("/", h.Live)
	group.Get("/ready", h.Ready)
}

// Live always answers 200 while the process serves requests
func (h *Handler) Live(c *fiber.Ctx) error {
	now := h.now()
	return response.Success(c, fiber.Map{
		"status":    statusOK,
		"timestamp": now.UTC().Format(timestampLayout),
		"uptime":    now.Sub(h.started).Seconds(),
	}, "")
}

// Ready runs every checker concurrently and answers 503 if any fails
func (h *Handler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	checks := h.run(ctx)
	ready := true
	for _, status := range checks {
		if status != statusOK {
			ready = false
		}
	}

	timestamp := h.now().UTC().Format(timestampLayout)
	if !ready {
		return response.ErrorWithData(c, fiber.StatusServiceUnavailable, apperrors.CodeServiceUnavailable,
			"Service not ready", nil, fiber.Map{
				"status":    "not ready",
				"timestamp": timestamp,
				"checks":    checks,
			})
	}
	return response.Success(c, fiber.Map{
		"status":    "ready",
		"timestamp": timestamp,
		"checks":    checks,
	}, "")
}

func (h *Handler) run(ctx context.Context) map[string]string {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]string, len(h.checkers))
	)
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(checker Checker) {
			defer wg.Done()
			status := statusOK
			if err := checker.Check(ctx); err != nil {
				status = statusError
				h.log.WithContext(ctx).Warnf("readiness check %s failed: %v", checker.Name, err)
			}
			mu.Lock()
			checks[checker.Name] = status
			mu.Unlock()
		}(checker)
	}
	wg.Wait()
	return checks
}
