package response

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestIDLocalsKey is where the request-ID middleware stores the id
const RequestIDLocalsKey = "requestid"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrorBody is the error section of an envelope
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta carries response metadata
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Envelope is the uniform body of every JSON response
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Meta       Meta        `json:"meta"`
}

// PageRequest is the input to Paginated
type PageRequest struct {
	Page  int
	Limit int
	Total int64
}

// NewPagination derives page counts from page, limit and total
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	p.HasNext = page < p.TotalPages
	p.HasPrev = page > 1
	return p
}

// NewMeta builds the metadata block for the current request
func NewMeta(c *fiber.Ctx) Meta {
	meta := Meta{Timestamp: time.Now().UTC().Format(timestampLayout)}
	if c != nil {
		if id, ok := c.Locals(RequestIDLocalsKey).(string); ok {
			meta.RequestID = id
		}
	}
	return meta
}

// Success sends a 200 envelope
func Success(c *fiber.Ctx, data interface{}, message string) error {
	return SuccessWithStatus(c, fiber.StatusOK, data, message)
}

// SuccessWithStatus sends a success envelope with an explicit status
func SuccessWithStatus(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    NewMeta(c),
	})
}

// Created sends a 201 envelope
func Created(c *fiber.Ctx, data interface{}, message string) error {
	if message == "" {
		message = "Created successfully"
	}
	return SuccessWithStatus(c, fiber.StatusCreated, data, message)
}

// NoContent sends an empty 204
func NoContent(c *fiber.Ctx) error {
	c.Status(fiber.StatusNoContent)
	return nil
}

// Paginated sends a 200 envelope with pagination metadata
func Paginated(c *fiber.Ctx, data interface{}, page PageRequest, message string) error {
	p := NewPagination(page.Page, page.Limit, page.Total)
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &p,
		Meta:       NewMeta(c),
	})
}

// Error sends an error envelope
func Error(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return ErrorWithData(c, status, code, message, details, nil)
}

// ErrorWithData sends an error envelope that also carries data
func ErrorWithData(c *fiber.Ctx, status int, code, message string, details, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Data:    data,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: NewMeta(c),
	})
}
