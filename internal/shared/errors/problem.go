// Package errors renders failures as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem document.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
// The extension map is copied so templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

// RetryAfterExtension carries the number of seconds a client should wait.
// Responders mirror it into the Retry-After header.
const RetryAfterExtension = "retryAfterSeconds"

// WithRetryAfter marks the problem as retryable after the given number of seconds.
func (p ProblemDetail) WithRetryAfter(seconds int) ProblemDetail {
	return p.WithExtension(RetryAfterExtension, seconds)
}

const (
	TypeValidation    = "/problems/validation-error"
	TypeNotFound      = "/problems/not-found"
	TypeConflict      = "/problems/conflict"
	TypeInternal      = "/problems/internal-error"
	TypeUnauthorized  = "/problems/unauthorized"
	TypeBadRequest    = "/problems/bad-request"
	TypeUnprocessable = "/problems/unprocessable-entity"
	TypeUnavailable   = "/problems/service-unavailable"
	TypeInsufficient  = "/problems/insufficient-stock"
)

func template(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

// Problem templates. Callers specialize them with WithDetail and WithExtension.
var (
	ErrNotFound           = template(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrValidation         = template(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest         = template(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrConflict           = template(TypeConflict, "Conflict", http.StatusConflict)
	ErrInternal           = template(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
	ErrUnauthorized       = template(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrUnprocessable      = template(TypeUnprocessable, "Unprocessable Entity", http.StatusUnprocessableEntity)
	ErrServiceUnavailable = template(TypeUnavailable, "Service Unavailable", http.StatusServiceUnavailable)
	// ErrInsufficientStock is a conflict with the inventory's current state.
	ErrInsufficientStock = template(TypeInsufficient, "Insufficient Stock", http.StatusConflict)
)
