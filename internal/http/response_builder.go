// Package http exposes the tracker as a JSON API.
//
// This file implements the builder used by every handler to write JSON
// responses and the mapping from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"melodi/internal/core"
	"melodi/internal/habits"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the built response. A nil body is written as an empty
// response with no content type.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.data == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.data)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal","message":"encoding failed"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// Error codes carried in error bodies.
const (
	CodeBadRequest  = "bad_request"
	CodeValidation  = "validation"
	CodeNotFound    = "not_found"
	CodeConflict    = "conflict"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal"
	CodeMethod      = "method_not_allowed"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, message)
}

// ValidationError creates a 422 response naming the offending field.
func ValidationError(field, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Data(ErrorBody{Error: ErrorDetail{Code: CodeValidation, Message: message, Field: field}})
}

// FromError maps an error returned by the app to a response. Validation
// sentinels become 422, missing entities 404, stale habit transitions 409
// and anything else 500.
func FromError(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, core.ErrBlankText):
		return ValidationError("text", err.Error())
	case errors.Is(err, core.ErrInvalidAmount):
		return ValidationError("amount", err.Error())
	case errors.Is(err, core.ErrInvalidType):
		return ValidationError("type", err.Error())
	case errors.Is(err, habits.ErrStaleTransition):
		return ErrorResponse(http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error())
	default:
		return InternalServerError("internal error")
	}
}
