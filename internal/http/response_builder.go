// Package http exposes the fintrack services as a JSON API.
//
// This file implements a small builder for JSON responses so every handler
// writes status, headers and body the same way.

package http

import (
	"net/http"

	"github.com/goccy/go-json"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
	raw        []byte
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets a value to be encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json"
	b.payload = v
	b.raw = nil
	return b
}

// Body sets a pre-rendered body. The caller sets Content-Type.
func (b *ResponseBuilder) Body(content []byte) *ResponseBuilder {
	b.raw = content
	b.payload = nil
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	body := b.raw
	if b.payload != nil {
		encoded, err := json.Marshal(b.payload)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"Internal server error"}`))
			return
		}
		body = encoded
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(body) > 0 && b.statusCode != http.StatusNoContent {
		_, _ = w.Write(body)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

// ErrorResponse creates an error response with a {"detail": ...} body.
func ErrorResponse(statusCode int, detail string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Detail: detail})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(detail string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, detail)
}

// UnauthorizedError creates a 401 response carrying a bearer challenge.
func UnauthorizedError(detail string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, detail).Header("WWW-Authenticate", "Bearer")
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(detail string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, detail)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError() *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "Method Not Allowed")
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(detail string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, detail)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// NoContent creates an empty 204 response.
func NoContent() *ResponseBuilder {
	return NewResponse().Status(http.StatusNoContent)
}
