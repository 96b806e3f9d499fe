// Package response provides standardized HTTP response structures and helpers
// for the minerals API server. All API responses use one envelope: a data
// field for success and an error field for failures.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/logging"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; encoding errors are best effort.
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Created writes a successful response with 201 status.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusUnauthorized, Fail("UNAUTHORIZED", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// PayloadTooLarge writes a 413 error response.
func PayloadTooLarge(w http.ResponseWriter, message string) {
	JSON(w, http.StatusRequestEntityTooLarge, Fail("PAYLOAD_TOO_LARGE", "Request body too large", message))
}

// BadGateway writes a 502 error response for a failed upstream service.
func BadGateway(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadGateway, Fail("UPSTREAM_ERROR", message, details))
}

// InternalError writes a 500 error response. The error itself is never sent
// to the client; log it before calling.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(
		"SERVICE_UNAVAILABLE",
		"Service unavailable",
		message,
	))
}

// ErrorFromType maps typed errors to appropriate HTTP responses.
//
//	not found           404
//	validation          400
//	unauthorized        401
//	upstream service    502
//	storage, internal   500 with a generic message
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		validation *errors.ValidationError
		parse      *errors.ParseError
		process    *errors.ProcessError
	)
	switch {
	case errors.IsNotFound(err):
		NotFound(w, err.Error(), "")
	case errors.As(err, &validation):
		BadRequest(w, validation.Message, validation.Field)
	case errors.IsValidationError(err):
		BadRequest(w, err.Error(), "")
	case errors.IsUnauthorized(err):
		Unauthorized(w, err.Error(), "")
	case errors.IsProviderUnavailable(err), errors.As(err, &parse), errors.As(err, &process):
		BadGateway(w, "Upstream service failed", err.Error())
	default:
		InternalError(w, err)
	}
}

// Err logs err on the request logger and writes the mapped response.
// Client-side failures log at warn; everything else at error.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())
	if errors.IsNotFound(err) || errors.IsValidationError(err) || errors.IsUnauthorized(err) {
		logger.Warn().Err(err).Msg("Request rejected")
	} else {
		logger.Error().Err(err).Msg("Request failed")
	}
	ErrorFromType(w, err)
}
