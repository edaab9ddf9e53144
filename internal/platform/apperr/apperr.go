// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package apperr defines the centralized error handling framework for the portal.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Domain constructors for every failure the portal surfaces to users
    (EMAIL_IN_USE, EMAIL_NOT_VERIFIED, PROFILE_NOT_FOUND, UPLOAD_FAILED, ...).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses. Recovery is always user-driven: no layer retries on the
caller's behalf, so messages must tell the user what to do next.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the portal API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "EMAIL_IN_USE").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// RedirectTo is the SPA route the client should navigate to after this
	// error, when the route guard rejects a view for role reasons.
	RedirectTo string `json:"redirect_to,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Certificate") // Returns "Certificate not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Portal Taxonomy

// EmailInUse creates a 409 [AppError] for registration with a taken email.
func EmailInUse() *AppError {
	return &AppError{
		Code:       "EMAIL_IN_USE",
		Message:    "Email is already registered",
		HTTPStatus: http.StatusConflict,
	}
}

// WeakCredential creates a 400 [AppError] for a policy-rejected password.
func WeakCredential(msg string) *AppError {
	return &AppError{
		Code:       "WEAK_CREDENTIAL",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// EmailNotVerified creates a 403 [AppError] for sign-in before verification.
// The login view owns the resend-verification affordance, so the client is
// pointed back there.
func EmailNotVerified() *AppError {
	return &AppError{
		Code:       "EMAIL_NOT_VERIFIED",
		Message:    "Please verify your email address before logging in",
		HTTPStatus: http.StatusForbidden,
		RedirectTo: "/login",
	}
}

// ProfileNotFound creates a 404 [AppError] for a principal without a profile
// record (the dangling-registration case).
func ProfileNotFound() *AppError {
	return &AppError{
		Code:       "PROFILE_NOT_FOUND",
		Message:    "User profile not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// UploadFailed creates a 502 [AppError] carrying the blob transport failure.
func UploadFailed(cause error) *AppError {
	return &AppError{
		Code:       "UPLOAD_FAILED",
		Message:    "Certificate upload failed. Please try again",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// QueryFailed creates a 502 [AppError] for document-store read failures.
func QueryFailed(cause error) *AppError {
	return &AppError{
		Code:       "QUERY_FAILED",
		Message:    "Could not load records. Please try again",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// RoleRedirect creates a 403 [AppError] that points the client at its own
// dashboard. Used when an authenticated, verified user requests a view
// outside their role set — deliberately distinct from the login redirect so
// "wrong role" is never confused with "no session".
func RoleRedirect(ownDashboard string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    "This view is not available for your role",
		HTTPStatus: http.StatusForbidden,
		RedirectTo: ownDashboard,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsCode reports whether err carries the given machine-readable code.
func IsCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// IsNotFound reports whether err is a 404-class [AppError].
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.HTTPStatus == http.StatusNotFound
}
