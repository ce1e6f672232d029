package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewInvalidTransition signals a confirm/reject attempt on a
// reservation that is no longer pending. The operation is a no-op.
func NewInvalidTransition(reservationID, currentStatus string) error {
	return &DomainError{
		Code:       "INVALID_TRANSITION",
		Message:    "reservation is not pending",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"reservation_id": reservationID,
			"current_status": currentStatus,
		},
	}
}

// NewReservationNotFound signals an inbound relay or confirmation with
// no matching reservation record.
func NewReservationNotFound(details map[string]any) error {
	return &DomainError{
		Code:       "RESERVATION_NOT_FOUND",
		Message:    "reservation not found",
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewProvisioningFailed wraps a relay number acquisition failure. The
// reservation stays confirmed; the relay is unavailable.
func NewProvisioningFailed(areaCode string, err error) error {
	return &DomainError{
		Code:       "PROVISIONING_FAILED",
		Message:    "relay number provisioning failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"area_code": areaCode},
		Err:        err,
	}
}

// NewDispatchFailed wraps a hard notification provider failure.
func NewDispatchFailed(to string, err error) error {
	return &DomainError{
		Code:       "DISPATCH_FAILED",
		Message:    "notification dispatch failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"to": to},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
