package internal

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeUpstream     ErrorType = "UPSTREAM_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrCodeWrongChannel     ErrorCode = "WRONG_CHANNEL"

	ErrCodeMissingOption ErrorCode = "MISSING_OPTION"
	ErrCodeInvalidDate   ErrorCode = "INVALID_DATE"
	ErrCodeInvalidDays   ErrorCode = "INVALID_DAYS"
	ErrCodeCardParse     ErrorCode = "CARD_PARSE_FAILED"

	ErrCodeSheetsUnavailable   ErrorCode = "SHEETS_UNAVAILABLE"
	ErrCodeDiscordUnavailable  ErrorCode = "DISCORD_UNAVAILABLE"
	ErrCodeCalendarUnavailable ErrorCode = "CALENDAR_UNAVAILABLE"
	ErrCodeReportsUnavailable  ErrorCode = "REPORTS_UNAVAILABLE"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// UserMessage renders the ephemeral text shown to the invoking user. It names
// the error category so operators can triage from a screenshot, but never
// includes a stack trace.
func (e *AppError) UserMessage() string {
	if e.Type == ErrorTypeUpstream && e.Cause != nil {
		return fmt.Sprintf("❌ %s (%s: %v)", e.Message, e.Type, e.Cause)
	}
	return fmt.Sprintf("❌ %s", e.Message)
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewUpstreamError wraps a failure from Sheets, Discord or Calendar. The
// request is never retried automatically; the user re-invokes the command.
func NewUpstreamError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstream,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var ErrInvalidSignature = NewUnauthorizedError("invalid request signature", ErrCodeInvalidSignature)

// IsAppError matches through wrapped causes, so a gateway error that picked up
// fmt.Errorf context on the way up still renders its category.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
