// Package aierr defines the error taxonomy for the AI orchestration layer.
// Every failure that crosses a package boundary is one of the kinds below,
// carrying an HTTP status for the edge and a retryable flag for callers.
package aierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	// KindDisabled means the AI subsystem is switched off or has no
	// usable credential.
	KindDisabled Kind = "ai_disabled"
	// KindRateLimited means the upstream provider rejected the call
	// with a rate limit.
	KindRateLimited Kind = "rate_limited"
	// KindQuotaExceeded means the caller spent its daily budget.
	KindQuotaExceeded Kind = "quota_exceeded"
	// KindTimeout means the call exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindParseError means the model output yielded no usable JSON.
	KindParseError Kind = "parse_error"
	// KindProviderError covers upstream and transport failures.
	KindProviderError Kind = "provider_error"
	// KindNotFound means the referenced entity does not exist.
	KindNotFound Kind = "not_found"
)

// Error is the taxonomy error type.
type Error struct {
	Kind      Kind
	Message   string
	Detail    string
	Status    int
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithDetail returns a copy of the error carrying diagnostic detail.
func (e *Error) WithDetail(detail string) *Error {
	clone := *e
	clone.Detail = detail
	return &clone
}

// NewDisabled creates an ai_disabled error.
func NewDisabled(message string) *Error {
	return &Error{Kind: KindDisabled, Message: message, Status: http.StatusServiceUnavailable}
}

// NewRateLimited creates a rate_limited error.
func NewRateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message, Status: http.StatusTooManyRequests}
}

// NewQuotaExceeded creates a quota_exceeded error.
func NewQuotaExceeded(message string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message, Status: http.StatusTooManyRequests}
}

// NewTimeout creates a timeout error.
func NewTimeout(message string) *Error {
	return &Error{Kind: KindTimeout, Message: message, Status: http.StatusGatewayTimeout, Retryable: true}
}

// NewParseError creates a parse_error.
func NewParseError(message string) *Error {
	return &Error{Kind: KindParseError, Message: message, Status: http.StatusBadGateway}
}

// NewProviderError creates a provider_error.
func NewProviderError(message string) *Error {
	return &Error{Kind: KindProviderError, Message: message, Status: http.StatusBadGateway, Retryable: true}
}

// NewNotFound creates a not_found error.
func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Status: http.StatusNotFound}
}

// KindOf reports the kind of err. Errors outside the taxonomy are
// classified as provider errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProviderError
}

// IsRecoverable reports whether a feature may substitute a heuristic
// result for err instead of propagating it.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindProviderError, KindParseError:
		return true
	default:
		return false
	}
}

// From returns err as a taxonomy error, wrapping unknown errors as
// provider errors.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewProviderError(err.Error())
}
