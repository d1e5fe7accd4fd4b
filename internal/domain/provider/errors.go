// internal/domain/provider/errors.go
package provider

import (
	"errors"
	"fmt"
)

// Shared error taxonomy. Adapters map provider-native error codes onto these
// sentinels so the orchestrator and dispatcher can react uniformly.
var (
	// ErrProviderUnavailable covers transport failures and timeouts. Recoverable
	// at the next search; never retried synchronously within one orchestration.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderAuthFailed signals a credential problem that operators must fix
	ErrProviderAuthFailed = errors.New("provider authentication failed")

	// ErrProviderResponseInvalid signals a schema mismatch in the provider reply
	ErrProviderResponseInvalid = errors.New("provider response invalid")

	// ErrProviderNotConfigured is a caller error, rejected before any network call
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrBookingRejected means the provider declined the reservation
	ErrBookingRejected = errors.New("booking rejected by provider")

	// ErrAvailabilityChanged means the item is no longer available; the caller
	// must re-search rather than retry the same item
	ErrAvailabilityChanged = errors.New("item availability changed")
)

// KindOf returns the short taxonomy label for an error, or "unknown"
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, ErrProviderAuthFailed):
		return "auth_failed"
	case errors.Is(err, ErrProviderResponseInvalid):
		return "response_invalid"
	case errors.Is(err, ErrProviderNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrBookingRejected):
		return "booking_rejected"
	case errors.Is(err, ErrAvailabilityChanged):
		return "availability_changed"
	}
	return "unknown"
}

// Error wraps a taxonomy sentinel with provider identity and the provider's
// own reason text
type Error struct {
	Provider string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Provider, e.Err, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a wrapped provider error
func NewError(providerName string, sentinel error, reason string) *Error {
	return &Error{Provider: providerName, Reason: reason, Err: sentinel}
}
