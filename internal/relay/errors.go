package relay

import (
	"errors"
	"fmt"
)

// Kind classifies a relay failure. Every failure is resolved into one
// of these kinds before it reaches the caller; no raw downstream error
// text is passed through uninterpreted.
type Kind string

const (
	// KindMalformedInput marks a request body that does not deserialize
	// to a status-change object. Caller error, never retried.
	KindMalformedInput Kind = "MALFORMED_INPUT"

	// KindInvalidStatusValue marks a healthStatus outside the allowed
	// enum. Caller error, never retried.
	KindInvalidStatusValue Kind = "INVALID_STATUS_VALUE"

	// KindCredentialAcquisitionFailed marks a failure to obtain
	// delivery credentials for the destination account. Fatal for the
	// call; repeating an expired-trust failure wastes the attempt
	// budget, so it is never retried.
	KindCredentialAcquisitionFailed Kind = "CREDENTIAL_ACQUISITION_FAILED"

	// KindTransient marks a timeout, throttle, or 5xx-class bus fault.
	// Retried up to the configured attempt budget.
	KindTransient Kind = "TRANSIENT"

	// KindPermanent marks an authorization denial, unknown destination,
	// or an envelope the bus rejected as malformed. Never retried.
	KindPermanent Kind = "PERMANENT"

	// KindAmbiguousDelivery marks a non-error bus response that carried
	// no remote event id. The event may have been delivered, but the
	// relay cannot prove it, so no success is reported.
	KindAmbiguousDelivery Kind = "AMBIGUOUS_DELIVERY"

	// KindRetriesExhausted marks a transient failure that survived the
	// full attempt budget.
	KindRetriesExhausted Kind = "RETRIES_EXHAUSTED"
)

// Retryable reports whether a failure of this kind may be retried.
func (k Kind) Retryable() bool {
	return k == KindTransient
}

// Error is a classified relay failure. Message is safe to return to
// the caller; the wrapped cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// NewError creates a classified error without an underlying cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error around an underlying cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the classification from err. Unclassified errors
// report KindPermanent so an unknown failure is never retried blindly.
func KindOf(err error) Kind {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Kind
	}
	return KindPermanent
}
