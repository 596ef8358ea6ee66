// Package relay implements the status event relay core: it validates
// inbound status-change requests, wraps them in canonical event
// envelopes, and hands them to a cross-account bus publisher.
package relay

import "time"

// HealthStatus is the operator-declared health state of a service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"
)

// Valid reports whether s is one of the two allowed literals.
// Matching is case-sensitive; "healthy" is not a valid status.
func (s HealthStatus) Valid() bool {
	return s == HealthStatusHealthy || s == HealthStatusUnhealthy
}

// StatusChangeRequest is the caller's input for one status change.
// It is created per incoming call and never persisted.
type StatusChangeRequest struct {
	HealthStatus HealthStatus `json:"healthStatus"`
	ServiceID    string       `json:"serviceId,omitempty"`
	Description  string       `json:"description,omitempty"`
}

// ServiceIdentity identifies the reporting service. ID is a stable
// identifier from configuration, constant across all events emitted by
// this relay; it is never taken from request input.
type ServiceIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StatusChangeDetail is the payload carried inside an envelope's
// Detail field.
type StatusChangeDetail struct {
	HealthStatus HealthStatus `json:"healthStatus"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	ObservedAt   time.Time    `json:"observedAt"`
}

// EventEnvelope is the canonical outbound unit. It is created once per
// logical status change by the EnvelopeBuilder, consumed by the
// publisher, and never mutated after handoff. The same envelope (and
// EventID) is reused across retries of a single publish call; only a
// genuinely new status change mints a new id.
type EventEnvelope struct {
	EventID    string
	Source     string
	DetailType string
	Detail     string
	BusName    string
	Timestamp  time.Time
}

// DeliveryOutcome is the final result of one publish call, aggregated
// over all attempts.
type DeliveryOutcome struct {
	Succeeded     bool
	RemoteEventID string
	Attempts      int
	Err           *Error
}

// Receipt is returned to the caller on successful delivery.
type Receipt struct {
	EventID       string `json:"eventId"`
	RemoteEventID string `json:"remoteEventId"`
}
