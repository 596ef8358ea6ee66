// Package models provides wire models for the status relay API.
package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response. All API errors are
// returned with Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference identifying the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// ErrorKind is the relay's failure classification, when the error
	// originated in the delivery pipeline.
	ErrorKind string `json:"errorKind,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation      = "https://statusrelay.dev/problems/validation-error"
	ProblemTypeTooManyRequests = "https://statusrelay.dev/problems/too-many-requests"
	ProblemTypeInternal        = "https://statusrelay.dev/problems/internal-error"
	ProblemTypeBadGateway      = "https://statusrelay.dev/problems/delivery-failed"
	ProblemTypeUnavailable     = "https://statusrelay.dev/problems/delivery-unavailable"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail, errorKind string) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.ErrorKind = errorKind
	return p
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID)
	p.Detail = detail
	return p
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID)
	p.Detail = detail
	return p
}

// NewBadGateway creates a 502 Bad Gateway problem for permanent
// delivery failures.
func NewBadGateway(traceID, errorKind string) *Problem {
	p := NewProblem(ProblemTypeBadGateway, "Event delivery failed", http.StatusBadGateway, traceID)
	p.ErrorKind = errorKind
	return p
}

// NewServiceUnavailable creates a 503 Service Unavailable problem for
// transient delivery failures that exhausted their retry budget.
func NewServiceUnavailable(traceID, errorKind string) *Problem {
	p := NewProblem(ProblemTypeUnavailable, "Event delivery unavailable", http.StatusServiceUnavailable, traceID)
	p.ErrorKind = errorKind
	return p
}
