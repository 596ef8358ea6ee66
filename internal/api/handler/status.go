// Package handler provides HTTP handlers for the status relay API.
package handler

import (
	"errors"
	"net/http"

	"github.com/statusrelay/statusrelay/internal/api/response"
	"github.com/statusrelay/statusrelay/internal/relay"
)

// StatusHandler handles the status-change submission endpoint.
type StatusHandler struct {
	relay *relay.Service
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(svc *relay.Service) *StatusHandler {
	return &StatusHandler{relay: svc}
}

// SubmitStatusChange handles POST /v1/status - relay one health status
// change to the event bus.
func (h *StatusHandler) SubmitStatusChange(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.relay.Submit(r.Context(), r.Body)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, receipt)
}

// writeFailure maps a classified relay failure to the caller contract:
// caller errors are 400, permanent and unprovable deliveries are 502,
// exhausted transient failures are 503.
func (h *StatusHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var relayErr *relay.Error
	if !errors.As(err, &relayErr) {
		response.InternalError(w, r, "status change could not be processed")
		return
	}

	switch relayErr.Kind {
	case relay.KindMalformedInput, relay.KindInvalidStatusValue:
		response.BadRequest(w, r, relayErr.Message, string(relayErr.Kind))
	case relay.KindTransient, relay.KindRetriesExhausted:
		response.ServiceUnavailable(w, r, string(relayErr.Kind))
	default:
		// CredentialAcquisitionFailed, Permanent, AmbiguousDelivery.
		response.BadGateway(w, r, string(relayErr.Kind))
	}
}
