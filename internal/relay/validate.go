package relay

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseRequest decodes and validates an inbound status-change body.
// It is a pure function of its input: on failure the publisher is
// never reached and no side effect has occurred.
func ParseRequest(body io.Reader) (StatusChangeRequest, error) {
	var req StatusChangeRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return StatusChangeRequest{}, WrapError(KindMalformedInput,
			"request body is not a valid status-change object", err)
	}

	if req.HealthStatus == "" {
		return StatusChangeRequest{}, NewError(KindMalformedInput,
			"healthStatus is required")
	}

	if !req.HealthStatus.Valid() {
		return StatusChangeRequest{}, NewError(KindInvalidStatusValue,
			fmt.Sprintf("healthStatus must be %q or %q",
				HealthStatusHealthy, HealthStatusUnhealthy))
	}

	return req, nil
}
