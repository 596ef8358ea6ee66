package models

import "time"

// OpsStatus is the health state of the relay process itself.
type OpsStatus string

const (
	OpsStatusOK   OpsStatus = "OK"
	OpsStatusFail OpsStatus = "FAIL"
)

// Health is the liveness/readiness response body.
type Health struct {
	Status  OpsStatus              `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}
