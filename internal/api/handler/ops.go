package handler

import (
	"net/http"
	"time"

	"github.com/statusrelay/statusrelay/internal/api/models"
	"github.com/statusrelay/statusrelay/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	busName   string
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime, busName string) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		busName:   busName,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.OpsStatusOK,
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// relay is stateless, so readiness means a destination bus is
// configured.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.OpsStatusOK,
		Time:   time.Now(),
		Details: map[string]interface{}{
			"destinationBus": h.busName,
		},
	}
	if h.busName == "" {
		health.Status = models.OpsStatusFail
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}
