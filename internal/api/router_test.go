package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusrelay/statusrelay/internal/api"
	"github.com/statusrelay/statusrelay/internal/relay"
)

const testBusARN = "arn:aws:events:us-east-1:936471194299:event-bus/Outage"

type recordingPublisher struct {
	published []relay.EventEnvelope
	outcome   relay.DeliveryOutcome
	err       error
}

func (f *recordingPublisher) Publish(_ context.Context, env relay.EventEnvelope) (relay.DeliveryOutcome, error) {
	f.published = append(f.published, env)
	return f.outcome, f.err
}

func newTestRouter(pub *recordingPublisher) http.Handler {
	builder := relay.NewEnvelopeBuilder(relay.EnvelopeBuilderConfig{
		Source:     "team.status",
		DetailType: "Service Health Change",
		BusName:    testBusARN,
		Identity:   relay.ServiceIdentity{ID: "svc-1", Name: "checkout"},
	})
	service := relay.NewService(relay.ServiceConfig{
		Builder:   builder,
		Publisher: pub,
		Logger:    zerolog.Nop(),
	})
	return api.NewRouter(api.RouterConfig{
		Version:        "test",
		BuildTime:      "test",
		Logger:         zerolog.Nop(),
		RelayService:   service,
		DestinationBus: testBusARN,
	})
}

func TestRouter_StatusDeliveredEndToEnd(t *testing.T) {
	pub := &recordingPublisher{
		outcome: relay.DeliveryOutcome{Succeeded: true, RemoteEventID: "remote-1", Attempts: 1},
	}
	router := newTestRouter(pub)

	req := httptest.NewRequest(http.MethodPost, "/v1/status",
		strings.NewReader(`{"healthStatus":"UNHEALTHY"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body struct {
		EventID       string `json:"eventId"`
		RemoteEventID string `json:"remoteEventId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.EventID)
	assert.Equal(t, "remote-1", body.RemoteEventID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, testBusARN, pub.published[0].BusName)
}

func TestRouter_StatusRejectedEndToEnd(t *testing.T) {
	pub := &recordingPublisher{}
	router := newTestRouter(pub)

	req := httptest.NewRequest(http.MethodPost, "/v1/status",
		strings.NewReader(`{"healthStatus":"DEGRADED"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"),
		"error responses carry CORS headers for the browser caller")
	assert.Empty(t, pub.published)
}

func TestRouter_PreflightAnswered(t *testing.T) {
	router := newTestRouter(&recordingPublisher{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/status", http.NoBody)
	req.Header.Set("Origin", "https://status.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestRouter_OpsEndpoints(t *testing.T) {
	router := newTestRouter(&recordingPublisher{})

	for _, path := range []string{"/v1/ops/health", "/v1/ops/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
