package relay_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/statusrelay/statusrelay/internal/relay"
)

func TestParseRequest_ValidStatuses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want relay.HealthStatus
	}{
		{
			name: "healthy",
			body: `{"healthStatus":"HEALTHY"}`,
			want: relay.HealthStatusHealthy,
		},
		{
			name: "unhealthy",
			body: `{"healthStatus":"UNHEALTHY"}`,
			want: relay.HealthStatusUnhealthy,
		},
		{
			name: "with optional fields",
			body: `{"healthStatus":"UNHEALTHY","serviceId":"svc-1","description":"db outage"}`,
			want: relay.HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := relay.ParseRequest(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("expected valid request, got %v", err)
			}
			if req.HealthStatus != tt.want {
				t.Errorf("expected healthStatus %q, got %q", tt.want, req.HealthStatus)
			}
		})
	}
}

func TestParseRequest_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind relay.Kind
	}{
		{
			name:     "not JSON",
			body:     `outage!`,
			wantKind: relay.KindMalformedInput,
		},
		{
			name:     "bare string",
			body:     `"UNHEALTHY"`,
			wantKind: relay.KindMalformedInput,
		},
		{
			name:     "missing healthStatus",
			body:     `{"description":"all good"}`,
			wantKind: relay.KindMalformedInput,
		},
		{
			name:     "numeric healthStatus",
			body:     `{"healthStatus":1}`,
			wantKind: relay.KindMalformedInput,
		},
		{
			name:     "unsupported value",
			body:     `{"healthStatus":"DEGRADED"}`,
			wantKind: relay.KindInvalidStatusValue,
		},
		{
			name:     "wrong case",
			body:     `{"healthStatus":"healthy"}`,
			wantKind: relay.KindInvalidStatusValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := relay.ParseRequest(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}

			var relayErr *relay.Error
			if !errors.As(err, &relayErr) {
				t.Fatalf("expected a classified relay error, got %T", err)
			}
			if relayErr.Kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, relayErr.Kind)
			}
		})
	}
}
