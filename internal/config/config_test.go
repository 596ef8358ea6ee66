package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/statusrelay/statusrelay/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EVENT_BUS_ARN", "arn:aws:events:us-east-1:936471194299:event-bus/Outage")
	t.Setenv("RELAY_ROLE_ARN", "arn:aws:iam::936471194299:role/status-relay-publisher")
	t.Setenv("SERVICE_ID", "0a097488-c26c-4816-8ceb-b0054c374217")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.EventSource != "team.status" {
		t.Errorf("expected default source team.status, got %q", cfg.EventSource)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected default of 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.BaseBackoff != 200*time.Millisecond {
		t.Errorf("expected default 200ms base backoff, got %v", cfg.BaseBackoff)
	}
}

func TestFromEnv_PrimaryBusAlwaysAllowed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EVENT_BUS_ALLOWLIST", "arn:aws:events:us-east-1:111111111111:event-bus/Other")

	cfg := config.FromEnv()

	found := false
	for _, bus := range cfg.BusAllowList {
		if bus == cfg.BusARN {
			found = true
		}
	}
	if !found {
		t.Errorf("expected primary bus in allow-list, got %v", cfg.BusAllowList)
	}
	if len(cfg.BusAllowList) != 2 {
		t.Errorf("expected two allowed buses, got %v", cfg.BusAllowList)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{"missing bus", "EVENT_BUS_ARN", "EVENT_BUS_ARN"},
		{"missing role", "RELAY_ROLE_ARN", "RELAY_ROLE_ARN"},
		{"missing service id", "SERVICE_ID", "SERVICE_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			err := config.FromEnv().Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error naming %s, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_RejectsBadRetryPolicy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLISH_MAX_ATTEMPTS", "0")

	if err := config.FromEnv().Validate(); err == nil {
		t.Fatal("expected a validation error for zero attempts")
	}
}
