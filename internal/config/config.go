// Package config resolves the relay's process-wide configuration from
// the environment. The resulting Config is built once at startup,
// never mutated, and passed explicitly into each component.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the relay.
type Config struct {
	Port        string
	Environment string

	// Destination bus and trust boundary.
	Region              string
	BusARN              string
	BusAllowList        []string
	RoleARN             string
	RoleSessionName     string
	EventBridgeEndpoint string

	// Fixed event routing strings; caller input never influences them.
	EventSource     string
	EventDetailType string

	// Stable identity of the reporting service.
	ServiceID   string
	ServiceName string

	// Publish retry policy.
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	AttemptTimeout time.Duration

	// Telemetry.
	OTELEnabled  bool
	OTLPEndpoint string
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	maxAttempts, _ := strconv.Atoi(getEnvOrDefault("PUBLISH_MAX_ATTEMPTS", "3"))
	baseBackoff, _ := time.ParseDuration(getEnvOrDefault("PUBLISH_BASE_BACKOFF", "200ms"))
	maxBackoff, _ := time.ParseDuration(getEnvOrDefault("PUBLISH_MAX_BACKOFF", "2s"))
	attemptTimeout, _ := time.ParseDuration(getEnvOrDefault("PUBLISH_ATTEMPT_TIMEOUT", "3s"))

	busARN := os.Getenv("EVENT_BUS_ARN")
	allowList := splitList(os.Getenv("EVENT_BUS_ALLOWLIST"))
	if busARN != "" && !slices.Contains(allowList, busARN) {
		allowList = append(allowList, busARN)
	}

	return Config{
		Port:        getEnvOrDefault("APP_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),

		Region:              getEnvOrDefault("AWS_REGION", "us-east-1"),
		BusARN:              busARN,
		BusAllowList:        allowList,
		RoleARN:             os.Getenv("RELAY_ROLE_ARN"),
		RoleSessionName:     getEnvOrDefault("RELAY_ROLE_SESSION_NAME", "status-relay"),
		EventBridgeEndpoint: os.Getenv("EVENTBRIDGE_ENDPOINT"),

		EventSource:     getEnvOrDefault("EVENT_SOURCE", "team.status"),
		EventDetailType: getEnvOrDefault("EVENT_DETAIL_TYPE", "Service Health Change"),

		ServiceID:   os.Getenv("SERVICE_ID"),
		ServiceName: getEnvOrDefault("SERVICE_NAME", "team-status"),

		MaxAttempts:    maxAttempts,
		BaseBackoff:    baseBackoff,
		MaxBackoff:     maxBackoff,
		AttemptTimeout: attemptTimeout,

		OTELEnabled:  os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// Validate rejects configurations that would only fail at publish
// time. Misconfiguration should stop the process at startup, not
// surface as delivery errors under load.
func (c Config) Validate() error {
	var errs []error

	if c.BusARN == "" {
		errs = append(errs, errors.New("EVENT_BUS_ARN is required"))
	}
	if c.RoleARN == "" {
		errs = append(errs, errors.New("RELAY_ROLE_ARN is required"))
	}
	if c.ServiceID == "" {
		errs = append(errs, errors.New("SERVICE_ID is required"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("PUBLISH_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts))
	}
	if c.BaseBackoff <= 0 || c.MaxBackoff < c.BaseBackoff {
		errs = append(errs, errors.New("publish backoff bounds are invalid"))
	}
	if c.AttemptTimeout <= 0 {
		errs = append(errs, errors.New("PUBLISH_ATTEMPT_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
