package relay_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/statusrelay/statusrelay/internal/relay"
)

const testBusARN = "arn:aws:events:us-east-1:936471194299:event-bus/Outage"

func newTestBuilder() *relay.EnvelopeBuilder {
	return relay.NewEnvelopeBuilder(relay.EnvelopeBuilderConfig{
		Source:     "team.status",
		DetailType: "Service Health Change",
		BusName:    testBusARN,
		Identity: relay.ServiceIdentity{
			ID:   "0a097488-c26c-4816-8ceb-b0054c374217",
			Name: "team-status",
		},
	})
}

func TestEnvelopeBuilder_FreshIDPerBuild(t *testing.T) {
	builder := newTestBuilder()
	req := relay.StatusChangeRequest{HealthStatus: relay.HealthStatusUnhealthy}

	first := builder.Build(req)
	second := builder.Build(req)

	if first.EventID == "" || second.EventID == "" {
		t.Fatal("expected non-empty event ids")
	}
	if first.EventID == second.EventID {
		t.Error("expected a fresh event id per build")
	}
	if first.Source != second.Source || first.DetailType != second.DetailType || first.BusName != second.BusName {
		t.Error("expected routing fields to be identical across builds")
	}
}

func TestEnvelopeBuilder_RoutingFromConfigOnly(t *testing.T) {
	builder := newTestBuilder()

	// A caller-supplied serviceId must not influence the event identity.
	env := builder.Build(relay.StatusChangeRequest{
		HealthStatus: relay.HealthStatusHealthy,
		ServiceID:    "attacker-chosen",
	})

	var detail relay.StatusChangeDetail
	if err := json.Unmarshal([]byte(env.Detail), &detail); err != nil {
		t.Fatalf("failed to decode detail: %v", err)
	}
	if detail.ID != "0a097488-c26c-4816-8ceb-b0054c374217" {
		t.Errorf("expected configured service id, got %q", detail.ID)
	}
	if env.BusName != testBusARN {
		t.Errorf("expected configured bus, got %q", env.BusName)
	}
	if env.Source != "team.status" {
		t.Errorf("expected configured source, got %q", env.Source)
	}
}

func TestEnvelopeBuilder_DetailRoundTrip(t *testing.T) {
	observed := time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)
	builder := relay.NewEnvelopeBuilder(relay.EnvelopeBuilderConfig{
		Source:     "team.status",
		DetailType: "Service Health Change",
		BusName:    testBusARN,
		Identity:   relay.ServiceIdentity{ID: "svc-1", Name: "checkout"},
		Now:        func() time.Time { return observed },
		NewID:      func() string { return "fixed-id" },
	})

	env := builder.Build(relay.StatusChangeRequest{
		HealthStatus: relay.HealthStatusUnhealthy,
		Description:  "database unreachable",
	})

	var detail relay.StatusChangeDetail
	if err := json.Unmarshal([]byte(env.Detail), &detail); err != nil {
		t.Fatalf("failed to decode detail: %v", err)
	}

	want := relay.StatusChangeDetail{
		HealthStatus: relay.HealthStatusUnhealthy,
		ID:           "svc-1",
		Name:         "checkout",
		Description:  "database unreachable",
		ObservedAt:   observed,
	}
	if detail != want {
		t.Errorf("detail round-trip mismatch:\n got %+v\nwant %+v", detail, want)
	}
	if !env.Timestamp.Equal(observed) {
		t.Errorf("expected envelope timestamp %v, got %v", observed, env.Timestamp)
	}
}
