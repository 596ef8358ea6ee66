package relay

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EnvelopeBuilder maps validated requests into canonical envelopes.
// Source, DetailType, and BusName come from process configuration, not
// from caller input, so a caller can neither redirect events to an
// arbitrary bus nor supply its own envelope identity.
type EnvelopeBuilder struct {
	source     string
	detailType string
	busName    string
	identity   ServiceIdentity
	now        func() time.Time
	newID      func() string
}

// EnvelopeBuilderConfig holds configuration for the builder.
type EnvelopeBuilderConfig struct {
	Source     string
	DetailType string
	BusName    string
	Identity   ServiceIdentity

	// Now and NewID override the clock and id generator in tests.
	Now   func() time.Time
	NewID func() string
}

// NewEnvelopeBuilder creates a new EnvelopeBuilder.
func NewEnvelopeBuilder(cfg EnvelopeBuilderConfig) *EnvelopeBuilder {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &EnvelopeBuilder{
		source:     cfg.Source,
		detailType: cfg.DetailType,
		busName:    cfg.BusName,
		identity:   cfg.Identity,
		now:        now,
		newID:      newID,
	}
}

// Build creates an envelope for one logical status change. It mints a
// fresh event id per call: a genuine repeated status change (flapping
// health) must produce a new event each time. ObservedAt is stamped
// here, not at publish time, so retries preserve the original
// observation instant. Build never fails for a valid request.
func (b *EnvelopeBuilder) Build(req StatusChangeRequest) EventEnvelope {
	observedAt := b.now().UTC()

	detail := StatusChangeDetail{
		HealthStatus: req.HealthStatus,
		ID:           b.identity.ID,
		Name:         b.identity.Name,
		Description:  req.Description,
		ObservedAt:   observedAt,
	}

	// Marshal of a plain struct with no custom marshalers cannot fail.
	payload, _ := json.Marshal(detail)

	return EventEnvelope{
		EventID:    b.newID(),
		Source:     b.source,
		DetailType: b.detailType,
		Detail:     string(payload),
		BusName:    b.busName,
		Timestamp:  observedAt,
	}
}
