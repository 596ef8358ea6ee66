package relay

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// BusPublisher delivers one envelope to the destination event bus.
// Implementations classify every failure into a relay Kind and report
// the number of attempts made in the returned outcome.
type BusPublisher interface {
	Publish(ctx context.Context, env EventEnvelope) (DeliveryOutcome, error)
}

// Service orchestrates one status-change submission: validate, build
// the envelope, publish, and emit exactly one structured delivery
// record per call regardless of outcome.
type Service struct {
	builder   *EnvelopeBuilder
	publisher BusPublisher
	logger    zerolog.Logger
	metrics   *Metrics
}

// ServiceConfig holds configuration for the relay service.
type ServiceConfig struct {
	Builder   *EnvelopeBuilder
	Publisher BusPublisher
	Logger    zerolog.Logger

	// Metrics is optional; delivery records are always logged.
	Metrics *Metrics
}

// NewService creates a new relay service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		builder:   cfg.Builder,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// deliveryRecord is the per-call observability record.
type deliveryRecord struct {
	outcome  string
	bus      string
	eventID  string
	attempts int
	duration time.Duration
	err      error
}

// Submit relays one status change from the raw request body to the
// event bus and returns a delivery receipt. Failures are returned as
// classified *Error values; nothing is silently swallowed.
func (s *Service) Submit(ctx context.Context, body io.Reader) (Receipt, error) {
	start := time.Now()

	req, err := ParseRequest(body)
	if err != nil {
		s.record(ctx, deliveryRecord{
			outcome:  string(KindOf(err)),
			duration: time.Since(start),
			err:      err,
		})
		return Receipt{}, err
	}

	env := s.builder.Build(req)

	outcome, err := s.publisher.Publish(ctx, env)
	rec := deliveryRecord{
		bus:      env.BusName,
		eventID:  env.EventID,
		attempts: outcome.Attempts,
		duration: time.Since(start),
	}
	if err != nil {
		rec.outcome = string(KindOf(err))
		rec.err = err
		s.record(ctx, rec)
		return Receipt{}, err
	}

	rec.outcome = "delivered"
	s.record(ctx, rec)

	return Receipt{
		EventID:       env.EventID,
		RemoteEventID: outcome.RemoteEventID,
	}, nil
}

func (s *Service) record(ctx context.Context, rec deliveryRecord) {
	evt := s.logger.Info()
	if rec.err != nil {
		evt = s.logger.Error().Err(rec.err)
	}
	evt.Str("outcome", rec.outcome).
		Str("bus", rec.bus).
		Str("event_id", rec.eventID).
		Int("attempts", rec.attempts).
		Dur("duration", rec.duration).
		Msg("status change processed")

	if s.metrics != nil {
		s.metrics.record(ctx, rec)
	}
}
