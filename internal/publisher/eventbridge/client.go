// Package eventbridge publishes status events to a cross-account
// Amazon EventBridge bus with retry, failure classification, and a
// circuit breaker protecting the shared destination.
package eventbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/statusrelay/statusrelay/internal/relay"
)

// Defaults for the publish retry policy.
const (
	DefaultMaxAttempts    = 3
	DefaultBaseBackoff    = 200 * time.Millisecond
	DefaultMaxBackoff     = 2 * time.Second
	DefaultAttemptTimeout = 3 * time.Second
)

// PutEventsAPI abstracts the EventBridge PutEvents call.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *awseventbridge.PutEventsInput,
		optFns ...func(*awseventbridge.Options)) (*awseventbridge.PutEventsOutput, error)
}

// ClientConfig holds configuration for the publisher.
type ClientConfig struct {
	// Region of the destination bus.
	Region string

	// Endpoint optionally overrides the EventBridge endpoint, used for
	// local testing against an emulator.
	Endpoint string

	// BusAllowList enumerates the destinations this relay may publish
	// to. An envelope naming any other bus is rejected before dispatch.
	BusAllowList []string

	// Credentials acquires delivery credentials for the destination
	// account before the first attempt of each call.
	Credentials CredentialProvider

	// MaxAttempts bounds sequential attempts per call (default 3).
	MaxAttempts int

	// BaseBackoff is the initial retry delay (default 200ms). Delays
	// double up to MaxBackoff (default 2s) with jitter so retries from
	// concurrent publishers do not land on the shared bus in lockstep.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// AttemptTimeout bounds each network attempt (default 3s).
	AttemptTimeout time.Duration

	Logger zerolog.Logger

	// NewBus overrides how the PutEvents client is constructed from
	// acquired credentials. Tests inject a fake here.
	NewBus func(creds aws.Credentials) PutEventsAPI
}

// Client is the cross-account publisher.
type Client struct {
	cfg     ClientConfig
	allowed map[string]struct{}
	breaker *gobreaker.CircuitBreaker[*awseventbridge.PutEventsOutput]
	newBus  func(creds aws.Credentials) PutEventsAPI
	logger  zerolog.Logger
}

// NewClient creates a new publisher client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseBackoff == 0 {
		cfg.BaseBackoff = DefaultBaseBackoff
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.AttemptTimeout == 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}

	allowed := make(map[string]struct{}, len(cfg.BusAllowList))
	for _, bus := range cfg.BusAllowList {
		allowed[bus] = struct{}{}
	}

	breaker := gobreaker.NewCircuitBreaker[*awseventbridge.PutEventsOutput](gobreaker.Settings{
		Name:        "eventbridge-publish",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	newBus := cfg.NewBus
	if newBus == nil {
		newBus = func(creds aws.Credentials) PutEventsAPI {
			return awseventbridge.New(awseventbridge.Options{
				Region: cfg.Region,
				Credentials: credentials.NewStaticCredentialsProvider(
					creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
				// The relay's own loop is the only retry layer.
				Retryer:      aws.NopRetryer{},
				BaseEndpoint: endpointOverride(cfg.Endpoint),
			})
		}
	}

	return &Client{
		cfg:     cfg,
		allowed: allowed,
		breaker: breaker,
		newBus:  newBus,
		logger:  cfg.Logger,
	}
}

func endpointOverride(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

// Publish delivers one envelope to its destination bus. Attempts are
// sequential with jittered exponential backoff, and the same envelope
// (including its event id) is reused across every attempt of the call.
// The loop runs detached from the caller's cancellation: an abandoned
// inbound request must not strand a half-delivered event, so in-flight
// attempts run to the configured budget. Each attempt still carries
// its own timeout.
func (c *Client) Publish(ctx context.Context, env relay.EventEnvelope) (relay.DeliveryOutcome, error) {
	var outcome relay.DeliveryOutcome

	if _, ok := c.allowed[env.BusName]; !ok {
		err := relay.NewError(relay.KindPermanent,
			"destination bus is not on the configured allow-list")
		outcome.Err = err
		return outcome, err
	}

	ctx = context.WithoutCancel(ctx)

	creds, err := c.cfg.Credentials.Acquire(ctx, env.BusName)
	if err != nil {
		relayErr := relay.WrapError(relay.KindCredentialAcquisitionFailed,
			"failed to acquire delivery credentials for destination account", err)
		c.logger.Error().Err(err).
			Str("bus", env.BusName).
			Msg("credential acquisition failed; check role trust policy and expiry")
		outcome.Err = relayErr
		return outcome, relayErr
	}
	bus := c.newBus(creds)

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(env.BusName),
		Source:       aws.String(env.Source),
		DetailType:   aws.String(env.DetailType),
		Detail:       aws.String(env.Detail),
		Time:         aws.Time(env.Timestamp),
	}

	policy := c.newBackoff()

	var remoteID string
	operation := func() error {
		outcome.Attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()

		out, err := c.breaker.Execute(func() (*awseventbridge.PutEventsOutput, error) {
			return bus.PutEvents(attemptCtx, &awseventbridge.PutEventsInput{
				Entries: []types.PutEventsRequestEntry{entry},
			})
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(relay.WrapError(relay.KindTransient,
					"publishing suspended while the destination bus recovers", err))
			}
			return classifyCallError(err)
		}

		id, err := resultEventID(out)
		if err != nil {
			return err
		}
		remoteID = id
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).
			Str("bus", env.BusName).
			Str("event_id", env.EventID).
			Int("attempt", outcome.Attempts).
			Dur("backoff", wait).
			Msg("transient publish failure, will retry")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		relayErr := c.resolveFailure(err, outcome.Attempts)
		outcome.Err = relayErr
		return outcome, relayErr
	}

	outcome.Succeeded = true
	outcome.RemoteEventID = remoteID
	return outcome, nil
}

func (c *Client) newBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.BaseBackoff
	bo.MaxInterval = c.cfg.MaxBackoff
	bo.MaxElapsedTime = 0 // attempts are bounded by count, not wall clock
	return backoff.WithMaxRetries(bo, uint64(c.cfg.MaxAttempts-1))
}

// resolveFailure maps the terminal retry-loop error to the final
// classified failure for the call.
func (c *Client) resolveFailure(err error, attempts int) *relay.Error {
	var relayErr *relay.Error
	if !errors.As(err, &relayErr) {
		relayErr = relay.WrapError(relay.KindPermanent, "publish failed", err)
	}

	if relayErr.Kind == relay.KindTransient && attempts >= c.cfg.MaxAttempts {
		relayErr = relay.WrapError(relay.KindRetriesExhausted,
			fmt.Sprintf("gave up after %d attempts", attempts), relayErr)
	}

	if relayErr.Kind == relay.KindAmbiguousDelivery {
		// Logged distinctly so operators can reconcile against the bus.
		c.logger.Error().Err(err).Msg("delivery ambiguous: bus accepted the call but returned no event id")
	}
	return relayErr
}

// classifyCallError resolves a PutEvents call error into the relay
// taxonomy. Transient classifications are returned plain so the retry
// loop continues; everything else short-circuits.
func classifyCallError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "RequestLimitExceeded",
			"InternalException", "InternalFailure", "ServiceUnavailable":
			return relay.WrapError(relay.KindTransient, "bus temporarily unavailable", err)
		case "AccessDeniedException", "NotAuthorizedForSourceException",
			"UnauthorizedOperation":
			return backoff.Permanent(relay.WrapError(relay.KindPermanent,
				"bus denied authorization for this publisher", err))
		case "ResourceNotFoundException":
			return backoff.Permanent(relay.WrapError(relay.KindPermanent,
				"destination bus does not exist", err))
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return relay.WrapError(relay.KindTransient, "bus service fault", err)
		}
		return backoff.Permanent(relay.WrapError(relay.KindPermanent,
			"bus rejected the publish call", err))
	}

	// Timeouts and network errors are retryable.
	return relay.WrapError(relay.KindTransient, "publish attempt failed", err)
}

// resultEventID extracts the bus-assigned id from a non-error
// response. EventBridge reports per-entry results even for a
// single-entry call, so partial-batch failures are handled defensively:
// anything but an explicitly accepted entry carrying an id is a
// failure.
func resultEventID(out *awseventbridge.PutEventsOutput) (string, error) {
	if len(out.Entries) == 0 {
		return "", backoff.Permanent(relay.NewError(relay.KindAmbiguousDelivery,
			"bus returned no entry results"))
	}

	result := out.Entries[0]
	if out.FailedEntryCount > 0 || result.ErrorCode != nil {
		code := aws.ToString(result.ErrorCode)
		switch code {
		case "ThrottlingException", "InternalException", "InternalFailure":
			return "", relay.NewError(relay.KindTransient,
				fmt.Sprintf("bus rejected the entry with retryable code %s", code))
		default:
			return "", backoff.Permanent(relay.NewError(relay.KindPermanent,
				fmt.Sprintf("bus rejected the entry with code %s", code)))
		}
	}

	id := aws.ToString(result.EventId)
	if id == "" {
		// The event may have landed, but without a remote id the relay
		// cannot prove delivery, and a conservative failure beats a
		// false success.
		return "", backoff.Permanent(relay.NewError(relay.KindAmbiguousDelivery,
			"bus accepted the entry but assigned no event id"))
	}
	return id, nil
}
