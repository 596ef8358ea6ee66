// Package main provides the entrypoint for the status relay API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"

	"github.com/statusrelay/statusrelay/internal/api"
	"github.com/statusrelay/statusrelay/internal/api/middleware"
	"github.com/statusrelay/statusrelay/internal/config"
	"github.com/statusrelay/statusrelay/internal/publisher/eventbridge"
	"github.com/statusrelay/statusrelay/internal/relay"
	"github.com/statusrelay/statusrelay/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "status-relay"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting status relay")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().Str("otlp_endpoint", cfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	relayMetrics, err := relay.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize relay metrics")
	}

	// Cross-account publisher: STS assume-role credentials feeding an
	// EventBridge client that does no retries of its own.
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	credentials := eventbridge.NewAssumeRoleProvider(eventbridge.AssumeRoleConfig{
		RoleARN:     cfg.RoleARN,
		SessionName: cfg.RoleSessionName,
		STSClient:   sts.NewFromConfig(awsCfg),
	})

	publisher := eventbridge.NewClient(eventbridge.ClientConfig{
		Region:         cfg.Region,
		Endpoint:       cfg.EventBridgeEndpoint,
		BusAllowList:   cfg.BusAllowList,
		Credentials:    credentials,
		MaxAttempts:    cfg.MaxAttempts,
		BaseBackoff:    cfg.BaseBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		AttemptTimeout: cfg.AttemptTimeout,
		Logger:         log,
	})
	log.Info().
		Str("bus", cfg.BusARN).
		Str("role", cfg.RoleARN).
		Msg("cross-account publisher initialized")

	builder := relay.NewEnvelopeBuilder(relay.EnvelopeBuilderConfig{
		Source:     cfg.EventSource,
		DetailType: cfg.EventDetailType,
		BusName:    cfg.BusARN,
		Identity: relay.ServiceIdentity{
			ID:   cfg.ServiceID,
			Name: cfg.ServiceName,
		},
	})

	relayService := relay.NewService(relay.ServiceConfig{
		Builder:   builder,
		Publisher: publisher,
		Logger:    log,
		Metrics:   relayMetrics,
	})
	log.Info().Msg("relay service initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        httpMetrics,
		RelayService:   relayService,
		DestinationBus: cfg.BusARN,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
