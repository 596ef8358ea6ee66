package eventbridge

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
)

// CredentialProvider supplies short-lived credentials scoped to the
// destination bus's account. The publisher depends on this interface,
// not on a concrete issuer, so tests can substitute a fake.
type CredentialProvider interface {
	Acquire(ctx context.Context, destination string) (aws.Credentials, error)
}

// AssumeRoleConfig holds configuration for the STS-backed provider.
type AssumeRoleConfig struct {
	// RoleARN is the delivery role in the bus owner's account.
	RoleARN string

	// SessionName labels the assumed-role session (default
	// "status-relay").
	SessionName string

	// Duration bounds the lifetime of issued credentials.
	Duration time.Duration

	// STSClient performs the AssumeRole call.
	STSClient stscreds.AssumeRoleAPIClient
}

// AssumeRoleProvider acquires delivery credentials by assuming a role
// across the trust boundary. Credentials are held in an
// aws.CredentialsCache: reads are lock-free until expiry triggers a
// single-writer renewal, so concurrent requests do not each pay for an
// STS round trip.
type AssumeRoleProvider struct {
	cache *aws.CredentialsCache
}

// NewAssumeRoleProvider creates a new AssumeRoleProvider.
func NewAssumeRoleProvider(cfg AssumeRoleConfig) *AssumeRoleProvider {
	provider := stscreds.NewAssumeRoleProvider(cfg.STSClient, cfg.RoleARN,
		func(o *stscreds.AssumeRoleOptions) {
			if cfg.SessionName != "" {
				o.RoleSessionName = cfg.SessionName
			} else {
				o.RoleSessionName = "status-relay"
			}
			if cfg.Duration > 0 {
				o.Duration = cfg.Duration
			}
		})

	return &AssumeRoleProvider{cache: aws.NewCredentialsCache(provider)}
}

// Acquire returns credentials valid for the destination account.
func (p *AssumeRoleProvider) Acquire(ctx context.Context, _ string) (aws.Credentials, error) {
	return p.cache.Retrieve(ctx)
}
