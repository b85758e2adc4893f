// Package auth provides token providers for the GitHub client.
// Credentials come from the environment only and are never persisted.
package auth

import (
	"context"
	"os"

	"github.com/custodia-labs/repolens/internal/core/ports/driven"
)

// TokenEnvVar is the environment variable holding the GitHub token.
const TokenEnvVar = "GITHUB_TOKEN"

// Ensure EnvTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*EnvTokenProvider)(nil)

// EnvTokenProvider reads a personal access token from the environment.
// An unset variable is not an error: requests then run unauthenticated
// with the lower anonymous quota.
type EnvTokenProvider struct {
	envVar string
}

// NewEnvTokenProvider creates a provider reading TokenEnvVar.
func NewEnvTokenProvider() *EnvTokenProvider {
	return &EnvTokenProvider{envVar: TokenEnvVar}
}

// GetToken returns the token from the environment, possibly empty.
func (p *EnvTokenProvider) GetToken(_ context.Context) (string, error) {
	return os.Getenv(p.envVar), nil
}

// IsAuthenticated reports whether a token is present.
func (p *EnvTokenProvider) IsAuthenticated() bool {
	return os.Getenv(p.envVar) != ""
}
