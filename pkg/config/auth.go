package config

import (
	"fmt"
	"time"
)

// AuthConfig configures the locally-signed vendor tokens.
type AuthConfig struct {
	// Secret is the HMAC signing key for issued tokens.
	Secret string `koanf:"secret"`
	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `koanf:"tokenttl"`
}

func (c *AuthConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("auth signing secret cannot be empty")
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("auth signing secret must be at least 32 bytes, got %d", len(c.Secret))
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth token TTL must be greater than zero")
	}
	return nil
}
