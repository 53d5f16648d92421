// Package auth provides password hashing, token issuing/verification and
// the HTTP middleware that attaches the authenticated vendor to the request
// context.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Identity is the authenticated vendor carried through the request context.
type Identity struct {
	ID       uuid.UUID
	Name     string
	LastName string
	Email    string
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, tokenString string) (Identity, error)
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	key jwk.Key
	ttl time.Duration
}

// NewTokenIssuer creates a TokenIssuer from the shared secret and token TTL.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to import signing key: %w", err)
	}
	return &TokenIssuer{key: key, ttl: ttl}, nil
}

// Issue signs a token for the given identity, valid for the configured TTL.
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(id.ID.String()).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Claim("name", id.Name).
		Claim("last_name", id.LastName).
		Claim("email", id.Email).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), t.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify parses and validates a token, returning the embedded identity.
func (t *TokenIssuer) Verify(_ context.Context, tokenString string) (Identity, error) {
	tok, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), t.key),
		// Standard validation checks - expiration, not before, etc.
		jwt.WithValidate(true),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to verify token: %w", err)
	}

	subject, ok := tok.Subject()
	if !ok {
		return Identity{}, fmt.Errorf("no claim `sub`")
	}
	vendorID, err := uuid.Parse(subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	id := Identity{ID: vendorID}
	_ = tok.Get("name", &id.Name)
	_ = tok.Get("last_name", &id.LastName)
	_ = tok.Get("email", &id.Email)
	return id, nil
}
