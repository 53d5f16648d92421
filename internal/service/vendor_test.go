package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalomar/vendorhub/internal/auth"
	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newVendorService(t *testing.T) (*VendorService, *auth.TokenIssuer, *store.MemStore) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	st := store.NewMemStore()
	return NewVendorService(st, issuer), issuer, st
}

func TestVendorService_Register(t *testing.T) {
	svc, _, st := newVendorService(t)

	created, err := svc.Register(context.Background(), VendorCreateDto{
		Name:     "Ana",
		LastName: "Diaz",
		Email:    "ana@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)

	// The stored password is a hash, never the plaintext.
	stored, err := st.FindVendorByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, auth.ComparePassword(stored.Password, "secret123"))
}

func TestVendorService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newVendorService(t)
	_, err := svc.Register(context.Background(), VendorCreateDto{
		Name: "Ana", LastName: "Diaz", Email: "ana@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), VendorCreateDto{
		Name: "Eva", LastName: "Rios", Email: "ana@example.com", Password: "other456",
	})

	require.ErrorIs(t, err, verrors.ErrVendorExists)
}

func TestVendorService_Authenticate(t *testing.T) {
	svc, issuer, _ := newVendorService(t)
	created, err := svc.Register(context.Background(), VendorCreateDto{
		Name: "Ana", LastName: "Diaz", Email: "ana@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	token, err := svc.Authenticate(context.Background(), AuthDto{
		Email:    "ana@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	identity, err := issuer.Verify(context.Background(), token.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, identity.ID)
	assert.Equal(t, "Ana", identity.Name)
	assert.Equal(t, "Diaz", identity.LastName)
	assert.Equal(t, "ana@example.com", identity.Email)
}

func TestVendorService_Authenticate_WrongPassword(t *testing.T) {
	svc, _, _ := newVendorService(t)
	_, err := svc.Register(context.Background(), VendorCreateDto{
		Name: "Ana", LastName: "Diaz", Email: "ana@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), AuthDto{
		Email:    "ana@example.com",
		Password: "wrong",
	})

	require.ErrorIs(t, err, verrors.ErrInvalidCredentials)
}

func TestVendorService_Authenticate_UnknownEmail(t *testing.T) {
	svc, _, _ := newVendorService(t)

	_, err := svc.Authenticate(context.Background(), AuthDto{
		Email:    "nobody@example.com",
		Password: "secret123",
	})

	require.ErrorIs(t, err, verrors.ErrVendorNotFound)
}

func TestVendorService_Profile(t *testing.T) {
	svc, _, _ := newVendorService(t)
	created, err := svc.Register(context.Background(), VendorCreateDto{
		Name: "Ana", LastName: "Diaz", Email: "ana@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	profile, err := svc.Profile(identityCtx(created.ID))
	require.NoError(t, err)
	assert.Equal(t, created.ID, profile.ID)
	assert.Equal(t, "ana@example.com", profile.Email)

	_, err = svc.Profile(context.Background())
	require.ErrorIs(t, err, verrors.ErrUnauthenticated)
}
