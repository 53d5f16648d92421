// Package service implements the business logic: vendor accounts, the
// shared catalog, per-vendor clients, the order lifecycle and revenue
// reporting. All access control decisions live here; transports only carry
// the identity in.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jpalomar/vendorhub/internal/auth"
	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

// VendorService manages vendor accounts and authentication.
type VendorService struct {
	store  store.VendorStore
	issuer *auth.TokenIssuer
}

// NewVendorService creates a new VendorService.
func NewVendorService(s store.VendorStore, issuer *auth.TokenIssuer) *VendorService {
	return &VendorService{store: s, issuer: issuer}
}

// VendorCreateDto represents the data transfer object for registering a vendor.
type VendorCreateDto struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"last_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthDto represents the data transfer object for signing in.
type AuthDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a vendor account. It is a public operation.
// Returns ErrVendorExists if the email is already registered.
func (s *VendorService) Register(ctx context.Context, dto VendorCreateDto) (*VendorDto, error) {
	hash, err := auth.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	v := store.Vendor{
		ID:        uuid.New(),
		Name:      dto.Name,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateVendor(ctx, &v); err != nil {
		return nil, err
	}
	return toVendorDto(&v), nil
}

// Authenticate verifies the credentials and returns a signed access token.
// Returns ErrVendorNotFound for an unknown email and ErrInvalidCredentials
// for a wrong password.
func (s *VendorService) Authenticate(ctx context.Context, dto AuthDto) (*TokenDto, error) {
	v, err := s.store.FindVendorByEmail(ctx, dto.Email)
	if err != nil {
		return nil, err
	}
	if !auth.ComparePassword(v.Password, dto.Password) {
		return nil, verrors.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(auth.Identity{
		ID:       v.ID,
		Name:     v.Name,
		LastName: v.LastName,
		Email:    v.Email,
	})
	if err != nil {
		return nil, err
	}
	return &TokenDto{Token: token}, nil
}

// Profile returns the calling vendor's account, re-read from the store so a
// stale token never serves stale details.
func (s *VendorService) Profile(ctx context.Context) (*VendorDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.store.FindVendorByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return toVendorDto(v), nil
}
