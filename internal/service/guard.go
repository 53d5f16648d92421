package service

import (
	"context"

	"github.com/jpalomar/vendorhub/internal/auth"
	verrors "github.com/jpalomar/vendorhub/internal/errors"
)

// identityFrom extracts the authenticated vendor from the context.
// Returns ErrUnauthenticated for anonymous callers.
func identityFrom(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Identity{}, verrors.ErrUnauthenticated
	}
	return id, nil
}
