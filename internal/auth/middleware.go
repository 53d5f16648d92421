package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const identityContextKey = contextKey("vendorIdentity")

// Middleware verifies the Authorization bearer token and adds the resolved
// identity to the request context. A missing or invalid token does NOT fail
// the request: the caller proceeds anonymously and operations requiring
// authentication reject it downstream. That keeps public operations (vendor
// registration, sign-in) on the same endpoint.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext retrieves the authenticated identity from the context.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
