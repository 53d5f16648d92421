package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	vendorID := uuid.New()
	token, err := issuer.Issue(Identity{ID: vendorID, Name: "Ana"})
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantIdentity  bool
	}{
		{name: "no header is anonymous", authorization: "", wantIdentity: false},
		{name: "non-bearer header is anonymous", authorization: "Basic abc", wantIdentity: false},
		{name: "invalid token is anonymous", authorization: "Bearer garbage", wantIdentity: false},
		{name: "valid token carries identity", authorization: "Bearer " + token, wantIdentity: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got Identity
			var found bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, found = FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			rec := httptest.NewRecorder()
			Middleware(issuer)(next).ServeHTTP(rec, req)

			// The middleware never rejects; it only enriches the context.
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantIdentity, found)
			if tc.wantIdentity {
				assert.Equal(t, vendorID, got.ID)
				assert.Equal(t, "Ana", got.Name)
			}
		})
	}
}
