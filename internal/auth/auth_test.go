package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

var (
	epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	acct  = types.Account{AccountID: "acct-1", APIKey: "key-1", Tier: types.TierBasic}
)

func newAuthority(t *testing.T, now time.Time) *Authority {
	t.Helper()
	a, err := New("s3cret", "", func() time.Time { return now })
	require.NoError(t, err)
	return a
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New("", "", nil)
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	a := newAuthority(t, epoch)
	token, err := a.Issue(acct, time.Hour)
	require.NoError(t, err)

	tc, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, acct.Context(), tc)
}

func TestIssue_Rejects(t *testing.T) {
	a := newAuthority(t, epoch)
	_, err := a.Issue(acct, 0)
	assert.ErrorIs(t, err, ErrTTLInvalid)
	_, err = a.Issue(types.Account{AccountID: "x"}, time.Hour)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestVerify_Failures(t *testing.T) {
	a := newAuthority(t, epoch)
	valid, err := a.Issue(acct, time.Hour)
	require.NoError(t, err)

	later := newAuthority(t, epoch.Add(2*time.Hour))
	otherSecret, err := New("different", "", func() time.Time { return epoch })
	require.NoError(t, err)
	otherIssuer, err := New("s3cret", "someone-else", func() time.Time { return epoch })
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims{APIKey: "key-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		a     *Authority
		token string
	}{
		{"empty", a, ""},
		{"garbage", a, "not.a.token"},
		{"expired", later, valid},
		{"wrong secret", otherSecret, valid},
		{"wrong issuer", otherIssuer, valid},
		{"alg none", a, noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.a.Verify(tt.token)
			assert.ErrorIs(t, err, types.ErrUnauthenticated)
		})
	}
}

func TestMiddleware(t *testing.T) {
	a := newAuthority(t, epoch)
	token, err := a.Issue(acct, time.Hour)
	require.NoError(t, err)

	var gotErr error
	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	var seen types.TenantContext
	h := a.Middleware(onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"basic auth", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr, seen = nil, types.TenantContext{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "key-1", seen.APIKey)
				return
			}
			assert.True(t, errors.Is(gotErr, types.ErrUnauthenticated))
		})
	}
}

func TestRequireTier(t *testing.T) {
	var gotErr error
	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusForbidden)
	}
	h := RequireTier(types.TierPro, onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name string
		tier int
		want int
	}{
		{"basic is too low", types.TierBasic, http.StatusForbidden},
		{"pro passes", types.TierPro, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr = nil
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			req = req.WithContext(WithTenant(req.Context(), types.TenantContext{APIKey: "k", Tier: tt.tier}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.ErrorIs(t, gotErr, types.ErrTierTooLow)
			}
		})
	}
}
