package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// ErrorWriter renders an auth failure. The transport supplies it so the
// gate produces the same envelope as every other failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type tenantKey struct{}

// WithTenant returns a context carrying tc.
func WithTenant(ctx context.Context, tc types.TenantContext) context.Context {
	return context.WithValue(ctx, tenantKey{}, tc)
}

// FromContext returns the TenantContext set by Middleware.
func FromContext(ctx context.Context) (types.TenantContext, bool) {
	tc, ok := ctx.Value(tenantKey{}).(types.TenantContext)
	return tc, ok
}

// Middleware verifies the Authorization bearer token and stores the
// caller's TenantContext in the request context.
func (a *Authority) Middleware(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				onError(w, r, fmt.Errorf("%w: bearer token is required", types.ErrUnauthenticated))
				return
			}
			tc, err := a.Verify(token)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tc)))
		})
	}
}

// RequireTier rejects callers whose tier is below min. It must run after
// Middleware.
func RequireTier(min int, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := FromContext(r.Context())
			if !ok {
				onError(w, r, types.ErrUnauthenticated)
				return
			}
			if tc.Tier < min {
				onError(w, r, fmt.Errorf("%w: tier %d required", types.ErrTierTooLow, min))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
