// Package auth is the Auth Gate. It issues and verifies HS256 bearer
// tokens that carry an account's tenant identity, and gates HTTP routes by
// account tier.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// DefaultIssuer is the iss claim used when none is configured.
const DefaultIssuer = "vellum"

// Configuration errors.
var (
	ErrSecretRequired = errors.New("jwt secret is required")
	ErrTTLInvalid     = errors.New("token ttl must be positive")
)

// claims is the token payload.
type claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	APIKey    string `json:"api_key"`
	Tier      int    `json:"tier"`
}

// Authority signs and verifies tokens with one shared secret.
type Authority struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// New returns an Authority. An empty issuer means DefaultIssuer; a nil now
// means time.Now.
func New(secret, issuer string, now func() time.Time) (*Authority, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if now == nil {
		now = time.Now
	}
	return &Authority{secret: []byte(secret), issuer: issuer, now: now}, nil
}

// Issue returns a token for acct that expires after ttl.
func (a *Authority) Issue(acct types.Account, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrTTLInvalid
	}
	if acct.APIKey == "" {
		return "", types.Invalid("api_key", "is required")
	}
	now := a.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   acct.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: acct.AccountID,
		APIKey:    acct.APIKey,
		Tier:      acct.Tier,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns the TenantContext it carries. Every
// failure wraps types.ErrUnauthenticated.
func (a *Authority) Verify(token string) (types.TenantContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.TenantContext{}, fmt.Errorf("%w: token is required", types.ErrUnauthenticated)
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return types.TenantContext{}, fmt.Errorf("%w: %s", types.ErrUnauthenticated, describe(err))
	}
	tc := types.TenantContext{APIKey: c.APIKey, AccountID: c.AccountID, Tier: c.Tier}
	if err := tc.Validate(); err != nil {
		return types.TenantContext{}, fmt.Errorf("%w: token carries no api key", types.ErrUnauthenticated)
	}
	return tc, nil
}

// describe turns a jwt error into a short client-facing reason.
func describe(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token is expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	default:
		return "token is invalid"
	}
}
