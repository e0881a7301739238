// Package token mints and verifies the signed, time-limited access tokens
// presented on protected requests.
//
// Tokens are HS256 JWTs. The signature covers every claim, so tampering with
// the role or expiry invalidates the token. Each token carries a unique jti
// used by the revocation ledger; revoking never mutates a token, it records
// its jti as invalid.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

// MaxLeeway bounds the configurable clock-skew tolerance.
const MaxLeeway = 60 * time.Second

const minSecretLen = 16

// Claims carried inside an access token.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// PrincipalID returns the subject claim.
func (c *Claims) PrincipalID() string { return c.Subject }

// JTI returns the unique token identifier used for revocation bookkeeping.
func (c *Claims) JTI() string { return c.ID }

// Issuer mints and verifies access tokens with a server-held HMAC secret.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	leeway   time.Duration
	now      func() time.Time
}

// NewIssuer validates the signing configuration once at startup.
func NewIssuer(secret []byte, lifetime, leeway time.Duration) (*Issuer, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%w: signing secret shorter than %d bytes", common.ErrorConfiguration, minSecretLen)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: token lifetime must be positive", common.ErrorConfiguration)
	}
	if leeway < 0 || leeway > MaxLeeway {
		return nil, fmt.Errorf("%w: leeway must be within [0, %s]", common.ErrorConfiguration, MaxLeeway)
	}
	return &Issuer{secret: secret, lifetime: lifetime, leeway: leeway, now: time.Now}, nil
}

// Issue mints a token for the principal with expiry now+lifetime and a fresh
// jti. The returned claims echo what was signed.
func (i *Issuer) Issue(principalID string, role models.Role) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
		},
		Role: role,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, claims, nil
}

// Verify parses and validates tokenString. Failures are classified as
// common.ErrTokenMalformed, common.ErrTokenSignatureInvalid or
// common.ErrTokenExpired. Expiry is checked with the configured leeway.
// Only HS256 is accepted.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(i.leeway),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, common.ErrTokenSignatureInvalid
		default:
			return nil, common.ErrTokenMalformed
		}
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrTokenMalformed
	}
	return claims, nil
}
