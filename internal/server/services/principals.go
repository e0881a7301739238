// Package services contains server-side business logic. This file implements
// PrincipalService, which handles registration, credential verification,
// password changes, token issuance and revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/dbx"
	"github.com/mpetrenko/hrauth/internal/server/auth/password"
	"github.com/mpetrenko/hrauth/internal/server/auth/token"
	"github.com/mpetrenko/hrauth/internal/server/config"
	"github.com/mpetrenko/hrauth/internal/server/models"
	"github.com/mpetrenko/hrauth/internal/server/repositories/repomanager"
)

// PasswordPolicy enumerates the registration password requirements.
type PasswordPolicy struct {
	MinLength        int
	RequireMixedCase bool
	RequireDigit     bool
}

// Check returns common.ErrorWeakPassword (wrapped with the failed rule) when
// raw does not satisfy the policy.
func (p PasswordPolicy) Check(raw string) error {
	runes := []rune(raw)
	if len(runes) < p.MinLength {
		return fmt.Errorf("%w: shorter than %d characters", common.ErrorWeakPassword, p.MinLength)
	}
	if p.RequireMixedCase {
		var hasUpper, hasLower bool
		for _, r := range runes {
			hasUpper = hasUpper || unicode.IsUpper(r)
			hasLower = hasLower || unicode.IsLower(r)
		}
		if !hasUpper || !hasLower {
			return fmt.Errorf("%w: mixed case required", common.ErrorWeakPassword)
		}
	}
	if p.RequireDigit {
		hasDigit := false
		for _, r := range runes {
			if unicode.IsDigit(r) {
				hasDigit = true
				break
			}
		}
		if !hasDigit {
			return fmt.Errorf("%w: digit required", common.ErrorWeakPassword)
		}
	}
	return nil
}

// PrincipalService provides authentication-related operations:
//   - Register: create principals
//   - Login: verify credentials and mint an access token
//   - ChangePassword: re-verify and atomically replace the stored hash
//   - Logout: record the token's jti in the revocation ledger
type PrincipalService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher *password.Hasher
	issuer *token.Issuer
	policy PasswordPolicy
}

// NewPrincipalService constructs a PrincipalService using repositories,
// the hasher/issuer pair, and server config.
func NewPrincipalService(db *sql.DB, m repomanager.RepositoryManager, h *password.Hasher, i *token.Issuer, cfg *config.Config) *PrincipalService {
	return &PrincipalService{
		db:     db,
		repos:  m,
		hasher: h,
		issuer: i,
		policy: PasswordPolicy{
			MinLength:        cfg.PasswordMinLength,
			RequireMixedCase: cfg.PasswordRequireMixed,
			RequireDigit:     cfg.PasswordRequireDigit,
		},
	}
}

// Register creates a new principal with the given login and email. Only the
// encoded hash of rawPassword is persisted. Returns the new principal's id.
func (s *PrincipalService) Register(ctx context.Context, login, email, rawPassword string, role models.Role) (string, error) {
	if err := s.policy.Check(rawPassword); err != nil {
		return "", err
	}
	if !role.Valid() {
		role = models.RoleOrdinary
	}

	// Hashing is slow on purpose; it happens before any store interaction
	// so no lock or transaction spans it.
	hash, err := s.hasher.Hash([]byte(rawPassword))
	if err != nil {
		return "", common.ErrorInternal
	}

	repo := s.repos.Principals(s.db)
	p, err := repo.Create(ctx, &models.Principal{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			return "", common.ErrorDuplicateIdentity
		}
		return "", fmt.Errorf("error creating principal: %w", err)
	}
	return p.ID, nil
}

// VerifyCredentials looks the principal up by login and checks rawPassword
// against the stored hash. An unknown login and a wrong password both return
// common.ErrorUnauthorized; a decoy hash is verified for unknown logins so
// the two cases take the same time.
func (s *PrincipalService) VerifyCredentials(ctx context.Context, login, rawPassword string) (*models.Principal, error) {
	repo := s.repos.Principals(s.db)

	p, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify([]byte(rawPassword), s.hasher.DecoyHash())
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify([]byte(rawPassword), p.PasswordHash)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return p, nil
}

// Login verifies the credentials and, on success, mints an access token bound
// to the principal's id and role.
func (s *PrincipalService) Login(ctx context.Context, login, rawPassword string) (string, *token.Claims, error) {
	p, err := s.VerifyCredentials(ctx, login, rawPassword)
	if err != nil {
		return "", nil, err
	}

	tokenString, claims, err := s.issuer.Issue(p.ID, p.Role)
	if err != nil {
		return "", nil, common.ErrorInternal
	}
	return tokenString, claims, nil
}

// ChangePassword re-verifies the old password and replaces the stored hash.
// The swap happens inside a short transaction that re-reads the record and
// compares the stored hash against the one just verified, then updates with
// a compare-and-swap on the record's version: of two concurrent changes
// exactly one wins and the loser gets common.ErrVersionConflict. Hashing
// never runs inside the transaction. No reader ever observes a partially
// written hash.
func (s *PrincipalService) ChangePassword(ctx context.Context, principalID, oldRawPassword, newRawPassword string) error {
	if err := s.policy.Check(newRawPassword); err != nil {
		return err
	}

	repo := s.repos.Principals(s.db)

	p, err := repo.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}

	ok, err := s.hasher.Verify([]byte(oldRawPassword), p.PasswordHash)
	if err != nil {
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrorUnauthorized
	}

	// Hash before opening the transaction; argon2 is slow on purpose and
	// must not hold a transaction open.
	newHash, err := s.hasher.Hash([]byte(newRawPassword))
	if err != nil {
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repos.Principals(tx)

		cur, err := txRepo.GetByID(ctx, principalID)
		if err != nil {
			return err
		}
		// The stored hash moved since re-verification above: a concurrent
		// change won, and the old password we verified is no longer current.
		if cur.PasswordHash != p.PasswordHash {
			return common.ErrVersionConflict
		}
		return txRepo.UpdatePasswordHash(ctx, cur.ID, newHash, cur.Version)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrVersionConflict):
			return common.ErrVersionConflict
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorUnauthorized
		default:
			return common.ErrorInternal
		}
	}
	return nil
}

// VerifyToken checks the token's signature and expiry, then consults the
// revocation ledger. Returns the claims for a live token.
func (s *PrincipalService) VerifyToken(ctx context.Context, tokenString string) (*token.Claims, error) {
	claims, err := s.issuer.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repos.Revocations(s.db).IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, common.ErrorInternal
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}
	return claims, nil
}

// Logout records the token's jti in the revocation ledger. Idempotent.
func (s *PrincipalService) Logout(ctx context.Context, claims *token.Claims) error {
	rt := &models.RevokedToken{
		JTI:       claims.JTI(),
		RevokedAt: time.Now(),
	}
	if claims.ExpiresAt != nil {
		rt.ExpiryHint = claims.ExpiresAt.Time
	}
	if err := s.repos.Revocations(s.db).Revoke(ctx, rt); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// PurgeExpiredRevocations drops ledger entries whose tokens have already
// expired on their own.
func (s *PrincipalService) PurgeExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	return s.repos.Revocations(s.db).PurgeExpiredBefore(ctx, now)
}
