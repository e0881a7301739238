// Package revocations declares the session ledger contract: the set of token
// identifiers (jti) that were invalidated before their natural expiry.
// Tokens are verifiable offline, so this ledger is what makes logout
// observable. Most tokens are never revoked; the ledger records exceptions
// only, and an unknown jti is valid by default.
package revocations

import (
	"context"
	"time"

	"github.com/mpetrenko/hrauth/internal/server/models"
)

// Repository defines operations over the revocation ledger.
type Repository interface {
	// Revoke records rt's jti as invalid. Idempotent: revoking twice has the
	// same effect as once. rt.ExpiryHint is the token's own expiry, kept as
	// the garbage-collection horizon.
	Revoke(ctx context.Context, rt *models.RevokedToken) error

	// IsRevoked reports whether jti has been revoked. Unknown jti → false.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeExpiredBefore deletes entries whose expiry hint precedes now and
	// returns the number of rows removed. Entries for already-expired tokens
	// carry no information: verification rejects those tokens anyway.
	PurgeExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}
