// Package principals declares the server-side repository contract for the
// credential store. It is the only component that reads or writes password
// hashes; nothing above it ever sees a raw password.
package principals

import (
	"context"

	"github.com/mpetrenko/hrauth/internal/server/models"
)

// Repository defines persistence operations over principal records.
type Repository interface {
	// Create inserts a new principal. Login and email are unique; a clash
	// yields common.ErrorDuplicateIdentity.
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)

	// GetByLogin looks a principal up by its login name.
	// Returns common.ErrorNotFound when absent.
	GetByLogin(ctx context.Context, login string) (*models.Principal, error)

	// GetByID looks a principal up by its identifier.
	// Returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Principal, error)

	// UpdatePasswordHash atomically replaces the stored hash if the record
	// still carries expectedVersion. A concurrent writer having bumped the
	// version yields common.ErrVersionConflict.
	UpdatePasswordHash(ctx context.Context, id string, newHash string, expectedVersion int64) error
}
