// Package records is the generic record-store collaborator the auth core
// hands authenticated requests to. The core does not interpret these rows;
// handlers reach this store only after the access guard admits them.
package records

import (
	"context"

	"github.com/mpetrenko/hrauth/internal/server/models"
)

// EmployeeRepository defines the record-store operations the HR handlers use:
// insert, find by unique field, and update with an optimistic version check.
type EmployeeRepository interface {
	Insert(ctx context.Context, e *models.Employee) (*models.Employee, error)

	// FindByID returns common.ErrorNotFound when absent.
	FindByID(ctx context.Context, id int64) (*models.Employee, error)

	// FindByEmail looks an employee up by its unique email.
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)

	List(ctx context.Context) ([]*models.Employee, error)

	// Update rewrites the record if its stored version still matches
	// e.Version; a concurrent writer yields common.ErrVersionConflict.
	Update(ctx context.Context, e *models.Employee) error
}
