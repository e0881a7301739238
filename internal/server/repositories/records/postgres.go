package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/dbx"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements EmployeeRepository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const employeeCols = "id, first_name, last_name, email, phone, position, salary, status, version, created_at"

func (r *PostgresRepository) Insert(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	query := `
		INSERT INTO employees (first_name, last_name, email, phone, position, salary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.FirstName, e.LastName, e.Email, e.Phone, e.Position, e.Salary, e.Status).
		Scan(&e.ID, &e.Version, &e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := `SELECT ` + employeeCols + ` FROM employees WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT ` + employeeCols + ` FROM employees WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Employee, error) {
	query := `SELECT ` + employeeCols + ` FROM employees ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Employee
	for rows.Next() {
		e := &models.Employee{}
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
			&e.Position, &e.Salary, &e.Status, &e.Version, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Employee) error {
	query := `
		UPDATE employees
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    position = $5, salary = $6, status = $7, version = version + 1
		WHERE id = $8 AND version = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		e.FirstName, e.LastName, e.Email, e.Phone, e.Position, e.Salary, e.Status,
		e.ID, e.Version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrVersionConflict
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Employee, error) {
	e := &models.Employee{}
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.Position, &e.Salary, &e.Status, &e.Version, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}
