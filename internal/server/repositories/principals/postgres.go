package principals

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

// uniqueViolation is the postgres error code for unique constraint clashes.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	query := `
		INSERT INTO principals (login, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Login, p.Email, p.PasswordHash, p.Role).Scan(&p.ID, &p.Version, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Principal, error) {
	query := `
		SELECT id, login, email, password_hash, role, version, created_at
		FROM principals
		WHERE login = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	query := `
		SELECT id, login, email, password_hash, role, version, created_at
		FROM principals
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdatePasswordHash replaces the stored hash with a single compare-and-swap
// UPDATE. Concurrent readers only ever observe the old or the new hash, never
// a partial write.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, newHash string, expectedVersion int64) error {
	query := `
		UPDATE principals
		SET password_hash = $1, version = version + 1
		WHERE id = $2 AND version = $3
	`
	res, err := r.db.ExecContext(ctx, query, newHash, id, expectedVersion)
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Principal, error) {
	p := &models.Principal{}
	err := row.Scan(&p.ID, &p.Login, &p.Email, &p.PasswordHash, &p.Role, &p.Version, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
