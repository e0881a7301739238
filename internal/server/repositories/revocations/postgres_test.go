package revocations

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestRevoke_InsertsWithConflictClause(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rt := &models.RevokedToken{
		JTI:        "jti-1",
		RevokedAt:  time.Now(),
		ExpiryHint: time.Now().Add(time.Hour),
	}
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+revoked_tokens\s*\(jti,\s*revoked_at,\s*expiry_hint\).*ON\s+CONFLICT\s*\(jti\)\s*DO\s+NOTHING`).
		WithArgs(rt.JTI, rt.RevokedAt, rt.ExpiryHint).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), rt); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
}

func TestRevoke_IdempotentOnConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rt := &models.RevokedToken{
		JTI:        "jti-1",
		RevokedAt:  time.Now(),
		ExpiryHint: time.Now().Add(time.Hour),
	}
	// Second revocation hits the conflict clause: zero rows, no error.
	mock.ExpectExec(`INSERT\s+INTO\s+revoked_tokens`).
		WithArgs(rt.JTI, rt.RevokedAt, rt.ExpiryHint).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Revoke(context.Background(), rt); err != nil {
		t.Fatalf("Revoke must be idempotent, got error: %v", err)
	}
}

func TestIsRevoked_KnownAndUnknown(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+1\s+FROM\s+revoked_tokens\s+WHERE\s+jti\s*=\s*\$1`).
		WithArgs("jti-known").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	revoked, err := repo.IsRevoked(context.Background(), "jti-known")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if !revoked {
		t.Fatalf("expected jti-known to be revoked")
	}

	mock.ExpectQuery(`SELECT\s+1\s+FROM\s+revoked_tokens\s+WHERE\s+jti\s*=\s*\$1`).
		WithArgs("jti-unknown").
		WillReturnError(sql.ErrNoRows)

	revoked, err = repo.IsRevoked(context.Background(), "jti-unknown")
	if err != nil {
		t.Fatalf("IsRevoked error: %v", err)
	}
	if revoked {
		t.Fatalf("unknown jti must be valid by default")
	}
}

func TestPurgeExpiredBefore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`DELETE\s+FROM\s+revoked_tokens\s+WHERE\s+expiry_hint\s*<\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.PurgeExpiredBefore(context.Background(), now)
	if err != nil {
		t.Fatalf("PurgeExpiredBefore error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 purged rows, got %d", n)
	}
}
