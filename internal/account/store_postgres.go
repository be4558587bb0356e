package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "sahay/pkg/domain"
	"sahay/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, acct *Account) error {
	query := `
		INSERT INTO accounts (id, email, mobile, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(acct.ID),
		acct.Email,
		acct.Mobile,
		acct.PasswordHash,
		acct.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*Account, error) {
	return s.findOne(ctx, `SELECT id, email, mobile, password_hash, created_at FROM accounts WHERE id = $1`, uuid.UUID(accountID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, `SELECT id, email, mobile, password_hash, created_at FROM accounts WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStore) FindByMobile(ctx context.Context, mobile string) (*Account, error) {
	return s.findOne(ctx, `SELECT id, email, mobile, password_hash, created_at FROM accounts WHERE mobile = $1`, mobile)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*Account, error) {
	var (
		acct  Account
		rawID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&rawID,
		&acct.Email,
		&acct.Mobile,
		&acct.PasswordHash,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	acct.ID = id.AccountID(rawID)
	return &acct, nil
}
