package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no account exists for the given key.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken indicates the email is already bound to a verified account.
	// Uniqueness is enforced here, at the store boundary.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists verified accounts. Accounts are never deleted.
type Repository interface {
	Create(ctx context.Context, acct Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account. The email unique index backs ErrEmailTaken,
// so two concurrent verifications for the same email cannot both succeed.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) error {
	acctID, err := uuid.Parse(acct.ID)
	if err != nil {
		return fmt.Errorf("parse account id: %w", err)
	}
	cmd, err := r.db.Exec(ctx, `INSERT INTO accounts (id, name, email, birthday, created_at, last_login)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (email) DO NOTHING`,
		acctID, acct.Name, acct.Email, acct.Birthday, acct.CreatedAt.UTC(), acct.LastLogin.UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmailTaken
	}
	return nil
}

// FindByEmail fetches an account by its unique email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, birthday, created_at, last_login
        FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByID fetches an account by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, email, birthday, created_at, last_login
        FROM accounts WHERE id = $1`, acctID)
	return scanAccount(row)
}

// UpdateLastLogin stamps the account's most recent successful login.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET last_login = $1 WHERE id = $2`, at.UTC(), acctID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		id        uuid.UUID
		acct      Account
		birthday  time.Time
		createdAt time.Time
		lastLogin time.Time
	)
	if err := row.Scan(&id, &acct.Name, &acct.Email, &birthday, &createdAt, &lastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acct.ID = id.String()
	acct.Birthday = birthday
	acct.CreatedAt = createdAt.UTC()
	acct.LastLogin = lastLogin.UTC()
	return acct, nil
}
