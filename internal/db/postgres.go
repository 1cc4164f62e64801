package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

// Postgres handles PostgreSQL database operations. The per-entity
// repositories are views over a shared connection pool, obtained via
// Accounts, Movements and Snapshots; WithinTx is the transaction
// manager used by the movement recorder.
type Postgres struct {
	db *sql.DB
}

// creates a new Postgres instance
func NewPostgres(connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// initialize the database schema
func (p *Postgres) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(36) PRIMARY KEY,
		business_id VARCHAR(36) NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_business ON accounts (business_id);

	CREATE TABLE IF NOT EXISTS account_movements (
		id VARCHAR(36) PRIMARY KEY,
		account_id VARCHAR(36) NOT NULL REFERENCES accounts (id),
		type VARCHAR(6) NOT NULL,
		amount DECIMAL(20, 2) NOT NULL CHECK (amount >= 0),
		description TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_movements_account_created
		ON account_movements (account_id, created_at);

	CREATE TABLE IF NOT EXISTS balance_snapshots (
		account_id VARCHAR(36) NOT NULL REFERENCES accounts (id),
		year INT NOT NULL,
		month INT NOT NULL,
		balance DECIMAL(20, 2) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (account_id, year, month)
	);`

	_, err := p.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

type txKey struct{}

// WithinTx runs fn inside a database transaction. The transaction rides
// in the context, so repository calls made with the context passed to fn
// join the same atomic scope. A non-nil error from fn rolls back.
func (p *Postgres) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return p.db
}

// Accounts returns the account repository view.
func (p *Postgres) Accounts() *AccountRepo { return &AccountRepo{p} }

// Movements returns the movement repository view.
func (p *Postgres) Movements() *MovementRepo { return &MovementRepo{p} }

// Snapshots returns the snapshot repository view.
func (p *Postgres) Snapshots() *SnapshotRepo { return &SnapshotRepo{p} }

type AccountRepo struct{ p *Postgres }

type MovementRepo struct{ p *Postgres }

type SnapshotRepo struct{ p *Postgres }

var (
	_ repository.AccountRepository  = (*AccountRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.SnapshotRepository = (*SnapshotRepo)(nil)
)

// Save inserts a new account row.
func (r *AccountRepo) Save(ctx context.Context, account *models.Account) error {
	query := `
	INSERT INTO accounts (id, business_id, name, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)`

	_, err := r.p.querier(ctx).ExecContext(
		ctx, query, account.ID, account.BusinessID, account.Name, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
	SELECT id, business_id, name, created_at, updated_at
	FROM accounts
	WHERE id = $1`

	var account models.Account
	err := r.p.querier(ctx).QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.BusinessID, &account.Name, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// GetByBusinessID lists the accounts of a business.
func (r *AccountRepo) GetByBusinessID(ctx context.Context, businessID string) ([]*models.Account, error) {
	query := `
	SELECT id, business_id, name, created_at, updated_at
	FROM accounts
	WHERE business_id = $1
	ORDER BY created_at`

	rows, err := r.p.querier(ctx).QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.BusinessID, &account.Name, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// Save inserts a ledger movement. Movements are append-only; no update
// or delete statement exists for account_movements.
func (r *MovementRepo) Save(ctx context.Context, movement *models.AccountMovement) error {
	query := `
	INSERT INTO account_movements (id, account_id, type, amount, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.p.querier(ctx).ExecContext(
		ctx, query,
		movement.ID, movement.AccountID, movement.Type, movement.Amount, movement.Description, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}

// GetByAccountID retrieves the full ledger of an account, oldest first.
func (r *MovementRepo) GetByAccountID(ctx context.Context, accountID string) ([]*models.AccountMovement, error) {
	query := `
	SELECT id, account_id, type, amount, COALESCE(description, ''), created_at
	FROM account_movements
	WHERE account_id = $1
	ORDER BY created_at`

	return r.queryMovements(ctx, query, accountID)
}

// GetPageByAccountID retrieves one page of the ledger, newest first.
func (r *MovementRepo) GetPageByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*models.AccountMovement, error) {
	query := `
	SELECT id, account_id, type, amount, COALESCE(description, ''), created_at
	FROM account_movements
	WHERE account_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

	return r.queryMovements(ctx, query, accountID, limit, offset)
}

func (r *MovementRepo) queryMovements(ctx context.Context, query string, args ...any) ([]*models.AccountMovement, error) {
	rows, err := r.p.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []*models.AccountMovement
	for rows.Next() {
		var mv models.AccountMovement
		if err := rows.Scan(&mv.ID, &mv.AccountID, &mv.Type, &mv.Amount, &mv.Description, &mv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, &mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}

	return movements, nil
}

// SumDebits totals the DEBIT movements of an account in [from, to].
func (r *MovementRepo) SumDebits(ctx context.Context, accountID string, from, to time.Time) (float64, error) {
	query := `
	SELECT COALESCE(SUM(amount), 0)
	FROM account_movements
	WHERE account_id = $1 AND type = $2 AND created_at BETWEEN $3 AND $4`

	var total float64
	err := r.p.querier(ctx).QueryRowContext(ctx, query, accountID, string(models.Debit), from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum debits: %w", err)
	}

	return total, nil
}

// Save inserts a monthly balance snapshot.
func (r *SnapshotRepo) Save(ctx context.Context, snapshot *models.BalanceSnapshot) error {
	query := `
	INSERT INTO balance_snapshots (account_id, year, month, balance, created_at)
	VALUES ($1, $2, $3, $4, $5)`

	_, err := r.p.querier(ctx).ExecContext(
		ctx, query, snapshot.AccountID, snapshot.Year, snapshot.Month, snapshot.Balance, snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// GetLatestByAccountID retrieves the most recent snapshot, or nil when
// the account has none yet.
func (r *SnapshotRepo) GetLatestByAccountID(ctx context.Context, accountID string) (*models.BalanceSnapshot, error) {
	query := `
	SELECT account_id, year, month, balance, created_at
	FROM balance_snapshots
	WHERE account_id = $1
	ORDER BY year DESC, month DESC
	LIMIT 1`

	var snapshot models.BalanceSnapshot
	err := r.p.querier(ctx).QueryRowContext(ctx, query, accountID).Scan(
		&snapshot.AccountID, &snapshot.Year, &snapshot.Month, &snapshot.Balance, &snapshot.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return &snapshot, nil
}
