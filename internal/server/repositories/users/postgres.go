// Package users provides the PostgreSQL-backed account and balance repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/dbx"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

const userColumns = `id, name, email, role, credit_balance, cash_balance, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role),
		user.CreditBalance, user.CashBalance, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", user.Email, common.ErrAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role,
		&user.CreditBalance, &user.CashBalance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) AddCredits(ctx context.Context, id string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	query := `UPDATE users SET credit_balance = credit_balance + $2, updated_at = $3
		WHERE id = $1
		RETURNING credit_balance`

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, id, delta, at).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("user %q: %w", id, common.ErrNotFound)
		}
		if dbx.IsNumericOverflow(err) {
			return decimal.Zero, fmt.Errorf("%w: credit balance of user %q would exceed its limit", common.ErrValidation, id)
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

// LockBalance uses a no-op UPDATE rather than SELECT ... FOR UPDATE so the
// same statement takes the row lock on every SQL backend we run against.
func (r *PostgresRepository) LockBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	query := `UPDATE users SET credit_balance = credit_balance
		WHERE id = $1
		RETURNING credit_balance`

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("user %q: %w", id, common.ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) SetCreditBalance(ctx context.Context, id string, balance decimal.Decimal, at time.Time) error {
	query := `UPDATE users SET credit_balance = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, balance, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $2, email = $3, role = $4, cash_balance = $5, updated_at = $6
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role), user.CashBalance, user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", user.Email, common.ErrAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res, user.ID)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("user %q: %w", id, common.ErrNotFound)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
