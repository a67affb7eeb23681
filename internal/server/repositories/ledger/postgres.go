// Package ledger provides the PostgreSQL-backed credit ledger.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/dbx"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one entry. A second earned entry for the same deposit is
// refused by a unique index and reported as common.ErrAlreadyExists.
func (r *PostgresRepository) Append(ctx context.Context, e *models.LedgerEntry) error {
	query := `INSERT INTO credit_ledger (id, user_id, type, amount, description,
			reference_id, reference_type, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, string(e.Type), e.Amount, e.Description,
		e.ReferenceID, string(e.ReferenceType), e.BalanceAfter, e.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("ledger entry for %s %q: %w", e.ReferenceType, e.ReferenceID, common.ErrAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByUser returns a page of a user's entries, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.LedgerEntry, error) {
	query := `SELECT id, user_id, type, amount, description, reference_id, reference_type, balance_after, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &e.Description,
			&e.ReferenceID, &e.ReferenceType, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credit_ledger WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SumByUser returns the signed total of a user's entries; zero when there are none.
func (r *PostgresRepository) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, `SELECT SUM(amount) FROM credit_ledger WHERE user_id = $1`, userID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *PostgresRepository) CountByReference(ctx context.Context, refType models.ReferenceType, refID string) (int64, error) {
	query := `SELECT COUNT(*) FROM credit_ledger WHERE reference_type = $1 AND reference_id = $2`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, string(refType), refID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
