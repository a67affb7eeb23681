// Package deposits provides the PostgreSQL-backed deposit record store.
package deposits

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

const depositColumns = `id, user_id, hub_id, waste_type, amount, description, photo_url, status,
	estimated_credits, verified_by, verified_at, credits_allocated,
	rejected_by, rejected_at, rejection_reason, created_at, updated_at`

const viewColumns = `d.id, d.user_id, d.hub_id, d.waste_type, d.amount, d.description, d.photo_url, d.status,
	d.estimated_credits, d.verified_by, d.verified_at, d.credits_allocated,
	d.rejected_by, d.rejected_at, d.rejection_reason, d.created_at, d.updated_at,
	u.name, u.email`

type scanner interface {
	Scan(dest ...any) error
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Deposit) error {
	query := `INSERT INTO deposits (id, user_id, hub_id, waste_type, amount, description, photo_url,
			status, estimated_credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.UserID, d.HubID, string(d.WasteType), d.Amount, d.Description, d.PhotoURL,
		string(d.Status), d.EstimatedCredits, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("deposit %q: %w", d.ID, common.ErrAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.DepositView, error) {
	query := `SELECT ` + viewColumns + `
		FROM deposits d JOIN users u ON u.id = d.user_id
		WHERE d.id = $1`

	v, err := scanView(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deposit %q: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// List returns a page of deposits, oldest first. Ties on created_at are
// broken by id so pages are stable.
func (r *PostgresRepository) List(ctx context.Context, filter models.DepositFilter) ([]*models.DepositView, error) {
	query := `SELECT ` + viewColumns + `
		FROM deposits d JOIN users u ON u.id = d.user_id`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE d.status = $1`
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY d.created_at ASC, d.id ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DepositView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Count returns the number of deposits with the given status, or of all
// deposits when status is empty.
func (r *PostgresRepository) Count(ctx context.Context, status models.DepositStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM deposits`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (*models.StatusSummary, error) {
	query := `SELECT status, COUNT(*) FROM deposits GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	s := &models.StatusSummary{}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		switch models.DepositStatus(status) {
		case models.DepositPending:
			s.Pending = n
		case models.DepositVerified:
			s.Verified = n
		case models.DepositRejected:
			s.Rejected = n
		}
		s.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id, by string, at time.Time, credits decimal.Decimal) (*models.Deposit, error) {
	query := `UPDATE deposits
		SET status = 'verified', verified_by = $2, verified_at = $3, credits_allocated = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + depositColumns

	d, err := scanDeposit(r.db.QueryRowContext(ctx, query, id, by, at, credits))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.transitionError(ctx, id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) MarkRejected(ctx context.Context, id, by string, at time.Time, reason string) (*models.Deposit, error) {
	query := `UPDATE deposits
		SET status = 'rejected', rejected_by = $2, rejected_at = $3, rejection_reason = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + depositColumns

	d, err := scanDeposit(r.db.QueryRowContext(ctx, query, id, by, at, reason))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.transitionError(ctx, id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// transitionError explains why a guarded update matched no row.
func (r *PostgresRepository) transitionError(ctx context.Context, id string) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM deposits WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("deposit %q: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return fmt.Errorf("deposit %q is %s: %w", id, status, common.ErrInvalidState)
}

func scanDeposit(s scanner) (*models.Deposit, error) {
	d := &models.Deposit{}
	var dec decision
	if err := s.Scan(depositDest(d, &dec)...); err != nil {
		return nil, err
	}
	dec.apply(d)
	return d, nil
}

func scanView(s scanner) (*models.DepositView, error) {
	v := &models.DepositView{}
	var dec decision
	dest := append(depositDest(&v.Deposit, &dec), &v.UserName, &v.UserEmail)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	dec.apply(&v.Deposit)
	return v, nil
}

// decision holds the nullable verification and rejection columns.
type decision struct {
	verifiedBy       sql.NullString
	verifiedAt       sql.NullTime
	creditsAllocated decimal.NullDecimal
	rejectedBy       sql.NullString
	rejectedAt       sql.NullTime
	reason           sql.NullString
}

func depositDest(d *models.Deposit, dec *decision) []any {
	return []any{
		&d.ID, &d.UserID, &d.HubID, &d.WasteType, &d.Amount, &d.Description, &d.PhotoURL, &d.Status,
		&d.EstimatedCredits, &dec.verifiedBy, &dec.verifiedAt, &dec.creditsAllocated,
		&dec.rejectedBy, &dec.rejectedAt, &dec.reason, &d.CreatedAt, &d.UpdatedAt,
	}
}

func (dec decision) apply(d *models.Deposit) {
	if dec.verifiedAt.Valid {
		d.Verification = &models.Verification{
			VerifiedBy:       dec.verifiedBy.String,
			VerifiedAt:       dec.verifiedAt.Time,
			CreditsAllocated: dec.creditsAllocated.Decimal,
		}
	}
	if dec.rejectedAt.Valid {
		d.Rejection = &models.Rejection{
			RejectedBy: dec.rejectedBy.String,
			RejectedAt: dec.rejectedAt.Time,
			Reason:     dec.reason.String,
		}
	}
}
