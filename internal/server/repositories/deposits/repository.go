package deposits

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

// Repository persists deposits and performs their guarded status transitions.
type Repository interface {
	Create(ctx context.Context, d *models.Deposit) error
	GetByID(ctx context.Context, id string) (*models.DepositView, error)
	List(ctx context.Context, filter models.DepositFilter) ([]*models.DepositView, error)
	Count(ctx context.Context, status models.DepositStatus) (int64, error)
	CountByStatus(ctx context.Context) (*models.StatusSummary, error)

	// MarkVerified and MarkRejected only succeed on a pending deposit. They
	// return common.ErrNotFound for an unknown id and common.ErrInvalidState
	// when the deposit has already been decided.
	MarkVerified(ctx context.Context, id, by string, at time.Time, credits decimal.Decimal) (*models.Deposit, error)
	MarkRejected(ctx context.Context, id, by string, at time.Time, reason string) (*models.Deposit, error)
}
