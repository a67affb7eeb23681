package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

// Repository is the append-only credit ledger. Entries are never updated
// or removed.
type Repository interface {
	Append(ctx context.Context, e *models.LedgerEntry) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.LedgerEntry, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	SumByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	CountByReference(ctx context.Context, refType models.ReferenceType, refID string) (int64, error)
}
