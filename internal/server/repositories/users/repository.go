package users

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

// Repository stores accounts and their balance projection.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)

	// AddCredits adds delta (possibly negative) to the credit balance and
	// returns the resulting balance.
	AddCredits(ctx context.Context, id string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)

	// LockBalance returns the current credit balance and, inside a
	// transaction, holds the row until commit.
	LockBalance(ctx context.Context, id string) (decimal.Decimal, error)

	SetCreditBalance(ctx context.Context, id string, balance decimal.Decimal, at time.Time) error
	UpdateProfile(ctx context.Context, user *models.User) error
}
