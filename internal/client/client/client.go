package client

import (
	"context"

	"github.com/shopspring/decimal"
)

// ListOptions selects a page of a listing. Zero values let the server pick.
type ListOptions struct {
	Status string
	Page   int
	Limit  int
}

// Client is the admin-facing API contract.
type Client interface {
	Ping(ctx context.Context) error
	ListDeposits(ctx context.Context, opts ListOptions) (*DepositPage, error)
	Summary(ctx context.Context) (*Summary, error)
	Verify(ctx context.Context, depositID, adminID string, credits *decimal.Decimal) (*VerifyResult, error)
	Reject(ctx context.Context, depositID, adminID, reason string) (*Deposit, error)
	Hubs(ctx context.Context) ([]Hub, error)
	Ledger(ctx context.Context, userID string, opts ListOptions) (*LedgerPage, error)
}
