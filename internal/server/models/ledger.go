package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the business reason of a ledger entry.
type EntryType string

const (
	// EntryEarned credits a user for a verified deposit. Amount is positive.
	EntryEarned EntryType = "earned"
	// EntryAdjustment records an administrative balance change. Amount is signed.
	EntryAdjustment EntryType = "adjustment"
)

// ReferenceType names the kind of record a ledger entry points at.
type ReferenceType string

const (
	RefDeposit ReferenceType = "deposit"
	RefUser    ReferenceType = "user"
)

// LedgerEntry is one immutable balance-affecting event. BalanceAfter is the
// owner's credit balance right after the entry was applied.
type LedgerEntry struct {
	ID            string
	UserID        string
	Type          EntryType
	Amount        decimal.Decimal
	Description   string
	ReferenceID   string
	ReferenceType ReferenceType
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}
