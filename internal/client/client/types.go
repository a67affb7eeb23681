package client

import (
	"time"

	"github.com/shopspring/decimal"
)

type Verification struct {
	VerifiedBy       string          `json:"verifiedBy"`
	VerifiedAt       time.Time       `json:"verifiedAt"`
	CreditsAllocated decimal.Decimal `json:"creditsAllocated"`
}

type Rejection struct {
	RejectedBy string    `json:"rejectedBy"`
	RejectedAt time.Time `json:"rejectedAt"`
	Reason     string    `json:"reason"`
}

type Deposit struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	HubID            string          `json:"hubId"`
	WasteType        string          `json:"wasteType"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description,omitempty"`
	PhotoURL         string          `json:"photoUrl,omitempty"`
	Status           string          `json:"status"`
	EstimatedCredits decimal.Decimal `json:"estimatedCredits"`
	Verification     *Verification   `json:"verification,omitempty"`
	Rejection        *Rejection      `json:"rejection,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	UserName         string          `json:"userName,omitempty"`
	UserEmail        string          `json:"userEmail,omitempty"`
	HubName          string          `json:"hubName,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type DepositPage struct {
	Deposits   []Deposit  `json:"deposits"`
	Pagination Pagination `json:"pagination"`
}

type Summary struct {
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

type LedgerEntry struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	ReferenceID   string          `json:"referenceId"`
	ReferenceType string          `json:"referenceType"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type LedgerPage struct {
	Entries    []LedgerEntry `json:"entries"`
	Pagination Pagination    `json:"pagination"`
}

// VerifyResult is returned by a successful verification.
type VerifyResult struct {
	Deposit      Deposit         `json:"deposit"`
	LedgerEntry  LedgerEntry     `json:"ledgerEntry"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Hub struct {
	ID                 string                     `json:"id"`
	Name               string                     `json:"name"`
	Location           Location                   `json:"location"`
	AcceptedWasteTypes []string                   `json:"acceptedWasteTypes"`
	Rates              map[string]decimal.Decimal `json:"rates"`
}
