package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WasteType tags the material of a deposit. The named constants are the
// materials hubs know about; any other non-empty tag is accepted and priced
// at the registry's default rate.
type WasteType string

const (
	WastePlastic    WasteType = "plastic"
	WasteGlass      WasteType = "glass"
	WastePaper      WasteType = "paper"
	WasteMetal      WasteType = "metal"
	WasteOrganic    WasteType = "organic"
	WasteElectronic WasteType = "electronic"
	WasteTextile    WasteType = "textile"
	WasteHazardous  WasteType = "hazardous"
)

// WasteTypes lists the known materials in display order.
var WasteTypes = []WasteType{
	WastePlastic, WasteGlass, WastePaper, WasteMetal,
	WasteOrganic, WasteElectronic, WasteTextile, WasteHazardous,
}

// NormalizeWasteType lower-cases and trims a raw tag.
func NormalizeWasteType(s string) WasteType {
	return WasteType(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether w is one of the named materials.
func (w WasteType) Known() bool {
	for _, k := range WasteTypes {
		if w == k {
			return true
		}
	}
	return false
}

// DepositStatus is the lifecycle state of a deposit.
type DepositStatus string

const (
	DepositPending  DepositStatus = "pending"
	DepositVerified DepositStatus = "verified"
	DepositRejected DepositStatus = "rejected"
)

// ParseDepositStatus validates a status tag.
func ParseDepositStatus(s string) (DepositStatus, error) {
	switch st := DepositStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case DepositPending, DepositVerified, DepositRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown deposit status %q", s)
}

// Terminal reports whether no further transition is allowed.
func (s DepositStatus) Terminal() bool {
	return s == DepositVerified || s == DepositRejected
}

// Verification is present only on verified deposits.
type Verification struct {
	VerifiedBy       string
	VerifiedAt       time.Time
	CreditsAllocated decimal.Decimal
}

// Rejection is present only on rejected deposits.
type Rejection struct {
	RejectedBy string
	RejectedAt time.Time
	Reason     string
}

// Deposit is a user's submission of waste at a hub.
//
// Exactly one of Verification and Rejection is set once Status leaves
// pending; both are nil while pending.
type Deposit struct {
	ID               string
	UserID           string
	HubID            string
	WasteType        WasteType
	Amount           decimal.Decimal // kilograms
	Description      string
	PhotoURL         string
	Status           DepositStatus
	EstimatedCredits decimal.Decimal
	Verification     *Verification
	Rejection        *Rejection
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DepositView is a deposit enriched with display data for review screens.
type DepositView struct {
	Deposit
	UserName  string
	UserEmail string
	HubName   string
}

// DepositFilter selects a page of deposits. An empty Status selects all.
type DepositFilter struct {
	Status DepositStatus
	Offset int
	Limit  int
}

// StatusSummary counts deposits per status.
type StatusSummary struct {
	Pending  int64
	Verified int64
	Rejected int64
	Total    int64
}
