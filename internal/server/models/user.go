package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the platform role of an account.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
)

// ParseRole validates a role tag. An empty string yields RoleUser.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RoleUser, nil
	case RoleUser, RoleAdmin, RoleCompany:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is an account together with its balance projection. CreditBalance is
// a cache of the user's ledger total; CashBalance has no ledger.
type User struct {
	ID            string
	Name          string
	Email         string
	Role          Role
	CreditBalance decimal.Decimal
	CashBalance   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
