// Package services contains the server-side business logic of WasteHub:
// deposit submission and review, the verification workflow that allocates
// credits, and user balance administration.
package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/server/config"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Column limits: weights are NUMERIC(14,3), credit amounts NUMERIC(14,2).
const (
	amountPlaces  = 3
	creditsPlaces = 2
)

var (
	amountLimit  = decimal.New(1, 11)
	creditsLimit = decimal.New(1, 12)
)

// checkAmount rejects weights the deposits table cannot store exactly.
func checkAmount(v decimal.Decimal) error {
	switch {
	case !v.IsPositive():
		return fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	case !v.Equal(v.Truncate(amountPlaces)):
		return fmt.Errorf("%w: amount allows at most %d decimal places", common.ErrValidation, amountPlaces)
	case v.GreaterThanOrEqual(amountLimit):
		return fmt.Errorf("%w: amount must be below %s", common.ErrValidation, amountLimit.String())
	}
	return nil
}

// checkCredits rejects a credit figure outside [0, creditsLimit). field
// names it in the error message.
func checkCredits(field string, v decimal.Decimal) error {
	switch {
	case v.IsNegative():
		return fmt.Errorf("%w: %s must not be negative", common.ErrValidation, field)
	case v.Round(creditsPlaces).GreaterThanOrEqual(creditsLimit):
		return fmt.Errorf("%w: %s must be below %s", common.ErrValidation, field, creditsLimit.String())
	}
	return nil
}

// PageInfo describes the position of a returned page.
type PageInfo struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// paging turns caller page/limit values into an offset window. A zero page
// means the first page and a zero limit means the default size; limits
// above the maximum are clamped.
type paging struct {
	defaultLimit int
	maxLimit     int
}

func newPaging(cfg *config.Config) paging {
	p := paging{defaultLimit: defaultPageSize, maxLimit: maxPageSize}
	if cfg != nil {
		if cfg.DefaultPageSize > 0 {
			p.defaultLimit = cfg.DefaultPageSize
		}
		if cfg.MaxPageSize > 0 {
			p.maxLimit = cfg.MaxPageSize
		}
	}
	if p.defaultLimit > p.maxLimit {
		p.defaultLimit = p.maxLimit
	}
	return p
}

func (p paging) resolve(page, limit int) (PageInfo, int, error) {
	if page < 0 {
		return PageInfo{}, 0, fmt.Errorf("%w: page must not be negative", common.ErrValidation)
	}
	if limit < 0 {
		return PageInfo{}, 0, fmt.Errorf("%w: limit must not be negative", common.ErrValidation)
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = p.defaultLimit
	}
	if limit > p.maxLimit {
		limit = p.maxLimit
	}
	return PageInfo{Page: page, Limit: limit}, (page - 1) * limit, nil
}

func (pi PageInfo) withTotal(total int64) PageInfo {
	pi.Total = total
	if pi.Limit > 0 {
		pi.TotalPages = int((total + int64(pi.Limit) - 1) / int64(pi.Limit))
	}
	return pi
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
