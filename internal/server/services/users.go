package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/dbx"
	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/config"
	"github.com/dmitrijs2005/wastehub/internal/server/metrics"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/repomanager"
)

// CreateUser is the input of UserService.Create.
type CreateUser struct {
	Name  string
	Email string
	Role  string
}

// UpdateUser is an administrative change to an account. Nil fields are
// left unchanged.
type UpdateUser struct {
	AdminID       string
	Name          *string
	Email         *string
	Role          *string
	CreditBalance *decimal.Decimal
	CashBalance   *decimal.Decimal
}

// LedgerPage is one page of a user's ledger, newest entry first.
type LedgerPage struct {
	Entries  []*models.LedgerEntry
	PageInfo PageInfo
}

// BalanceAudit compares the stored credit balance with the ledger total.
type BalanceAudit struct {
	UserID        string
	CreditBalance decimal.Decimal
	LedgerTotal   decimal.Decimal
	Drift         decimal.Decimal
}

// Consistent reports whether the stored balance matches the ledger.
func (a *BalanceAudit) Consistent() bool {
	return a.Drift.IsZero()
}

// UserService manages accounts and their credit balance. Every credit
// balance change goes through the ledger.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	paging      paging
	log         logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger, mx *metrics.Metrics) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		paging:      newPaging(cfg),
		log:         log.With("module", "users"),
		metrics:     mx,
		now:         utcNow,
	}
}

// Create registers an account with zero balances.
func (s *UserService) Create(ctx context.Context, in CreateUser) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	now := s.now()
	u := &models.User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Role:          role,
		CreditBalance: decimal.Zero,
		CashBalance:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repomanager.Users(s.db).Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) Ledger(ctx context.Context, userID string, page, limit int) (*LedgerPage, error) {
	info, offset, err := s.paging.resolve(page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Ledger(s.db)
	total, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := repo.ListByUser(ctx, userID, offset, info.Limit)
	if err != nil {
		return nil, err
	}
	return &LedgerPage{Entries: entries, PageInfo: info.withTotal(total)}, nil
}

// AdminUpdate applies an administrative change. A new credit balance is
// recorded as an adjustment entry carrying the difference, in the same
// transaction as the balance write. The cash balance has no ledger and is
// written directly.
func (s *UserService) AdminUpdate(ctx context.Context, userID string, in UpdateUser) (*models.User, error) {
	adminID := strings.TrimSpace(in.AdminID)
	if adminID == "" {
		return nil, fmt.Errorf("%w: adminId is required", common.ErrValidation)
	}
	if in.CreditBalance != nil {
		if err := checkCredits("creditBalance", *in.CreditBalance); err != nil {
			return nil, err
		}
	}
	if in.CashBalance != nil {
		if err := checkCredits("cashBalance", *in.CashBalance); err != nil {
			return nil, err
		}
	}

	var (
		updated *models.User
		delta   decimal.Decimal
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		old, err := users.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		now := s.now()

		if in.CreditBalance != nil {
			target := in.CreditBalance.Round(2)
			delta = target.Sub(old)
			if !delta.IsZero() {
				if err := users.SetCreditBalance(ctx, userID, target, now); err != nil {
					return err
				}
				entry := &models.LedgerEntry{
					ID:            uuid.NewString(),
					UserID:        userID,
					Type:          models.EntryAdjustment,
					Amount:        delta,
					Description:   fmt.Sprintf("Balance adjusted by %s", adminID),
					ReferenceID:   userID,
					ReferenceType: models.RefUser,
					BalanceAfter:  target,
					CreatedAt:     now,
				}
				if err := s.repomanager.Ledger(tx).Append(ctx, entry); err != nil {
					return err
				}
				u.CreditBalance = target
			}
		}

		if err := applyProfile(u, in); err != nil {
			return err
		}
		u.UpdatedAt = now
		if err := users.UpdateProfile(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		s.metrics.BalanceAdjusted()
		s.log.Info(ctx, "credit balance adjusted", "user_id", userID, "admin_id", adminID,
			"delta", delta.StringFixed(2), "balance_after", updated.CreditBalance.StringFixed(2))
	}
	s.log.Info(ctx, "user updated", "user_id", userID, "admin_id", adminID)
	return updated, nil
}

func applyProfile(u *models.User, in UpdateUser) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("%w: name must not be empty", common.ErrValidation)
		}
		u.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return err
		}
		u.Email = email
	}
	if in.Role != nil {
		role, err := models.ParseRole(*in.Role)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		u.Role = role
	}
	if in.CashBalance != nil {
		u.CashBalance = in.CashBalance.Round(2)
	}
	return nil
}

// AuditBalance reports the difference between the stored credit balance
// and the sum of the user's ledger entries.
func (s *UserService) AuditBalance(ctx context.Context, userID string) (*BalanceAudit, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.repomanager.Ledger(s.db).SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BalanceAudit{
		UserID:        userID,
		CreditBalance: u.CreditBalance,
		LedgerTotal:   total,
		Drift:         u.CreditBalance.Sub(total),
	}, nil
}

// ReconcileBalance rewrites the stored credit balance from the ledger
// total. It never runs on its own; an operator triggers it after an audit
// shows drift.
func (s *UserService) ReconcileBalance(ctx context.Context, userID, adminID string) (*BalanceAudit, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return nil, fmt.Errorf("%w: adminId is required", common.ErrValidation)
	}

	var before BalanceAudit
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		stored, err := users.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		total, err := s.repomanager.Ledger(tx).SumByUser(ctx, userID)
		if err != nil {
			return err
		}
		before = BalanceAudit{UserID: userID, CreditBalance: stored, LedgerTotal: total, Drift: stored.Sub(total)}

		if before.Consistent() {
			return nil
		}
		if total.IsNegative() {
			return fmt.Errorf("user %q ledger total %s is negative: %w", userID, total.StringFixed(2), common.ErrInvalidState)
		}
		return users.SetCreditBalance(ctx, userID, total, s.now())
	})
	if err != nil {
		return nil, err
	}

	if !before.Consistent() {
		s.log.Warn(ctx, "credit balance reconciled from ledger", "user_id", userID, "admin_id", adminID,
			"stored", before.CreditBalance.StringFixed(2), "ledger_total", before.LedgerTotal.StringFixed(2))
	}
	return &BalanceAudit{UserID: userID, CreditBalance: before.LedgerTotal, LedgerTotal: before.LedgerTotal, Drift: decimal.Zero}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email %q", common.ErrValidation, raw)
	}
	return email, nil
}
