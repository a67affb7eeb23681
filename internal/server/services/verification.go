package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/dbx"
	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/metrics"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/repomanager"
)

// Verification is the outcome of a successful Verify.
type Verification struct {
	Deposit      *models.Deposit
	Entry        *models.LedgerEntry
	BalanceAfter decimal.Decimal
}

// VerificationService moves deposits out of pending. Verify allocates
// credits; Reject has no balance effects.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, mx *metrics.Metrics) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "verification"),
		metrics:     mx,
		now:         utcNow,
	}
}

// Verify marks a pending deposit verified and credits its owner. When
// credits is nil the deposit's estimate is allocated. The status change,
// the balance update and the earned ledger entry commit together or not
// at all; of two concurrent calls for one deposit exactly one succeeds and
// the other fails with common.ErrInvalidState.
func (s *VerificationService) Verify(ctx context.Context, depositID, adminID string, credits *decimal.Decimal) (*Verification, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return nil, fmt.Errorf("%w: adminId is required", common.ErrValidation)
	}
	if credits != nil {
		if err := checkCredits("creditsToAllocate", *credits); err != nil {
			return nil, err
		}
	}

	var out *Verification
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		deposits := s.repomanager.Deposits(tx)

		current, err := deposits.GetByID(ctx, depositID)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return fmt.Errorf("deposit %q is %s: %w", depositID, current.Status, common.ErrInvalidState)
		}
		credited, err := s.repomanager.Ledger(tx).CountByReference(ctx, models.RefDeposit, depositID)
		if err != nil {
			return err
		}
		if credited > 0 {
			return fmt.Errorf("deposit %q already has ledger entries: %w", depositID, common.ErrInvalidState)
		}

		amount := current.EstimatedCredits
		if credits != nil {
			amount = credits.Round(creditsPlaces)
		}

		now := s.now()
		// The guarded update is what serializes concurrent verifiers; the
		// read above only short-cuts the common case.
		d, err := deposits.MarkVerified(ctx, depositID, adminID, now, amount)
		if err != nil {
			return err
		}

		balance, err := s.repomanager.Users(tx).AddCredits(ctx, d.UserID, amount, now)
		if err != nil {
			return err
		}

		entry := &models.LedgerEntry{
			ID:            uuid.NewString(),
			UserID:        d.UserID,
			Type:          models.EntryEarned,
			Amount:        amount,
			Description:   fmt.Sprintf("Credits for verified %s deposit (%s kg)", d.WasteType, d.Amount.String()),
			ReferenceID:   d.ID,
			ReferenceType: models.RefDeposit,
			BalanceAfter:  balance,
			CreatedAt:     now,
		}
		if err := s.repomanager.Ledger(tx).Append(ctx, entry); err != nil {
			return err
		}

		out = &Verification{Deposit: d, Entry: entry, BalanceAfter: balance}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidState) {
			s.metrics.TransitionConflict("verify")
		}
		return nil, err
	}

	s.log.Info(ctx, "deposit verified", "deposit_id", depositID, "admin_id", adminID,
		"user_id", out.Deposit.UserID, "credits", out.Entry.Amount.StringFixed(2),
		"balance_after", out.BalanceAfter.StringFixed(2))
	s.metrics.DepositVerified(out.Entry.Amount)
	return out, nil
}

// Reject marks a pending deposit rejected. A blank reason is refused
// before anything is written.
func (s *VerificationService) Reject(ctx context.Context, depositID, adminID, reason string) (*models.Deposit, error) {
	adminID = strings.TrimSpace(adminID)
	reason = strings.TrimSpace(reason)
	if adminID == "" {
		return nil, fmt.Errorf("%w: adminId is required", common.ErrValidation)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", common.ErrValidation)
	}

	d, err := s.repomanager.Deposits(s.db).MarkRejected(ctx, depositID, adminID, s.now(), reason)
	if err != nil {
		if errors.Is(err, common.ErrInvalidState) {
			s.metrics.TransitionConflict("reject")
		}
		return nil, err
	}

	s.log.Info(ctx, "deposit rejected", "deposit_id", d.ID, "admin_id", adminID, "reason", reason)
	s.metrics.DepositRejected()
	return d, nil
}
