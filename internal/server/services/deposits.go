package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/config"
	"github.com/dmitrijs2005/wastehub/internal/server/hubs"
	"github.com/dmitrijs2005/wastehub/internal/server/metrics"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/repomanager"
)

// SubmitDeposit is the input of DepositService.Submit.
type SubmitDeposit struct {
	UserID      string
	HubID       string
	WasteType   string
	Amount      decimal.Decimal
	Description string
	PhotoURL    string
}

// DepositPage is one page of a deposit listing.
type DepositPage struct {
	Deposits []*models.DepositView
	PageInfo PageInfo
}

// StatusAll selects deposits of every status in List.
const StatusAll = "all"

// DepositService registers deposits and serves the review queue.
type DepositService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hubs        *hubs.Registry
	paging      paging
	log         logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewDepositService(db *sql.DB, m repomanager.RepositoryManager, reg *hubs.Registry, cfg *config.Config,
	log logging.Logger, mx *metrics.Metrics) *DepositService {
	return &DepositService{
		db:          db,
		repomanager: m,
		hubs:        reg,
		paging:      newPaging(cfg),
		log:         log.With("module", "deposits"),
		metrics:     mx,
		now:         utcNow,
	}
}

// Submit records a pending deposit and prices it with the hub's rate for
// the material. Nothing is stored when validation fails.
func (s *DepositService) Submit(ctx context.Context, in SubmitDeposit) (*models.DepositView, error) {
	userID := strings.TrimSpace(in.UserID)
	hubID := strings.TrimSpace(in.HubID)
	wasteType := models.NormalizeWasteType(in.WasteType)

	switch {
	case userID == "":
		return nil, fmt.Errorf("%w: userId is required", common.ErrValidation)
	case hubID == "":
		return nil, fmt.Errorf("%w: hubId is required", common.ErrValidation)
	case wasteType == "":
		return nil, fmt.Errorf("%w: wasteType is required", common.ErrValidation)
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}

	hub, err := s.hubs.Get(hubID)
	if err != nil {
		return nil, err
	}
	estimate := s.hubs.Rate(hub.ID, wasteType).Mul(in.Amount).Round(creditsPlaces)
	if err := checkCredits("estimated credits", estimate); err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := models.Deposit{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		HubID:            hub.ID,
		WasteType:        wasteType,
		Amount:           in.Amount,
		Description:      strings.TrimSpace(in.Description),
		PhotoURL:         strings.TrimSpace(in.PhotoURL),
		Status:           models.DepositPending,
		EstimatedCredits: estimate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repomanager.Deposits(s.db).Create(ctx, &d); err != nil {
		return nil, fmt.Errorf("error creating deposit: %w", err)
	}

	label := string(wasteType)
	if !wasteType.Known() {
		label = "other"
		s.log.Warn(ctx, "deposit with unmapped waste type priced at default rate",
			"deposit_id", d.ID, "waste_type", wasteType, "rate", s.hubs.DefaultRate().String())
	}
	if !hub.Accepts(wasteType) {
		s.log.Warn(ctx, "hub does not list the deposited material",
			"deposit_id", d.ID, "hub_id", hub.ID, "waste_type", wasteType)
	}
	s.log.Info(ctx, "deposit submitted", "deposit_id", d.ID, "user_id", d.UserID, "hub_id", d.HubID,
		"waste_type", d.WasteType, "estimated_credits", d.EstimatedCredits.StringFixed(2))
	s.metrics.DepositSubmitted(label)

	return &models.DepositView{Deposit: d, UserName: user.Name, UserEmail: user.Email, HubName: hub.Name}, nil
}

func (s *DepositService) Get(ctx context.Context, id string) (*models.DepositView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: deposit id is required", common.ErrValidation)
	}
	v, err := s.repomanager.Deposits(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachHubName(v)
	return v, nil
}

// List returns deposits oldest first. An empty status selects the pending
// review queue; StatusAll selects every status.
func (s *DepositService) List(ctx context.Context, status string, page, limit int) (*DepositPage, error) {
	filter := models.DepositFilter{}
	switch st := strings.ToLower(strings.TrimSpace(status)); st {
	case "":
		filter.Status = models.DepositPending
	case StatusAll:
	default:
		parsed, err := models.ParseDepositStatus(st)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		filter.Status = parsed
	}

	info, offset, err := s.paging.resolve(page, limit)
	if err != nil {
		return nil, err
	}
	filter.Offset, filter.Limit = offset, info.Limit

	repo := s.repomanager.Deposits(s.db)
	total, err := repo.Count(ctx, filter.Status)
	if err != nil {
		return nil, err
	}
	items, err := repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		s.attachHubName(v)
	}
	return &DepositPage{Deposits: items, PageInfo: info.withTotal(total)}, nil
}

func (s *DepositService) Summary(ctx context.Context) (*models.StatusSummary, error) {
	return s.repomanager.Deposits(s.db).CountByStatus(ctx)
}

// attachHubName fills the display name from the registry. Hubs that were
// removed from the registry after the deposit was made keep an empty name.
func (s *DepositService) attachHubName(v *models.DepositView) {
	if h, err := s.hubs.Get(v.HubID); err == nil {
		v.HubName = h.Name
	}
}
