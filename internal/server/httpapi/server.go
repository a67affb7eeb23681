// Package httpapi exposes the WasteHub services as a JSON REST API on a chi
// router.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/metrics"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
	"github.com/dmitrijs2005/wastehub/internal/server/services"
)

type DepositService interface {
	Submit(ctx context.Context, in services.SubmitDeposit) (*models.DepositView, error)
	Get(ctx context.Context, id string) (*models.DepositView, error)
	List(ctx context.Context, status string, page, limit int) (*services.DepositPage, error)
	Summary(ctx context.Context) (*models.StatusSummary, error)
}

type VerificationService interface {
	Verify(ctx context.Context, depositID, adminID string, credits *decimal.Decimal) (*services.Verification, error)
	Reject(ctx context.Context, depositID, adminID, reason string) (*models.Deposit, error)
}

type UserService interface {
	Create(ctx context.Context, in services.CreateUser) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Ledger(ctx context.Context, userID string, page, limit int) (*services.LedgerPage, error)
	AdminUpdate(ctx context.Context, userID string, in services.UpdateUser) (*models.User, error)
	AuditBalance(ctx context.Context, userID string) (*services.BalanceAudit, error)
	ReconcileBalance(ctx context.Context, userID, adminID string) (*services.BalanceAudit, error)
}

// HubDirectory is satisfied by *hubs.Registry.
type HubDirectory interface {
	Get(id string) (*models.Hub, error)
	List() []*models.Hub
	Rate(hubID string, wasteType models.WasteType) decimal.Decimal
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the API. Gatherer may be nil, in which case
// /metrics is not mounted.
type Deps struct {
	Deposits       DepositService
	Verification   VerificationService
	Users          UserService
	Hubs           HubDirectory
	DB             Pinger
	Logger         logging.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

type api struct {
	deposits     DepositService
	verification VerificationService
	users        UserService
	hubs         HubDirectory
	db           Pinger
	logger       logging.Logger
	metrics      *metrics.Metrics
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	a := &api{
		deposits:     d.Deposits,
		verification: d.Verification,
		users:        d.Users,
		hubs:         d.Hubs,
		db:           d.DB,
		logger:       d.Logger.With("module", "http"),
		metrics:      d.Metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestIDHeader)
	r.Use(a.observe)
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.Get("/health", a.health)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/hubs", func(r chi.Router) {
		r.Get("/", a.listHubs)
		r.Get("/{id}", a.getHub)
	})

	r.Route("/deposits", func(r chi.Router) {
		r.Post("/", a.submitDeposit)
		r.Get("/pending", a.listDeposits)
		r.Get("/admin/summary", a.summary)
		r.Get("/{id}", a.getDeposit)
		r.Post("/{id}/verify", a.verifyDeposit)
		r.Post("/{id}/reject", a.rejectDeposit)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", a.createUser)
		r.Get("/{id}", a.getUser)
		r.Put("/{id}", a.updateUser)
		r.Get("/{id}/ledger", a.userLedger)
		r.Get("/{id}/balance/audit", a.auditBalance)
		r.Post("/{id}/balance/reconcile", a.reconcileBalance)
	})

	return r
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
