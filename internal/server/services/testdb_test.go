package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/config"
	"github.com/dmitrijs2005/wastehub/internal/server/hubs"
	"github.com/dmitrijs2005/wastehub/internal/server/metrics"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/repomanager"
)

// sqliteSchema mirrors the PostgreSQL migration closely enough for the
// repositories' SQL to run unchanged.
const sqliteSchema = `
CREATE TABLE users (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    role           TEXT NOT NULL CHECK (role IN ('user', 'admin', 'company')),
    credit_balance NUMERIC NOT NULL DEFAULT 0 CHECK (credit_balance >= 0),
    cash_balance   NUMERIC NOT NULL DEFAULT 0 CHECK (cash_balance >= 0),
    created_at     TIMESTAMP NOT NULL,
    updated_at     TIMESTAMP NOT NULL
);
CREATE TABLE deposits (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users (id),
    hub_id            TEXT NOT NULL,
    waste_type        TEXT NOT NULL,
    amount            NUMERIC NOT NULL CHECK (amount > 0),
    description       TEXT NOT NULL DEFAULT '',
    photo_url         TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL CHECK (status IN ('pending', 'verified', 'rejected')),
    estimated_credits NUMERIC NOT NULL,
    verified_by       TEXT,
    verified_at       TIMESTAMP,
    credits_allocated NUMERIC,
    rejected_by       TEXT,
    rejected_at       TIMESTAMP,
    rejection_reason  TEXT,
    created_at        TIMESTAMP NOT NULL,
    updated_at        TIMESTAMP NOT NULL,
    CHECK (
        (status = 'pending'  AND verified_at IS NULL     AND rejected_at IS NULL) OR
        (status = 'verified' AND verified_at IS NOT NULL AND rejected_at IS NULL) OR
        (status = 'rejected' AND rejected_at IS NOT NULL AND verified_at IS NULL)
    )
);
CREATE TABLE credit_ledger (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT NOT NULL UNIQUE,
    user_id        TEXT NOT NULL REFERENCES users (id),
    type           TEXT NOT NULL CHECK (type IN ('earned', 'adjustment')),
    amount         NUMERIC NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    reference_id   TEXT NOT NULL,
    reference_type TEXT NOT NULL CHECK (reference_type IN ('deposit', 'user')),
    balance_after  NUMERIC NOT NULL,
    created_at     TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX credit_ledger_earned_ref_uniq
    ON credit_ledger (reference_type, reference_id) WHERE type = 'earned';
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection: every handle sees the same in-memory database and
	// transactions serialize like row locks would
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)
	return db
}

// stepClock returns strictly increasing timestamps.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type env struct {
	db       *sql.DB
	deposits *DepositService
	verify   *VerificationService
	users    *UserService
	metrics  *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := setupDB(t)
	reg, err := hubs.Default()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	log := logging.NewDiscard()
	mx := metrics.New(prometheus.NewRegistry())
	rm := repomanager.NewPostgresRepositoryManager()
	clock := newStepClock()

	e := &env{
		db:       db,
		deposits: NewDepositService(db, rm, reg, cfg, log, mx),
		verify:   NewVerificationService(db, rm, log, mx),
		users:    NewUserService(db, rm, cfg, log, mx),
		metrics:  mx,
	}
	e.deposits.now = clock.Now
	e.verify.now = clock.Now
	e.users.now = clock.Now
	return e
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), CreateUser{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (e *env) submit(t *testing.T, userID, wasteType string, kg int64) *models.DepositView {
	t.Helper()
	d, err := e.deposits.Submit(context.Background(), SubmitDeposit{
		UserID: userID, HubID: "hub-central", WasteType: wasteType, Amount: decimal.NewFromInt(kg),
	})
	require.NoError(t, err)
	return d
}

func (e *env) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func mustDefaultHubs(t *testing.T) *hubs.Registry {
	t.Helper()
	reg, err := hubs.Default()
	require.NoError(t, err)
	return reg
}
