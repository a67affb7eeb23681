package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wastehub/internal/client/client"
	"github.com/dmitrijs2005/wastehub/internal/client/config"
	"github.com/dmitrijs2005/wastehub/internal/common"
)

type fakeClient struct {
	client.Client

	listOpts  client.ListOptions
	page      *client.DepositPage
	summary   *client.Summary
	verifyErr error
	rejectErr error

	gotAdmin   string
	gotCredits *decimal.Decimal
	gotReason  string
	gotUser    string
}

func (f *fakeClient) ListDeposits(_ context.Context, opts client.ListOptions) (*client.DepositPage, error) {
	f.listOpts = opts
	return f.page, nil
}

func (f *fakeClient) Summary(context.Context) (*client.Summary, error) {
	return f.summary, nil
}

func (f *fakeClient) Verify(_ context.Context, id, admin string, c *decimal.Decimal) (*client.VerifyResult, error) {
	f.gotAdmin, f.gotCredits = admin, c
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	amount := decimal.NewFromInt(40)
	if c != nil {
		amount = *c
	}
	return &client.VerifyResult{
		Deposit:      client.Deposit{ID: id, Status: "verified"},
		LedgerEntry:  client.LedgerEntry{ID: "l1", Type: "earned", Amount: amount},
		BalanceAfter: amount,
	}, nil
}

func (f *fakeClient) Reject(_ context.Context, id, admin, reason string) (*client.Deposit, error) {
	f.gotAdmin, f.gotReason = admin, reason
	if f.rejectErr != nil {
		return nil, f.rejectErr
	}
	return &client.Deposit{ID: id, Status: "rejected", Rejection: &client.Rejection{RejectedBy: admin, Reason: reason}}, nil
}

func (f *fakeClient) Hubs(context.Context) ([]client.Hub, error) {
	return []client.Hub{{
		ID: "hub-central", Name: "Central Recycling Hub",
		Location:           client.Location{City: "Riverside"},
		AcceptedWasteTypes: []string{"metal", "glass"},
		Rates:              map[string]decimal.Decimal{"metal": decimal.NewFromInt(4), "glass": decimal.RequireFromString("1.5")},
	}}, nil
}

func (f *fakeClient) Ledger(_ context.Context, userID string, opts client.ListOptions) (*client.LedgerPage, error) {
	f.gotUser, f.listOpts = userID, opts
	return &client.LedgerPage{
		Entries: []client.LedgerEntry{{
			ID: "l1", Type: "earned", Amount: decimal.NewFromInt(40), BalanceAfter: decimal.NewFromInt(40),
			ReferenceType: "deposit", ReferenceID: "d1", Description: "metal deposit verified",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
		Pagination: client.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
	}, nil
}

type harness struct {
	app    *App
	out    *bytes.Buffer
	fake   *fakeClient
	cfg    *config.Config
	env    map[string]string
	dialed int
}

func newHarness(tty bool) *harness {
	h := &harness{out: &bytes.Buffer{}, fake: &fakeClient{}, env: map[string]string{}}
	h.app = &App{
		out: h.out,
		lookupEnv: func(k string) (string, bool) {
			v, ok := h.env[k]
			return v, ok
		},
		isTTY: func(io.Writer) bool { return tty },
		newClient: func(cfg *config.Config) (client.Client, error) {
			h.cfg = cfg
			h.dialed++
			return h.fake, nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	return h.app.Run(context.Background(), args)
}

func TestServerResolution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wastectl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://file:1"}`), 0o600))

	t.Run("default", func(t *testing.T) {
		h := newHarness(false)
		h.fake.summary = &client.Summary{}
		require.NoError(t, h.run(t, "summary"))
		assert.Equal(t, "http://127.0.0.1:8080", h.cfg.ServerURL)
	})

	t.Run("config file", func(t *testing.T) {
		h := newHarness(false)
		h.fake.summary = &client.Summary{}
		require.NoError(t, h.run(t, "--config", path, "summary"))
		assert.Equal(t, "http://file:1", h.cfg.ServerURL)
	})

	t.Run("env beats file", func(t *testing.T) {
		h := newHarness(false)
		h.fake.summary = &client.Summary{}
		h.env[config.EnvServer] = "http://env:2"
		require.NoError(t, h.run(t, "--config", path, "summary"))
		assert.Equal(t, "http://env:2", h.cfg.ServerURL)
	})

	t.Run("flag beats env", func(t *testing.T) {
		h := newHarness(false)
		h.fake.summary = &client.Summary{}
		h.env[config.EnvServer] = "http://env:2"
		require.NoError(t, h.run(t, "--server", "http://flag:3", "summary"))
		assert.Equal(t, "http://flag:3", h.cfg.ServerURL)
	})
}

func TestPending_JSONWhenNotTTY(t *testing.T) {
	h := newHarness(false)
	h.fake.page = &client.DepositPage{
		Deposits:   []client.Deposit{{ID: "d1", Status: "pending", WasteType: "metal", Amount: decimal.NewFromInt(10), EstimatedCredits: decimal.NewFromInt(40)}},
		Pagination: client.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
	}

	require.NoError(t, h.run(t, "pending", "--status", "all", "--page", "2", "--limit", "5"))
	assert.Equal(t, client.ListOptions{Status: "all", Page: 2, Limit: 5}, h.fake.listOpts)

	var got client.DepositPage
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	require.Len(t, got.Deposits, 1)
	assert.Equal(t, "d1", got.Deposits[0].ID)
}

func TestPending_TableOnTTY(t *testing.T) {
	h := newHarness(true)
	h.fake.page = &client.DepositPage{
		Deposits: []client.Deposit{{
			ID: "d1", Status: "pending", UserName: "Ann", HubName: "Central", WasteType: "metal",
			Amount: decimal.NewFromInt(10), EstimatedCredits: decimal.NewFromInt(40),
		}},
		Pagination: client.Pagination{Page: 1, Limit: 20, Total: 1, TotalPages: 1},
	}

	require.NoError(t, h.run(t, "pending"))
	out := h.out.String()
	assert.Contains(t, out, "EST. CREDITS")
	assert.Contains(t, out, "40.00")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "page 1/1, 1 total")
}

func TestPending_JSONFlagOnTTY(t *testing.T) {
	h := newHarness(true)
	h.fake.page = &client.DepositPage{Deposits: []client.Deposit{}}

	require.NoError(t, h.run(t, "--json", "pending"))
	assert.True(t, json.Valid(h.out.Bytes()))
}

func TestVerify(t *testing.T) {
	t.Run("uses estimate without --credits", func(t *testing.T) {
		h := newHarness(true)
		require.NoError(t, h.run(t, "verify", "d1", "--admin", "admin-1"))
		assert.Equal(t, "admin-1", h.fake.gotAdmin)
		assert.Nil(t, h.fake.gotCredits)
		assert.Contains(t, h.out.String(), "verified")
	})

	t.Run("override", func(t *testing.T) {
		h := newHarness(false)
		require.NoError(t, h.run(t, "verify", "d1", "--admin", "admin-1", "--credits", "12.5"))
		require.NotNil(t, h.fake.gotCredits)
		assert.True(t, h.fake.gotCredits.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("zero override is allowed", func(t *testing.T) {
		h := newHarness(false)
		require.NoError(t, h.run(t, "verify", "d1", "--admin", "admin-1", "--credits", "0"))
		require.NotNil(t, h.fake.gotCredits)
		assert.True(t, h.fake.gotCredits.IsZero())
	})

	t.Run("admin from env", func(t *testing.T) {
		h := newHarness(false)
		h.env[config.EnvAdmin] = "env-admin"
		require.NoError(t, h.run(t, "verify", "d1"))
		assert.Equal(t, "env-admin", h.fake.gotAdmin)
	})

	t.Run("missing admin", func(t *testing.T) {
		h := newHarness(false)
		err := h.run(t, "verify", "d1")
		assert.ErrorContains(t, err, "admin id required")
	})

	t.Run("bad credits", func(t *testing.T) {
		h := newHarness(false)
		assert.Error(t, h.run(t, "verify", "d1", "--admin", "a", "--credits", "lots"))
		assert.Error(t, h.run(t, "verify", "d1", "--admin", "a", "--credits", "-1"))
		assert.Empty(t, h.fake.gotAdmin)
	})

	t.Run("server conflict surfaces kind", func(t *testing.T) {
		h := newHarness(false)
		h.fake.verifyErr = &client.APIError{Status: 409, Kind: "invalid_state", Message: "deposit is already verified"}
		err := h.run(t, "verify", "d1", "--admin", "admin-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidState)
		assert.Equal(t, "invalid_state: deposit is already verified", err.Error())
	})

	t.Run("requires id", func(t *testing.T) {
		h := newHarness(false)
		assert.Error(t, h.run(t, "verify", "--admin", "a"))
	})
}

func TestReject(t *testing.T) {
	h := newHarness(true)
	require.NoError(t, h.run(t, "reject", "d1", "--admin", "admin-1", "--reason", "contaminated"))
	assert.Equal(t, "contaminated", h.fake.gotReason)
	assert.Contains(t, h.out.String(), "contaminated")

	h = newHarness(false)
	assert.Error(t, h.run(t, "reject", "d1", "--admin", "admin-1"), "reason flag is required")

	h = newHarness(false)
	h.fake.rejectErr = &client.APIError{Status: 400, Kind: "validation", Message: "reason is required"}
	err := h.run(t, "reject", "d1", "--admin", "admin-1", "--reason", "  ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSummaryHubsLedger(t *testing.T) {
	h := newHarness(true)
	h.fake.summary = &client.Summary{Pending: 2, Verified: 3, Rejected: 1, Total: 6}
	require.NoError(t, h.run(t, "summary"))
	assert.Contains(t, h.out.String(), "PENDING")

	h = newHarness(true)
	require.NoError(t, h.run(t, "hubs"))
	assert.Contains(t, h.out.String(), "glass=1.5 metal=4")

	h = newHarness(true)
	require.NoError(t, h.run(t, "ledger", "u1", "--limit", "10"))
	assert.Equal(t, "u1", h.fake.gotUser)
	assert.Equal(t, 10, h.fake.listOpts.Limit)
	assert.Contains(t, h.out.String(), "deposit:d1")
	assert.Contains(t, h.out.String(), "40.00")
}

func TestBadConfigFile(t *testing.T) {
	h := newHarness(false)
	err := h.run(t, "--config", filepath.Join(t.TempDir(), "missing.json"), "summary")
	assert.ErrorContains(t, err, "read config")
	assert.Zero(t, h.dialed)
}

func TestErrorText(t *testing.T) {
	down := fmt.Errorf("%w: dial tcp 127.0.0.1:8080: connection refused", client.ErrUnavailable)
	assert.Contains(t, ErrorText(down), "hint: server unreachable")
	assert.Contains(t, ErrorText(down), config.EnvServer)

	conflict := &client.APIError{Status: 409, Kind: "invalid_state", Message: "deposit is already verified"}
	assert.Equal(t, "invalid_state: deposit is already verified", ErrorText(conflict))
}
