package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/config"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/repomanager"
)

type fakeManager struct {
	repomanager.RepositoryManager
	migrateErr error
	migrated   bool
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.ShutdownTimeout = time.Second
	return c
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return db, mock
}

func TestNewApp_RunsMigrationsAndServesHealth(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	mock.ExpectPing()

	rm := &fakeManager{}
	app, err := newApp(context.Background(), testConfig(), db, rm, logging.NewDiscard())
	require.NoError(t, err)
	assert.True(t, rm.migrated)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hubs/hub-central", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewApp_MigrationFailure(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	_, err := newApp(context.Background(), testConfig(), db, &fakeManager{migrateErr: errors.New("locked")}, logging.NewDiscard())
	require.ErrorContains(t, err, "migrations error")
}

func TestNewApp_HubRegistryFile(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	path := filepath.Join(t.TempDir(), "hubs.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_rate = 1.0
[[hubs]]
id = "hub-only"
name = "Only Hub"
accepted = ["paper"]
`), 0o600))

	c := testConfig()
	c.HubRegistryFile = path
	app, err := newApp(context.Background(), c, db, &fakeManager{}, logging.NewDiscard())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hubs/hub-only", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	c.HubRegistryFile = filepath.Join(t.TempDir(), "missing.toml")
	_, err = newApp(context.Background(), c, db, &fakeManager{}, logging.NewDiscard())
	require.Error(t, err)
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := testConfig()
	c.LogLevel = "loud"
	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 3; i++ {
		mock.ExpectPing()
	}
	mock.ExpectClose()

	app, err := newApp(context.Background(), testConfig(), db, &fakeManager{}, logging.NewDiscard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
