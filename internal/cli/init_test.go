package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/remote/memory"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "data", "finboard.db"))
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AMQP_URL", "")
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid port")
}

func TestNewApp_LocalOnly(t *testing.T) {
	cfg := testConfig(t)
	logger := SetupLogger(cfg)

	app, err := NewApp(context.Background(), cfg, logger, Options{Remote: true, AMQP: true})
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Remote, "no Firestore project configured")
	assert.Nil(t, app.AMQP, "no broker configured")
	require.NoError(t, app.Storage.Ping(context.Background()))

	tx, err := app.Services.Transactions.Add(context.Background(), "u1", core.Transaction{
		Type: core.Income, Amount: core.Money{Cents: 100}, Category: "Salary", Date: core.DateOf(time.Now()),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)

	_, err = app.SyncProcessor()
	assert.Error(t, err)
}

func TestApp_SyncProcessorUsesConfig(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(context.Background(), cfg, SetupLogger(cfg), Options{})
	require.NoError(t, err)
	defer app.Close()

	app.Remote = memory.New()
	p, err := app.SyncProcessor()
	require.NoError(t, err)
	assert.False(t, p.IsRunning())
}

func TestApp_CloseTwice(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(context.Background(), cfg, SetupLogger(cfg), Options{})
	require.NoError(t, err)
	require.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}

func TestSignalContext_Cancel(t *testing.T) {
	ctx, cancel := SignalContext(context.Background())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
