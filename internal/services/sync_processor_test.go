package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/remote"
	"finboard/internal/remote/memory"
	"finboard/internal/storage"
)

type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) Put(context.Context, string, string, string, remote.Document) error {
	return f.err
}

func testSyncConfig() SyncProcessorConfig {
	config := DefaultSyncProcessorConfig()
	config.PollInterval = 50 * time.Millisecond
	config.MaxRetries = 2
	return config
}

func TestDefaultSyncProcessorConfig(t *testing.T) {
	config := DefaultSyncProcessorConfig()

	assert.Equal(t, 10*time.Second, config.PollInterval)
	assert.Equal(t, 20, config.BatchSize)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, time.Hour, config.CleanupInterval)
	assert.Equal(t, 24*time.Hour, config.CleanupAge)
}

func TestNewSyncProcessor_ClampsConcurrency(t *testing.T) {
	config := DefaultSyncProcessorConfig()
	config.Concurrency = 0
	p := NewSyncProcessor(nil, nil, config)
	assert.Equal(t, 1, p.config.Concurrency)
	assert.False(t, p.IsRunning())
}

func TestSyncProcessor_StartTwice(t *testing.T) {
	p := NewSyncProcessor(nil, nil, DefaultSyncProcessorConfig())
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	err := p.Start(context.Background())
	assert.Error(t, err)
}

func TestSyncProcessor_StopNotRunning(t *testing.T) {
	p := NewSyncProcessor(nil, nil, DefaultSyncProcessorConfig())
	assert.NoError(t, p.Stop(context.Background()))
}

func TestSyncProcessor_NotifyNeverBlocks(t *testing.T) {
	p := NewSyncProcessor(nil, nil, DefaultSyncProcessorConfig())
	for i := 0; i < 10; i++ {
		p.Notify()
	}
	assert.Len(t, p.wake, 1)
}

func TestSyncProcessor_PushesUpsertsAndDeletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := NewSyncProcessor(env.repo, env.remote, testSyncConfig())

	keep := env.addTx(t, core.Income, 1000, core.NewDate(2026, 3, 1))
	gone := env.addTx(t, core.Expense, 200, core.NewDate(2026, 3, 2))

	assert.Equal(t, 2, p.ProcessBatch(ctx))
	assert.Equal(t, 2, env.remote.Len(testUser, storage.EntityTransactions))

	doc, err := env.remote.Get(ctx, testUser, storage.EntityTransactions, keep.ID)
	require.NoError(t, err)
	var got core.Transaction
	require.NoError(t, remote.Decode(doc, &got))
	assert.Equal(t, keep.Amount, got.Amount)
	assert.Equal(t, keep.Date.String(), got.Date.String())

	require.NoError(t, env.svc.Transactions.Delete(ctx, testUser, gone.ID))
	assert.Equal(t, 1, p.ProcessBatch(ctx))
	assert.Equal(t, 1, env.remote.Len(testUser, storage.EntityTransactions))

	stats, err := p.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(3), stats.Completed)
}

func TestSyncProcessor_UpsertOfDeletedRowIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := NewSyncProcessor(env.repo, env.remote, testSyncConfig())

	tx := env.addTx(t, core.Income, 1000, core.NewDate(2026, 3, 1))
	require.NoError(t, env.svc.Transactions.Delete(ctx, testUser, tx.ID))

	assert.Equal(t, 2, p.ProcessBatch(ctx))
	assert.Equal(t, 0, env.remote.Len(testUser, storage.EntityTransactions))
}

func TestSyncProcessor_RetriesThenFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := failingStore{Store: env.remote, err: errors.New("unavailable")}
	p := NewSyncProcessor(env.repo, store, testSyncConfig())

	env.addTx(t, core.Income, 1000, core.NewDate(2026, 3, 1))

	assert.Equal(t, 0, p.ProcessBatch(ctx))
	stats, err := p.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)

	assert.Equal(t, 0, p.ProcessBatch(ctx))
	stats, err = p.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(1), stats.Failed)

	// nothing left to pick up
	assert.Equal(t, 0, p.ProcessBatch(ctx))

	// once the remote recovers, retried items go through
	require.NoError(t, p.RetryFailed(ctx))
	p.remote = env.remote
	assert.Equal(t, 1, p.ProcessBatch(ctx))
	assert.Equal(t, 1, env.remote.Len(testUser, storage.EntityTransactions))
}

func TestSyncProcessor_StartStop(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finboard.db"))
	require.NoError(t, err)
	defer repo.Close()

	store := memory.New()
	svc := New(Deps{Storage: repo})
	_, err = svc.Transactions.Add(context.Background(), testUser, core.Transaction{
		Type:     core.Income,
		Amount:   core.Money{Cents: 100},
		Category: "Salary",
		Date:     core.NewDate(2026, 1, 1),
	})
	require.NoError(t, err)

	p := NewSyncProcessor(repo, store, testSyncConfig())
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())

	assert.Eventually(t, func() bool {
		return store.Len(testUser, storage.EntityTransactions) == 1
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
	assert.False(t, p.IsRunning())
}

func TestItemFields(t *testing.T) {
	f := itemFields(storage.SyncQueue{UserID: testUser, Entity: storage.EntityCards, EntityID: "c1", Operation: storage.OpDelete})
	assert.Equal(t, testUser, f[log.FieldUserID])
	assert.Equal(t, storage.EntityCards, f[log.FieldEntity])
	assert.Equal(t, "c1", f[log.FieldEntityID])
	assert.Equal(t, storage.OpDelete, f[log.FieldOperation])
	assert.Equal(t, log.ComponentSync, f[log.FieldComponent])
}
