package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/amqp"
	"finboard/internal/storage"
)

type fakeProcessor struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	retried  bool
	messages []*amqp.SyncMessage
	startErr error
}

func (p *fakeProcessor) Start(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startErr != nil {
		return p.startErr
	}
	p.started = true
	return nil
}

func (p *fakeProcessor) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	return nil
}

func (p *fakeProcessor) HandleMessage(_ context.Context, msg *amqp.SyncMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakeProcessor) Stats(context.Context) (*storage.GetSyncQueueStatsRow, error) {
	return &storage.GetSyncQueueStatsRow{Pending: 1}, nil
}

func (p *fakeProcessor) RetryFailed(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retried = true
	return nil
}

func (p *fakeProcessor) snapshot() (started, stopped, retried bool, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started, p.stopped, p.retried, len(p.messages)
}

// fakeConsumer delivers msgs and then blocks until ctx is done, or fails
// immediately with err.
type fakeConsumer struct {
	msgs []*amqp.SyncMessage
	err  error
}

func (c *fakeConsumer) ConsumeSync(ctx context.Context, handler func(context.Context, *amqp.SyncMessage) error) error {
	if c.err != nil {
		return c.err
	}
	for _, m := range c.msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestSyncWorkerDeliversMessagesAndStops(t *testing.T) {
	proc := &fakeProcessor{}
	cons := &fakeConsumer{msgs: []*amqp.SyncMessage{
		{UserID: "u1", Entity: "transactions", EntityID: "t1", Op: "upsert"},
		{UserID: "u1", Entity: "goals", EntityID: "g1", Op: "upsert"},
	}}
	w := NewSyncWorker(proc, cons, WithStatsInterval(10*time.Millisecond), WithRetryOnStartup(true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, _, _, n := proc.snapshot()
		return n == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	started, stopped, retried, _ := proc.snapshot()
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, retried)
}

func TestSyncWorkerWithoutConsumer(t *testing.T) {
	proc := &fakeProcessor{}
	w := NewSyncWorker(proc, nil, WithStatsInterval(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx))

	started, stopped, retried, _ := proc.snapshot()
	assert.True(t, started)
	assert.True(t, stopped)
	assert.False(t, retried)
}

func TestSyncWorkerConsumerFailure(t *testing.T) {
	proc := &fakeProcessor{}
	w := NewSyncWorker(proc, &fakeConsumer{err: errors.New("access refused")})

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access refused")

	_, stopped, _, _ := proc.snapshot()
	assert.True(t, stopped)
}

func TestSyncWorkerStartFailure(t *testing.T) {
	proc := &fakeProcessor{startErr: errors.New("already running")}
	w := NewSyncWorker(proc, nil)

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start sync processor")

	_, stopped, _, _ := proc.snapshot()
	assert.False(t, stopped)
}
