package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository/repotest"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
)

type fakePurger struct {
	calls  []time.Duration
	purged int64
	err    error
}

func (f *fakePurger) PurgeCancelled(_ context.Context, retention time.Duration) (int64, error) {
	f.calls = append(f.calls, retention)
	return f.purged, f.err
}

func TestRetentionCleanup(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	outbox := store.Outbox()

	for i := 0; i < 3; i++ {
		require.NoError(t, outbox.Create(ctx, &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: json.RawMessage(`{}`)}))
	}
	events := store.Events()
	require.NoError(t, outbox.MarkProcessed(ctx, events[0].ID))
	require.NoError(t, outbox.MarkProcessed(ctx, events[1].ID))

	purger := &fakePurger{purged: 4}
	w := NewRetentionWorker(purger, outbox, RetentionConfig{
		CancelledRetention: 7 * 24 * time.Hour,
		ProcessedRetention: time.Hour,
		Interval:           time.Minute,
	}, clock.NewFixed(time.Now().Add(2*time.Hour)), logger.Nop())

	require.NoError(t, w.Cleanup(ctx))
	assert.Equal(t, []time.Duration{7 * 24 * time.Hour}, purger.calls)

	remaining := store.Events()
	require.Len(t, remaining, 1)
	assert.Equal(t, events[2].ID, remaining[0].ID)
	assert.Equal(t, model.OutboxStatusPending, remaining[0].Status)
}

func TestRetentionCleanupSkipsDisabled(t *testing.T) {
	store := repotest.NewStore()
	purger := &fakePurger{}
	w := NewRetentionWorker(purger, store.Outbox(), RetentionConfig{}, clock.New(), logger.Nop())

	require.NoError(t, w.Cleanup(context.Background()))
	assert.Empty(t, purger.calls)
}

func TestRetentionCleanupError(t *testing.T) {
	store := repotest.NewStore()
	purger := &fakePurger{err: errors.New("db gone")}
	w := NewRetentionWorker(purger, store.Outbox(), RetentionConfig{CancelledRetention: time.Hour}, clock.New(), logger.Nop())

	assert.ErrorContains(t, w.Cleanup(context.Background()), "db gone")
}

func TestRetentionStartStops(t *testing.T) {
	store := repotest.NewStore()
	w := NewRetentionWorker(&fakePurger{}, store.Outbox(), RetentionConfig{Interval: time.Hour}, clock.New(), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retention worker did not stop")
	}
}
