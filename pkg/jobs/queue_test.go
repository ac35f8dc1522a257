package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	done := make(chan struct{})

	handler := func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.ID] = true
		if len(seen) == 3 {
			close(done)
		}
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 2, BufferSize: 8})
	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "noop"}))
	}

	waitFor(t, done, "jobs were not all processed")
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, seen["a"] && seen["b"] && seen["c"])
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan struct{})

	handler := func(ctx context.Context, job Job) error {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{
		Workers:    1,
		MaxRetries: 5,
		RetryDelay: 5 * time.Millisecond,
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "flaky"}))
	waitFor(t, done, "job never succeeded after retries")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueStopsRetryingAfterBudget(t *testing.T) {
	var calls int32
	handler := func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("permanent")
	}

	q := NewQueue("test", handler, QueueConfig{
		Workers:    1,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "doomed"}))
	time.Sleep(100 * time.Millisecond)
	q.Stop()

	// Initial attempt plus one retry, then the budget is spent.
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueEnqueueWhenSaturated(t *testing.T) {
	release := make(chan struct{})
	handler := func(ctx context.Context, job Job) error {
		<-release
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(release)
		q.Stop()
	}()

	var sawFull bool
	for i := 0; i < 4; i++ {
		if err := q.Enqueue(Job{ID: "j"}); err != nil {
			require.ErrorIs(t, err, ErrQueueFull)
			sawFull = true
			break
		}
	}
	assert.True(t, sawFull, "expected a saturated queue to reject an enqueue")
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "early"})
	require.Error(t, err)
}

func TestQueueStopIsIdempotent(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{Workers: 1})
	q.Start(context.Background())
	q.Stop()
	q.Stop()
}
