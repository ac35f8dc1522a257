package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room. Callers
// surface it upstream instead of blocking a request goroutine on a full queue.
var ErrQueueFull = errors.New("job queue full")

// Job is the queue entry for one unit of background work. It carries only a
// pointer to the real job record; durable state lives in the job store so a
// restart can replay anything that never finished.
type Job struct {
	ID         string
	Type       string
	Attempt    int
	EnqueuedAt time.Time
}

// Handler executes a single job. A non-nil error schedules a retry until the
// attempt budget runs out.
type Handler func(ctx context.Context, job Job) error

// QueueConfig tunes the worker pool. Zero values fall back to safe defaults.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (c QueueConfig) withDefaults() QueueConfig {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = c.Workers * 8
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Queue fans jobs out to a fixed pool of goroutines with bounded buffering
// and linear retry backoff.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig

	pending chan Job
	quit    chan struct{}

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewQueue builds a queue; call Start before enqueueing.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	cfg = cfg.withDefaults()
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		pending: make(chan Job, cfg.BufferSize),
		quit:    make(chan struct{}),
	}
}

// Start launches the worker pool. Calling Start on a running queue is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	for i := 1; i <= q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.run(ctx, i)
	}
	q.cfg.Logger.Sugar().Infow("job queue started",
		"queue", q.name, "workers", q.cfg.Workers, "buffer", q.cfg.BufferSize)
}

// Stop shuts the pool down and waits for in-flight handlers and scheduled
// retries to finish. Jobs still sitting in the buffer are dropped; the job
// store replays them on the next boot.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.quit)
	q.mu.Unlock()

	q.wg.Wait()
	q.cfg.Logger.Sugar().Infow("job queue stopped", "queue", q.name, "dropped", len(q.pending))
}

// Enqueue hands a job to the pool without blocking. Returns ErrQueueFull when
// the buffer is saturated and an error when the queue is not running.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	running := q.running
	q.mu.Unlock()
	if !running {
		return fmt.Errorf("queue %s is not running", q.name)
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case q.pending <- job:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) run(ctx context.Context, worker int) {
	defer q.wg.Done()
	log := q.cfg.Logger.Sugar()
	for {
		select {
		case <-q.quit:
			return
		case <-ctx.Done():
			return
		case job := <-q.pending:
			wait := time.Since(job.EnqueuedAt)
			if err := q.handler(ctx, job); err != nil {
				q.scheduleRetry(ctx, job, err)
				continue
			}
			log.Debugw("job done",
				"queue", q.name, "worker", worker, "job_id", job.ID, "type", job.Type,
				"attempt", job.Attempt, "queue_wait", wait.String())
		}
	}
}

// scheduleRetry requeues a failed job after a delay that grows with each
// attempt. Once the budget is spent the job is dropped here; the handler has
// already recorded the failure on the job record itself.
func (q *Queue) scheduleRetry(ctx context.Context, job Job, cause error) {
	job.Attempt++
	log := q.cfg.Logger.Sugar()
	if job.Attempt > q.cfg.MaxRetries {
		log.Errorw("job retries exhausted",
			"queue", q.name, "job_id", job.ID, "type", job.Type, "error", cause)
		return
	}
	delay := q.cfg.RetryDelay * time.Duration(job.Attempt)
	log.Warnw("job failed, retry scheduled",
		"queue", q.name, "job_id", job.ID, "type", job.Type,
		"attempt", job.Attempt, "delay", delay.String(), "error", cause)

	q.wg.Add(1)
	go func(j Job) {
		defer q.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.quit:
		case <-ctx.Done():
		case <-timer.C:
			select {
			case q.pending <- j:
			default:
				log.Errorw("retry dropped, queue full", "queue", q.name, "job_id", j.ID)
			}
		}
	}(job)
}
