// Package async runs file jobs on a fixed pool of workers.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one file to process.
type Job struct {
	Path string
}

// Handler processes one job. The context carries the per-job timeout.
type Handler func(ctx context.Context, job Job) error

type Queue struct {
	handle  Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewQueue starts the workers immediately. Jobs run under ctx, so cancelling
// it aborts in-flight work.
func NewQueue(ctx context.Context, handle Handler, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		handle:  handle,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start(ctx)
	return q
}

func (q *Queue) start(ctx context.Context) {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					if ctx.Err() != nil {
						q.logger.Debug("queue.job.skipped", "worker_id", workerID, "path", job.Path)
						continue
					}
					jobCtx, cancel := context.WithTimeout(ctx, q.timeout)
					start := time.Now()
					err := q.handle(jobCtx, job)
					cancel()

					if err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "path", job.Path, "error", err)
					} else {
						q.logger.Info("queue.job.done", "worker_id", workerID, "path", job.Path, "elapsed_ms", time.Since(start).Milliseconds())
					}
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full. It returns false once the queue
// is shutting down or ctx is done.
func (q *Queue) Enqueue(ctx context.Context, job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Path)
		return false
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "path", job.Path)
		return true
	default:
	}
	q.logger.Warn("queue.full", "path", job.Path)
	select {
	case q.ch <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Debug("queue.drained")
	}
}
