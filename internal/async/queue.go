package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath-tutoring/docpipe/internal/pipeline"
)

// Job is the smallest useful unit of queued work: one processing job to
// push through extraction and validation.
type Job struct {
	JobID       uuid.UUID
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// memQueue is an in-process worker pool over a buffered channel. Jobs
// survive neither restarts nor a full buffer; callers get an immediate
// error when the buffer is full rather than blocking an upload.
type memQueue struct {
	jobs      chan Job
	processor *pipeline.Processor
	logger    *slog.Logger
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

var ErrQueueFull = errors.New("processing queue is full")
var ErrQueueClosed = errors.New("processing queue is shut down")

// NewMemQueue starts workers goroutines draining a buffer of size cap.
func NewMemQueue(processor *pipeline.Processor, workers, capacity int, logger *slog.Logger) Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 2
	}
	if capacity <= 0 {
		capacity = 64
	}
	q := &memQueue{
		jobs:      make(chan Job, capacity),
		processor: processor,
		logger:    logger,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

func (q *memQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		q.logger.Info("job enqueued", "job_id", job.JobID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for in-flight jobs, up to the
// context deadline.
func (q *memQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.logger.Info("queue drained")
	case <-ctx.Done():
		q.logger.Warn("queue shutdown timed out", "error", ctx.Err())
	}
}

func (q *memQueue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		start := time.Now()
		// workers own their lifetime; per-job cancellation is not wired
		result, err := q.processor.ProcessJob(context.Background(), job.JobID)
		if err != nil {
			q.logger.Error("job processing failed", "worker", id, "job_id", job.JobID, "error", err)
			continue
		}
		q.logger.Info("job processing finished",
			"worker", id,
			"job_id", job.JobID,
			"status", result.Status,
			"issues", result.TotalIssues,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
}
