package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/cryptovol/backend/internal/models"
)

var (
	// ErrQueueFull is returned when the bounded task queue is saturated
	ErrQueueFull = errors.New("job queue full")
	// ErrPoolClosed is returned when submitting after Close
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrDuplicateJob is returned when the job id is already queued or executing
	ErrDuplicateJob = errors.New("job already scheduled")
)

// Task identifies one simulation job execution
type Task struct {
	JobID     string
	ModelType models.ModelType
	AssetID   int
}

// Executor runs a single job to one terminal outcome
type Executor interface {
	Execute(ctx context.Context, jobID string, modelType models.ModelType, assetID int) error
}

// Pool is a bounded task queue drained by a fixed set of workers.
// Submission never blocks: a full queue rejects with ErrQueueFull.
// A job id is single-flight: it cannot be queued twice or queued while
// executing.
type Pool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	exec   Executor
	logger *zap.Logger

	// mu guards closed and inflight, and is held across the channel
	// send so Submit can never race a concurrent Close.
	mu       sync.Mutex
	closed   bool
	inflight map[string]struct{}
}

// NewPool allocates a pool with the given queue capacity. The pool does
// not run until Start is called.
func NewPool(exec Executor, capacity int, logger *zap.Logger) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	return &Pool{
		tasks:    make(chan Task, capacity),
		inflight: make(map[string]struct{}),
		exec:     exec,
		logger:   logger,
	}
}

// Start launches the worker goroutines. Workers drain the queue until
// the context is done or the pool is closed.
func (p *Pool) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
}

// Submit enqueues a task without blocking the caller
func (p *Pool) Submit(t Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	if _, ok := p.inflight[t.JobID]; ok {
		return ErrDuplicateJob
	}

	select {
	case p.tasks <- t:
		p.inflight[t.JobID] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the pool from accepting new tasks. Queued tasks are still
// drained; call Wait to block until the workers exit.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
}

// Wait blocks until all workers have exited
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Pending returns the number of queued tasks
func (p *Pool) Pending() int {
	return len(p.tasks)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.logger.Info("executing simulation job",
				zap.Int("worker", id),
				zap.String("job_id", t.JobID),
				zap.String("model_type", string(t.ModelType)))
			if err := p.exec.Execute(ctx, t.JobID, t.ModelType, t.AssetID); err != nil {
				p.logger.Error("simulation job execution failed",
					zap.Int("worker", id),
					zap.String("job_id", t.JobID),
					zap.Error(err))
			}
			p.release(t.JobID)
		}
	}
}

func (p *Pool) release(jobID string) {
	p.mu.Lock()
	delete(p.inflight, jobID)
	p.mu.Unlock()
}
