package queue

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a task that doesn't set its own
const DefaultTimeout = 15 * time.Second

// ErrQueueFull is returned by Submit when the buffer is full
var ErrQueueFull = fmt.Errorf("task queue is full")

// ErrQueueStopped is returned by Submit after Stop
var ErrQueueStopped = fmt.Errorf("task queue is stopped")

// Task is one best-effort background job
type Task struct {
	ID        string
	Name      string
	Timeout   time.Duration
	Run       func(ctx context.Context) error
	CreatedAt time.Time
}

// Stats counts task outcomes since the queue was created
type Stats struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// TaskQueue runs side effects such as emails, activity fan-out and media
// cleanup on a fixed pool of workers so a request never waits on them
type TaskQueue struct {
	tasks   chan *Task
	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	// done receives each finished task ID when set, for tests
	done chan string
}

// NewTaskQueue creates a queue. workers <= 0 uses the CPU count capped at 8.
func NewTaskQueue(workers, buffer int) *TaskQueue {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	if buffer <= 0 {
		buffer = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskQueue{
		tasks:   make(chan *Task, buffer),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (q *TaskQueue) Start() {
	logger.Log.Info("Starting task queue", zap.Int("workers", q.workers), zap.Int("buffer", cap(q.tasks)))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop refuses new tasks, lets queued ones finish until ctx ends, then
// cancels whatever is still running
func (q *TaskQueue) Stop(ctx context.Context) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.tasks)
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		logger.Log.Warn("Task queue drain timed out; cancelling running tasks", zap.Int("pending", len(q.tasks)))
		q.cancel()
		<-drained
	}
	q.cancel()
	logger.Log.Info("Task queue stopped",
		zap.Int64("completed", q.completed.Load()),
		zap.Int64("failed", q.failed.Load()),
		zap.Int64("dropped", q.dropped.Load()))
}

// Submit enqueues a task without blocking
func (q *TaskQueue) Submit(name string, timeout time.Duration, run func(ctx context.Context) error) (*Task, error) {
	task := &Task{
		ID:        uuid.New().String(),
		Name:      name,
		Timeout:   timeout,
		Run:       run,
		CreatedAt: time.Now(),
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return nil, ErrQueueStopped
	}

	select {
	case q.tasks <- task:
		q.submitted.Add(1)
		return task, nil
	default:
		return nil, ErrQueueFull
	}
}

// Go submits a best-effort task and logs instead of failing. A nil queue runs
// the task on its own goroutine.
func (q *TaskQueue) Go(name string, timeout time.Duration, run func(ctx context.Context) error) {
	if q == nil {
		go execute(context.Background(), &Task{Name: name, Timeout: timeout, Run: run})
		return
	}
	if _, err := q.Submit(name, timeout, run); err != nil {
		q.dropped.Add(1)
		metrics.Get().BackgroundTasksTotal.WithLabelValues(name, "dropped").Inc()
		logger.Log.Warn("Dropping background task", zap.String("task", name), zap.Error(err))
	}
}

// Stats returns task counts
func (q *TaskQueue) Stats() Stats {
	return Stats{
		Submitted: q.submitted.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *TaskQueue) worker(id int) {
	defer q.wg.Done()
	for task := range q.tasks {
		if err := execute(q.ctx, task); err != nil {
			q.failed.Add(1)
		} else {
			q.completed.Add(1)
		}
		if q.done != nil {
			q.done <- task.ID
		}
	}
	logger.Log.Debug("Task worker shutting down", zap.Int("worker_id", id))
}

// execute runs a task under its timeout, recovering panics
func execute(parent context.Context, task *Task) (err error) {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "failed"
			logger.Log.Warn("Background task failed",
				zap.String("task", task.Name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			metrics.Get().ErrorsTotal.WithLabelValues(task.Name).Inc()
		}
		metrics.Get().BackgroundTasksTotal.WithLabelValues(task.Name, outcome).Inc()
	}()

	return task.Run(ctx)
}
