// Package parallel provides the bounded worker pool that runs cell
// comparisons concurrently.
package parallel

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
)

// WorkerPool runs submitted tasks on a fixed set of goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // guards taskQueue against close during send
	closed    bool         // protected by mu

	onPanic func(any)
	log     logging.Logger

	active    atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// Option configures a WorkerPool
type Option func(*WorkerPool)

// WithPanicHandler installs a callback receiving the value of any task
// panic. The worker keeps running afterwards.
func WithPanicHandler(fn func(any)) Option {
	return func(wp *WorkerPool) {
		wp.onPanic = fn
	}
}

// WithLogger sets the logger used to report recovered panics
func WithLogger(l logging.Logger) Option {
	return func(wp *WorkerPool) {
		wp.log = l
	}
}

// NewWorkerPool creates a pool with the given number of workers. A
// non-positive count means one worker.
func NewWorkerPool(workers int, opts ...Option) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		log:       logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	pool.start()
	return pool, nil
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(id, task)
	}
}

func (wp *WorkerPool) run(id int, task func()) {
	wp.active.Add(1)
	defer func() {
		wp.active.Add(-1)
		wp.completed.Add(1)
		if r := recover(); r != nil {
			wp.panicked.Add(1)
			wp.log.Error("worker panic recovered",
				logging.Int("worker", id),
				logging.Any("panic", r))
			if wp.onPanic != nil {
				wp.onPanic(r)
			}
		}
	}()
	task()
}

// Submit queues a task, blocking while the queue is full. It returns false
// if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for every queued task to finish.
// It is safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Active returns the number of tasks currently running
func (wp *WorkerPool) Active() int {
	return int(wp.active.Load())
}

// Completed returns the number of tasks that have finished, including
// those that panicked
func (wp *WorkerPool) Completed() int {
	return int(wp.completed.Load())
}

// Panicked returns the number of tasks that panicked
func (wp *WorkerPool) Panicked() int {
	return int(wp.panicked.Load())
}
