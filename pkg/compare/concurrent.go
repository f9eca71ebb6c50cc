package compare

import (
	"fmt"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/parallel"
)

// walkConcurrent dispatches eligible cells to a bounded worker pool. The
// dispatcher sleeps on cond while the queue is empty; workers push parents
// that become eligible and wake it. The pool is joined before returning.
func (nc *NetlistComparator) walkConcurrent() error {
	pool, err := parallel.NewWorkerPool(nc.opts.Workers,
		parallel.WithLogger(nc.log),
		parallel.WithPanicHandler(func(r any) {
			nc.fail(fmt.Errorf("%w: %v", ErrWorkerPanic, r))
		}))
	if err != nil {
		return err
	}
	defer pool.Close()

	nc.mu.Lock()
	nc.queue = append(nc.queue[:0], nc.leaves()...)
	for {
		for len(nc.queue) == 0 && !nc.done && nc.err == nil {
			nc.cond.Wait()
		}
		if nc.done || nc.err != nil {
			break
		}
		e := nc.queue[0]
		nc.queue = nc.queue[1:]
		depth := len(nc.queue)
		nc.mu.Unlock()

		nc.opts.Metrics.SetQueueDepth(depth)
		nc.opts.Metrics.SetActiveWorkers(pool.Active())
		pool.Submit(func() {
			nc.runTask(e)
		})
		nc.mu.Lock()
	}
	err = nc.err
	nc.mu.Unlock()

	pool.Close()
	nc.opts.Metrics.SetQueueDepth(0)
	nc.opts.Metrics.SetActiveWorkers(0)
	return err
}

func (nc *NetlistComparator) runTask(e *cellElement) {
	if err := nc.process(e); err != nil {
		nc.fail(err)
		return
	}

	ready := nc.release(e)
	nc.mu.Lock()
	nc.queue = append(nc.queue, ready...)
	if e == nc.top1 {
		nc.done = true
	}
	nc.mu.Unlock()
	nc.cond.Broadcast()
}

// fail records the first error and wakes the dispatcher
func (nc *NetlistComparator) fail(err error) {
	nc.mu.Lock()
	if nc.err == nil {
		nc.err = err
		nc.log.Error("concurrent comparison aborted", logging.Error(err))
	}
	nc.mu.Unlock()
	nc.cond.Broadcast()
}
