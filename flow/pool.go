// Package flow runs suspendable logical flows on a pool of workers.
//
// A flow may yield at designated points and resume later on any worker of the
// pool. Each worker owns an acct.Slot, and the pool saves and restores each
// flow's tracker binding across suspension, so byte attribution stays exact
// while flows hop between workers.
package flow

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sarchlab/alloctrack/acct"
)

// A Task is the body of a flow.
type Task func(f *Flow)

// A Pool runs flows on a fixed set of workers.
type Pool struct {
	numWorkers int
	workers    []*worker
	ready      chan *Flow
	wg         sync.WaitGroup
}

// NewPool creates a pool and starts its workers. If numWorkers is not
// positive, one worker per available CPU is used.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		ready:      make(chan *Flow, 4096),
	}

	for i := 0; i < numWorkers; i++ {
		w := &worker{
			slot: acct.NewSlot(fmt.Sprintf("worker-%d", i)),
			pool: p,
		}
		p.workers = append(p.workers, w)
		go w.run()
	}

	return p
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// AcceptHook registers a hook on the slot of every worker. Hooks must be
// registered before the first flow is submitted.
func (p *Pool) AcceptHook(hook acct.Hook) {
	for _, w := range p.workers {
		w.slot.AcceptHook(hook)
	}
}

// Go submits a root flow with no tracker bound.
func (p *Pool) Go(task Task) {
	p.wg.Add(1)

	f := newFlow(p)
	go f.main(task)
}

// Wait blocks until every submitted flow, including forked ones, has
// completed and its final delta has been flushed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown stops the workers. All flows must have completed before Shutdown
// is called. Submitting a flow after Shutdown panics.
func (p *Pool) Shutdown() {
	close(p.ready)
}

type worker struct {
	slot *acct.Slot
	pool *Pool
}

func (w *worker) run() {
	for f := range w.pool.ready {
		w.serve(f)
	}
}

// serve lends the worker to one flow until the flow yields or finishes.
// Installing the flow's binding and clearing it afterwards both go through
// SetCurrentTracker, so every delta recorded while the flow held this worker
// is flushed at the transition that follows it.
func (w *worker) serve(f *Flow) {
	w.slot.SetCurrentTracker(f.binding)
	f.slot = w.slot

	f.resume <- struct{}{}
	<-f.released

	w.slot.SetCurrentTracker(nil)

	if f.done {
		w.pool.wg.Done()
	}
}
