package flow

import "github.com/sarchlab/alloctrack/acct"

// A Flow is one logical unit of work. While a flow runs, it holds exactly one
// worker of the pool, and all accounting calls act on that worker's slot.
// Across a Yield, the flow's binding travels with the flow; the counters stay
// with the worker.
//
// Flow implements acct.Context, so instrumented code called from a task can
// record consumption and manage trackers without knowing about the pool.
type Flow struct {
	pool *Pool

	// slot is the slot of the worker currently executing the flow. It is only
	// valid between resumption and the next yield.
	slot *acct.Slot

	// binding is the tracker saved at suspension, restored on the next
	// worker.
	binding *acct.Tracker

	done     bool
	resume   chan struct{}
	released chan struct{}
}

var _ acct.Context = (*Flow)(nil)

func newFlow(pool *Pool) *Flow {
	return &Flow{
		pool:     pool,
		resume:   make(chan struct{}),
		released: make(chan struct{}),
	}
}

func (f *Flow) main(task Task) {
	f.pool.ready <- f
	<-f.resume

	task(f)

	f.finish()
}

func (f *Flow) finish() {
	f.done = true
	f.slot = nil
	f.released <- struct{}{}
}

// Yield suspends the flow and releases its worker. The flow resumes on an
// arbitrary worker of the pool, with the binding that was in effect at the
// suspension point restored on the new worker before the flow continues.
func (f *Flow) Yield() {
	f.binding = f.slot.CurrentTracker()
	f.slot = nil

	f.released <- struct{}{}

	f.pool.ready <- f
	<-f.resume
}

// Fork starts a concurrent flow that inherits the binding in effect at the
// fork instant. Binding changes made afterwards in either flow are invisible
// to the other.
func (f *Flow) Fork(task Task) {
	child := newFlow(f.pool)
	child.binding = f.slot.CurrentTracker()

	f.pool.wg.Add(1)
	go child.main(task)
}

// Worker returns the name of the worker currently executing the flow.
func (f *Flow) Worker() string {
	return f.slot.Name()
}

// CurrentTracker returns the tracker bound to the flow.
func (f *Flow) CurrentTracker() *acct.Tracker {
	return f.slot.CurrentTracker()
}

// SetCurrentTracker binds t for the flow and returns the previous binding.
func (f *Flow) SetCurrentTracker(t *acct.Tracker) *acct.Tracker {
	return f.slot.SetCurrentTracker(t)
}

// Record adds amount to the counter of the executing worker.
func (f *Flow) Record(amount uint64) uint64 {
	return f.slot.Record(amount)
}

// UnflushedBytes returns the delta recorded on the executing worker since its
// last binding switch.
func (f *Flow) UnflushedBytes() uint64 {
	return f.slot.UnflushedBytes()
}
