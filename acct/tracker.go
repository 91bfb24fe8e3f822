package acct

import "sync/atomic"

// A Tracker accounts the resource usage of one logical scope and all the
// scopes nested under it. Trackers form a forest through parent links. The
// parent link is set when the tracker is created and never changes.
//
// The flushed total is the only field that is shared across workers. It is
// maintained with atomic adds, so multiple workers can flush into the same
// tracker at the same time.
type Tracker struct {
	id      string
	parent  *Tracker
	flushed atomic.Uint64
}

// Start creates a tracker nested under the tracker currently bound in c and
// binds the new tracker as current.
func Start(c Context) *Tracker {
	t := &Tracker{
		id:     GetIDGenerator().Generate(),
		parent: c.CurrentTracker(),
	}

	c.SetCurrentTracker(t)

	return t
}

// ID returns the ID of the tracker.
func (t *Tracker) ID() string {
	return t.id
}

// Parent returns the tracker that this tracker is nested under, or nil for a
// root tracker.
func (t *Tracker) Parent() *Tracker {
	return t.parent
}

// BytesAllocated returns the number of bytes attributed to the tracker. The
// result includes everything flushed into the tracker so far. If the tracker
// covers the binding currently in effect in c, the result also includes the
// calling worker's unflushed delta, so that live work is visible without
// waiting for the next binding switch.
//
// The result is not linearizable across the forest: a delta that another
// worker has recorded but not yet flushed on a sibling branch is not
// included.
func (t *Tracker) BytesAllocated(c Context) uint64 {
	total := t.flushed.Load()

	if t.covers(c.CurrentTracker()) {
		total += c.UnflushedBytes()
	}

	return total
}

// FlushedBytes returns the flushed total only. It is safe to call from any
// goroutine, including ones that never bind the tracker, and is the value to
// read after all flows that used the tracker have completed.
func (t *Tracker) FlushedBytes() uint64 {
	return t.flushed.Load()
}

// covers returns true if t equals b or is an ancestor of b.
func (t *Tracker) covers(b *Tracker) bool {
	for n := b; n != nil; n = n.parent {
		if n == t {
			return true
		}
	}

	return false
}

// accumulate folds a flushed delta into the tracker and all its ancestors.
// The parent chain is finite and acyclic, and each add is atomic, so
// concurrent flushes from multiple descendants are safe without locking.
func (t *Tracker) accumulate(delta uint64) {
	if delta == 0 {
		return
	}

	for n := t; n != nil; n = n.parent {
		n.flushed.Add(delta)
	}
}
