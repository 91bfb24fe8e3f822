package acct

// Context is the accounting view that instrumented code receives from its
// executing worker. It carries the binding currently in effect for the
// calling logical flow and the worker-confined counter state.
type Context interface {
	// CurrentTracker returns the tracker currently bound, or nil if none.
	CurrentTracker() *Tracker

	// SetCurrentTracker binds t as the current tracker and returns the
	// previous binding. The flush of the worker's unflushed delta into the
	// previous binding completes before t becomes observable.
	SetCurrentTracker(t *Tracker) *Tracker

	// Record adds amount to the calling worker's counter and returns it.
	Record(amount uint64) uint64

	// UnflushedBytes returns the delta recorded on the calling worker since
	// its last binding switch.
	UnflushedBytes() uint64
}

// SwitchInfo describes one binding switch on a slot. It is delivered as the
// Item of a HookPosBindingSwitch hook context.
type SwitchInfo struct {
	Prev, Next *Tracker

	// Flushed is the delta that the switch folded into Prev. It is zero when
	// Prev is nil.
	Flushed uint64
}

// A Slot holds the binding state of one worker: the tracker currently in
// effect, the worker's counter, and the baseline snapshot taken at the last
// binding switch.
//
// A slot is confined to its owning worker. Schedulers that move a logical
// flow between workers must save the binding on suspension and restore it
// through SetCurrentTracker on the resuming worker, so that each worker's
// delta is flushed exactly once at each observed transition.
type Slot struct {
	HookableBase

	name     string
	counter  Counter
	baseline uint64
	current  *Tracker
}

// NewSlot creates a slot. The name identifies the owning worker in hook
// invocations and trace records.
func NewSlot(name string) *Slot {
	s := new(Slot)
	s.name = name
	return s
}

// Name returns the name of the slot.
func (s *Slot) Name() string {
	return s.name
}

// CurrentTracker returns the tracker currently bound to the slot.
func (s *Slot) CurrentTracker() *Tracker {
	return s.current
}

// SetCurrentTracker installs t as the slot's binding and returns the previous
// binding.
//
// Before t becomes observable, the unflushed delta recorded on this worker
// since the last switch is folded into the previous binding (and all its
// ancestors), and the baseline is reset. This runs exactly once per switch.
// Skipping or repeating it would drop or double-count the delta.
func (s *Slot) SetCurrentTracker(t *Tracker) *Tracker {
	prev := s.current

	delta := s.counter.Read() - s.baseline
	if prev != nil {
		prev.accumulate(delta)
	} else {
		delta = 0
	}
	s.baseline = s.counter.Read()

	s.current = t

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosBindingSwitch,
		Item:   SwitchInfo{Prev: prev, Next: t, Flushed: delta},
	})

	return prev
}

// Record adds amount to the worker's counter.
func (s *Slot) Record(amount uint64) uint64 {
	return s.counter.Record(amount)
}

// UnflushedBytes returns the delta recorded since the last binding switch.
func (s *Slot) UnflushedBytes() uint64 {
	return s.counter.Read() - s.baseline
}
