package acct

// A Counter counts the resource units consumed on one worker since the worker
// started. It is confined to the worker that owns it, so no synchronization is
// needed. Counters only grow; the accounting core never resets them.
type Counter struct {
	value uint64
}

// Record adds amount to the counter. It returns the amount so that the
// instrumented call site can forward the value it was given.
func (c *Counter) Record(amount uint64) uint64 {
	c.value += amount
	return amount
}

// Read returns the total amount recorded on the owning worker so far.
func (c *Counter) Read() uint64 {
	return c.value
}
