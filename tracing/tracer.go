// Package tracing observes tracker creation and flush activity and forwards
// them to recording backends.
package tracing

// A TrackerRecord describes one tracker.
type TrackerRecord struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
}

// A SwitchRecord describes one binding switch observed on a worker. Prev and
// Next are tracker IDs; an empty string stands for no binding. Bytes is the
// delta that the switch flushed into Prev.
type SwitchRecord struct {
	Worker string `json:"worker"`
	Prev   string `json:"prev"`
	Next   string `json:"next"`
	Bytes  uint64 `json:"bytes"`
}

// Tracer can collect tracker activity. Implementations must be safe for
// concurrent use, as switches are reported from every worker.
type Tracer interface {
	// TrackerStarted is called once, when a tracker is bound for the first
	// time.
	TrackerStarted(t TrackerRecord)

	// BindingSwitched is called on every binding switch.
	BindingSwitched(s SwitchRecord)
}
