package tracing

import (
	"sync"

	"github.com/sarchlab/alloctrack/datarecording"
)

type trackerTableEntry struct {
	ID       string
	ParentID string
}

type switchTableEntry struct {
	Seq    uint64
	Worker string
	Prev   string
	Next   string
	Bytes  uint64
}

// DBTracer stores tracker records and binding switches through a
// DataRecorder, so that a recorded run can be inspected with SQL afterwards.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	seq     uint64
}

// NewDBTracer creates a DBTracer and prepares its tables on the backend.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		backend: backend,
	}

	t.backend.CreateTable("trackers", trackerTableEntry{})
	t.backend.CreateTable("switches", switchTableEntry{})

	return t
}

// TrackerStarted records the tracker and its position in the forest.
func (t *DBTracer) TrackerStarted(r TrackerRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData("trackers", trackerTableEntry{
		ID:       r.ID,
		ParentID: r.ParentID,
	})
}

// BindingSwitched records one binding switch. The sequence number orders the
// switches by the time the tracer observed them, across all workers.
func (t *DBTracer) BindingSwitched(s SwitchRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.backend.InsertData("switches", switchTableEntry{
		Seq:    t.seq,
		Worker: s.Worker,
		Prev:   s.Prev,
		Next:   s.Next,
		Bytes:  s.Bytes,
	})
}
