package tracing

import (
	"sync"

	"github.com/sarchlab/alloctrack/acct"
)

// CollectTrace lets a tracer collect binding switches from a hookable domain,
// typically a flow.Pool or an individual acct.Slot.
func CollectTrace(domain acct.Hookable, tracer Tracer) {
	h := &traceHook{
		t:    tracer,
		seen: make(map[string]bool),
	}

	domain.AcceptHook(h)
}

// A traceHook converts binding-switch hook invocations into tracer calls. It
// reports each tracker to the tracer the first time the tracker appears.
type traceHook struct {
	mu   sync.Mutex
	t    Tracer
	seen map[string]bool
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx acct.HookCtx) {
	if ctx.Pos != acct.HookPosBindingSwitch {
		return
	}

	info := ctx.Item.(acct.SwitchInfo)
	slot := ctx.Domain.(*acct.Slot)

	h.reportNewTracker(info.Next)

	h.t.BindingSwitched(SwitchRecord{
		Worker: slot.Name(),
		Prev:   trackerID(info.Prev),
		Next:   trackerID(info.Next),
		Bytes:  info.Flushed,
	})
}

func (h *traceHook) reportNewTracker(t *acct.Tracker) {
	if t == nil {
		return
	}

	h.mu.Lock()
	if h.seen[t.ID()] {
		h.mu.Unlock()
		return
	}
	h.seen[t.ID()] = true
	h.mu.Unlock()

	h.t.TrackerStarted(TrackerRecord{
		ID:       t.ID(),
		ParentID: trackerID(t.Parent()),
	})
}

func trackerID(t *acct.Tracker) string {
	if t == nil {
		return ""
	}

	return t.ID()
}
