package flow_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/alloctrack/acct"
	"github.com/sarchlab/alloctrack/flow"
)

var _ = Describe("Pool", func() {
	It("should attribute bytes recorded by a single flow", func() {
		pool := flow.NewPool(1)
		defer pool.Shutdown()

		var t *acct.Tracker
		var live uint64

		pool.Go(func(f *flow.Flow) {
			t = acct.Start(f)
			f.Record(100)
			live = t.BytesAllocated(f)
		})
		pool.Wait()

		Expect(live).To(Equal(uint64(100)))
		Expect(t.FlushedBytes()).To(Equal(uint64(100)))
	})

	It("should keep attribution exact across suspension", func() {
		pool := flow.NewPool(1)
		defer pool.Shutdown()

		var t *acct.Tracker
		var afterResume uint64
		var restored bool

		pool.Go(func(f *flow.Flow) {
			t = acct.Start(f)
			f.Record(100)

			f.Yield()

			restored = f.CurrentTracker() == t
			f.Record(1000)
			afterResume = t.BytesAllocated(f)
		})
		pool.Wait()

		Expect(restored).To(BeTrue())
		Expect(afterResume).To(Equal(uint64(1100)))
		Expect(t.FlushedBytes()).To(Equal(uint64(1100)))
	})

	It("should attribute nested scopes across suspension", func() {
		pool := flow.NewPool(1)
		defer pool.Shutdown()

		var t1, t2 *acct.Tracker
		var t1Bytes, t2Bytes uint64

		pool.Go(func(f *flow.Flow) {
			t1 = acct.Start(f)
			f.Record(100000)

			t2 = acct.Start(f)
			f.Yield()
			f.Record(1000000)

			t2Bytes = t2.BytesAllocated(f)
			t1Bytes = t1.BytesAllocated(f)
		})
		pool.Wait()

		Expect(t2Bytes).To(Equal(uint64(1000000)))
		Expect(t1Bytes).To(Equal(uint64(1100000)))
		Expect(t2.FlushedBytes()).To(Equal(uint64(1000000)))
		Expect(t1.FlushedBytes()).To(Equal(uint64(1100000)))
	})

	It("should aggregate forked flows into the shared tracker", func() {
		pool := flow.NewPool(0)
		defer pool.Shutdown()

		var t *acct.Tracker

		pool.Go(func(f *flow.Flow) {
			t = acct.Start(f)

			f.Fork(func(child *flow.Flow) {
				child.Record(300)
			})
			f.Fork(func(child *flow.Flow) {
				child.Record(500)
			})
		})
		pool.Wait()

		Expect(t.FlushedBytes()).To(Equal(uint64(800)))
	})

	It("should keep forked child trackers independent", func() {
		pool := flow.NewPool(0)
		defer pool.Shutdown()

		var shared *acct.Tracker
		var childTrackers [2]*acct.Tracker

		pool.Go(func(f *flow.Flow) {
			shared = acct.Start(f)

			f.Fork(func(child *flow.Flow) {
				childTrackers[0] = acct.Start(child)
				child.Record(300)
			})
			f.Fork(func(child *flow.Flow) {
				childTrackers[1] = acct.Start(child)
				child.Record(500)
			})
		})
		pool.Wait()

		Expect(childTrackers[0].FlushedBytes()).To(Equal(uint64(300)))
		Expect(childTrackers[1].FlushedBytes()).To(Equal(uint64(500)))
		Expect(shared.FlushedBytes()).To(Equal(uint64(800)))
	})

	It("should not leak binding changes between forks", func() {
		pool := flow.NewPool(0)
		defer pool.Shutdown()

		var t1, t2 *acct.Tracker

		pool.Go(func(f *flow.Flow) {
			t1 = acct.Start(f)

			f.Fork(func(child *flow.Flow) {
				t2 = acct.Start(child)
				child.Record(1000)
			})

			f.Record(100)
		})
		pool.Wait()

		Expect(t2.FlushedBytes()).To(Equal(uint64(1000)))
		Expect(t1.FlushedBytes()).To(Equal(uint64(1100)))
	})

	It("should stay exact under many concurrent flows", func() {
		pool := flow.NewPool(0)
		defer pool.Shutdown()

		numFlows := 64
		numRecords := 100
		amount := uint64(7)

		var t *acct.Tracker

		pool.Go(func(f *flow.Flow) {
			t = acct.Start(f)

			for i := 0; i < numFlows; i++ {
				f.Fork(func(child *flow.Flow) {
					for j := 0; j < numRecords; j++ {
						child.Record(amount)
						if j%10 == 0 {
							child.Yield()
						}
					}
				})
			}
		})
		pool.Wait()

		want := uint64(numFlows*numRecords) * amount
		Expect(t.FlushedBytes()).To(Equal(want))
	})

	It("should deliver every flushed delta to hooks", func() {
		pool := flow.NewPool(0)
		defer pool.Shutdown()

		hook := &sumHook{}
		pool.AcceptHook(hook)

		pool.Go(func(f *flow.Flow) {
			acct.Start(f)

			for i := 0; i < 8; i++ {
				f.Fork(func(child *flow.Flow) {
					child.Record(100)
					child.Yield()
					child.Record(25)
				})
			}
		})
		pool.Wait()

		Expect(hook.sum()).To(Equal(uint64(8 * 125)))
	})
})

// sumHook totals the flushed bytes reported by binding switches. Hooks run on
// worker goroutines, so the total is guarded.
type sumHook struct {
	mu    sync.Mutex
	total uint64
}

func (h *sumHook) Func(ctx acct.HookCtx) {
	info := ctx.Item.(acct.SwitchInfo)

	h.mu.Lock()
	h.total += info.Flushed
	h.mu.Unlock()
}

func (h *sumHook) sum() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}
