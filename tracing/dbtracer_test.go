package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable("trackers", trackerTableEntry{})
		backend.EXPECT().CreateTable("switches", switchTableEntry{})

		tracer = NewDBTracer(backend)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record started trackers", func() {
		backend.EXPECT().InsertData("trackers", trackerTableEntry{
			ID:       "t2",
			ParentID: "t1",
		})

		tracer.TrackerStarted(TrackerRecord{ID: "t2", ParentID: "t1"})
	})

	It("should record switches in observation order", func() {
		backend.EXPECT().InsertData("switches", switchTableEntry{
			Seq:    1,
			Worker: "worker-0",
			Prev:   "",
			Next:   "t1",
			Bytes:  0,
		})
		backend.EXPECT().InsertData("switches", switchTableEntry{
			Seq:    2,
			Worker: "worker-0",
			Prev:   "t1",
			Next:   "",
			Bytes:  100,
		})

		tracer.BindingSwitched(SwitchRecord{
			Worker: "worker-0", Next: "t1"})
		tracer.BindingSwitched(SwitchRecord{
			Worker: "worker-0", Prev: "t1", Bytes: 100})
	})
})
