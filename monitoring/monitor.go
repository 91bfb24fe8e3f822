// Package monitoring provides a web server that exposes the live state of an
// accounting session for external inspection.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/alloctrack/acct"
	"github.com/sarchlab/alloctrack/flow"
)

// Monitor can turn an accounting session into a server and allows external
// inspection of the trackers while flows are running.
type Monitor struct {
	pool          *flow.Pool
	portNumber    int
	launchBrowser bool

	trackersLock sync.Mutex
	trackers     []*acct.Tracker
	trackerIndex map[string]*acct.Tracker
}

// NewMonitor creates a new Monitor. A .env file, if present, provides the
// default port through ALLOCTRACK_MONITOR_PORT.
func NewMonitor() *Monitor {
	_ = godotenv.Load()

	m := &Monitor{
		trackerIndex: make(map[string]*acct.Tracker),
	}

	if port, err := strconv.Atoi(
		os.Getenv("ALLOCTRACK_MONITOR_PORT")); err == nil {
		m.portNumber = port
	}

	return m
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowserLaunch makes StartServer open the monitor page in the default
// browser.
func (m *Monitor) WithBrowserLaunch() *Monitor {
	m.launchBrowser = true
	return m
}

// RegisterPool registers the pool to be monitored. The monitor observes the
// pool's binding switches to discover trackers, so the pool must not have
// started running flows yet.
func (m *Monitor) RegisterPool(p *flow.Pool) {
	m.pool = p
	p.AcceptHook(m)
}

// Func registers trackers as they are bound for the first time. It implements
// acct.Hook.
func (m *Monitor) Func(ctx acct.HookCtx) {
	if ctx.Pos != acct.HookPosBindingSwitch {
		return
	}

	info := ctx.Item.(acct.SwitchInfo)
	if info.Next == nil {
		return
	}

	m.trackersLock.Lock()
	defer m.trackersLock.Unlock()

	if _, ok := m.trackerIndex[info.Next.ID()]; ok {
		return
	}

	m.trackers = append(m.trackers, info.Next)
	m.trackerIndex[info.Next.ID()] = info.Next
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/trackers", m.listTrackers)
	r.HandleFunc("/api/tracker/{id}", m.listTrackerDetails)
	r.HandleFunc("/api/pool", m.listPool)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring accounting session with %s\n", url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.launchBrowser {
		err = browser.OpenURL(url + "/api/trackers")
		dieOnErr(err)
	}
}

type trackerRsp struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Bytes    uint64 `json:"bytes"`
}

func (m *Monitor) listTrackers(w http.ResponseWriter, _ *http.Request) {
	m.trackersLock.Lock()
	rsp := make([]trackerRsp, 0, len(m.trackers))
	for _, t := range m.trackers {
		entry := trackerRsp{
			ID:    t.ID(),
			Bytes: t.FlushedBytes(),
		}
		if t.Parent() != nil {
			entry.ParentID = t.Parent().ID()
		}
		rsp = append(rsp, entry)
	}
	m.trackersLock.Unlock()

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listTrackerDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tracker := m.findTrackerOr404(w, id)
	if tracker == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(tracker)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findTrackerOr404(
	w http.ResponseWriter,
	id string,
) *acct.Tracker {
	m.trackersLock.Lock()
	tracker := m.trackerIndex[id]
	m.trackersLock.Unlock()

	if tracker == nil {
		w.WriteHeader(404)
	}

	return tracker
}

func (m *Monitor) listPool(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"num_workers\":%d}", m.pool.NumWorkers())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
