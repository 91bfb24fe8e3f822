package session

import (
	"github.com/rs/xid"

	"github.com/sarchlab/alloctrack/datarecording"
	"github.com/sarchlab/alloctrack/flow"
	"github.com/sarchlab/alloctrack/monitoring"
	"github.com/sarchlab/alloctrack/tracing"
)

// Builder can be used to build a session.
type Builder struct {
	numWorkers     int
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithWorkers sets the number of workers in the pool. The default is one
// worker per available CPU.
func (b Builder) WithWorkers(n int) Builder {
	b.numWorkers = n
	return b
}

// WithoutMonitoring sets the session to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the session.
func (b Builder) Build() *Session {
	b.parametersMustBeValid()

	s := &Session{}
	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "alloctrack_" + s.id
	}
	s.dataRecorder = datarecording.NewDataRecorder(outputPath)

	s.pool = flow.NewPool(b.numWorkers)

	s.tracer = tracing.NewDBTracer(s.dataRecorder)
	tracing.CollectTrace(s.pool, s.tracer)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterPool(s.pool)
		s.monitor.StartServer()
	}

	return s
}
