// Package session wires a worker pool, a data recorder, a tracer, and an
// optional monitor into one accounting session.
package session

import (
	"github.com/sarchlab/alloctrack/datarecording"
	"github.com/sarchlab/alloctrack/flow"
	"github.com/sarchlab/alloctrack/monitoring"
	"github.com/sarchlab/alloctrack/tracing"
)

// A Session provides the services required to run attributed workloads.
type Session struct {
	id string

	pool         *flow.Pool
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	tracer       *tracing.DBTracer
}

// ID returns the ID of the session.
func (s *Session) ID() string {
	return s.id
}

// Pool returns the worker pool of the session.
func (s *Session) Pool() *flow.Pool {
	return s.pool
}

// DataRecorder returns the data recorder used in the session.
func (s *Session) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor of the session, or nil when monitoring is
// disabled.
func (s *Session) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Tracer returns the tracer that records binding switches of the session.
func (s *Session) Tracer() *tracing.DBTracer {
	return s.tracer
}

// Terminate waits for all flows to complete, stops the pool, and flushes the
// recorded data.
func (s *Session) Terminate() {
	s.pool.Wait()
	s.pool.Shutdown()
	s.dataRecorder.Flush()
}
