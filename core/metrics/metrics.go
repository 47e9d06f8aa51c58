// Package metrics defines the sink interface for run observability. Sinks
// like PromSink and InfluxSink record assembly and solve outcomes and can be
// combined with NewMultiSink; the factory helpers return a MultiSink
// automatically when multiple sinks are configured.
package metrics

import "time"

// AssemblyEvent summarizes one model assembly.
type AssemblyEvent struct {
	Case        string
	Variables   int
	Constraints int
	Duration    time.Duration
	Time        time.Time
}

// SolveEvent summarizes one solver run.
type SolveEvent struct {
	Case      string
	Status    string
	Objective float64
	Duration  time.Duration
	Time      time.Time
}

// Sink records run events for observability purposes.
type Sink interface {
	RecordAssembly(ev AssemblyEvent) error
	RecordSolve(ev SolveEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssembly(AssemblyEvent) error { return nil }
func (NopSink) RecordSolve(SolveEvent) error       { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssembly forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordAssembly(ev AssemblyEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssembly(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSolve forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}
