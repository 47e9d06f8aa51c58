package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordAssembly(AssemblyEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordSolve(SolveEvent) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordAssembly(AssemblyEvent{}); err != nil {
		t.Fatalf("record assembly: %v", err)
	}
	if err := m.RecordSolve(SolveEvent{}); err != nil {
		t.Fatalf("record solve: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
}
