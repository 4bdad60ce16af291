package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource is a TimeSource with fixed, cyclic durations per stream and a
// cyclic branch sequence, for hand-checked scenarios.
type scriptedSource struct {
	durations map[Stream][]float64
	branches  []Branch
	cursors   map[Stream]int
	branchIdx int
}

func newScriptedSource(i1, i22, i23, ws1, ws2, ws3 float64, branches ...Branch) *scriptedSource {
	if len(branches) == 0 {
		branches = []Branch{BranchB}
	}
	return &scriptedSource{
		durations: map[Stream][]float64{
			StreamInspection1:  {i1},
			StreamInspection22: {i22},
			StreamInspection23: {i23},
			StreamWorkstation1: {ws1},
			StreamWorkstation2: {ws2},
			StreamWorkstation3: {ws3},
		},
		branches: branches,
		cursors:  make(map[Stream]int),
	}
}

func (s *scriptedSource) next(st Stream) float64 {
	d := s.durations[st]
	i := s.cursors[st]
	s.cursors[st] = i + 1
	return d[i%len(d)]
}

func (s *scriptedSource) NextInspection1() float64 { return s.next(StreamInspection1) }
func (s *scriptedSource) NextInspection2BranchB() float64 { return s.next(StreamInspection22) }
func (s *scriptedSource) NextInspection2BranchC() float64 { return s.next(StreamInspection23) }
func (s *scriptedSource) NextWorkstation1() float64 { return s.next(StreamWorkstation1) }
func (s *scriptedSource) NextWorkstation2() float64 { return s.next(StreamWorkstation2) }
func (s *scriptedSource) NextWorkstation3() float64 { return s.next(StreamWorkstation3) }

func (s *scriptedSource) NextInspector2Branch() Branch {
	b := s.branches[s.branchIdx%len(s.branches)]
	s.branchIdx++
	return b
}

// newTestSimulator builds a stochastic simulator and fails the test on error.
func newTestSimulator(t *testing.T, seed int64, horizon, warmUp int, policy string) *Simulator {
	t.Helper()
	ts, err := NewStochasticSource(seed, DefaultRates())
	require.NoError(t, err)
	s, err := NewSimulator(NewConfig(horizon, warmUp), ts, NewRoutingPolicy(policy))
	require.NoError(t, err)
	s.Meta = RunMeta{Seed: seed, Policy: policy}
	return s
}

// testHistoricalData returns small recorded streams with distinct lengths.
func testHistoricalData() *HistoricalData {
	return &HistoricalData{Samples: map[Stream][]float64{
		StreamInspection1:  {10.5, 3.2, 8.1, 12.7},
		StreamInspection22: {15.1, 9.9, 20.3},
		StreamInspection23: {22.4, 18.0},
		StreamWorkstation1: {4.6, 5.2, 3.9, 6.1, 4.4},
		StreamWorkstation2: {11.0, 9.4, 12.8},
		StreamWorkstation3: {8.7, 9.1},
	}}
}

// checkInvariants scans the full state and the future-event list and fails the
// test on any violated line invariant.
func checkInvariants(t *testing.T, s *Simulator) {
	t.Helper()
	st := s.State

	for b, n := range st.Buffers {
		if n < 0 || n > BufferCapacity {
			t.Fatalf("buffer %v out of range: %d", Buffer(b), n)
		}
	}

	var perResource [NumResources]int
	for _, ev := range s.Queue.Events() {
		perResource[ev.Resource()]++
		if ev.Time() < st.Clock {
			t.Fatalf("pending event %v is in the past (clock %.6f)", ev, st.Clock)
		}
	}
	for r, n := range perResource {
		if n > 1 {
			t.Fatalf("%v has %d pending events", Resource(r), n)
		}
		if (n > 0) != s.Queue.HasPending(Resource(r)) {
			t.Fatalf("HasPending(%v) disagrees with scan count %d", Resource(r), n)
		}
	}

	if st.Inspector1Hold != nil && perResource[ResourceInspector1] > 0 {
		t.Fatal("inspector 1 is both held and running")
	}
	if st.Inspector2Hold != nil && perResource[ResourceInspector2] > 0 {
		t.Fatal("inspector 2 is both held and running")
	}

	sum := st.Completed[0] + st.Completed[1] + st.Completed[2]
	if sum != st.NumberProducts {
		t.Fatalf("completions %v do not sum to %d", st.Completed, st.NumberProducts)
	}
	if s.Config.Horizon > 0 && st.NumberProducts > s.Config.Horizon {
		t.Fatalf("completed %d products beyond horizon %d", st.NumberProducts, s.Config.Horizon)
	}
}

// runChecked runs s to completion, checking invariants and clock monotonicity
// after every event.
func runChecked(t *testing.T, s *Simulator) Output {
	t.Helper()
	s.Initialize()
	checkInvariants(t, s)
	prev := s.State.Clock
	for s.Step() {
		if s.State.Clock < prev {
			t.Fatalf("clock went backward: %.6f -> %.6f", prev, s.State.Clock)
		}
		prev = s.State.Clock
		checkInvariants(t, s)
	}
	return s.Output()
}
