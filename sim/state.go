package sim

// BufferCapacity is the number of components each workstation buffer can hold.
const BufferCapacity = 2

// Buffer identifies one of the five component buffers in front of the workstations.
type Buffer int

const (
	BufferWS1C1 Buffer = iota
	BufferWS2C1
	BufferWS2C2
	BufferWS3C1
	BufferWS3C3
	NumBuffers
)

var bufferNames = [NumBuffers]string{"B11", "B21", "B22", "B31", "B33"}

func (b Buffer) String() string {
	if b < 0 || b >= NumBuffers {
		return "B??"
	}
	return bufferNames[b]
}

// c1BufferFor returns the C1 buffer in front of the workstation assembling p.
func c1BufferFor(p Product) Buffer {
	switch p {
	case P1:
		return BufferWS1C1
	case P2:
		return BufferWS2C1
	case P3:
		return BufferWS3C1
	default:
		panic("no C1 buffer for " + p.String())
	}
}

// State is the mutable state of one simulation run. It is owned by exactly one
// Simulator and never shared between replications.
type State struct {
	Clock float64

	Buffers [NumBuffers]int

	// A hold is an inspector that finished a component but has nowhere to put it.
	Inspector1Hold *Event
	Inspector2Hold *Event

	// Active is the accumulated busy time of each resource.
	Active [NumResources]float64

	// Entries counts components started by each inspector channel (C1, C2, C3).
	Entries [3]int

	// Completed counts finished products per type (P1, P2, P3).
	Completed      [3]int
	NumberProducts int

	EventsProcessed int
}

// NewState returns a zeroed state.
func NewState() *State {
	return &State{}
}

// Snapshot returns a copy of s that is safe to keep after the run continues.
// Hold events are immutable and may be shared.
func (s *State) Snapshot() State {
	return *s
}

// c1Levels returns the C1 buffer levels at workstations 1, 2 and 3.
func (s *State) c1Levels() (int, int, int) {
	return s.Buffers[BufferWS1C1], s.Buffers[BufferWS2C1], s.Buffers[BufferWS3C1]
}
