// Package trace provides per-event trace recording for simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventRecord captures the line state right after one event was processed.
type EventRecord struct {
	Seq       int     // 1-based index of the event within the run
	Kind      string  // "Arrival" or "Departure"
	Component string  // "C1", "C2", "C3" for arrivals; empty for departures
	Product   string  // destination or finished product; empty when held
	Clock     float64 // simulated minutes
	Held      bool    // the arrival could not be placed and is now on hold

	Entries   [3]int  // components started per inspector channel (C1, C2, C3)
	Buffers   [5]int  // B11, B21, B22, B31, B33
	Completed [3]int  // finished P1, P2, P3
	Holds     [2]bool // inspector 1 / inspector 2 currently blocked
}

// BufferNames labels EventRecord.Buffers in order.
var BufferNames = [5]string{"B11", "B21", "B22", "B31", "B33"}
