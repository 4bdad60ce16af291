// Aggregates the final state of one run into throughput and idle statistics.

package sim

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Checkpoint is the part of the state subtracted when a warm-up window is removed.
type Checkpoint struct {
	Clock     float64
	Active    [NumResources]float64
	Completed [3]int
}

// checkpointOf captures s at the current instant.
func checkpointOf(s *State) Checkpoint {
	return Checkpoint{Clock: s.Clock, Active: s.Active, Completed: s.Completed}
}

// Output is the result of one replication.
type Output struct {
	Seed       int64  `json:"seed"`
	Historical bool   `json:"historical"`
	Policy     string `json:"policy"`

	Clock    float64 `json:"clock"`    // simulated minutes at the end of the run
	Interval float64 `json:"interval"` // minutes the statistics cover (Clock minus warm-up)
	Products int     `json:"products"` // completions counted in Interval
	P1       int     `json:"p1"`
	P2       int     `json:"p2"`
	P3       int     `json:"p3"`

	Throughput      [3]float64 `json:"throughput"`       // units per minute, P1..P3
	InspectorIdle   [2]float64 `json:"inspector_idle"`   // fraction of Interval, inspector 1 and 2
	WorkstationIdle [3]float64 `json:"workstation_idle"` // fraction of Interval, workstation 1..3

	Events        int  `json:"events"`
	WarmUpApplied bool `json:"warm_up_applied"`
}

// NewOutput computes rates over the interval from cp to the end of the run.
// A zero checkpoint means no warm-up removal. An empty interval yields zero
// throughput and idle fractions of 1.
func NewOutput(s *State, cp Checkpoint) Output {
	out := Output{
		Clock:    s.Clock,
		Interval: s.Clock - cp.Clock,
		P1:       s.Completed[0] - cp.Completed[0],
		P2:       s.Completed[1] - cp.Completed[1],
		P3:       s.Completed[2] - cp.Completed[2],
		Events:   s.EventsProcessed,
	}
	out.Products = out.P1 + out.P2 + out.P3

	counts := [3]int{out.P1, out.P2, out.P3}
	var idle [NumResources]float64
	for r := range idle {
		idle[r] = 1
	}
	if out.Interval > 0 {
		for i, n := range counts {
			out.Throughput[i] = float64(n) / out.Interval
		}
		for r := range idle {
			idle[r] = 1 - (s.Active[r]-cp.Active[r])/out.Interval
		}
	}
	out.InspectorIdle = [2]float64{idle[ResourceInspector1], idle[ResourceInspector2]}
	out.WorkstationIdle = [3]float64{idle[ResourceWorkstation1], idle[ResourceWorkstation2], idle[ResourceWorkstation3]}
	return out
}

// SeedLabel is the seed column of reports; historical runs do not depend on it
// for durations.
func (o Output) SeedLabel() string {
	if o.Historical {
		return "Historical Data"
	}
	return strconv.FormatInt(o.Seed, 10)
}

// Print writes a human-readable report of the run.
func (o Output) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Output ===")
	fmt.Fprintf(w, "Random Seed          : %s\n", o.SeedLabel())
	if o.Policy != "" {
		fmt.Fprintf(w, "Routing Policy       : %s\n", o.Policy)
	}
	fmt.Fprintf(w, "Total Products       : %d\n", o.Products)
	fmt.Fprintf(w, "Simulation Time      : %.4f minutes\n", o.Clock)
	if o.WarmUpApplied {
		fmt.Fprintf(w, "Measured Interval    : %.4f minutes\n", o.Interval)
	}
	fmt.Fprintf(w, "Events Processed     : %d\n", o.Events)
	fmt.Fprintln(w, "Throughput:")
	for i, p := range []Product{P1, P2, P3} {
		fmt.Fprintf(w, "  %2s: %8.4f units/minute\n", p, o.Throughput[i])
	}
	fmt.Fprintln(w, "Inspector Idle Probability:")
	for i, idle := range o.InspectorIdle {
		fmt.Fprintf(w, "  Inspector %d: %8.4f%%\n", i+1, idle*100)
	}
	fmt.Fprintln(w, "Workstation Idle Probability:")
	for i, idle := range o.WorkstationIdle {
		fmt.Fprintf(w, "  Workstation %d: %8.4f%%\n", i+1, idle*100)
	}
}

// RawLine returns the tab-separated machine-readable form of the run:
// seed, clock, three throughputs and both inspector idle percentages.
func (o Output) RawLine() string {
	fields := []string{
		o.SeedLabel(),
		strconv.FormatFloat(o.Clock, 'g', -1, 64),
		strconv.FormatFloat(o.Throughput[0], 'g', -1, 64),
		strconv.FormatFloat(o.Throughput[1], 'g', -1, 64),
		strconv.FormatFloat(o.Throughput[2], 'g', -1, 64),
		strconv.FormatFloat(o.InspectorIdle[0]*100, 'g', -1, 64) + "%",
		strconv.FormatFloat(o.InspectorIdle[1]*100, 'g', -1, 64) + "%",
	}
	return strings.Join(fields, "\t")
}
