package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents    int
	Arrivals       int
	Departures     int
	HeldArrivals   int
	MaxBuffers     [5]int
	MonotonicClock bool // every record's clock is >= the previous one
	FinalClock     float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields, MonotonicClock true).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{MonotonicClock: true}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	prev := 0.0
	for _, e := range st.Events {
		switch e.Kind {
		case "Arrival":
			summary.Arrivals++
		case "Departure":
			summary.Departures++
		}
		if e.Held {
			summary.HeldArrivals++
		}
		for i, b := range e.Buffers {
			if b > summary.MaxBuffers[i] {
				summary.MaxBuffers[i] = b
			}
		}
		if e.Clock < prev {
			summary.MonotonicClock = false
		}
		prev = e.Clock
	}
	summary.FinalClock = prev

	return summary
}
