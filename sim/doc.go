// Package sim provides the discrete-event simulation engine for a two-inspector,
// three-workstation assembly line.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: Arrival and Departure events, components, products and resources
//   - event_queue.go: the future-event list with FIFO tie-breaking
//   - simulator.go: the event loop, buffer placement, holds and busy-time accounting
//
// # Line Model
//
// Inspector 1 inspects component C1 and routes it to one of three C1 buffers
// using a RoutingPolicy. Inspector 2 alternates at random between C2 (for
// workstation 2) and C3 (for workstation 3). Every buffer holds at most
// BufferCapacity components. An inspector whose target buffers are full is
// held with its finished component until a workstation frees a slot.
//
// # Key Interfaces
//
//   - TimeSource: inspection and assembly durations plus inspector 2's branch
//     (StochasticSource draws exponentials, HistoricalSource replays recorded data)
//   - RoutingPolicy: choose the C1 destination (ShortestQueueFirst, RotatingPriority)
//   - EventReporter / OutputReporter: per-event and end-of-run sinks
//
// Sub-packages:
//   - sim/trace/: per-event records, text formatting and summaries
//   - sim/workload/: historical data files
//   - sim/experiment/: parallel replications and confidence intervals
//   - sim/store/: SQLite persistence of outputs
//   - sim/promexport/: Prometheus textfile export
package sim
