// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/assembly-sim/assembly-sim/sim/trace"
)

// EventReporter receives a state snapshot after every processed event.
// *trace.SimulationTrace and *trace.Writer satisfy it.
type EventReporter interface {
	ReportEvent(record trace.EventRecord)
}

// OutputReporter receives the aggregated output when a run ends.
type OutputReporter interface {
	ReportOutput(out Output)
}

// RunMeta labels a run's Output. It does not influence the simulation.
type RunMeta struct {
	Seed       int64
	Historical bool
	Policy     string
}

// Simulator is the core object that holds simulation time, line state, and the event loop.
// One Simulator runs one replication; it is not safe for concurrent use.
type Simulator struct {
	Config Config
	Meta   RunMeta

	// State is exclusively owned by the simulator and replaced on Initialize.
	State *State
	// Queue is the future-event list.
	Queue *EventQueue

	times  TimeSource
	policy RoutingPolicy

	eventReporters  []EventReporter
	outputReporters []OutputReporter

	checkpoint  Checkpoint
	warmedUp    bool
	initialized bool
}

// NewSimulator builds a simulator for one run. The time source and routing policy
// must be fresh instances: both carry per-run state.
func NewSimulator(cfg Config, times TimeSource, policy RoutingPolicy) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if times == nil {
		return nil, errors.New("time source cannot be nil")
	}
	if policy == nil {
		return nil, errors.New("routing policy cannot be nil")
	}
	return &Simulator{
		Config: cfg,
		State:  NewState(),
		Queue:  NewEventQueue(),
		times:  times,
		policy: policy,
	}, nil
}

// AddEventReporter registers a per-event sink.
func (sim *Simulator) AddEventReporter(r EventReporter) {
	sim.eventReporters = append(sim.eventReporters, r)
}

// AddOutputReporter registers an end-of-run sink.
func (sim *Simulator) AddOutputReporter(r OutputReporter) {
	sim.outputReporters = append(sim.outputReporters, r)
}

// Schedule pushes an event into the future-event list.
func (sim *Simulator) Schedule(ev *Event) {
	sim.Queue.Schedule(ev)
}

// Initialize resets the run and seeds one arrival per inspector.
// With a non-positive horizon nothing is scheduled and the run is empty.
func (sim *Simulator) Initialize() {
	sim.State = NewState()
	sim.Queue = NewEventQueue()
	sim.checkpoint = Checkpoint{}
	sim.warmedUp = sim.Config.WarmUp == 0
	sim.initialized = true

	if sim.Config.Horizon <= 0 {
		logrus.Infof("Horizon %d: nothing to simulate", sim.Config.Horizon)
		return
	}

	sim.State.Entries[0]++
	sim.Schedule(NewArrivalEvent(Inspector1, sim.times.NextInspection1()))

	branch := sim.times.NextInspector2Branch()
	sim.State.Entries[branchEntry(branch)]++
	sim.Schedule(NewArrivalEvent(branch.component(), sim.inspection2Duration(branch)))
}

// Run initializes the simulator if needed, processes events until the horizon is
// reached or no events remain, and returns the run's output.
func (sim *Simulator) Run() Output {
	if !sim.initialized {
		sim.Initialize()
	}
	for sim.Step() {
	}

	if sim.State.NumberProducts < sim.Config.Horizon {
		logrus.Warnf("Event list exhausted after %d of %d products", sim.State.NumberProducts, sim.Config.Horizon)
	}
	if !sim.warmedUp {
		logrus.Warnf("Run ended before warm-up of %d products; reporting the whole run", sim.Config.WarmUp)
	}

	out := sim.Output()
	for _, r := range sim.outputReporters {
		r.ReportOutput(out)
	}
	logrus.Infof("[%10.3f] Simulation ended: %d products, %d events", sim.State.Clock, sim.State.NumberProducts, sim.State.EventsProcessed)
	return out
}

// Step processes the next event. It returns false once the horizon is reached or
// the event list is empty.
func (sim *Simulator) Step() bool {
	if !sim.initialized {
		sim.Initialize()
	}
	st := sim.State
	if st.NumberProducts >= sim.Config.Horizon {
		return false
	}
	ev := sim.Queue.PopNext()
	if ev == nil {
		return false
	}
	if ev.time < st.Clock {
		panic(fmt.Sprintf("clock moved backward: event %v before clock %.6f", ev, st.Clock))
	}

	elapsed := ev.time - st.Clock
	st.Clock = ev.time

	logrus.Debugf("[%10.3f] Executing %v", st.Clock, ev)
	var product Product
	switch ev.kind {
	case Arrival:
		product = sim.processArrival(ev)
	case Departure:
		sim.processDeparture(ev)
		product = ev.product
	default:
		panic(fmt.Sprintf("unknown event kind %v", ev.kind))
	}
	st.EventsProcessed++
	sim.accumulateActive(elapsed)

	if !sim.warmedUp && st.NumberProducts >= sim.Config.WarmUp {
		sim.checkpoint = checkpointOf(st)
		sim.warmedUp = true
		logrus.Infof("[%10.3f] Warm-up of %d products complete", st.Clock, sim.Config.WarmUp)
	}

	sim.report(ev, product)
	return true
}

// Output aggregates the current state, excluding the warm-up window if it was reached.
func (sim *Simulator) Output() Output {
	out := NewOutput(sim.State, sim.checkpoint)
	out.Seed = sim.Meta.Seed
	out.Historical = sim.Meta.Historical
	out.Policy = sim.Meta.Policy
	out.WarmUpApplied = sim.Config.WarmUp > 0 && sim.warmedUp
	return out
}

// processArrival places the component an inspector just finished. It returns the
// destination product, or ProductNone if the inspector is now on hold.
func (sim *Simulator) processArrival(ev *Event) Product {
	st := sim.State
	dest := ProductNone
	switch ev.component {
	case Inspector1:
		dest = sim.policy.Decide(st.c1Levels())
		if dest == ProductNone {
			st.Inspector1Hold = ev
			logrus.Debugf("[%10.3f] Inspector 1 on hold", st.Clock)
			break
		}
		st.Buffers[c1BufferFor(dest)]++
	case Inspector2BranchB, Inspector2BranchC:
		buf, p := inspector2Target(ev.component)
		if st.Buffers[buf] < BufferCapacity {
			st.Buffers[buf]++
			dest = p
		} else {
			st.Inspector2Hold = ev
			logrus.Debugf("[%10.3f] Inspector 2 on hold with %v", st.Clock, ev.component)
		}
	default:
		panic(fmt.Sprintf("arrival without inspector component: %v", ev))
	}

	if dest != ProductNone {
		sim.scheduleNextArrival(ev.component)
		sim.scheduleDeparture(dest)
	}
	return dest
}

// processDeparture counts the finished product and lets the workstation start
// its next unit if its buffers allow.
func (sim *Simulator) processDeparture(ev *Event) {
	st := sim.State
	st.Completed[ev.product.index()]++
	st.NumberProducts++
	sim.scheduleDeparture(ev.product)
}

// scheduleNextArrival starts the inspector that produced c on its next component,
// unless that inspector is on hold. Inspector 2 flips a new branch for every unit.
func (sim *Simulator) scheduleNextArrival(c Component) {
	st := sim.State
	var next Component
	var d float64
	if c == Inspector1 {
		if st.Inspector1Hold != nil {
			return
		}
		next = Inspector1
		d = sim.times.NextInspection1()
		st.Entries[0]++
	} else {
		if st.Inspector2Hold != nil {
			return
		}
		branch := sim.times.NextInspector2Branch()
		next = branch.component()
		d = sim.inspection2Duration(branch)
		st.Entries[branchEntry(branch)]++
	}
	sim.Schedule(NewArrivalEvent(next, st.Clock+d))
}

// scheduleDeparture starts the workstation assembling p if it is idle and its
// buffers hold every required component. Starting a workstation frees buffer
// space, so held inspectors are retried afterwards.
func (sim *Simulator) scheduleDeparture(p Product) {
	st := sim.State
	if sim.Queue.HasPending(workstationFor(p)) {
		return
	}

	var d float64
	switch p {
	case P1:
		if st.Buffers[BufferWS1C1] == 0 {
			return
		}
		st.Buffers[BufferWS1C1]--
		d = sim.times.NextWorkstation1()
	case P2:
		if st.Buffers[BufferWS2C1] == 0 || st.Buffers[BufferWS2C2] == 0 {
			return
		}
		st.Buffers[BufferWS2C1]--
		st.Buffers[BufferWS2C2]--
		d = sim.times.NextWorkstation2()
	case P3:
		if st.Buffers[BufferWS3C1] == 0 || st.Buffers[BufferWS3C3] == 0 {
			return
		}
		st.Buffers[BufferWS3C1]--
		st.Buffers[BufferWS3C3]--
		d = sim.times.NextWorkstation3()
	default:
		panic(fmt.Sprintf("cannot schedule departure for %v", p))
	}
	sim.Schedule(NewDepartureEvent(p, st.Clock+d))
	sim.releaseHolds()
}

// releaseHolds places at most one held component per inspector if its buffer has
// room now, then restarts that inspector.
func (sim *Simulator) releaseHolds() {
	st := sim.State
	if st.Inspector1Hold != nil {
		if dest := sim.policy.Decide(st.c1Levels()); dest != ProductNone {
			st.Buffers[c1BufferFor(dest)]++
			st.Inspector1Hold = nil
			logrus.Debugf("[%10.3f] Inspector 1 released to %v", st.Clock, dest)
			sim.scheduleNextArrival(Inspector1)
		}
	}
	if held := st.Inspector2Hold; held != nil {
		buf, p := inspector2Target(held.component)
		if st.Buffers[buf] < BufferCapacity {
			st.Buffers[buf]++
			st.Inspector2Hold = nil
			logrus.Debugf("[%10.3f] Inspector 2 released to %v", st.Clock, p)
			sim.scheduleNextArrival(held.component)
		}
	}
}

// accumulateActive credits the interval that ended with the event just processed
// to every resource that now has a pending completion.
func (sim *Simulator) accumulateActive(elapsed float64) {
	for r := Resource(0); r < NumResources; r++ {
		if sim.Queue.HasPending(r) {
			sim.State.Active[r] += elapsed
		}
	}
}

func (sim *Simulator) inspection2Duration(b Branch) float64 {
	if b == BranchB {
		return sim.times.NextInspection2BranchB()
	}
	return sim.times.NextInspection2BranchC()
}

func (sim *Simulator) report(ev *Event, product Product) {
	if len(sim.eventReporters) == 0 {
		return
	}
	st := sim.State
	rec := trace.EventRecord{
		Seq:       st.EventsProcessed,
		Kind:      ev.kind.String(),
		Component: ev.component.String(),
		Product:   product.String(),
		Clock:     st.Clock,
		Held:      ev.kind == Arrival && product == ProductNone,
		Entries:   st.Entries,
		Buffers:   st.Buffers,
		Completed: st.Completed,
		Holds:     [2]bool{st.Inspector1Hold != nil, st.Inspector2Hold != nil},
	}
	for _, r := range sim.eventReporters {
		r.ReportEvent(rec)
	}
}

// inspector2Target returns the buffer and product an inspector-2 component feeds.
func inspector2Target(c Component) (Buffer, Product) {
	switch c {
	case Inspector2BranchB:
		return BufferWS2C2, P2
	case Inspector2BranchC:
		return BufferWS3C3, P3
	default:
		panic(fmt.Sprintf("%v is not an inspector 2 component", c))
	}
}

// branchEntry returns the State.Entries slot counting units started on b.
func branchEntry(b Branch) int {
	if b == BranchB {
		return 1
	}
	return 2
}
