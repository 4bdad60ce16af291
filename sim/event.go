package sim

import "fmt"

// EventKind distinguishes inspector completions from workstation completions.
type EventKind int

const (
	// Arrival marks an inspector finishing one component; the component "arrives"
	// at a workstation buffer.
	Arrival EventKind = iota
	// Departure marks a workstation finishing one product; the product leaves the line.
	Departure
)

func (k EventKind) String() string {
	switch k {
	case Arrival:
		return "Arrival"
	case Departure:
		return "Departure"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Component identifies which inspector channel produced an Arrival.
type Component int

const (
	ComponentNone Component = iota
	// Inspector1 produces C1, the component every product needs.
	Inspector1
	// Inspector2BranchB produces C2 for workstation 2.
	Inspector2BranchB
	// Inspector2BranchC produces C3 for workstation 3.
	Inspector2BranchC
)

func (c Component) String() string {
	switch c {
	case ComponentNone:
		return ""
	case Inspector1:
		return "C1"
	case Inspector2BranchB:
		return "C2"
	case Inspector2BranchC:
		return "C3"
	default:
		return fmt.Sprintf("Component(%d)", int(c))
	}
}

// Product is a finished product type. Each product has its own workstation.
type Product int

const (
	ProductNone Product = iota
	P1
	P2
	P3
)

func (p Product) String() string {
	switch p {
	case ProductNone:
		return ""
	case P1:
		return "P1"
	case P2:
		return "P2"
	case P3:
		return "P3"
	default:
		return fmt.Sprintf("Product(%d)", int(p))
	}
}

// index returns the zero-based slot of p in per-product arrays.
func (p Product) index() int {
	switch p {
	case P1, P2, P3:
		return int(p) - 1
	default:
		panic(fmt.Sprintf("no product slot for %v", p))
	}
}

// Resource is anything whose busy time is tracked: the two inspectors and the
// three workstations.
type Resource int

const (
	ResourceInspector1 Resource = iota
	ResourceInspector2
	ResourceWorkstation1
	ResourceWorkstation2
	ResourceWorkstation3
	NumResources
)

func (r Resource) String() string {
	switch r {
	case ResourceInspector1:
		return "inspector1"
	case ResourceInspector2:
		return "inspector2"
	case ResourceWorkstation1:
		return "workstation1"
	case ResourceWorkstation2:
		return "workstation2"
	case ResourceWorkstation3:
		return "workstation3"
	default:
		return fmt.Sprintf("Resource(%d)", int(r))
	}
}

// workstationFor maps a product to the workstation that assembles it.
func workstationFor(p Product) Resource {
	switch p {
	case P1:
		return ResourceWorkstation1
	case P2:
		return ResourceWorkstation2
	case P3:
		return ResourceWorkstation3
	default:
		panic(fmt.Sprintf("no workstation assembles %v", p))
	}
}

// Event is an immutable, time-stamped record in the future-event list.
// seq is assigned by the EventQueue on insertion and breaks ties between
// events with equal time.
type Event struct {
	kind      EventKind
	component Component
	product   Product
	time      float64
	seq       uint64
}

// NewArrivalEvent creates an inspector completion for the given component channel.
func NewArrivalEvent(component Component, time float64) *Event {
	return &Event{kind: Arrival, component: component, time: time}
}

// NewDepartureEvent creates a workstation completion for the given product.
func NewDepartureEvent(product Product, time float64) *Event {
	return &Event{kind: Departure, product: product, time: time}
}

func (e *Event) Kind() EventKind { return e.kind }
func (e *Event) Component() Component { return e.component }
func (e *Event) Product() Product { return e.product }
func (e *Event) Time() float64 { return e.time }
func (e *Event) Seq() uint64 { return e.seq }

// Resource returns the resource whose next completion this event represents.
func (e *Event) Resource() Resource {
	if e.kind == Departure {
		return workstationFor(e.product)
	}
	if e.component == Inspector1 {
		return ResourceInspector1
	}
	return ResourceInspector2
}

func (e *Event) String() string {
	return fmt.Sprintf("%s(%s%s)@%.3f", e.kind, e.component, e.product, e.time)
}
