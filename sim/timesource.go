package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Branch is the inspector-2 coin flip: which component the next unit becomes.
type Branch int

const (
	BranchB Branch = iota // C2, destined for workstation 2
	BranchC               // C3, destined for workstation 3
)

func (b Branch) String() string {
	if b == BranchB {
		return "B"
	}
	return "C"
}

// component returns the Arrival component produced on this branch.
func (b Branch) component() Component {
	if b == BranchB {
		return Inspector2BranchB
	}
	return Inspector2BranchC
}

// TimeSource supplies every random quantity the engine consumes. The engine
// calls these in a fixed order, so swapping one implementation for another
// never changes the shape of the event sequence.
type TimeSource interface {
	NextInspection1() float64
	NextInspection2BranchB() float64
	NextInspection2BranchC() float64
	NextWorkstation1() float64
	NextWorkstation2() float64
	NextWorkstation3() float64
	NextInspector2Branch() Branch
}

// Stream names one of the six duration variables. The names double as the
// file stems of recorded historical samples.
type Stream string

const (
	StreamInspection1  Stream = "servinsp1"
	StreamInspection22 Stream = "servinsp22"
	StreamInspection23 Stream = "servinsp23"
	StreamWorkstation1 Stream = "ws1"
	StreamWorkstation2 Stream = "ws2"
	StreamWorkstation3 Stream = "ws3"
)

// Streams lists all duration streams in canonical order.
var Streams = []Stream{
	StreamInspection1, StreamInspection22, StreamInspection23,
	StreamWorkstation1, StreamWorkstation2, StreamWorkstation3,
}

var (
	// ErrInvalidRate is returned when an exponential rate is not a positive finite number.
	ErrInvalidRate = errors.New("invalid rate parameter")
	// ErrEmptyStream is returned when a historical stream has no samples to replay.
	ErrEmptyStream = errors.New("empty historical stream")
)

// Rates holds the exponential rate (events per minute) of each duration stream.
type Rates struct {
	Inspection1  float64 `yaml:"servinsp1"`
	Inspection22 float64 `yaml:"servinsp22"`
	Inspection23 float64 `yaml:"servinsp23"`
	Workstation1 float64 `yaml:"ws1"`
	Workstation2 float64 `yaml:"ws2"`
	Workstation3 float64 `yaml:"ws3"`
}

// DefaultRates are the maximum-likelihood fits of the recorded samples.
func DefaultRates() Rates {
	return Rates{
		Inspection1:  0.096544573,
		Inspection22: 0.06436289,
		Inspection23: 0.048466621,
		Workstation1: 0.217182777,
		Workstation2: 0.090150136,
		Workstation3: 0.113693469,
	}
}

// Validate returns ErrInvalidRate naming the first rate that is not positive and finite.
func (r Rates) Validate() error {
	for _, s := range Streams {
		v := r.ForStream(s)
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidRate, s, v)
		}
	}
	return nil
}

// ForStream returns the rate configured for s.
func (r Rates) ForStream(s Stream) float64 {
	switch s {
	case StreamInspection1:
		return r.Inspection1
	case StreamInspection22:
		return r.Inspection22
	case StreamInspection23:
		return r.Inspection23
	case StreamWorkstation1:
		return r.Workstation1
	case StreamWorkstation2:
		return r.Workstation2
	case StreamWorkstation3:
		return r.Workstation3
	default:
		panic(fmt.Sprintf("unknown stream %q", s))
	}
}

// NextExponential draws an exponential variate by inverse-CDF sampling:
// -ln(1-U)/rate with U uniform in [0,1). Panics if rate <= 0.
func NextExponential(rng *rand.Rand, rate float64) float64 {
	if rate <= 0 {
		panic(fmt.Sprintf("NextExponential: %v: %v", ErrInvalidRate, rate))
	}
	return -math.Log(1-rng.Float64()) / rate
}

// nextBranch flips the inspector-2 coin on rng.
func nextBranch(rng *rand.Rand) Branch {
	if rng.Intn(2) == 0 {
		return BranchB
	}
	return BranchC
}

// StochasticSource samples every duration from an exponential distribution.
// All six streams and the branch coin share one seeded generator, so a run is a
// pure function of its seed.
type StochasticSource struct {
	rng   *rand.Rand
	rates Rates
}

// NewStochasticSource creates a generator seeded with seed.
func NewStochasticSource(seed int64, rates Rates) (*StochasticSource, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &StochasticSource{rng: rand.New(rand.NewSource(seed)), rates: rates}, nil
}

func (s *StochasticSource) NextInspection1() float64 {
	return NextExponential(s.rng, s.rates.Inspection1)
}

func (s *StochasticSource) NextInspection2BranchB() float64 {
	return NextExponential(s.rng, s.rates.Inspection22)
}

func (s *StochasticSource) NextInspection2BranchC() float64 {
	return NextExponential(s.rng, s.rates.Inspection23)
}

func (s *StochasticSource) NextWorkstation1() float64 {
	return NextExponential(s.rng, s.rates.Workstation1)
}

func (s *StochasticSource) NextWorkstation2() float64 {
	return NextExponential(s.rng, s.rates.Workstation2)
}

func (s *StochasticSource) NextWorkstation3() float64 {
	return NextExponential(s.rng, s.rates.Workstation3)
}

func (s *StochasticSource) NextInspector2Branch() Branch {
	return nextBranch(s.rng)
}

// HistoricalData holds recorded samples per stream. It is shared read-only
// between replications and must not be modified after loading.
type HistoricalData struct {
	Samples map[Stream][]float64
}

// HistoricalSource replays recorded samples, wrapping to the start of a stream
// once it is exhausted. Only the inspector-2 branch is still drawn at random.
type HistoricalSource struct {
	rng     *rand.Rand
	data    *HistoricalData
	cursors map[Stream]int
}

// NewHistoricalSource creates a replaying source. It fails with ErrEmptyStream if
// any stream has no samples.
func NewHistoricalSource(seed int64, data *HistoricalData) (*HistoricalSource, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no historical data", ErrEmptyStream)
	}
	for _, s := range Streams {
		if len(data.Samples[s]) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyStream, s)
		}
	}
	return &HistoricalSource{
		rng:     rand.New(rand.NewSource(seed)),
		data:    data,
		cursors: make(map[Stream]int, len(Streams)),
	}, nil
}

func (h *HistoricalSource) next(s Stream) float64 {
	samples := h.data.Samples[s]
	i := h.cursors[s]
	h.cursors[s] = i + 1
	return samples[i%len(samples)]
}

func (h *HistoricalSource) NextInspection1() float64 { return h.next(StreamInspection1) }
func (h *HistoricalSource) NextInspection2BranchB() float64 { return h.next(StreamInspection22) }
func (h *HistoricalSource) NextInspection2BranchC() float64 { return h.next(StreamInspection23) }
func (h *HistoricalSource) NextWorkstation1() float64 { return h.next(StreamWorkstation1) }
func (h *HistoricalSource) NextWorkstation2() float64 { return h.next(StreamWorkstation2) }
func (h *HistoricalSource) NextWorkstation3() float64 { return h.next(StreamWorkstation3) }

func (h *HistoricalSource) NextInspector2Branch() Branch {
	return nextBranch(h.rng)
}
