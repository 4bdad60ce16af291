package experiment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/assembly-sim/assembly-sim/sim"
)

// Estimate is a point estimate across replications with a two-sided Student-t
// confidence half-width. With a single replication StdDev and HalfWidth are 0.
type Estimate struct {
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	HalfWidth float64 `json:"half_width"`
	N         int     `json:"n"`
}

// Bounds returns the confidence interval.
func (e Estimate) Bounds() (lo, hi float64) {
	return e.Mean - e.HalfWidth, e.Mean + e.HalfWidth
}

// Summary aggregates the outputs of one experiment.
type Summary struct {
	Replications    int         `json:"replications"`
	Confidence      float64     `json:"confidence"`
	Clock           Estimate    `json:"clock"`
	Throughput      [3]Estimate `json:"throughput"`
	InspectorIdle   [2]Estimate `json:"inspector_idle"`
	WorkstationIdle [3]Estimate `json:"workstation_idle"`
}

// Summarize computes per-metric estimates over outputs at the given confidence
// level, e.g. 0.95.
func Summarize(outputs []sim.Output, confidence float64) (Summary, error) {
	if len(outputs) == 0 {
		return Summary{}, fmt.Errorf("no outputs to summarize")
	}
	if confidence <= 0 || confidence >= 1 {
		return Summary{}, fmt.Errorf("confidence must be in (0, 1), got %v", confidence)
	}

	sum := Summary{Replications: len(outputs), Confidence: confidence}
	sum.Clock = estimate(column(outputs, func(o sim.Output) float64 { return o.Clock }), confidence)
	for i := range sum.Throughput {
		sum.Throughput[i] = estimate(column(outputs, func(o sim.Output) float64 { return o.Throughput[i] }), confidence)
	}
	for i := range sum.InspectorIdle {
		sum.InspectorIdle[i] = estimate(column(outputs, func(o sim.Output) float64 { return o.InspectorIdle[i] }), confidence)
	}
	for i := range sum.WorkstationIdle {
		sum.WorkstationIdle[i] = estimate(column(outputs, func(o sim.Output) float64 { return o.WorkstationIdle[i] }), confidence)
	}
	return sum, nil
}

func column(outputs []sim.Output, f func(sim.Output) float64) []float64 {
	xs := make([]float64, len(outputs))
	for i, o := range outputs {
		xs[i] = f(o)
	}
	return xs
}

func estimate(xs []float64, confidence float64) Estimate {
	n := len(xs)
	if n == 1 {
		return Estimate{Mean: xs[0], N: 1}
	}
	mean, sd := stat.MeanStdDev(xs, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-confidence)/2)
	return Estimate{
		Mean:      mean,
		StdDev:    sd,
		HalfWidth: t * sd / math.Sqrt(float64(n)),
		N:         n,
	}
}
