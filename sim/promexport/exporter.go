// Package promexport publishes experiment summaries as Prometheus metrics in
// the node-exporter textfile format.
package promexport

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/assembly-sim/assembly-sim/sim/experiment"
)

const namespace = "assembly_sim"

// Exporter owns a private registry so that repeated experiments in one process
// never collide with the default registry.
type Exporter struct {
	registry *prometheus.Registry

	throughput          *prometheus.GaugeVec
	throughputHalfWidth *prometheus.GaugeVec
	inspectorIdle       *prometheus.GaugeVec
	workstationIdle     *prometheus.GaugeVec
	clock               prometheus.Gauge
	replications        prometheus.Counter
}

// NewExporter registers the simulator's metrics on a fresh registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput",
			Help:      "Mean products completed per simulated minute across replications.",
		}, []string{"product"}),
		throughputHalfWidth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_ci_half_width",
			Help:      "Confidence interval half-width of the mean throughput.",
		}, []string{"product"}),
		inspectorIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inspector_idle_ratio",
			Help:      "Mean fraction of simulated time an inspector was idle or blocked.",
		}, []string{"inspector"}),
		workstationIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workstation_idle_ratio",
			Help:      "Mean fraction of simulated time a workstation was idle.",
		}, []string{"workstation"}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_minutes",
			Help:      "Mean simulated minutes per replication.",
		}),
		replications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replications_total",
			Help:      "Replications observed by this exporter.",
		}),
	}
	e.registry.MustRegister(e.throughput, e.throughputHalfWidth, e.inspectorIdle, e.workstationIdle, e.clock, e.replications)
	return e
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Observe sets the gauges from sum and adds its replications to the counter.
func (e *Exporter) Observe(sum experiment.Summary) {
	for i, est := range sum.Throughput {
		label := fmt.Sprintf("P%d", i+1)
		e.throughput.WithLabelValues(label).Set(est.Mean)
		e.throughputHalfWidth.WithLabelValues(label).Set(est.HalfWidth)
	}
	for i, est := range sum.InspectorIdle {
		e.inspectorIdle.WithLabelValues(fmt.Sprintf("%d", i+1)).Set(est.Mean)
	}
	for i, est := range sum.WorkstationIdle {
		e.workstationIdle.WithLabelValues(fmt.Sprintf("%d", i+1)).Set(est.Mean)
	}
	e.clock.Set(sum.Clock.Mean)
	e.replications.Add(float64(sum.Replications))
}

// WriteTextfile atomically writes all metrics to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
