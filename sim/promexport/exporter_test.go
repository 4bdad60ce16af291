package promexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assembly-sim/assembly-sim/sim/experiment"
)

func testSummary() experiment.Summary {
	return experiment.Summary{
		Replications: 4,
		Confidence:   0.95,
		Clock:        experiment.Estimate{Mean: 1200},
		Throughput: [3]experiment.Estimate{
			{Mean: 0.08, HalfWidth: 0.01},
			{Mean: 0.04, HalfWidth: 0.005},
			{Mean: 0.03, HalfWidth: 0.002},
		},
		InspectorIdle:   [2]experiment.Estimate{{Mean: 0.1}, {Mean: 0.35}},
		WorkstationIdle: [3]experiment.Estimate{{Mean: 0.6}, {Mean: 0.5}, {Mean: 0.7}},
	}
}

func TestExporter_Observe_SetsGauges(t *testing.T) {
	// GIVEN a fresh exporter
	e := NewExporter()

	// WHEN a summary is observed
	e.Observe(testSummary())

	// THEN every gauge carries the summary's means
	assert.Equal(t, 0.08, testutil.ToFloat64(e.throughput.WithLabelValues("P1")))
	assert.Equal(t, 0.03, testutil.ToFloat64(e.throughput.WithLabelValues("P3")))
	assert.Equal(t, 0.005, testutil.ToFloat64(e.throughputHalfWidth.WithLabelValues("P2")))
	assert.Equal(t, 0.35, testutil.ToFloat64(e.inspectorIdle.WithLabelValues("2")))
	assert.Equal(t, 0.7, testutil.ToFloat64(e.workstationIdle.WithLabelValues("3")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(e.clock))
	assert.Equal(t, 4.0, testutil.ToFloat64(e.replications))
}

func TestExporter_Observe_CounterAccumulates(t *testing.T) {
	e := NewExporter()
	e.Observe(testSummary())
	e.Observe(testSummary())

	assert.Equal(t, 8.0, testutil.ToFloat64(e.replications))
	assert.Equal(t, 3, testutil.CollectAndCount(e.throughput))
}

func TestExporter_WriteTextfile(t *testing.T) {
	e := NewExporter()
	e.Observe(testSummary())
	path := filepath.Join(t.TempDir(), "assembly_sim.prom")

	require.NoError(t, e.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `assembly_sim_throughput{product="P1"} 0.08`)
	assert.Contains(t, text, `assembly_sim_inspector_idle_ratio{inspector="1"} 0.1`)
	assert.Contains(t, text, "assembly_sim_clock_minutes 1200")
	assert.Contains(t, text, "assembly_sim_replications_total 4")
}

func TestExporter_WriteTextfile_BadPath(t *testing.T) {
	e := NewExporter()
	assert.Error(t, e.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}

func TestExporter_IndependentRegistries(t *testing.T) {
	a := NewExporter()
	b := NewExporter()
	a.Observe(testSummary())

	assert.Equal(t, 0.0, testutil.ToFloat64(b.replications))
	assert.NotSame(t, a.Registry(), b.Registry())
}
