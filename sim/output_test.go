package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assembly-sim/assembly-sim/sim/internal/testutil"
)

func TestNewOutput_RatesOverWholeRun(t *testing.T) {
	// GIVEN a 200-minute run with known completions and busy times
	st := NewState()
	st.Clock = 200
	st.Completed = [3]int{40, 20, 10}
	st.NumberProducts = 70
	st.Active = [NumResources]float64{150, 200, 120, 80, 50}
	st.EventsProcessed = 321

	// WHEN aggregated without warm-up
	out := NewOutput(st, Checkpoint{})

	// THEN rates are counts over the clock and idle is the complement of busy share
	assert.Equal(t, 70, out.Products)
	assert.Equal(t, 200.0, out.Interval)
	testutil.AssertFloat64Equal(t, "P1", 0.2, out.Throughput[0], 1e-12)
	testutil.AssertFloat64Equal(t, "P2", 0.1, out.Throughput[1], 1e-12)
	testutil.AssertFloat64Equal(t, "P3", 0.05, out.Throughput[2], 1e-12)
	testutil.AssertFloat64Equal(t, "I1 idle", 0.25, out.InspectorIdle[0], 1e-12)
	assert.InDelta(t, 0, out.InspectorIdle[1], 1e-12)
	testutil.AssertFloat64Equal(t, "WS1 idle", 0.4, out.WorkstationIdle[0], 1e-12)
	testutil.AssertFloat64Equal(t, "WS2 idle", 0.6, out.WorkstationIdle[1], 1e-12)
	testutil.AssertFloat64Equal(t, "WS3 idle", 0.75, out.WorkstationIdle[2], 1e-12)
	assert.Equal(t, 321, out.Events)
}

func TestNewOutput_SubtractsCheckpoint(t *testing.T) {
	st := NewState()
	st.Clock = 300
	st.Completed = [3]int{50, 30, 20}
	st.Active = [NumResources]float64{250, 250, 200, 150, 100}
	cp := Checkpoint{
		Clock:     100,
		Completed: [3]int{10, 10, 0},
		Active:    [NumResources]float64{50, 100, 0, 50, 100},
	}

	out := NewOutput(st, cp)

	assert.Equal(t, 200.0, out.Interval)
	assert.Equal(t, 300.0, out.Clock)
	assert.Equal(t, [3]int{40, 20, 20}, [3]int{out.P1, out.P2, out.P3})
	assert.Equal(t, 80, out.Products)
	testutil.AssertFloat64Equal(t, "P1", 0.2, out.Throughput[0], 1e-12)
	assert.InDelta(t, 0, out.InspectorIdle[0], 1e-12)
	testutil.AssertFloat64Equal(t, "I2 idle", 0.25, out.InspectorIdle[1], 1e-12)
	assert.InDelta(t, 0, out.WorkstationIdle[0], 1e-12)
	testutil.AssertFloat64Equal(t, "WS2 idle", 0.5, out.WorkstationIdle[1], 1e-12)
	assert.InDelta(t, 1, out.WorkstationIdle[2], 1e-12)
}

func TestNewOutput_EmptyInterval(t *testing.T) {
	out := NewOutput(NewState(), Checkpoint{})

	assert.Equal(t, [3]float64{}, out.Throughput)
	assert.Equal(t, [2]float64{1, 1}, out.InspectorIdle)
	assert.Equal(t, [3]float64{1, 1, 1}, out.WorkstationIdle)
}

func TestOutput_SeedLabel(t *testing.T) {
	assert.Equal(t, "42", Output{Seed: 42}.SeedLabel())
	assert.Equal(t, "Historical Data", Output{Seed: 42, Historical: true}.SeedLabel())
}

func TestOutput_Print(t *testing.T) {
	out := Output{
		Seed:            7,
		Policy:          "shortest-queue",
		Clock:           120.5,
		Interval:        100,
		Products:        30,
		Throughput:      [3]float64{0.1, 0.15, 0.05},
		InspectorIdle:   [2]float64{0.125, 0},
		WorkstationIdle: [3]float64{0.5, 0.25, 0.75},
		Events:          99,
		WarmUpApplied:   true,
	}
	var buf bytes.Buffer

	out.Print(&buf)

	got := buf.String()
	assert.Contains(t, got, "=== Simulation Output ===")
	assert.Contains(t, got, "Random Seed          : 7")
	assert.Contains(t, got, "Routing Policy       : shortest-queue")
	assert.Contains(t, got, "Total Products       : 30")
	assert.Contains(t, got, "Simulation Time      : 120.5000 minutes")
	assert.Contains(t, got, "Measured Interval    : 100.0000 minutes")
	assert.Contains(t, got, "P2:   0.1500 units/minute")
	assert.Contains(t, got, "Inspector 1:  12.5000%")
	assert.Contains(t, got, "Workstation 3:  75.0000%")
}

func TestOutput_Print_OmitsIntervalWithoutWarmUp(t *testing.T) {
	var buf bytes.Buffer
	Output{Clock: 10, Interval: 10}.Print(&buf)
	assert.NotContains(t, buf.String(), "Measured Interval")
	assert.NotContains(t, buf.String(), "Routing Policy")
}

func TestOutput_RawLine(t *testing.T) {
	out := Output{
		Seed:          3,
		Clock:         50.25,
		Throughput:    [3]float64{0.5, 0.25, 0},
		InspectorIdle: [2]float64{0.5, 0.125},
	}

	fields := strings.Split(out.RawLine(), "\t")

	assert.Equal(t, []string{"3", "50.25", "0.5", "0.25", "0", "50%", "12.5%"}, fields)
}

func TestOutput_RawLine_Historical(t *testing.T) {
	out := Output{Historical: true}
	assert.True(t, strings.HasPrefix(out.RawLine(), "Historical Data\t"))
}
