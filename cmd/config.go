package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/assembly-sim/assembly-sim/sim"
	"github.com/assembly-sim/assembly-sim/sim/experiment"
)

const (
	// DefaultSeed is the seed of the reference experiment.
	DefaultSeed int64 = 100980888
	// DefaultHorizon matches the length of the recorded sample files.
	DefaultHorizon = 300
)

// ExperimentConfig is the YAML experiment file. Every field can also be set by
// a flag; explicitly set flags win over the file.
// All fields must be listed to satisfy KnownFields(true) strict parsing.
type ExperimentConfig struct {
	Seed          int64     `yaml:"seed"`
	Seeds         []int64   `yaml:"seeds"`
	Replications  int       `yaml:"replications"`
	Horizon       int       `yaml:"horizon"`
	WarmUp        int       `yaml:"warm_up"`
	Policy        string    `yaml:"routing_policy"`
	HistoricalDir string    `yaml:"historical_dir"`
	Rates         sim.Rates `yaml:"rates"`
	Parallelism   int       `yaml:"parallelism"`
	Confidence    float64   `yaml:"confidence"`

	ResultsDB       string `yaml:"results_db"`
	RunLabel        string `yaml:"run_label"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// DefaultExperimentConfig returns the configuration used when no file is given.
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Seed:         DefaultSeed,
		Replications: 10,
		Horizon:      DefaultHorizon,
		Policy:       "shortest-queue",
		Rates:        sim.DefaultRates(),
		Parallelism:  1,
		Confidence:   0.95,
		RunLabel:     "default",
	}
}

// LoadExperimentConfig reads path on top of DefaultExperimentConfig, so a file
// only needs the fields it changes. Unknown fields are rejected.
func LoadExperimentConfig(path string) (ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExperimentConfig{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultExperimentConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return ExperimentConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlagOverrides copies every flag the user set explicitly into cfg.
// Flags left at their defaults never override the file.
func applyFlagOverrides(cmd *cobra.Command, cfg *ExperimentConfig) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("seed") {
		cfg.Seed = seed
		// An explicit --seed restarts the consecutive seed list.
		cfg.Seeds = nil
	}
	if changed("seeds") {
		cfg.Seeds = seeds
	}
	if changed("replications") {
		cfg.Replications = replications
	}
	if changed("horizon") {
		cfg.Horizon = horizon
	}
	if changed("warm-up") {
		cfg.WarmUp = warmUp
	}
	if changed("routing-policy") {
		cfg.Policy = routingPolicy
	}
	if changed("historical") {
		cfg.HistoricalDir = historicalDir
	}
	if changed("parallelism") {
		cfg.Parallelism = parallelism
	}
	if changed("confidence") {
		cfg.Confidence = confidence
	}
	if changed("results-db") {
		cfg.ResultsDB = resultsDB
	}
	if changed("run-label") {
		cfg.RunLabel = runLabel
	}
	if changed("metrics-textfile") {
		cfg.MetricsTextfile = metricsTextfile
	}
}

// seedList returns the explicit seeds, or Replications consecutive seeds
// starting at Seed.
func (c ExperimentConfig) seedList() []int64 {
	if len(c.Seeds) > 0 {
		return c.Seeds
	}
	list := make([]int64, 0, c.Replications)
	for i := 0; i < c.Replications; i++ {
		list = append(list, c.Seed+int64(i))
	}
	return list
}

// plan converts the configuration into an experiment plan.
func (c ExperimentConfig) plan() experiment.Plan {
	return experiment.Plan{
		Seeds:         c.seedList(),
		Historical:    c.HistoricalDir != "",
		HistoricalDir: c.HistoricalDir,
		Policy:        c.Policy,
		Horizon:       c.Horizon,
		WarmUp:        c.WarmUp,
		Rates:         c.Rates,
		Parallelism:   c.Parallelism,
	}
}
