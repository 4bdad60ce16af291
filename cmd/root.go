package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/assembly-sim/assembly-sim/sim"
	"github.com/assembly-sim/assembly-sim/sim/experiment"
	"github.com/assembly-sim/assembly-sim/sim/promexport"
	"github.com/assembly-sim/assembly-sim/sim/store"
	"github.com/assembly-sim/assembly-sim/sim/trace"
	"github.com/assembly-sim/assembly-sim/sim/workload"
)

var (
	// Shared flags
	seed          int64  // Seed for the duration and branch streams
	horizon       int    // Completed products that end a replication
	warmUp        int    // Initial completions excluded from statistics
	routingPolicy string // C1 routing policy name
	historicalDir string // Directory of recorded .dat files; enables historical replay
	configPath    string // Optional YAML experiment file
	logLevel      string // Log verbosity level

	// run flags
	traceLevel    string // Per-event trace level
	traceMax      int    // Cap on retained trace records
	rawOutput     bool   // Print the tab-separated line instead of the report
	exportSamples string // Directory to write the historical samples back to

	// replicate flags
	seeds           []int64 // Explicit replication seeds
	replications    int     // Number of consecutive seeds starting at --seed
	parallelism     int     // Concurrent replications
	confidence      float64 // Confidence level of the summary intervals
	resultsDB       string  // SQLite file receiving every output
	runLabel        string  // Label of this experiment in the results database
	metricsTextfile string  // Prometheus textfile receiving the summary
)

// checkExportSamples rejects --export-samples on a stochastic run, which has no
// loaded samples to write.
func checkExportSamples(historical bool, dir string) error {
	if dir != "" && !historical {
		return fmt.Errorf("--export-samples %q requires --historical", dir)
	}
	return nil
}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "assembly-sim",
	Short: "Discrete-event simulator for a two-inspector, three-workstation assembly line",
}

// runCmd executes a single replication
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one replication of the assembly line",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := resolveConfig(cmd)
		plan := cfg.plan()
		plan.Seeds = []int64{cfg.Seed}
		if err := plan.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid options: none, events", traceLevel)
		}
		if err := checkExportSamples(plan.Historical, exportSamples); err != nil {
			logrus.Fatalf("Invalid flags: %v", err)
		}

		var data *sim.HistoricalData
		if plan.Historical {
			var err error
			if data, err = workload.SharedHistorical(plan.HistoricalDir); err != nil {
				logrus.Fatalf("Failed to load historical data: %v", err)
			}
			if exportSamples != "" {
				if err := workload.ExportHistorical(exportSamples, data); err != nil {
					logrus.Fatalf("Failed to export samples: %v", err)
				}
				logrus.Infof("Samples written to %s", exportSamples)
			}
		}

		var reporters []sim.EventReporter
		var tw *trace.Writer
		var st *trace.SimulationTrace
		if trace.TraceLevel(traceLevel) == trace.TraceLevelEvents {
			tw = trace.NewWriter(cmd.OutOrStdout())
			st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents, MaxEvents: traceMax})
			reporters = append(reporters, tw, st)
		}

		logrus.Infof("Starting replication: seed=%d horizon=%d warm-up=%d policy=%q historical=%v",
			cfg.Seed, plan.Horizon, plan.WarmUp, plan.Policy, plan.Historical)
		out, err := experiment.Replicate(plan, cfg.Seed, data, reporters...)
		if err != nil {
			logrus.Fatalf("Replication failed: %v", err)
		}
		if tw != nil && tw.Err() != nil {
			logrus.Fatalf("Failed to write trace: %v", tw.Err())
		}
		if st != nil {
			ts := trace.Summarize(st)
			logrus.Infof("Trace: %d events (%d dropped), %d arrivals, %d departures, %d holds, max buffers %v",
				ts.TotalEvents, st.Dropped, ts.Arrivals, ts.Departures, ts.HeldArrivals, ts.MaxBuffers)
		}
		writeOutput(cmd.OutOrStdout(), out, rawOutput)
		logrus.Info("Simulation complete.")
	},
}

// replicateCmd executes independent replications and summarizes them
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run many replications and report confidence intervals",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := resolveConfig(cmd)
		plan := cfg.plan()

		outputs, err := experiment.Run(context.Background(), plan)
		if err != nil {
			logrus.Fatalf("Replications failed: %v", err)
		}
		sum, err := experiment.Summarize(outputs, cfg.Confidence)
		if err != nil {
			logrus.Fatalf("Failed to summarize: %v", err)
		}

		w := cmd.OutOrStdout()
		if rawOutput {
			for _, out := range outputs {
				fmt.Fprintln(w, out.RawLine())
			}
		}
		renderSummary(w, plan, sum)

		if cfg.ResultsDB != "" {
			if err := saveResults(cfg.ResultsDB, cfg.RunLabel, outputs); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
			logrus.Infof("Saved %d outputs to %s as %q", len(outputs), cfg.ResultsDB, cfg.RunLabel)
		}
		if cfg.MetricsTextfile != "" {
			exp := promexport.NewExporter()
			exp.Observe(sum)
			if err := exp.WriteTextfile(cfg.MetricsTextfile); err != nil {
				logrus.Fatalf("Failed to export metrics: %v", err)
			}
		}
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveConfig merges the optional YAML file with explicitly set flags.
func resolveConfig(cmd *cobra.Command) ExperimentConfig {
	cfg := DefaultExperimentConfig()
	if configPath != "" {
		loaded, err := LoadExperimentConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	applyFlagOverrides(cmd, &cfg)
	return cfg
}

func writeOutput(w io.Writer, out sim.Output, raw bool) {
	if raw {
		fmt.Fprintln(w, out.RawLine())
		return
	}
	out.Print(w)
}

func saveResults(path, label string, outputs []sim.Output) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.SaveOutputs(context.Background(), label, outputs)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, replicateCmd} {
		c.Flags().Int64Var(&seed, "seed", DefaultSeed, "Seed for the duration and branch streams")
		c.Flags().IntVar(&horizon, "horizon", DefaultHorizon, "Completed products that end a replication")
		c.Flags().IntVar(&warmUp, "warm-up", 0, "Initial completions excluded from statistics")
		c.Flags().StringVar(&routingPolicy, "routing-policy", "shortest-queue", fmt.Sprintf("C1 routing policy %v", sim.ValidRoutingPolicyNames()))
		c.Flags().StringVar(&historicalDir, "historical", "", "Replay recorded durations from this directory of .dat files")
		c.Flags().StringVar(&configPath, "config", "", "YAML experiment file; explicitly set flags take precedence")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().BoolVar(&rawOutput, "raw", false, "Print tab-separated output lines")
	}

	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Per-event trace level (none, events)")
	runCmd.Flags().IntVar(&traceMax, "trace-max", 0, "Maximum trace records kept for the summary (0 = unlimited)")
	runCmd.Flags().StringVar(&exportSamples, "export-samples", "", "Write the loaded historical samples to this directory")

	replicateCmd.Flags().Int64SliceVar(&seeds, "seeds", nil, "Comma-separated replication seeds (overrides --seed/--replications)")
	replicateCmd.Flags().IntVar(&replications, "replications", 10, "Number of consecutive seeds starting at --seed")
	replicateCmd.Flags().IntVar(&parallelism, "parallelism", 1, "Concurrent replications")
	replicateCmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Confidence level of the summary intervals")
	replicateCmd.Flags().StringVar(&resultsDB, "results-db", "", "SQLite file receiving every replication output")
	replicateCmd.Flags().StringVar(&runLabel, "run-label", "default", "Label of this experiment in the results database")
	replicateCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Prometheus textfile receiving the summary")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
}
