// Package experiment runs independent replications of the assembly-line
// simulation and summarizes them with confidence intervals.
package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/assembly-sim/assembly-sim/sim"
	"github.com/assembly-sim/assembly-sim/sim/workload"
)

// Plan describes a batch of replications that differ only in their seed.
type Plan struct {
	Seeds         []int64
	Historical    bool
	HistoricalDir string
	Policy        string
	Horizon       int
	WarmUp        int
	Rates         sim.Rates
	// Parallelism bounds concurrent replications. Values below 1 mean sequential.
	Parallelism int
}

// Validate checks the plan before any replication is started.
func (p Plan) Validate() error {
	if len(p.Seeds) == 0 {
		return fmt.Errorf("plan has no seeds")
	}
	if !sim.IsValidRoutingPolicy(p.Policy) {
		return fmt.Errorf("unknown routing policy %q; valid options: %v", p.Policy, sim.ValidRoutingPolicyNames())
	}
	if err := sim.NewConfig(p.Horizon, p.WarmUp).Validate(); err != nil {
		return err
	}
	if p.Historical {
		if p.HistoricalDir == "" {
			return fmt.Errorf("historical mode needs a data directory")
		}
		return nil
	}
	return p.Rates.Validate()
}

// Run executes one replication per seed and returns the outputs in seed order.
// Every replication gets its own time source, routing policy and simulator;
// historical samples are loaded once and shared read-only.
func Run(ctx context.Context, plan Plan) ([]sim.Output, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	var data *sim.HistoricalData
	if plan.Historical {
		var err error
		if data, err = workload.SharedHistorical(plan.HistoricalDir); err != nil {
			return nil, err
		}
	}

	limit := plan.Parallelism
	if limit < 1 {
		limit = 1
	}
	outputs := make([]sim.Output, len(plan.Seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, seed := range plan.Seeds {
		i, seed := i, seed
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := Replicate(plan, seed, data)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logrus.Infof("Completed %d replications (parallelism %d)", len(outputs), limit)
	return outputs, nil
}

// Replicate runs a single replication of plan with seed. data is required in
// historical mode and ignored otherwise.
func Replicate(plan Plan, seed int64, data *sim.HistoricalData, reporters ...sim.EventReporter) (sim.Output, error) {
	var times sim.TimeSource
	var err error
	if plan.Historical {
		times, err = sim.NewHistoricalSource(seed, data)
	} else {
		times, err = sim.NewStochasticSource(seed, plan.Rates)
	}
	if err != nil {
		return sim.Output{}, err
	}

	s, err := sim.NewSimulator(sim.NewConfig(plan.Horizon, plan.WarmUp), times, sim.NewRoutingPolicy(plan.Policy))
	if err != nil {
		return sim.Output{}, err
	}
	s.Meta = sim.RunMeta{Seed: seed, Historical: plan.Historical, Policy: policyLabel(plan.Policy)}
	for _, r := range reporters {
		s.AddEventReporter(r)
	}
	logrus.Debugf("Starting replication seed=%d historical=%v", seed, plan.Historical)
	return s.Run(), nil
}

// policyLabel maps the empty policy name to the default it selects.
func policyLabel(name string) string {
	if name == "" {
		return "shortest-queue"
	}
	return name
}
