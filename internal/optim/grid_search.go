package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/experiment"
)

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

func (g Goal) better(a, b float64) bool {
	if g == Maximize {
		return a > b
	}
	return a < b
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	goal       Goal
}

func NewGridSearch(params []string, ranges [][]float64, goal Goal) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, goal: goal}, nil
}

// Search runs one experiment per grid point and returns the parameters with
// the best final value of metricName.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	if g.goal == Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return fmt.Errorf("build %v: %w", current, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("run %v: %w", current, err)
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("metric %q not collected", metricName)
		}
		if *bestParams == nil || g.goal.better(val, *best) {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ApplySignalParams returns a copy of base with the named fields of signal
// index overwritten. Recognized names are amplitude, carrier_freq, phase,
// center and sigma.
func ApplySignalParams(base *config.Config, index int, params map[string]float64) (*config.Config, error) {
	if index < 0 || index >= len(base.Signals) {
		return nil, fmt.Errorf("signal index %d out of range [0, %d)", index, len(base.Signals))
	}
	cfg := base.Clone()
	s := &cfg.Signals[index]
	for name, v := range params {
		switch name {
		case "amplitude":
			s.Amplitude = config.C(v, 0)
		case "carrier_freq":
			s.CarrierFreq = v
		case "phase":
			s.Phase = v
		case "center":
			s.Center = v
		case "sigma":
			s.Sigma = v
		default:
			return nil, fmt.Errorf("unknown signal parameter: %s", name)
		}
	}
	return cfg, nil
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{a}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	out[n-1] = b
	return out
}
