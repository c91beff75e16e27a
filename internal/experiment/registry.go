package experiment

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/linalg"
	"github.com/san-kum/qdynsim/internal/metrics"
	"github.com/san-kum/qdynsim/internal/signals"
	"gonum.org/v1/gonum/mat"
)

// Registry maps config names to envelopes and metrics.
type Registry struct {
	envelopes map[string]func(config.SignalConfig) func(float64) float64
	metrics   map[string]func(arg string, dim int) (dynamo.Metric, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		envelopes: make(map[string]func(config.SignalConfig) func(float64) float64),
		metrics:   make(map[string]func(string, int) (dynamo.Metric, error)),
	}

	r.envelopes["constant"] = func(config.SignalConfig) func(float64) float64 {
		return func(float64) float64 { return 1 }
	}
	r.envelopes["gaussian"] = func(s config.SignalConfig) func(float64) float64 {
		c, sigma := s.Center, s.Sigma
		return func(t float64) float64 {
			x := (t - c) / sigma
			return math.Exp(-0.5 * x * x)
		}
	}
	r.envelopes["square"] = func(s config.SignalConfig) func(float64) float64 {
		start, stop := s.Start, s.Stop
		return func(t float64) float64 {
			if t >= start && t < stop {
				return 1
			}
			return 0
		}
	}

	r.metrics["norm_drift"] = func(string, int) (dynamo.Metric, error) {
		return metrics.NewNormDrift(), nil
	}
	r.metrics["population"] = func(arg string, dim int) (dynamo.Metric, error) {
		level, err := strconv.Atoi(arg)
		if err != nil || level < 0 || level >= dim {
			return nil, fmt.Errorf("population level %q out of range for dimension %d", arg, dim)
		}
		return metrics.NewPopulation(level), nil
	}
	r.metrics["fidelity"] = func(arg string, dim int) (dynamo.Metric, error) {
		level, err := strconv.Atoi(arg)
		if err != nil || level < 0 || level >= dim {
			return nil, fmt.Errorf("fidelity target level %q out of range for dimension %d", arg, dim)
		}
		target := make(dynamo.State, dim)
		target[level] = 1
		return metrics.NewFidelity(target).WithName("fidelity_" + arg), nil
	}
	r.metrics["expectation"] = func(arg string, dim int) (dynamo.Metric, error) {
		p, ok := linalg.Pauli(arg)
		if !ok || dim != 2 {
			return nil, fmt.Errorf("expectation needs a Pauli operator on a qubit, got %q for dimension %d", arg, dim)
		}
		return metrics.NewExpectation("expectation_"+strings.ToLower(arg), p), nil
	}

	return r
}

// Signal builds envelope·amplitude·exp(i(2πft + φ)) from a signal config.
func (r *Registry) Signal(s config.SignalConfig) (signals.Signal, error) {
	name := s.Envelope
	if name == "" {
		name = "constant"
	}
	fn, ok := r.envelopes[name]
	if !ok {
		return nil, fmt.Errorf("unknown envelope: %s", name)
	}
	amp := s.Amplitude.Complex()
	var sig *signals.Base
	var err error
	if name == "constant" {
		sig, err = signals.NewSignal(amp, s.CarrierFreq, s.Phase)
	} else {
		env := fn(s)
		sig, err = signals.NewSignal(func(t float64) complex128 { return amp * complex(env(t), 0) }, s.CarrierFreq, s.Phase)
	}
	if err != nil {
		return nil, err
	}
	if s.Name != "" {
		sig = sig.WithName(s.Name)
	}
	return sig, nil
}

// Metric parses "name" or "name_arg", e.g. "population_1".
func (r *Registry) Metric(spec string, dim int) (dynamo.Metric, error) {
	if fn, ok := r.metrics[spec]; ok {
		return fn("", dim)
	}
	if i := strings.LastIndex(spec, "_"); i > 0 {
		if fn, ok := r.metrics[spec[:i]]; ok {
			return fn(spec[i+1:], dim)
		}
	}
	return nil, fmt.Errorf("unknown metric: %s", spec)
}

func (r *Registry) ListEnvelopes() []string {
	return sortedKeys(r.envelopes)
}

func (r *Registry) ListMetrics() []string {
	return sortedKeys(r.metrics)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildOperators(cfgs []config.OperatorConfig) ([]*mat.CDense, error) {
	ops := make([]*mat.CDense, len(cfgs))
	for i := range cfgs {
		m, err := cfgs[i].Build()
		if err != nil {
			return nil, fmt.Errorf("operator %d: %w", i, err)
		}
		ops[i] = m
	}
	return ops, nil
}
