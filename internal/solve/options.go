package solve

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/dynamo"
)

const (
	DefaultRTol     = 1e-3
	DefaultATol     = 1e-6
	DefaultMaxSteps = 1_000_000

	// fixedStepDivisions is the number of steps fixed-step methods take over
	// the span when MaxStep is unset.
	fixedStepDivisions = 1000
)

type Options struct {
	Method string
	RTol   float64
	ATol   float64
	// MaxStep bounds adaptive steps and is the step of fixed-step methods.
	MaxStep   float64
	FirstStep float64
	MaxSteps  int
	// TEval restricts output to these times. They must be sorted and lie in
	// the span. Steps are shortened to land on them exactly.
	TEval []float64
	// InFrameBasis integrates frame-aware systems in the eigenbasis of their
	// frame. Results are always reported in the original basis.
	InFrameBasis bool
	Observers    []dynamo.Observer
	Metrics      []dynamo.Metric
	Logger       *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Method == "" {
		o.Method = DefaultMethod
	}
	if o.RTol == 0 {
		o.RTol = DefaultRTol
	}
	if o.ATol == 0 {
		o.ATol = DefaultATol
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	return o
}

func (o Options) validate(tSpan [2]float64) error {
	t0, tf := tSpan[0], tSpan[1]
	if math.IsNaN(t0) || math.IsNaN(tf) || math.IsInf(t0, 0) || math.IsInf(tf, 0) || tf <= t0 {
		return fmt.Errorf("span [%g, %g]: %w", t0, tf, dynamo.ErrInvalidSpan)
	}
	if o.RTol < 0 || o.ATol < 0 {
		return fmt.Errorf("tolerances must be non-negative, got rtol=%g atol=%g", o.RTol, o.ATol)
	}
	if o.MaxStep < 0 || o.FirstStep < 0 {
		return fmt.Errorf("step sizes must be non-negative, got max=%g first=%g", o.MaxStep, o.FirstStep)
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max steps must be non-negative, got %d", o.MaxSteps)
	}
	if len(o.TEval) > 0 {
		if !sort.Float64sAreSorted(o.TEval) {
			return fmt.Errorf("t_eval is not sorted: %w", dynamo.ErrInvalidSpan)
		}
		if o.TEval[0] < t0 || o.TEval[len(o.TEval)-1] > tf {
			return fmt.Errorf("t_eval outside [%g, %g]: %w", t0, tf, dynamo.ErrInvalidSpan)
		}
	}
	return nil
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}
