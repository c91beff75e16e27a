package solve

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/dynamo"
)

// SolveODE integrates dy/dt = rhs(t, y) over tSpan from y0.
//
// rhs may be a dynamo.System (models included), a dynamo.RHSFunc or a plain
// func(float64, dynamo.State) dynamo.State. The returned result holds every
// accepted step, or only the Options.TEval times when those are set. On
// failure the partial result is returned along with the error.
func SolveODE(ctx context.Context, rhs any, tSpan [2]float64, y0 dynamo.State, opts Options) (*dynamo.Result, error) {
	sys, err := asSystem(rhs)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := opts.validate(tSpan); err != nil {
		return nil, err
	}
	if len(y0) == 0 {
		return nil, fmt.Errorf("empty initial state: %w", dynamo.ErrDimensionMismatch)
	}
	if d := sys.Dim(); d > 0 && len(y0)%d != 0 {
		return nil, fmt.Errorf("initial state of length %d for dimension %d: %w", len(y0), d, dynamo.ErrDimensionMismatch)
	}
	if !y0.IsValid() {
		return nil, &dynamo.SimulationError{Step: 0, Time: tSpan[0], State: y0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}
	integ, err := NewIntegrator(opts.Method)
	if err != nil {
		return nil, err
	}

	r := newRun(sys, integ, tSpan, opts)
	return r.execute(ctx, y0)
}

func asSystem(rhs any) (dynamo.System, error) {
	switch f := rhs.(type) {
	case nil:
		return nil, fmt.Errorf("nil right-hand side: %w", dynamo.ErrUnsupportedSystem)
	case dynamo.System:
		return f, nil
	case func(float64, dynamo.State) dynamo.State:
		return dynamo.RHSFunc(f), nil
	case func(float64, []complex128) []complex128:
		return dynamo.RHSFunc(func(t float64, y dynamo.State) dynamo.State { return f(t, y) }), nil
	default:
		return nil, fmt.Errorf("%T: %w", rhs, dynamo.ErrUnsupportedSystem)
	}
}

// frameBasisSystem evaluates a frame-aware system with states kept in the
// frame basis.
type frameBasisSystem struct {
	dynamo.FrameAware
}

func (s frameBasisSystem) Derive(t float64, y dynamo.State) dynamo.State {
	return s.EvaluateRHS(t, y, true)
}

// counter counts right-hand side evaluations.
type counter struct {
	dynamo.System
	n int
}

func (c *counter) Derive(t float64, y dynamo.State) dynamo.State {
	c.n++
	return c.System.Derive(t, y)
}

type run struct {
	sys    *counter
	integ  dynamo.Integrator
	t0, tf float64
	opts   Options
	log    zerolog.Logger

	// toLab maps integration states back to the caller's basis.
	toLab  func(dynamo.State) dynamo.State
	result *dynamo.Result
	nextEv int
}

func newRun(sys dynamo.System, integ dynamo.Integrator, tSpan [2]float64, opts Options) *run {
	return &run{
		sys:   &counter{System: sys},
		integ: integ,
		t0:    tSpan[0],
		tf:    tSpan[1],
		opts:  opts,
		log:   opts.logger().With().Str("component", "solver").Str("method", opts.Method).Logger(),
		toLab: func(y dynamo.State) dynamo.State { return y.Clone() },
		result: &dynamo.Result{
			T:       make([]float64, 0),
			Y:       make([]dynamo.State, 0),
			Metrics: make(map[string]float64),
		},
	}
}

func (r *run) execute(ctx context.Context, y0 dynamo.State) (*dynamo.Result, error) {
	start := time.Now()
	y := y0.Clone()

	if r.opts.InFrameBasis {
		if fa, ok := r.sys.System.(dynamo.FrameAware); ok {
			y = fa.StateIntoFrameBasis(y0)
			r.sys.System = frameBasisSystem{fa}
			r.toLab = fa.StateOutOfFrameBasis
		}
	}

	for _, m := range r.opts.Metrics {
		m.Reset()
	}

	if len(r.opts.TEval) == 0 {
		r.record(r.t0, y)
	} else {
		for r.nextEv < len(r.opts.TEval) && r.opts.TEval[r.nextEv] <= r.t0 {
			r.record(r.t0, y)
			r.nextEv++
		}
	}

	var err error
	if adaptive, ok := r.integ.(dynamo.AdaptiveIntegrator); ok {
		err = r.adaptiveLoop(ctx, adaptive, y)
	} else {
		err = r.fixedLoop(ctx, y)
	}

	for _, m := range r.opts.Metrics {
		r.result.Metrics[m.Name()] = m.Value()
	}
	r.result.Stats.Evaluations = r.sys.n

	ev := r.log.Info()
	if err != nil {
		ev = r.log.Warn().Err(err)
	}
	ev.Int("accepted", r.result.Stats.Accepted).
		Int("rejected", r.result.Stats.Rejected).
		Int("evaluations", r.result.Stats.Evaluations).
		Dur("elapsed", time.Since(start)).
		Msg("integration finished")

	return r.result, err
}

func (r *run) record(t float64, y dynamo.State) {
	lab := r.toLab(y)
	r.result.T = append(r.result.T, t)
	r.result.Y = append(r.result.Y, lab)
	for _, m := range r.opts.Metrics {
		m.Observe(t, lab)
	}
	for _, obs := range r.opts.Observers {
		obs.OnStep(t, lab)
	}
}

func (r *run) done(t float64) bool {
	if len(r.opts.TEval) > 0 && r.nextEv >= len(r.opts.TEval) {
		return true
	}
	return t >= r.tf
}

// nextStop is the next time a step must land on: the next TEval entry or the
// end of the span.
func (r *run) nextStop() (float64, bool) {
	if r.nextEv < len(r.opts.TEval) {
		return r.opts.TEval[r.nextEv], true
	}
	return r.tf, len(r.opts.TEval) == 0
}

// accept advances the run to (t, y) and records it when required.
func (r *run) accept(t float64, y dynamo.State, landed, output bool) {
	r.result.Stats.Accepted++
	switch {
	case len(r.opts.TEval) == 0:
		r.record(t, y)
	case landed && output:
		// Equal TEval entries are all reported.
		for r.nextEv < len(r.opts.TEval) && r.opts.TEval[r.nextEv] <= t {
			r.record(t, y)
			r.nextEv++
		}
	}
}

func (r *run) fail(t float64, y dynamo.State, err error) error {
	return &dynamo.SimulationError{
		Step:    r.result.Stats.Accepted,
		Time:    t,
		State:   r.toLab(y),
		Wrapped: err,
	}
}

func (r *run) fixedLoop(ctx context.Context, y dynamo.State) error {
	h := r.opts.MaxStep
	if h == 0 {
		h = (r.tf - r.t0) / fixedStepDivisions
	}
	t := r.t0

	for !r.done(t) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if r.result.Stats.Accepted >= r.opts.MaxSteps {
			return r.fail(t, y, dynamo.ErrTooManySteps)
		}

		stop, output := r.nextStop()
		step, landed := clip(t, h, stop)

		yNew := r.integ.Step(r.sys, y, t, step)
		if !yNew.IsValid() {
			return r.fail(t, y, dynamo.ErrInvalidState)
		}
		if landed {
			t = stop
		} else {
			t += step
		}
		y = yNew
		r.result.Stats.LastDt = step
		r.accept(t, y, landed, output)
	}
	return nil
}

func (r *run) adaptiveLoop(ctx context.Context, integ dynamo.AdaptiveIntegrator, y dynamo.State) error {
	tol := dynamo.Tolerance{Atol: r.opts.ATol, Rtol: r.opts.RTol}
	h := r.opts.FirstStep
	if h == 0 {
		h = r.initialStep(y, integ.Order()-1, tol)
	}
	t := r.t0
	steps := 0

	for !r.done(t) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if steps >= r.opts.MaxSteps {
			return r.fail(t, y, dynamo.ErrTooManySteps)
		}
		steps++

		if r.opts.MaxStep > 0 && h > r.opts.MaxStep {
			h = r.opts.MaxStep
		}
		minStep := 10 * (math.Nextafter(t, math.Inf(1)) - t)
		if h < minStep {
			return r.fail(t, y, dynamo.ErrStepTooSmall)
		}

		stop, output := r.nextStop()
		step, landed := clip(t, h, stop)

		yNew, errNorm := integ.Attempt(r.sys, y, t, step, tol)
		if !(errNorm <= 1) {
			r.result.Stats.Rejected++
			h = integ.NextStep(step, errNorm)
			r.log.Debug().
				Float64("t", t).
				Float64("dt", step).
				Float64("error_norm", errNorm).
				Msg("step rejected")
			continue
		}
		if !yNew.IsValid() {
			return r.fail(t, y, dynamo.ErrInvalidState)
		}

		if landed {
			t = stop
		} else {
			t += step
		}
		y = yNew
		r.result.Stats.LastDt = step
		r.accept(t, y, landed, output)

		next := integ.NextStep(step, errNorm)
		if landed && step < h {
			// a clipped step says nothing about the achievable size
			next = math.Max(next, h)
		}
		h = next
	}
	return nil
}

// clip shortens h so that t+h does not pass stop. It reports whether the step
// lands on stop.
func clip(t, h, stop float64) (float64, bool) {
	remaining := stop - t
	if h >= remaining || remaining-h <= 1e-12*math.Max(1, math.Abs(stop)) {
		return remaining, true
	}
	return h, false
}

// initialStep estimates a first step from the size of y and its first two
// derivatives (Hairer, Nørsett & Wanner, Solving ODEs I, II.4).
func (r *run) initialStep(y dynamo.State, errOrder int, tol dynamo.Tolerance) float64 {
	span := r.tf - r.t0
	f0 := r.sys.Derive(r.t0, y)

	scale := make([]float64, len(y))
	for i, v := range y {
		scale[i] = tol.Atol + tol.Rtol*cabs(v)
	}
	d0 := rms(y, scale)
	d1 := rms(f0, scale)

	var h0 float64
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	} else {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	y1 := make(dynamo.State, len(y))
	for i := range y {
		y1[i] = y[i] + complex(h0, 0)*f0[i]
	}
	f1 := r.sys.Derive(r.t0+h0, y1)
	d2 := rms(f1.Sub(f0), scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(errOrder+1))
	}
	return math.Min(math.Min(100*h0, h1), span)
}

func rms(v dynamo.State, scale []float64) float64 {
	sum := 0.0
	for i, x := range v {
		q := cabs(x) / scale[i]
		sum += q * q
	}
	return math.Sqrt(sum / float64(len(v)))
}

func cabs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}
