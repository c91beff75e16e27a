package integrators

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// rotation is y' = -i·ω·y, solved by y(t) = e^{-iωt}·y(0).
type rotation struct{ omega float64 }

func (r *rotation) Dim() int { return 0 }

func (r *rotation) Derive(t float64, y dynamo.State) dynamo.State {
	return y.Scale(complex(0, -r.omega))
}

// twoLevel is y' = -i·(ω/2)·σx·y.
type twoLevel struct{ omega float64 }

func (s *twoLevel) Dim() int { return 2 }

func (s *twoLevel) Derive(t float64, y dynamo.State) dynamo.State {
	k := complex(0, -s.omega/2)
	return dynamo.State{k * y[1], k * y[0]}
}

func integrate(integ dynamo.Integrator, sys dynamo.System, y dynamo.State, dt float64, steps int) dynamo.State {
	for i := 0; i < steps; i++ {
		y = integ.Step(sys, y, float64(i)*dt, dt)
	}
	return y
}

func TestFixedStepAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"Euler", NewEuler(), 1e-2},
		{"RK4", NewRK4(), 1e-9},
		{"RK23", NewRK23(), 1e-5},
		{"RK45", NewRK45(), 1e-11},
	}

	sys := &rotation{omega: 1}
	dt := 0.01
	steps := 100
	want := cmplx.Exp(complex(0, -float64(steps)*dt))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := integrate(tt.integ, sys, dynamo.State{1}, dt, steps)
			if d := cmplx.Abs(y[0] - want); d > tt.tol {
				t.Errorf("error %.3e exceeds %.1e (got %v, want %v)", d, tt.tol, y[0], want)
			}
		})
	}
}

func TestConvergenceOrder(t *testing.T) {
	tests := []struct {
		integ dynamo.Integrator
	}{
		{NewEuler()},
		{NewRK23()},
		{NewRK4()},
		{NewRK45()},
	}

	sys := &rotation{omega: 2}
	span := 1.0
	want := cmplx.Exp(complex(0, -2*span))

	for _, tt := range tests {
		errAt := func(steps int) float64 {
			y := integrate(tt.integ, sys, dynamo.State{1}, span/float64(steps), steps)
			return cmplx.Abs(y[0] - want)
		}
		ratio := errAt(20) / errAt(40)
		expected := math.Pow(2, float64(tt.integ.Order()))
		if ratio < 0.75*expected {
			t.Errorf("order %d: halving dt reduced error by %.2f, expected about %.0f", tt.integ.Order(), ratio, expected)
		}
	}
}

func TestNormConservation(t *testing.T) {
	integ := NewRK45()
	sys := &twoLevel{omega: 2 * math.Pi}
	y := integrate(integ, sys, dynamo.State{1, 0}, 0.01, 10000)

	if !y.IsValid() {
		t.Fatal("RK45 produced invalid state")
	}
	if drift := math.Abs(y.Norm() - 1); drift > 1e-6 {
		t.Errorf("RK45 norm drift too high: %e", drift)
	}
}

func TestAttemptErrorNorm(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.AdaptiveIntegrator
	}{
		{"RK23", NewRK23()},
		{"RK45", NewRK45()},
	}

	sys := &twoLevel{omega: 2 * math.Pi}
	tol := dynamo.Tolerance{Atol: 1e-8, Rtol: 1e-8}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, small := tt.integ.Attempt(sys, dynamo.State{1, 0}, 0, 1e-4, tol)
			if !y.IsValid() {
				t.Fatal("Attempt produced invalid state")
			}
			if small > 1 {
				t.Errorf("error norm %.3e for a tiny step, expected acceptance", small)
			}

			_, large := tt.integ.Attempt(sys, dynamo.State{1, 0}, 0, 0.5, tol)
			if large <= 1 {
				t.Errorf("error norm %.3e for a large step, expected rejection", large)
			}
			if large <= small {
				t.Errorf("error norm did not grow with the step: %.3e <= %.3e", large, small)
			}
		})
	}
}

func TestNextStep(t *testing.T) {
	r := NewRK45()
	dt := 0.1

	if got := r.NextStep(dt, 0); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("zero error should grow the step to the clamp, got %f", got)
	}
	if got := r.NextStep(dt, 1e12); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("huge error should shrink the step to the clamp, got %f", got)
	}
	if got := r.NextStep(dt, math.NaN()); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("NaN error should shrink the step, got %f", got)
	}
	if got := r.NextStep(dt, 1); math.Abs(got-0.09) > 1e-12 {
		t.Errorf("unit error should apply the safety factor, got %f", got)
	}
}

func TestRK4ReusesScratchAcrossDimensions(t *testing.T) {
	integ := NewRK4()
	integ.Step(&rotation{omega: 1}, dynamo.State{1, 2, 3}, 0, 0.1)
	y := integ.Step(&twoLevel{omega: 1}, dynamo.State{1, 0}, 0, 0.1)
	if len(y) != 2 || !y.IsValid() {
		t.Errorf("unexpected state %v", y)
	}
}
