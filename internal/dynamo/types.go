package dynamo

import (
	"math"
	"math/cmplx"
)

// State is a complex state vector. Density matrices and propagators are
// flattened row-major by the caller.
type State []complex128

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		re, im := real(v), imag(v)
		sum += re*re + im*im
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor complex128) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Populations returns |s_i|^2 for every component.
func (s State) Populations() []float64 {
	p := make([]float64, len(s))
	for i, v := range s {
		re, im := real(v), imag(v)
		p[i] = re*re + im*im
	}
	return p
}

// System is the right-hand side of dy/dt = f(t, y).
type System interface {
	Derive(t float64, y State) State
	// Dim is the length of one state column, or 0 when the system accepts any
	// length. States may stack several columns (row-major).
	Dim() int
}

// RHSFunc adapts a plain function to System.
type RHSFunc func(t float64, y State) State

func (f RHSFunc) Derive(t float64, y State) State { return f(t, y) }
func (f RHSFunc) Dim() int                        { return 0 }

// FrameAware systems can be evaluated directly in the eigenbasis of their
// rotating frame.
type FrameAware interface {
	System
	EvaluateRHS(t float64, y State, inFrameBasis bool) State
	StateIntoFrameBasis(y State) State
	StateOutOfFrameBasis(y State) State
}

type Integrator interface {
	Step(sys System, y State, t, dt float64) State
	Order() int
}

// AdaptiveIntegrator takes a trial step and returns the new state together
// with the RMS-scaled error norm of its embedded estimate. A norm <= 1 means
// the step satisfies the tolerances. NextStep proposes the following step
// size from that norm.
type AdaptiveIntegrator interface {
	Integrator
	Attempt(sys System, y State, t, dt float64, tol Tolerance) (State, float64)
	NextStep(dt, errNorm float64) float64
}

type Tolerance struct {
	Atol float64
	Rtol float64
}

type Observer interface {
	OnStep(t float64, y State)
}

type Metric interface {
	Name() string
	Observe(t float64, y State)
	Value() float64
	Reset()
}

type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	LastDt      float64
}

type Result struct {
	T       []float64
	Y       []State
	Metrics map[string]float64
	Stats   Stats
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.Y) == 0 {
		return nil
	}
	return r.Y[len(r.Y)-1]
}
