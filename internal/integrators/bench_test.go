package integrators

import (
	"testing"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// chain is a nearest-neighbour hopping model on n sites.
type chain struct{ n int }

func (c *chain) Dim() int { return c.n }

func (c *chain) Derive(t float64, y dynamo.State) dynamo.State {
	dy := make(dynamo.State, c.n)
	for i := 0; i < c.n; i++ {
		var s complex128
		if i > 0 {
			s += y[i-1]
		}
		if i < c.n-1 {
			s += y[i+1]
		}
		dy[i] = -1i * s
	}
	return dy
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	sys := &twoLevel{omega: 1}
	y := dynamo.State{1, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = integrator.Step(sys, y, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	sys := &twoLevel{omega: 1}
	y := dynamo.State{1, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = integrator.Step(sys, y, 0, 0.01)
	}
}

func BenchmarkRK23(b *testing.B) {
	integrator := NewRK23()
	sys := &twoLevel{omega: 1}
	y := dynamo.State{1, 0}
	tol := dynamo.Tolerance{Atol: 1e-8, Rtol: 1e-8}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y, _ = integrator.Attempt(sys, y, 0, 0.01, tol)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	sys := &twoLevel{omega: 1}
	y := dynamo.State{1, 0}
	tol := dynamo.Tolerance{Atol: 1e-8, Rtol: 1e-8}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y, _ = integrator.Attempt(sys, y, 0, 0.01, tol)
	}
}

func BenchmarkRK4_Chain64(b *testing.B) {
	integrator := NewRK4()
	sys := &chain{n: 64}
	y := make(dynamo.State, 64)
	y[32] = 1

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = integrator.Step(sys, y, 0, 0.001)
	}
}

func BenchmarkRK45_Chain64(b *testing.B) {
	integrator := NewRK45()
	sys := &chain{n: 64}
	y := make(dynamo.State, 64)
	y[32] = 1

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = integrator.Step(sys, y, 0, 0.001)
	}
}
