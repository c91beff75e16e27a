package metrics

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// Population is |y[level]|² at the last observed point.
type Population struct {
	name  string
	level int
	value float64
}

func NewPopulation(level int) *Population {
	return &Population{
		name:  fmt.Sprintf("population_%d", level),
		level: level,
	}
}

func (p *Population) Name() string { return p.name }

func (p *Population) Observe(t float64, y dynamo.State) {
	if p.level < 0 || p.level >= len(y) {
		return
	}
	a := cmplx.Abs(y[p.level])
	p.value = a * a
}

func (p *Population) Value() float64 { return p.value }

func (p *Population) Reset() { p.value = 0 }

// Fidelity is |⟨target|y⟩|² at the last observed point, normalized by the
// norms of both vectors.
type Fidelity struct {
	name   string
	target dynamo.State
	value  float64
}

func NewFidelity(target dynamo.State) *Fidelity {
	return &Fidelity{name: "fidelity", target: target.Clone()}
}

// WithName renames the metric, e.g. to tell several targets apart.
func (f *Fidelity) WithName(name string) *Fidelity {
	f.name = name
	return f
}

func (f *Fidelity) Name() string { return f.name }

func (f *Fidelity) Observe(t float64, y dynamo.State) {
	if len(y) != len(f.target) {
		return
	}
	var overlap complex128
	for i, v := range y {
		overlap += cmplx.Conj(f.target[i]) * v
	}
	denom := f.target.Norm() * y.Norm()
	if denom == 0 {
		f.value = 0
		return
	}
	a := cmplx.Abs(overlap) / denom
	f.value = a * a
}

func (f *Fidelity) Value() float64 { return f.value }

func (f *Fidelity) Reset() { f.value = 0 }
