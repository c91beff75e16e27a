package metrics

import (
	"math/cmplx"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/linalg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Expectation is the time average of Re⟨y|O|y⟩ over the observed points.
type Expectation struct {
	name     string
	operator *mat.CDense
	values   []float64
}

func NewExpectation(name string, operator *mat.CDense) *Expectation {
	return &Expectation{name: name, operator: operator}
}

func (e *Expectation) Name() string { return e.name }

func (e *Expectation) Observe(t float64, y dynamo.State) {
	_, c := e.operator.Dims()
	if len(y) != c {
		return
	}
	oy := linalg.MulVec(e.operator, y)
	var v complex128
	for i := range y {
		v += cmplx.Conj(y[i]) * oy[i]
	}
	e.values = append(e.values, real(v))
}

func (e *Expectation) Value() float64 {
	if len(e.values) == 0 {
		return 0
	}
	return floats.Sum(e.values) / float64(len(e.values))
}

// Trace returns the recorded expectation values.
func (e *Expectation) Trace() []float64 {
	out := make([]float64, len(e.values))
	copy(out, e.values)
	return out
}

func (e *Expectation) Reset() { e.values = e.values[:0] }
