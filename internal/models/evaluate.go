package models

import (
	"fmt"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// weightedSum returns drift + Σ sᵢ(t)·Gᵢ in the frame basis.
func (m *Model) weightedSum(t float64) *mat.CDense {
	c := m.cached()
	var out *mat.CDense
	if c.drift != nil {
		out = linalg.Clone(c.drift)
	} else {
		out = linalg.Zeros(m.dim)
	}
	if len(c.operators) == 0 {
		return out
	}
	coeffs := make([]float64, len(m.signals))
	m.signals.ValueInto(coeffs, t)
	for i, op := range c.operators {
		linalg.AddScaledTo(out, complex(coeffs[i], 0), op)
	}
	return out
}

// EvaluateGenerator returns the generator at time t in the rotating frame,
// e^{-tF}·G(t)·e^{tF} - F, expressed in the frame basis when inFrameBasis is
// set. In the Schrödinger convention this is -i times the Hamiltonian.
func (m *Model) EvaluateGenerator(t float64, inFrameBasis bool) *mat.CDense {
	g := m.weightedSum(t)
	if m.frame == nil {
		return g
	}
	return m.frame.GeneratorIntoFrame(t, g, true, inFrameBasis)
}

// EvaluateHamiltonian returns i·EvaluateGenerator, the Hermitian operator of
// a Schrödinger-convention model.
func (m *Model) EvaluateHamiltonian(t float64, inFrameBasis bool) *mat.CDense {
	return linalg.Scale(1i, m.EvaluateGenerator(t, inFrameBasis))
}

// EvaluateRHS returns (e^{-tF}·G(t)·e^{tF} - F)·y. The state and the result
// are in the frame basis when inFrameBasis is set. A state of length k·Dim
// is read as a row-major Dim×k block and every column is evolved.
func (m *Model) EvaluateRHS(t float64, y dynamo.State, inFrameBasis bool) dynamo.State {
	if len(y) == 0 || len(y)%m.dim != 0 {
		panic(fmt.Sprintf("models: state of length %d for dimension %d", len(y), m.dim))
	}
	g := m.weightedSum(t)
	cols := len(y) / m.dim
	if cols == 1 {
		return m.rhsColumn(t, g, y, inFrameBasis)
	}

	out := make(dynamo.State, len(y))
	col := make(dynamo.State, m.dim)
	for k := 0; k < cols; k++ {
		for i := range col {
			col[i] = y[i*cols+k]
		}
		res := m.rhsColumn(t, g, col, inFrameBasis)
		for i, v := range res {
			out[i*cols+k] = v
		}
	}
	return out
}

func (m *Model) rhsColumn(t float64, g *mat.CDense, y dynamo.State, inFrameBasis bool) dynamo.State {
	if m.frame == nil {
		return linalg.MulVec(g, y)
	}
	yb := y
	if !inFrameBasis {
		yb = m.frame.StateIntoFrameBasis(y)
	}
	z := m.frame.RotateStateInFrameBasis(t, yb)
	out := m.frame.RotateStateInFrameBasis(-t, linalg.MulVec(g, z))
	for i, d := range m.frame.Diag() {
		out[i] -= d * yb[i]
	}
	if !inFrameBasis {
		out = m.frame.StateOutOfFrameBasis(out)
	}
	return out
}

// Derive evaluates the right-hand side in the lab basis.
func (m *Model) Derive(t float64, y dynamo.State) dynamo.State {
	return m.EvaluateRHS(t, y, false)
}

// StateIntoFrameBasis maps y (one or more columns) into the frame basis.
func (m *Model) StateIntoFrameBasis(y dynamo.State) dynamo.State {
	return m.mapColumns(y, m.frame.StateIntoFrameBasis)
}

func (m *Model) StateOutOfFrameBasis(y dynamo.State) dynamo.State {
	return m.mapColumns(y, m.frame.StateOutOfFrameBasis)
}

func (m *Model) mapColumns(y dynamo.State, f func(dynamo.State) dynamo.State) dynamo.State {
	if m.frame.IsDiagonal() || len(y) == m.dim {
		return f(y)
	}
	if len(y)%m.dim != 0 {
		panic(fmt.Sprintf("models: state of length %d for dimension %d", len(y), m.dim))
	}
	cols := len(y) / m.dim
	out := make(dynamo.State, len(y))
	col := make(dynamo.State, m.dim)
	for k := 0; k < cols; k++ {
		for i := range col {
			col[i] = y[i*cols+k]
		}
		for i, v := range f(col) {
			out[i*cols+k] = v
		}
	}
	return out
}
