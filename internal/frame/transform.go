package frame

import (
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// StateIntoFrameBasis returns B†·y.
func (f *RotatingFrame) StateIntoFrameBasis(y dynamo.State) dynamo.State {
	if f.IsDiagonal() {
		return y.Clone()
	}
	return linalg.MulVec(f.basisAdj, y)
}

// StateOutOfFrameBasis returns B·y.
func (f *RotatingFrame) StateOutOfFrameBasis(y dynamo.State) dynamo.State {
	if f.IsDiagonal() {
		return y.Clone()
	}
	return linalg.MulVec(f.basis, y)
}

// GeneratorIntoFrameBasis returns B†·m·B.
func (f *RotatingFrame) GeneratorIntoFrameBasis(m *mat.CDense) *mat.CDense {
	if f.IsDiagonal() {
		return linalg.Clone(m)
	}
	return linalg.Conjugate(f.basis, m)
}

// GeneratorOutOfFrameBasis returns B·m·B†.
func (f *RotatingFrame) GeneratorOutOfFrameBasis(m *mat.CDense) *mat.CDense {
	if f.IsDiagonal() {
		return linalg.Clone(m)
	}
	return linalg.ConjugateBy(f.basis, m)
}

// OperatorIntoFrameBasis is an alias of GeneratorIntoFrameBasis for
// observables.
func (f *RotatingFrame) OperatorIntoFrameBasis(m *mat.CDense) *mat.CDense {
	return f.GeneratorIntoFrameBasis(m)
}

func (f *RotatingFrame) OperatorOutOfFrameBasis(m *mat.CDense) *mat.CDense {
	return f.GeneratorOutOfFrameBasis(m)
}

// StateIntoFrame returns e^{-tF}·y.
func (f *RotatingFrame) StateIntoFrame(t float64, y dynamo.State, yInFrameBasis, returnInFrameBasis bool) dynamo.State {
	return f.rotateState(-t, y, yInFrameBasis, returnInFrameBasis)
}

// StateOutOfFrame returns e^{tF}·y.
func (f *RotatingFrame) StateOutOfFrame(t float64, y dynamo.State, yInFrameBasis, returnInFrameBasis bool) dynamo.State {
	return f.rotateState(t, y, yInFrameBasis, returnInFrameBasis)
}

func (f *RotatingFrame) rotateState(t float64, y dynamo.State, inFB, outFB bool) dynamo.State {
	if f == nil {
		return y.Clone()
	}
	out := y
	if !inFB {
		out = f.StateIntoFrameBasis(out)
	} else {
		out = out.Clone()
	}
	ph := phases(f.diag, t)
	for i := range out {
		out[i] *= ph[i]
	}
	if !outFB {
		out = f.StateOutOfFrameBasis(out)
	}
	return out
}

// OperatorIntoFrame returns e^{-tF}·op·e^{tF}.
func (f *RotatingFrame) OperatorIntoFrame(t float64, op *mat.CDense, opInFrameBasis, returnInFrameBasis bool) *mat.CDense {
	return f.conjugateAndAdd(t, op, 0, opInFrameBasis, returnInFrameBasis)
}

// OperatorOutOfFrame returns e^{tF}·op·e^{-tF}.
func (f *RotatingFrame) OperatorOutOfFrame(t float64, op *mat.CDense, opInFrameBasis, returnInFrameBasis bool) *mat.CDense {
	return f.conjugateAndAdd(-t, op, 0, opInFrameBasis, returnInFrameBasis)
}

// GeneratorIntoFrame returns e^{-tF}·g·e^{tF} - F.
func (f *RotatingFrame) GeneratorIntoFrame(t float64, g *mat.CDense, opInFrameBasis, returnInFrameBasis bool) *mat.CDense {
	return f.conjugateAndAdd(t, g, -1, opInFrameBasis, returnInFrameBasis)
}

// GeneratorOutOfFrame returns e^{tF}·g·e^{-tF} + F, the inverse of
// GeneratorIntoFrame.
func (f *RotatingFrame) GeneratorOutOfFrame(t float64, g *mat.CDense, opInFrameBasis, returnInFrameBasis bool) *mat.CDense {
	return f.conjugateAndAdd(-t, g, 1, opInFrameBasis, returnInFrameBasis)
}

// conjugateAndAdd computes e^{-tF}·op·e^{tF} + sign·F entirely in the frame
// basis: entry (j, k) picks up exp(-t·d_j)·exp(t·d_k), and F is diagonal.
func (f *RotatingFrame) conjugateAndAdd(t float64, op *mat.CDense, sign complex128, inFB, outFB bool) *mat.CDense {
	if f == nil {
		return linalg.Clone(op)
	}
	var out *mat.CDense
	if inFB {
		out = linalg.Clone(op)
	} else {
		out = f.GeneratorIntoFrameBasis(op)
	}

	left := phases(f.diag, -t)
	right := phases(f.diag, t)
	raw := out.RawCMatrix()
	for j := 0; j < raw.Rows; j++ {
		row := raw.Data[j*raw.Stride : j*raw.Stride+raw.Cols]
		for k := range row {
			row[k] *= left[j] * right[k]
		}
		row[j] += sign * f.diag[j]
	}

	if !outFB {
		out = f.GeneratorOutOfFrameBasis(out)
	}
	return out
}

// RotateStateInFrameBasis multiplies y elementwise by exp(t·d). It is the
// hot-path primitive used by models that keep everything in the frame basis.
func (f *RotatingFrame) RotateStateInFrameBasis(t float64, y dynamo.State) dynamo.State {
	if f == nil {
		return y.Clone()
	}
	out := y.Clone()
	ph := phases(f.diag, t)
	for i := range out {
		out[i] *= ph[i]
	}
	return out
}
