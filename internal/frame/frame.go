// Package frame implements rotating-frame transformations of generators,
// operators and states.
//
// A frame is defined by an anti-Hermitian operator F (a Hermitian H is
// accepted and converted with F = -iH). Entering the frame maps a state y to
// e^{-tF}·y and a generator G to e^{-tF}·G·e^{tF} - F, which leaves the
// dynamics equivalent while removing the fast rotation generated by F.
// Every rotation is carried out in the eigenbasis of F, where it is a
// diagonal phase applied elementwise.
//
// A nil *RotatingFrame is the identity frame: every method returns a copy of
// its input.
package frame

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

const (
	hermitianAtol = 1e-10
	hermitianRtol = 1e-10
)

type RotatingFrame struct {
	dim int
	// operator is the anti-Hermitian F in the original basis.
	operator *mat.CDense
	// diag holds the eigenvalues of F, purely imaginary.
	diag []complex128
	// hermDiag holds the eigenvalues of iF, ascending.
	hermDiag []float64
	// basis and basisAdj are nil for frames defined by a diagonal.
	basis    *mat.CDense
	basisAdj *mat.CDense
}

// New diagonalizes a Hermitian or anti-Hermitian frame operator. A nil
// operator yields the identity frame.
func New(op *mat.CDense) (*RotatingFrame, error) {
	if op == nil {
		return nil, nil
	}
	n := linalg.Dim(op)
	if n < 0 {
		r, c := op.Dims()
		return nil, fmt.Errorf("frame operator is %dx%d: %w", r, c, dynamo.ErrNotSquare)
	}

	var f *mat.CDense
	switch {
	case linalg.IsHermitian(op, hermitianAtol, hermitianRtol):
		f = linalg.Scale(-1i, op)
	case linalg.IsAntiHermitian(op, hermitianAtol, hermitianRtol):
		f = linalg.Clone(op)
	default:
		return nil, fmt.Errorf("frame operator: %w", dynamo.ErrNotHermitian)
	}

	vals, vecs, err := linalg.Eigh(linalg.Scale(1i, f))
	if err != nil {
		return nil, fmt.Errorf("diagonalize frame operator: %w", err)
	}
	diag := make([]complex128, n)
	for i, v := range vals {
		diag[i] = complex(0, -v)
	}

	return &RotatingFrame{
		dim:      n,
		operator: f,
		diag:     diag,
		hermDiag: vals,
		basis:    vecs,
		basisAdj: linalg.Adjoint(vecs),
	}, nil
}

// NewDiagonal builds a frame from the diagonal of an already diagonal
// operator. Real entries are read as Hermitian, imaginary entries as
// anti-Hermitian. No diagonalization happens and the frame basis is the
// identity.
func NewDiagonal(v []complex128) (*RotatingFrame, error) {
	if len(v) == 0 {
		return nil, nil
	}
	allReal, allImag := true, true
	for _, x := range v {
		if !closeToZero(imag(x), real(x)) {
			allReal = false
		}
		if !closeToZero(real(x), imag(x)) {
			allImag = false
		}
	}

	diag := make([]complex128, len(v))
	herm := make([]float64, len(v))
	switch {
	case allReal:
		for i, x := range v {
			diag[i] = complex(0, -real(x))
			herm[i] = real(x)
		}
	case allImag:
		for i, x := range v {
			diag[i] = complex(0, imag(x))
			herm[i] = -imag(x)
		}
	default:
		return nil, fmt.Errorf("frame diagonal: %w", dynamo.ErrNotHermitian)
	}

	return &RotatingFrame{
		dim:      len(v),
		operator: linalg.Diag(diag),
		diag:     diag,
		hermDiag: herm,
	}, nil
}

// NewDiagonalReal is NewDiagonal for a real (Hermitian) diagonal.
func NewDiagonalReal(v []float64) (*RotatingFrame, error) {
	c := make([]complex128, len(v))
	for i, x := range v {
		c[i] = complex(x, 0)
	}
	return NewDiagonal(c)
}

func closeToZero(x, ref float64) bool {
	if x < 0 {
		x = -x
	}
	if ref < 0 {
		ref = -ref
	}
	return x <= hermitianAtol+hermitianRtol*ref
}

// Dim is the frame dimension, 0 for the identity frame.
func (f *RotatingFrame) Dim() int {
	if f == nil {
		return 0
	}
	return f.dim
}

// Operator returns the anti-Hermitian frame operator F.
func (f *RotatingFrame) Operator() *mat.CDense {
	if f == nil {
		return nil
	}
	return linalg.Clone(f.operator)
}

// Diag returns the eigenvalues of F.
func (f *RotatingFrame) Diag() []complex128 {
	if f == nil {
		return nil
	}
	out := make([]complex128, len(f.diag))
	copy(out, f.diag)
	return out
}

// HermitianDiag returns the eigenvalues of H = iF.
func (f *RotatingFrame) HermitianDiag() []float64 {
	if f == nil {
		return nil
	}
	out := make([]float64, len(f.hermDiag))
	copy(out, f.hermDiag)
	return out
}

// Basis returns the unitary whose columns are eigenvectors of F.
func (f *RotatingFrame) Basis() *mat.CDense {
	if f == nil {
		return nil
	}
	if f.basis == nil {
		return linalg.Identity(f.dim)
	}
	return linalg.Clone(f.basis)
}

// IsDiagonal reports whether the frame basis is the identity.
func (f *RotatingFrame) IsDiagonal() bool {
	return f == nil || f.basis == nil
}

func (f *RotatingFrame) String() string {
	if f == nil {
		return "RotatingFrame(identity)"
	}
	return fmt.Sprintf("RotatingFrame(dim=%d, diag=%v)", f.dim, f.hermDiag)
}

func phases(diag []complex128, t float64) []complex128 {
	out := make([]complex128, len(diag))
	for i, d := range diag {
		out[i] = cmplx.Exp(complex(t, 0) * d)
	}
	return out
}
