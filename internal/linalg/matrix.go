package linalg

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/qdynsim/internal/compute"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/mat"
)

func Zeros(n int) *mat.CDense {
	return mat.NewCDense(n, n, nil)
}

func Identity(n int) *mat.CDense {
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func Diag(v []complex128) *mat.CDense {
	m := mat.NewCDense(len(v), len(v), nil)
	for i, x := range v {
		m.Set(i, i, x)
	}
	return m
}

// FromRows builds a matrix from row slices. All rows must have equal length.
func FromRows(rows [][]complex128) *mat.CDense {
	r := len(rows)
	if r == 0 {
		return &mat.CDense{}
	}
	c := len(rows[0])
	data := make([]complex128, 0, r*c)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewCDense(r, c, data)
}

func Clone(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(r, c, nil)
	out.Copy(m)
	return out
}

func IsSquare(m *mat.CDense) bool {
	r, c := m.Dims()
	return r == c
}

// Dim returns the size of a square matrix, or -1 when m is not square.
func Dim(m *mat.CDense) int {
	r, c := m.Dims()
	if r != c {
		return -1
	}
	return r
}

func Mul(a, b *mat.CDense) *mat.CDense {
	return product(blas.NoTrans, a, blas.NoTrans, b)
}

// MulH returns a† · b.
func MulH(a, b *mat.CDense) *mat.CDense {
	return product(blas.ConjTrans, a, blas.NoTrans, b)
}

// MulByH returns a · b†.
func MulByH(a, b *mat.CDense) *mat.CDense {
	return product(blas.NoTrans, a, blas.ConjTrans, b)
}

func product(tA blas.Transpose, a *mat.CDense, tB blas.Transpose, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	rows, inner := ar, ac
	if tA != blas.NoTrans {
		rows, inner = ac, ar
	}
	cols, innerB := bc, br
	if tB != blas.NoTrans {
		cols, innerB = br, bc
	}
	if inner != innerB {
		panic(mat.ErrShape)
	}
	out := mat.NewCDense(rows, cols, nil)
	compute.GetBackend().MatMul(tA, tB, 1, a.RawCMatrix(), b.RawCMatrix(), 0, out.RawCMatrix())
	return out
}

// Conjugate returns u† · m · u.
func Conjugate(u, m *mat.CDense) *mat.CDense {
	return Mul(MulH(u, m), u)
}

// ConjugateBy returns u · m · u†.
func ConjugateBy(u, m *mat.CDense) *mat.CDense {
	return MulByH(Mul(u, m), u)
}

func MulVec(a *mat.CDense, x []complex128) []complex128 {
	r, c := a.Dims()
	if c != len(x) {
		panic(mat.ErrShape)
	}
	y := make([]complex128, r)
	compute.GetBackend().MatVec(blas.NoTrans, 1, a.RawCMatrix(), x, 0, y)
	return y
}

// MulVecH returns a† · x.
func MulVecH(a *mat.CDense, x []complex128) []complex128 {
	r, c := a.Dims()
	if r != len(x) {
		panic(mat.ErrShape)
	}
	y := make([]complex128, c)
	compute.GetBackend().MatVec(blas.ConjTrans, 1, a.RawCMatrix(), x, 0, y)
	return y
}

func Scale(alpha complex128, m *mat.CDense) *mat.CDense {
	out := Clone(m)
	raw := out.RawCMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j := range row {
			row[j] *= alpha
		}
	}
	return out
}

func Add(a, b *mat.CDense) *mat.CDense {
	out := Clone(a)
	AddScaledTo(out, 1, b)
	return out
}

func Sub(a, b *mat.CDense) *mat.CDense {
	out := Clone(a)
	AddScaledTo(out, -1, b)
	return out
}

// AddScaledTo performs dst += alpha * src in place.
func AddScaledTo(dst *mat.CDense, alpha complex128, src *mat.CDense) {
	dr, dc := dst.Dims()
	sr, sc := src.Dims()
	if dr != sr || dc != sc {
		panic(mat.ErrShape)
	}
	d := dst.RawCMatrix()
	s := src.RawCMatrix()
	for i := 0; i < d.Rows; i++ {
		drow := d.Data[i*d.Stride : i*d.Stride+d.Cols]
		srow := s.Data[i*s.Stride : i*s.Stride+s.Cols]
		for j := range drow {
			drow[j] += alpha * srow[j]
		}
	}
}

func Adjoint(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

// AllClose reports |a - b| <= atol + rtol*|b| elementwise.
func AllClose(a, b *mat.CDense, atol, rtol float64) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if cmplx.Abs(x-y) > atol+rtol*cmplx.Abs(y) {
				return false
			}
		}
	}
	return true
}

// VecClose is AllClose for vectors.
func VecClose(a, b []complex128, atol, rtol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if cmplx.Abs(a[i]-b[i]) > atol+rtol*cmplx.Abs(b[i]) {
			return false
		}
	}
	return true
}

// IsHermitian reports whether m equals its adjoint within tolerance.
func IsHermitian(m *mat.CDense, atol, rtol float64) bool {
	if !IsSquare(m) {
		return false
	}
	return AllClose(m, Adjoint(m), atol, rtol)
}

// IsAntiHermitian reports whether m equals minus its adjoint within tolerance.
func IsAntiHermitian(m *mat.CDense, atol, rtol float64) bool {
	if !IsSquare(m) {
		return false
	}
	return AllClose(m, Scale(-1, Adjoint(m)), atol, rtol)
}

// FrobeniusNorm returns sqrt(sum |m_ij|^2).
func FrobeniusNorm(m *mat.CDense) float64 {
	var sum float64
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			sum += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return math.Sqrt(sum)
}
