package linalg

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

const maxJacobiSweeps = 100

// Eigh diagonalizes a Hermitian matrix with cyclic complex Jacobi rotations.
// Eigenvalues are returned in ascending order with the matching orthonormal
// eigenvectors as the columns of the returned matrix, so that
// m = V · diag(values) · V†.
//
// Only the Hermitian part of m is used; callers validate Hermiticity.
func Eigh(m *mat.CDense) ([]float64, *mat.CDense, error) {
	n := Dim(m)
	if n < 0 {
		return nil, nil, dynamo.ErrNotSquare
	}

	a := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i*n+j] = 0.5 * (m.At(i, j) + cmplx.Conj(m.At(j, i)))
		}
	}
	v := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		v[i*n+i] = 1
	}

	total := 0.0
	for _, x := range a {
		total += real(x)*real(x) + imag(x)*imag(x)
	}

	converged := n <= 1
	for sweep := 0; sweep < maxJacobiSweeps && !converged; sweep++ {
		off := 0.0
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				x := a[p*n+q]
				off += real(x)*real(x) + imag(x)*imag(x)
			}
		}
		if off == 0 || off <= 1e-30*total {
			converged = true
			break
		}

		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				rotate(a, v, n, p, q)
			}
		}
	}
	if !converged {
		return nil, nil, fmt.Errorf("hermitian eigendecomposition of %dx%d matrix: %w", n, n, dynamo.ErrNoConvergence)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return real(a[order[i]*n+order[i]]) < real(a[order[j]*n+order[j]])
	})

	values := make([]float64, n)
	vecs := mat.NewCDense(n, n, nil)
	for k, idx := range order {
		values[k] = real(a[idx*n+idx])
		for i := 0; i < n; i++ {
			vecs.Set(i, k, v[i*n+idx])
		}
	}
	return values, vecs, nil
}

// rotate annihilates a[p][q] with J = D·P where D removes the phase of
// a[p][q] and P is the real Jacobi rotation of the resulting symmetric block.
func rotate(a, v []complex128, n, p, q int) {
	apq := a[p*n+q]
	r := cmplx.Abs(apq)
	if r == 0 {
		return
	}
	phase := apq / complex(r, 0)

	app := real(a[p*n+p])
	aqq := real(a[q*n+q])
	theta := (aqq - app) / (2 * r)
	var t float64
	if math.Abs(theta) > 1e150 {
		t = 1 / (2 * theta)
	} else if theta >= 0 {
		t = 1 / (theta + math.Sqrt(theta*theta+1))
	} else {
		t = -1 / (-theta + math.Sqrt(theta*theta+1))
	}
	c := 1 / math.Sqrt(t*t+1)
	s := t * c

	conjPhase := cmplx.Conj(phase)
	jpp := complex(c, 0)
	jpq := complex(s, 0)
	jqp := complex(-s, 0) * conjPhase
	jqq := complex(c, 0) * conjPhase

	// a <- a·J, v <- v·J
	for k := 0; k < n; k++ {
		akp, akq := a[k*n+p], a[k*n+q]
		a[k*n+p] = akp*jpp + akq*jqp
		a[k*n+q] = akp*jpq + akq*jqq

		vkp, vkq := v[k*n+p], v[k*n+q]
		v[k*n+p] = vkp*jpp + vkq*jqp
		v[k*n+q] = vkp*jpq + vkq*jqq
	}
	// a <- J†·a
	cjpp, cjqp := cmplx.Conj(jpp), cmplx.Conj(jqp)
	cjpq, cjqq := cmplx.Conj(jpq), cmplx.Conj(jqq)
	for k := 0; k < n; k++ {
		apk, aqk := a[p*n+k], a[q*n+k]
		a[p*n+k] = cjpp*apk + cjqp*aqk
		a[q*n+k] = cjpq*apk + cjqq*aqk
	}

	a[p*n+q] = 0
	a[q*n+p] = 0
	a[p*n+p] = complex(real(a[p*n+p]), 0)
	a[q*n+q] = complex(real(a[q*n+q]), 0)
}

// Expm returns the matrix exponential of m. It works on the real 2n×2n
// embedding [[Re, -Im], [Im, Re]] so gonum's Padé implementation can be used.
func Expm(m *mat.CDense) *mat.CDense {
	n := Dim(m)
	if n < 0 {
		panic(mat.ErrSquare)
	}
	emb := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := m.At(i, j)
			emb.Set(i, j, real(x))
			emb.Set(i, j+n, -imag(x))
			emb.Set(i+n, j, imag(x))
			emb.Set(i+n, j+n, real(x))
		}
	}
	var e mat.Dense
	e.Exp(emb)

	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, complex(e.At(i, j), e.At(i+n, j)))
		}
	}
	return out
}
