package compute

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// CPUBackend dispatches to the gonum complex BLAS implementation.
type CPUBackend struct{}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) MatMul(tA, tB blas.Transpose, alpha complex128, a, b cblas128.General, beta complex128, out cblas128.General) {
	cblas128.Gemm(tA, tB, alpha, a, b, beta, out)
}

func (c *CPUBackend) MatVec(tA blas.Transpose, alpha complex128, a cblas128.General, x []complex128, beta complex128, y []complex128) {
	cblas128.Gemv(tA, alpha, a,
		cblas128.Vector{N: len(x), Inc: 1, Data: x},
		beta,
		cblas128.Vector{N: len(y), Inc: 1, Data: y},
	)
}

// NaiveBackend is a loop implementation used as a reference in tests and as a
// fallback when no BLAS is available.
type NaiveBackend struct{}

func NewNaiveBackend() *NaiveBackend {
	return &NaiveBackend{}
}

func (n *NaiveBackend) Name() string    { return "naive" }
func (n *NaiveBackend) Available() bool { return true }
func (n *NaiveBackend) Cleanup()        {}

func at(m cblas128.General, t blas.Transpose, i, j int) complex128 {
	switch t {
	case blas.Trans:
		return m.Data[j*m.Stride+i]
	case blas.ConjTrans:
		v := m.Data[j*m.Stride+i]
		return complex(real(v), -imag(v))
	default:
		return m.Data[i*m.Stride+j]
	}
}

func (n *NaiveBackend) MatMul(tA, tB blas.Transpose, alpha complex128, a, b cblas128.General, beta complex128, out cblas128.General) {
	inner := a.Cols
	if tA != blas.NoTrans {
		inner = a.Rows
	}
	for i := 0; i < out.Rows; i++ {
		for j := 0; j < out.Cols; j++ {
			var sum complex128
			for k := 0; k < inner; k++ {
				sum += at(a, tA, i, k) * at(b, tB, k, j)
			}
			idx := i*out.Stride + j
			if beta == 0 {
				out.Data[idx] = alpha * sum
			} else {
				out.Data[idx] = alpha*sum + beta*out.Data[idx]
			}
		}
	}
}

func (n *NaiveBackend) MatVec(tA blas.Transpose, alpha complex128, a cblas128.General, x []complex128, beta complex128, y []complex128) {
	for i := range y {
		var sum complex128
		for k := range x {
			sum += at(a, tA, i, k) * x[k]
		}
		if beta == 0 {
			y[i] = alpha * sum
		} else {
			y[i] = alpha*sum + beta*y[i]
		}
	}
}
