package compute

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Backend performs the dense complex linear algebra behind operator
// evaluation. Implementations must be pure: outputs depend only on inputs and
// only c / y are written.
type Backend interface {
	Name() string
	Available() bool
	// MatMul computes c = alpha * op(a) * op(b) + beta * c.
	MatMul(tA, tB blas.Transpose, alpha complex128, a, b cblas128.General, beta complex128, c cblas128.General)
	// MatVec computes y = alpha * op(a) * x + beta * y.
	MatVec(tA blas.Transpose, alpha complex128, a cblas128.General, x []complex128, beta complex128, y []complex128)
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

func AutoSelectBackend() Backend {
	cpu := NewCPUBackend()
	if cpu.Available() {
		return cpu
	}
	return NewNaiveBackend()
}
