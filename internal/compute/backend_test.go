package compute

import (
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

func general(rows, cols int, data []complex128) cblas128.General {
	return cblas128.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

func TestBackendsAgree_MatMul(t *testing.T) {
	a := general(2, 3, []complex128{1, 2i, 3, -1 + 1i, 0, 2})
	b := general(3, 2, []complex128{1i, 1, 2, -2i, 0.5, 3})

	tests := []struct {
		name   string
		tA, tB blas.Transpose
		aM, bM cblas128.General
		rows   int
		cols   int
	}{
		{"no trans", blas.NoTrans, blas.NoTrans, a, b, 2, 2},
		{"conj trans both", blas.ConjTrans, blas.ConjTrans, b, a, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := general(tt.rows, tt.cols, make([]complex128, tt.rows*tt.cols))
			got := general(tt.rows, tt.cols, make([]complex128, tt.rows*tt.cols))

			NewNaiveBackend().MatMul(tt.tA, tt.tB, 1, tt.aM, tt.bM, 0, want)
			NewCPUBackend().MatMul(tt.tA, tt.tB, 1, tt.aM, tt.bM, 0, got)

			for i := range want.Data {
				if cmplx.Abs(want.Data[i]-got.Data[i]) > 1e-12 {
					t.Errorf("entry %d: got %v, want %v", i, got.Data[i], want.Data[i])
				}
			}
		})
	}
}

func TestBackendsAgree_MatVec(t *testing.T) {
	a := general(2, 2, []complex128{1, 1i, -1i, 2})
	x := []complex128{1 + 1i, 2}

	want := make([]complex128, 2)
	got := make([]complex128, 2)
	NewNaiveBackend().MatVec(blas.NoTrans, 2, a, x, 0, want)
	NewCPUBackend().MatVec(blas.NoTrans, 2, a, x, 0, got)

	for i := range want {
		if cmplx.Abs(want[i]-got[i]) > 1e-12 {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// (1+i) + 2i = 1+3i, times alpha 2
	if cmplx.Abs(want[0]-(2+6i)) > 1e-12 {
		t.Errorf("unexpected product %v", want[0])
	}
}

func TestSetBackend(t *testing.T) {
	prev := GetBackend()
	defer SetBackend(prev)

	SetBackend(NewNaiveBackend())
	if GetBackend().Name() != "naive" {
		t.Errorf("expected naive backend, got %s", GetBackend().Name())
	}
}
