package linalg

import (
	"strings"

	"gonum.org/v1/gonum/mat"
)

func PauliI() *mat.CDense { return mat.NewCDense(2, 2, []complex128{1, 0, 0, 1}) }
func PauliX() *mat.CDense { return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0}) }
func PauliY() *mat.CDense { return mat.NewCDense(2, 2, []complex128{0, -1i, 1i, 0}) }
func PauliZ() *mat.CDense { return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1}) }

// Pauli looks up a single-qubit Pauli matrix by name (I, X, Y, Z).
func Pauli(name string) (*mat.CDense, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "I":
		return PauliI(), true
	case "X":
		return PauliX(), true
	case "Y":
		return PauliY(), true
	case "Z":
		return PauliZ(), true
	}
	return nil, false
}
