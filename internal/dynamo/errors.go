package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for construction, evaluation and integration.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates operators, frames or states of different sizes.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrLengthMismatch indicates a signal list whose length differs from the operator list.
	ErrLengthMismatch = errors.New("dynamo: signals and operators length mismatch")

	// ErrNotSquare indicates a non-square operator.
	ErrNotSquare = errors.New("dynamo: operator is not square")

	// ErrNotHermitian indicates an operator that is neither Hermitian nor anti-Hermitian.
	ErrNotHermitian = errors.New("dynamo: operator is not Hermitian or anti-Hermitian")

	// ErrNoOperators indicates a model without any operator or drift.
	ErrNoOperators = errors.New("dynamo: model has no operators")

	// ErrNoConvergence indicates the eigen solver did not converge.
	ErrNoConvergence = errors.New("dynamo: eigendecomposition did not converge")

	// ErrUnsupportedMethod indicates an unknown ODE method name.
	ErrUnsupportedMethod = errors.New("dynamo: unsupported ODE method")

	// ErrUnsupportedSystem indicates a right-hand side the driver cannot call.
	ErrUnsupportedSystem = errors.New("dynamo: unsupported right-hand side")

	// ErrInvalidSpan indicates an empty or non-finite time span.
	ErrInvalidSpan = errors.New("dynamo: invalid time span")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrTooManySteps indicates the step budget was exhausted before reaching the end of the span.
	ErrTooManySteps = errors.New("dynamo: maximum number of steps exceeded")
)

// UnsupportedMethodError reports an ODE method name that is not registered.
type UnsupportedMethodError struct {
	Method    string
	Supported []string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("%q is not a supported ODE method (supported: %v)", e.Method, e.Supported)
}

func (e *UnsupportedMethodError) Unwrap() error {
	return ErrUnsupportedMethod
}

// SimulationError wraps an error with integration context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %s", e.Step, e.Time, e.Wrapped.Error())
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
