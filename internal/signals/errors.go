package signals

import "errors"

var (
	// ErrInvalidEnvelope indicates an envelope that is neither numeric nor a function of time.
	ErrInvalidEnvelope = errors.New("signals: envelope must be a number or a func(float64) returning float64 or complex128")

	// ErrInvalidStep indicates a non-positive sample step.
	ErrInvalidStep = errors.New("signals: dt must be positive")

	// ErrInvalidSampleCount indicates a non-positive number of samples.
	ErrInvalidSampleCount = errors.New("signals: number of samples must be positive")

	// ErrGridMismatch indicates discrete signals defined on different sample grids.
	ErrGridMismatch = errors.New("signals: discrete signals do not share a sample grid")

	// ErrDegenerateKernel indicates a convolution kernel whose samples sum to zero.
	ErrDegenerateKernel = errors.New("signals: convolution kernel samples sum to zero")
)
