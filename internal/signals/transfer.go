package signals

import (
	"fmt"
	"math"
)

// Convolution filters a discrete signal with a kernel sampled on the same
// grid and normalized to unit sum.
type Convolution struct {
	Kernel func(t float64) float64
}

// Apply returns the full discrete convolution, N+N-1 samples long, with the
// carrier folded into the samples.
func (c Convolution) Apply(s *Discrete) (*Discrete, error) {
	n := s.Duration()
	kernel := make([]float64, n)
	total := 0.0
	for i := range kernel {
		kernel[i] = c.Kernel(s.dt * float64(i))
		total += kernel[i]
	}
	if total == 0 || math.IsNaN(total) {
		return nil, ErrDegenerateKernel
	}
	for i := range kernel {
		kernel[i] /= total
	}

	values := make([]complex128, n)
	for k, t := range s.Times() {
		values[k] = s.ComplexValue(t)
	}

	out := make([]complex128, 2*n-1)
	for i, v := range values {
		for j, k := range kernel {
			out[i+j] += v * complex(k, 0)
		}
	}
	return NewDiscrete(s.dt, out, s.startTime, 0, 0)
}

// Sampler turns any signal into a discrete one, carrier included, the way an
// arbitrary waveform generator would.
type Sampler struct {
	Dt        float64
	N         int
	StartTime float64
}

func (s Sampler) Apply(sig Signal) (*Discrete, error) {
	d, err := ApproximateCarrier(sig, s.Dt, s.N, s.StartTime)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	return d, nil
}

// IQMixer up-converts in-phase and quadrature signals with a local
// oscillator: i(t)·cos(2π·LO·t) - q(t)·sin(2π·LO·t).
type IQMixer struct {
	LO float64
}

func (m IQMixer) Mix(i, q Signal) *Sum {
	cos := &Base{envelope: constantEnvelope(1), carrierFreq: m.LO, constant: true}
	shifted := cos.WithPhase(math.Pi / 2)
	return Add(Multiply(i, cos), Multiply(q, shifted))
}
