package signals

import (
	"fmt"
	"math"
	"math/cmplx"
)

// boundaryTol snaps times within this fraction of a sample onto the next
// sample boundary, so start+k·dt maps to sample k despite rounding.
const boundaryTol = 1e-9

// Discrete is a signal whose envelope is piecewise constant on the grid
// [start + k·dt, start + (k+1)·dt) for k in [0, N). The envelope is zero
// outside [start, start + N·dt).
type Discrete struct {
	dt          float64
	samples     []complex128
	startTime   float64
	carrierFreq float64
	phase       float64
}

func NewDiscrete(dt float64, samples []complex128, startTime, carrierFreq, phase float64) (*Discrete, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidStep, dt)
	}
	if len(samples) == 0 {
		return nil, ErrInvalidSampleCount
	}
	s := make([]complex128, len(samples))
	copy(s, samples)
	return &Discrete{
		dt:          dt,
		samples:     s,
		startTime:   startTime,
		carrierFreq: carrierFreq,
		phase:       phase,
	}, nil
}

// NewDiscreteReal is NewDiscrete for real-valued samples.
func NewDiscreteReal(dt float64, samples []float64, startTime, carrierFreq, phase float64) (*Discrete, error) {
	c := make([]complex128, len(samples))
	for i, v := range samples {
		c[i] = complex(v, 0)
	}
	return NewDiscrete(dt, c, startTime, carrierFreq, phase)
}

// Approximate samples s at start + k·dt for k in [0, n). Signals with a
// single carrier keep it and only their envelope is sampled; composite
// signals are sampled in full with a zero carrier.
func Approximate(s Signal, dt float64, n int, startTime float64) (*Discrete, error) {
	if c, ok := s.(Carrier); ok {
		return sample(c.Envelope, dt, n, startTime, c.CarrierFreq(), c.Phase())
	}
	return ApproximateCarrier(s, dt, n, startTime)
}

// ApproximateCarrier samples the full complex value of s, carrier included.
func ApproximateCarrier(s Signal, dt float64, n int, startTime float64) (*Discrete, error) {
	return sample(s.ComplexValue, dt, n, startTime, 0, 0)
}

func sample(f func(float64) complex128, dt float64, n int, startTime, carrierFreq, phase float64) (*Discrete, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, n)
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidStep, dt)
	}
	samples := make([]complex128, n)
	for k := range samples {
		samples[k] = f(startTime + float64(k)*dt)
	}
	return &Discrete{
		dt:          dt,
		samples:     samples,
		startTime:   startTime,
		carrierFreq: carrierFreq,
		phase:       phase,
	}, nil
}

func (d *Discrete) Dt() float64          { return d.dt }
func (d *Discrete) StartTime() float64   { return d.startTime }
func (d *Discrete) CarrierFreq() float64 { return d.carrierFreq }
func (d *Discrete) Phase() float64       { return d.phase }

// Duration is the number of samples.
func (d *Discrete) Duration() int { return len(d.samples) }

// EndTime is the first time outside the support.
func (d *Discrete) EndTime() float64 { return d.startTime + float64(len(d.samples))*d.dt }

func (d *Discrete) Samples() []complex128 {
	s := make([]complex128, len(d.samples))
	copy(s, d.samples)
	return s
}

// Times returns the left edge of every sample interval.
func (d *Discrete) Times() []float64 {
	ts := make([]float64, len(d.samples))
	for k := range ts {
		ts[k] = d.startTime + float64(k)*d.dt
	}
	return ts
}

// Index returns the sample containing t and whether t is inside the support.
func (d *Discrete) Index(t float64) (int, bool) {
	x := math.Floor((t-d.startTime)/d.dt + boundaryTol)
	if x < 0 || x >= float64(len(d.samples)) || math.IsNaN(x) {
		return -1, false
	}
	return int(x), true
}

func (d *Discrete) Envelope(t float64) complex128 {
	k, ok := d.Index(t)
	if !ok {
		return 0
	}
	return d.samples[k]
}

func (d *Discrete) ComplexValue(t float64) complex128 {
	return d.Envelope(t) * carrier(d.carrierFreq, d.phase, t)
}

func (d *Discrete) Value(t float64) float64 {
	return real(d.ComplexValue(t))
}

// AddSamples returns a copy with samples written from startSample on. The
// signal is zero-extended when the new samples run past its end.
func (d *Discrete) AddSamples(startSample int, samples []complex128) (*Discrete, error) {
	if startSample < 0 {
		return nil, fmt.Errorf("signals: start sample must be non-negative, got %d", startSample)
	}
	n := len(d.samples)
	if end := startSample + len(samples); end > n {
		n = end
	}
	out := make([]complex128, n)
	copy(out, d.samples)
	copy(out[startSample:], samples)
	return &Discrete{
		dt:          d.dt,
		samples:     out,
		startTime:   d.startTime,
		carrierFreq: d.carrierFreq,
		phase:       d.phase,
	}, nil
}

func (d *Discrete) Conjugate() *Discrete {
	s := make([]complex128, len(d.samples))
	for i, v := range d.samples {
		s[i] = cmplx.Conj(v)
	}
	return &Discrete{
		dt:          d.dt,
		samples:     s,
		startTime:   d.startTime,
		carrierFreq: -d.carrierFreq,
		phase:       -d.phase,
	}
}

func (d *Discrete) String() string {
	return fmt.Sprintf("DiscreteSignal(dt=%g, n=%d, start=%g, carrier=%g, phase=%g)",
		d.dt, len(d.samples), d.startTime, d.carrierFreq, d.phase)
}

func (d *Discrete) sameGrid(o *Discrete) bool {
	return d.dt == o.dt && d.startTime == o.startTime && len(d.samples) == len(o.samples)
}

// DiscreteSum is a sum of discrete signals sharing one sample grid.
type DiscreteSum struct {
	Sum
	dt        float64
	n         int
	startTime float64
}

func NewDiscreteSum(components ...*Discrete) (*DiscreteSum, error) {
	if len(components) == 0 {
		return nil, ErrInvalidSampleCount
	}
	first := components[0]
	sigs := make([]Signal, len(components))
	for i, c := range components {
		if !first.sameGrid(c) {
			return nil, fmt.Errorf("%w: component %d has %v, expected %v", ErrGridMismatch, i, c, first)
		}
		sigs[i] = c
	}
	return &DiscreteSum{
		Sum:       Sum{components: sigs},
		dt:        first.dt,
		n:         len(first.samples),
		startTime: first.startTime,
	}, nil
}

// ApproximateSum discretizes every component of a flattened sum on one grid.
func ApproximateSum(s *Sum, dt float64, n int, startTime float64) (*DiscreteSum, error) {
	flat := s.Flatten()
	parts := make([]*Discrete, 0, flat.Len())
	for i, c := range flat.components {
		d, err := Approximate(c, dt, n, startTime)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		parts = append(parts, d)
	}
	return NewDiscreteSum(parts...)
}

func (s *DiscreteSum) Dt() float64        { return s.dt }
func (s *DiscreteSum) Duration() int      { return s.n }
func (s *DiscreteSum) StartTime() float64 { return s.startTime }

// Samples returns the envelope samples of every component, one row per
// component.
func (s *DiscreteSum) Samples() [][]complex128 {
	out := make([][]complex128, len(s.components))
	for i, c := range s.components {
		out[i] = c.(*Discrete).Samples()
	}
	return out
}
