package signals

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Signal is a complex time function whose real part is the coefficient used
// by a model.
type Signal interface {
	ComplexValue(t float64) complex128
	Value(t float64) float64
}

// Carrier is implemented by signals with a single carrier, which lets them be
// discretized by sampling only their envelope.
type Carrier interface {
	Signal
	Envelope(t float64) complex128
	CarrierFreq() float64
	Phase() float64
}

// Base is envelope(t)·exp(i(2π·carrierFreq·t + phase)). It is immutable.
type Base struct {
	envelope    func(t float64) complex128
	carrierFreq float64
	phase       float64
	constant    bool
	name        string
}

// NewSignal builds a signal from a numeric or functional envelope. Accepted
// envelopes are float64, complex128, int, func(float64) float64 and
// func(float64) complex128.
func NewSignal(envelope any, carrierFreq, phase float64) (*Base, error) {
	s := &Base{carrierFreq: carrierFreq, phase: phase}
	switch env := envelope.(type) {
	case float64:
		s.envelope, s.constant = constantEnvelope(complex(env, 0)), true
	case complex128:
		s.envelope, s.constant = constantEnvelope(env), true
	case int:
		s.envelope, s.constant = constantEnvelope(complex(float64(env), 0)), true
	case func(float64) complex128:
		if env == nil {
			return nil, ErrInvalidEnvelope
		}
		s.envelope = env
	case func(float64) float64:
		if env == nil {
			return nil, ErrInvalidEnvelope
		}
		s.envelope = func(t float64) complex128 { return complex(env(t), 0) }
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidEnvelope, envelope)
	}
	return s, nil
}

// Constant returns a signal with a constant envelope and no carrier.
func Constant(v complex128) *Base {
	return &Base{envelope: constantEnvelope(v), constant: true}
}

// Lift converts numbers to constant signals and passes signals through.
func Lift(v any) (Signal, error) {
	if s, ok := v.(Signal); ok {
		return s, nil
	}
	return NewSignal(v, 0, 0)
}

func constantEnvelope(v complex128) func(float64) complex128 {
	return func(float64) complex128 { return v }
}

func (s *Base) Envelope(t float64) complex128 { return s.envelope(t) }
func (s *Base) CarrierFreq() float64          { return s.carrierFreq }
func (s *Base) Phase() float64                { return s.phase }
func (s *Base) IsConstant() bool              { return s.constant && s.carrierFreq == 0 && s.phase == 0 }
func (s *Base) Name() string                  { return s.name }

func (s *Base) ComplexValue(t float64) complex128 {
	return s.envelope(t) * carrier(s.carrierFreq, s.phase, t)
}

func (s *Base) Value(t float64) float64 {
	return real(s.ComplexValue(t))
}

func (s *Base) WithCarrier(freq float64) *Base {
	c := *s
	c.carrierFreq = freq
	return &c
}

func (s *Base) WithPhase(phase float64) *Base {
	c := *s
	c.phase = phase
	return &c
}

func (s *Base) WithName(name string) *Base {
	c := *s
	c.name = name
	return &c
}

// Conjugate returns the signal whose complex value is the conjugate of s.
func (s *Base) Conjugate() *Base {
	env := s.envelope
	return &Base{
		envelope:    func(t float64) complex128 { return cmplx.Conj(env(t)) },
		carrierFreq: -s.carrierFreq,
		phase:       -s.phase,
		constant:    s.constant,
		name:        s.name,
	}
}

func (s *Base) String() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("Signal(carrier=%g, phase=%g)", s.carrierFreq, s.phase)
}

func carrier(freq, phase, t float64) complex128 {
	arg := 2*math.Pi*freq*t + phase
	sin, cos := math.Sincos(arg)
	return complex(cos, sin)
}
