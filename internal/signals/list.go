package signals

import "fmt"

// SignalList is an ordered list of coefficients. Position i multiplies
// operator i of a model.
type SignalList []Signal

// NewSignalList lifts numbers and functions into signals.
func NewSignalList(items ...any) (SignalList, error) {
	l := make(SignalList, len(items))
	for i, item := range items {
		s, err := Lift(item)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		l[i] = s
	}
	return l, nil
}

func (l SignalList) Len() int { return len(l) }

func (l SignalList) ComplexValue(t float64) []complex128 {
	out := make([]complex128, len(l))
	for i, s := range l {
		out[i] = s.ComplexValue(t)
	}
	return out
}

func (l SignalList) Value(t float64) []float64 {
	out := make([]float64, len(l))
	l.ValueInto(out, t)
	return out
}

// ValueInto writes the real coefficients into dst, which must have Len entries.
func (l SignalList) ValueInto(dst []float64, t float64) {
	for i, s := range l {
		dst[i] = s.Value(t)
	}
}

// Drift returns the sum of all entries as one signal.
func (l SignalList) Drift() *Sum {
	return Add(l...)
}

// Approximate discretizes every entry on the same grid.
func (l SignalList) Approximate(dt float64, n int, startTime float64) (SignalList, error) {
	out := make(SignalList, len(l))
	for i, s := range l {
		d, err := Approximate(s, dt, n, startTime)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}
