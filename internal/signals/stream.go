package signals

import "iter"

// Values lazily evaluates s at each time produced by times. The sequence can
// be ranged over repeatedly; every pass re-evaluates the signal.
func Values(s Signal, times iter.Seq[float64]) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for t := range times {
			if !yield(t, s.Value(t)) {
				return
			}
		}
	}
}

func ComplexValues(s Signal, times iter.Seq[float64]) iter.Seq2[float64, complex128] {
	return func(yield func(float64, complex128) bool) {
		for t := range times {
			if !yield(t, s.ComplexValue(t)) {
				return
			}
		}
	}
}

// Grid yields start + k·dt for k in [0, n).
func Grid(start, dt float64, n int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for k := 0; k < n; k++ {
			if !yield(start + float64(k)*dt) {
				return
			}
		}
	}
}
