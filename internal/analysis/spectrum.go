package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns |X_k|² for the non-negative frequency bins of the
// real FFT of data, n/2+1 values for n samples.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(data))
	coeffs := fft.Coefficients(nil, data)
	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		ps[i] = a * a
	}
	return ps
}

// Frequencies returns the frequency of every PowerSpectrum bin for n samples
// spaced dt apart.
func Frequencies(n int, dt float64) []float64 {
	fft := fourier.NewFFT(n)
	out := make([]float64, n/2+1)
	for i := range out {
		out[i] = fft.Freq(i) / dt
	}
	return out
}

// DominantFrequency returns the frequency of the strongest non-DC component
// of a uniformly sampled trace. The mean is removed first.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("need at least 4 samples, got %d", len(data))
	}
	if dt <= 0 {
		return 0, fmt.Errorf("sample spacing must be positive, got %g", dt)
	}
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-floats.Sum(data)/float64(len(data)), centered)

	ps := PowerSpectrum(centered)
	idx := floats.MaxIdx(ps[1:]) + 1
	return Frequencies(len(data), dt)[idx], nil
}
