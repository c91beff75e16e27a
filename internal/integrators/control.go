package integrators

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// stepControl proposes step sizes from an error norm as
// dt·safety·norm^(-1/(order+1)), clamped to [minScale, maxScale].
type stepControl struct {
	order    int
	safety   float64
	minScale float64
	maxScale float64
}

func newStepControl(order int) stepControl {
	return stepControl{
		order:    order,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (c stepControl) NextStep(dt, errNorm float64) float64 {
	if errNorm == 0 {
		return dt * c.maxScale
	}
	if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
		return dt * c.minScale
	}
	scale := c.safety * math.Pow(errNorm, -1.0/float64(c.order+1))
	scale = math.Max(c.minScale, math.Min(c.maxScale, scale))
	return dt * scale
}

// errorNorm is the RMS of |e_i| / (atol + rtol·max(|y_i|, |y_new,i|)).
func errorNorm(e, y, yNew dynamo.State, tol dynamo.Tolerance) float64 {
	if len(e) == 0 {
		return 0
	}
	sum := 0.0
	for i := range e {
		sc := tol.Atol + tol.Rtol*math.Max(cmplx.Abs(y[i]), cmplx.Abs(yNew[i]))
		r := cmplx.Abs(e[i]) / sc
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(e)))
}
