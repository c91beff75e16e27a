package integrators

import "github.com/san-kum/qdynsim/internal/dynamo"

// Bogacki-Shampine coefficients (RK23)
var (
	bsA2 = 1.0 / 2.0
	bsA3 = 3.0 / 4.0

	bsB1 = 2.0 / 9.0
	bsB2 = 1.0 / 3.0
	bsB3 = 4.0 / 9.0

	bsE1 = 5.0 / 72.0
	bsE2 = -1.0 / 12.0
	bsE3 = -1.0 / 9.0
	bsE4 = 1.0 / 8.0
)

// RK23 is the Bogacki-Shampine 3(2) pair, cheaper than RK45 for loose
// tolerances.
type RK23 struct {
	stepControl
}

func NewRK23() *RK23 {
	return &RK23{stepControl: newStepControl(2)}
}

func (r *RK23) Order() int { return 3 }

func (r *RK23) Step(sys dynamo.System, y dynamo.State, t, dt float64) dynamo.State {
	yNew, _ := r.Attempt(sys, y, t, dt, dynamo.Tolerance{Atol: 1, Rtol: 0})
	return yNew
}

func (r *RK23) Attempt(sys dynamo.System, y dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.State, float64) {
	n := len(y)
	h := complex(dt, 0)

	k1 := sys.Derive(t, y)

	tmp := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		tmp[i] = y[i] + h*complex(bsA2, 0)*k1[i]
	}
	k2 := sys.Derive(t+bsA2*dt, tmp)

	for i := 0; i < n; i++ {
		tmp[i] = y[i] + h*complex(bsA3, 0)*k2[i]
	}
	k3 := sys.Derive(t+bsA3*dt, tmp)

	yNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		yNew[i] = y[i] + h*(complex(bsB1, 0)*k1[i]+complex(bsB2, 0)*k2[i]+complex(bsB3, 0)*k3[i])
	}
	k4 := sys.Derive(t+dt, yNew)

	errEst := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		errEst[i] = h * (complex(bsE1, 0)*k1[i] + complex(bsE2, 0)*k2[i] + complex(bsE3, 0)*k3[i] + complex(bsE4, 0)*k4[i])
	}

	return yNew, errorNorm(errEst, y, yNew, tol)
}
