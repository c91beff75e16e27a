package integrators

import "github.com/san-kum/qdynsim/internal/dynamo"

// RK4 is the classical fixed-step fourth-order Runge-Kutta method. It keeps
// scratch buffers between steps and must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Order() int { return 4 }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, y dynamo.State, t, dt float64) dynamo.State {
	n := len(y)
	r.ensureScratch(n)
	h := complex(dt, 0)
	half := complex(dt*0.5, 0)

	copy(r.k1, sys.Derive(t, y))

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + half*r.k1[i]
	}
	copy(r.k2, sys.Derive(t+dt*0.5, r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + half*r.k2[i]
	}
	copy(r.k3, sys.Derive(t+dt*0.5, r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + h*r.k3[i]
	}
	copy(r.k4, sys.Derive(t+dt, r.scratch))

	result := make(dynamo.State, n)
	h6 := complex(dt/6.0, 0)
	for i := 0; i < n; i++ {
		result[i] = y[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
