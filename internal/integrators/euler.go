package integrators

import "github.com/san-kum/qdynsim/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Order() int { return 1 }

func (e *Euler) Step(sys dynamo.System, y dynamo.State, t, dt float64) dynamo.State {
	dy := sys.Derive(t, y)
	h := complex(dt, 0)
	result := make(dynamo.State, len(y))
	for i := range y {
		result[i] = y[i] + h*dy[i]
	}
	return result
}
