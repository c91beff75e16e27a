package solve

import (
	"sort"
	"strings"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/integrators"
)

const DefaultMethod = "RK45"

var methods = map[string]func() dynamo.Integrator{
	"RK45":  func() dynamo.Integrator { return integrators.NewRK45() },
	"RK23":  func() dynamo.Integrator { return integrators.NewRK23() },
	"RK4":   func() dynamo.Integrator { return integrators.NewRK4() },
	"Euler": func() dynamo.Integrator { return integrators.NewEuler() },
}

// NewIntegrator returns a fresh integrator for a method name. Lookup ignores
// case.
func NewIntegrator(method string) (dynamo.Integrator, error) {
	if method == "" {
		method = DefaultMethod
	}
	if fn, ok := methods[method]; ok {
		return fn(), nil
	}
	for name, fn := range methods {
		if strings.EqualFold(name, method) {
			return fn(), nil
		}
	}
	return nil, &dynamo.UnsupportedMethodError{Method: method, Supported: Methods()}
}

// Methods lists the supported method names.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAdaptive reports whether a method controls its step size.
func IsAdaptive(method string) bool {
	integ, err := NewIntegrator(method)
	if err != nil {
		return false
	}
	_, ok := integ.(dynamo.AdaptiveIntegrator)
	return ok
}
