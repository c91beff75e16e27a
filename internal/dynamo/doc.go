// Package dynamo provides the shared primitives for integrating
// time-dependent quantum generators.
//
// The package defines the fundamental interfaces and types used by the
// models, integrators and the ODE driver:
//
//   - [State]: complex state vector
//   - [System]: right-hand side dy/dt = f(t, y)
//   - [FrameAware]: a System that can be evaluated in a rotating-frame basis
//   - [Integrator], [AdaptiveIntegrator]: numerical steppers
//   - [Metric], [Observer]: trajectory observers
//
// # Example
//
//	model, _ := models.NewHamiltonianModel(cfg)
//	res, _ := solve.SolveODE(ctx, model, [2]float64{0, 10}, y0, solve.Options{Method: "RK45"})
//
// # Thread Safety
//
// Systems are evaluated from a single goroutine per integration. Models may be
// shared between concurrent integrations as long as nobody mutates them.
package dynamo
