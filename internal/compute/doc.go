// Package compute provides the numeric backend used for dense complex
// matrix products.
//
// The package automatically selects the best available backend:
//
//   - cpu: gonum complex BLAS (cblas128)
//   - naive: plain loops, used as a reference implementation
//
// Higher layers never branch on array contents, so swapping the backend
// does not change the results beyond floating point rounding:
//
//	compute.SetBackend(compute.NewNaiveBackend())
package compute
