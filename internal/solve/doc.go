// Package solve integrates initial value problems dy/dt = f(t, y) for complex
// states, with adaptive Runge-Kutta pairs or fixed-step methods.
//
// Frame-aware models can be integrated in the eigenbasis of their rotating
// frame (Options.InFrameBasis); results are always reported in the basis of
// the initial state.
package solve
