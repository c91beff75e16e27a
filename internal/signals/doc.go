// Package signals models the time-dependent coefficients of a generator.
//
// A signal is envelope(t)·exp(i(2π·f·t + φ)); its real part is the value
// that multiplies an operator. Signals compose lazily:
//
//   - [Base]: envelope, carrier frequency and phase
//   - [Discrete]: piecewise-constant envelope samples on a fixed grid
//   - [Sum], [Product]: combinators holding references to their operands
//   - [SignalList]: ordered coefficients paired with a model's operators
//
// Nothing is evaluated until a time is supplied, and every signal may be
// queried at arbitrary, non-monotonic times.
//
//	drive, _ := signals.NewSignal(0.1, 5.0, 0)
//	gauss, _ := signals.NewSignal(func(t float64) float64 { return math.Exp(-t * t) }, 0, 0)
//	shaped := signals.Multiply(gauss, drive)
//	v := shaped.Value(0.3)
package signals
