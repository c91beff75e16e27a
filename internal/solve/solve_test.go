package solve

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/linalg"
	"github.com/san-kum/qdynsim/internal/models"
	"github.com/san-kum/qdynsim/internal/signals"
)

const (
	rabiW = 2.0
	rabiR = 0.1
)

func rabiGenerator(t *testing.T) *models.Model {
	t.Helper()
	drive, err := signals.NewSignal(func(float64) float64 { return 1 }, rabiW, 0)
	require.NoError(t, err)
	m, err := models.NewGeneratorModel(models.Config{
		Operators: []*mat.CDense{
			linalg.Scale(-1i*2*math.Pi/2, linalg.PauliZ()),
			linalg.Scale(complex(0, -2*math.Pi*rabiR/2), linalg.PauliX()),
		},
		Signals: signals.SignalList{signals.Constant(rabiW), drive},
	})
	require.NoError(t, err)
	return m
}

func rabiHamiltonian(t *testing.T) *models.Model {
	t.Helper()
	drive, err := signals.NewSignal(1.0, rabiW, 0)
	require.NoError(t, err)
	m, err := models.NewHamiltonianModel(models.Config{
		Drift:     linalg.Scale(complex(2*math.Pi*rabiW/2, 0), linalg.PauliZ()),
		Operators: []*mat.CDense{linalg.Scale(complex(2*math.Pi*rabiR/2, 0), linalg.PauliX())},
		Signals:   signals.SignalList{drive},
		Validate:  true,
	})
	require.NoError(t, err)
	return m
}

func tight() Options {
	return Options{RTol: 1e-10, ATol: 1e-10}
}

func TestUnsupportedMethod(t *testing.T) {
	_, err := SolveODE(context.Background(), func(t float64, y dynamo.State) dynamo.State { return y },
		[2]float64{0, 1}, dynamo.State{1}, Options{Method: "notamethod"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a supported ODE method")
	assert.ErrorIs(t, err, dynamo.ErrUnsupportedMethod)

	var ume *dynamo.UnsupportedMethodError
	require.True(t, errors.As(err, &ume))
	assert.Equal(t, Methods(), ume.Supported)
}

func TestMethodLookupIgnoresCase(t *testing.T) {
	for _, name := range []string{"rk45", "Rk23", "rk4", "EULER"} {
		_, err := NewIntegrator(name)
		assert.NoError(t, err, name)
	}
	assert.True(t, IsAdaptive("RK45"))
	assert.True(t, IsAdaptive("rk23"))
	assert.False(t, IsAdaptive("RK4"))
	assert.False(t, IsAdaptive("nope"))
}

func TestUnsupportedSystem(t *testing.T) {
	for _, rhs := range []any{nil, 42, func(t float64) float64 { return t }} {
		_, err := SolveODE(context.Background(), rhs, [2]float64{0, 1}, dynamo.State{1}, Options{})
		assert.ErrorIs(t, err, dynamo.ErrUnsupportedSystem)
	}
}

func TestInvalidInputs(t *testing.T) {
	f := func(t float64, y dynamo.State) dynamo.State { return y }
	ctx := context.Background()

	_, err := SolveODE(ctx, f, [2]float64{1, 1}, dynamo.State{1}, Options{})
	assert.ErrorIs(t, err, dynamo.ErrInvalidSpan)

	_, err = SolveODE(ctx, f, [2]float64{0, math.Inf(1)}, dynamo.State{1}, Options{})
	assert.ErrorIs(t, err, dynamo.ErrInvalidSpan)

	_, err = SolveODE(ctx, f, [2]float64{0, 1}, dynamo.State{1}, Options{TEval: []float64{0.5, 0.2}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidSpan)

	_, err = SolveODE(ctx, f, [2]float64{0, 1}, dynamo.State{1}, Options{TEval: []float64{0.5, 2}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidSpan)

	_, err = SolveODE(ctx, f, [2]float64{0, 1}, nil, Options{})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	_, err = SolveODE(ctx, rabiGenerator(t), [2]float64{0, 1}, dynamo.State{1, 0, 0}, Options{})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	_, err = SolveODE(ctx, f, [2]float64{0, 1}, dynamo.State{cmplx.NaN()}, Options{})
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
}

func TestStandardProblems(t *testing.T) {
	for _, method := range []string{"RK45", "RK23"} {
		t.Run(method, func(t *testing.T) {
			opts := tight()
			opts.Method = method

			x := linalg.PauliX()
			g := linalg.Scale(-1i*math.Pi, x)
			rhs := func(t float64, y dynamo.State) dynamo.State {
				// y is a row-major 2x2 block
				out := make(dynamo.State, 4)
				for i := 0; i < 2; i++ {
					for j := 0; j < 2; j++ {
						out[i*2+j] = g.At(i, 0)*y[j] + g.At(i, 1)*y[2+j]
					}
				}
				return out
			}
			res, err := SolveODE(context.Background(), rhs, [2]float64{0, 1}, dynamo.State{1, 0, 0, 1}, opts)
			require.NoError(t, err)

			want := linalg.Expm(g).RawCMatrix().Data
			assert.True(t, linalg.VecClose(res.Final(), want, 1e-7, 1e-7), "got %v want %v", res.Final(), want)

			quad := func(t float64, y dynamo.State) dynamo.State { return dynamo.State{complex(t*t, 0)} }
			res, err = SolveODE(context.Background(), quad, [2]float64{0, 1}, dynamo.State{0}, opts)
			require.NoError(t, err)
			assert.InDelta(t, 1.0/3, real(res.Final()[0]), 1e-8)
			assert.Equal(t, 1.0, res.T[len(res.T)-1])
		})
	}
}

func TestFixedStepMethods(t *testing.T) {
	rhs := dynamo.RHSFunc(func(t float64, y dynamo.State) dynamo.State { return y.Scale(-1i) })
	want := cmplx.Exp(-1i)

	res, err := SolveODE(context.Background(), rhs, [2]float64{0, 1}, dynamo.State{1}, Options{Method: "RK4"})
	require.NoError(t, err)
	assert.Len(t, res.T, 1001)
	assert.InDelta(t, 0, cmplx.Abs(res.Final()[0]-want), 1e-10)
	assert.Equal(t, 0, res.Stats.Rejected)
	assert.Equal(t, 4000, res.Stats.Evaluations)

	res, err = SolveODE(context.Background(), rhs, [2]float64{0, 1}, dynamo.State{1}, Options{Method: "Euler", MaxStep: 0.3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.3, 0.6, 0.8999999999999999, 1}, res.T)
}

func TestRabiGeneratorModel(t *testing.T) {
	opts := Options{RTol: 1e-9, ATol: 1e-9}
	res, err := SolveODE(context.Background(), rabiGenerator(t), [2]float64{0, 1 / rabiR}, dynamo.State{0, 1}, opts)
	require.NoError(t, err)

	yf := res.Final()
	assert.Greater(t, real(yf[0])*real(yf[0])+imag(yf[0])*imag(yf[0]), 0.999)
	assert.InDelta(t, 1, yf.Norm(), 1e-6)
}

func TestRabiInRotatingFrame(t *testing.T) {
	lab, err := SolveODE(context.Background(), rabiGenerator(t), [2]float64{0, 1 / rabiR}, dynamo.State{0, 1}, Options{RTol: 1e-9, ATol: 1e-9})
	require.NoError(t, err)

	for _, inFrameBasis := range []bool{false, true} {
		m := rabiHamiltonian(t)
		require.NoError(t, m.SetFrameOperator(linalg.Scale(complex(2*math.Pi*rabiW/2, 0), linalg.PauliZ())))

		opts := Options{RTol: 1e-9, ATol: 1e-9, InFrameBasis: inFrameBasis}
		res, err := SolveODE(context.Background(), m, [2]float64{0, 1 / rabiR}, dynamo.State{0, 1}, opts)
		require.NoError(t, err)

		pop := res.Final().Populations()
		assert.Greater(t, pop[0], 0.999)
		// the frame is diagonal, so populations agree with the lab frame
		assert.InDelta(t, lab.Final().Populations()[0], pop[0], 1e-5)
	}
}

func TestFrameBasisSolveMatchesLab(t *testing.T) {
	m := rabiGenerator(t)
	require.NoError(t, m.SetFrameOperator(linalg.Add(linalg.PauliX(), linalg.PauliZ())))
	y0 := dynamo.State{0.6, 0.8i}
	opts := Options{RTol: 1e-10, ATol: 1e-10, TEval: []float64{0, 0.5, 1.25, 2}}

	lab, err := SolveODE(context.Background(), m, [2]float64{0, 2}, y0, opts)
	require.NoError(t, err)

	opts.InFrameBasis = true
	fb, err := SolveODE(context.Background(), m, [2]float64{0, 2}, y0, opts)
	require.NoError(t, err)

	require.Equal(t, opts.TEval, lab.T)
	require.Equal(t, opts.TEval, fb.T)
	assert.True(t, linalg.VecClose(y0, fb.Y[0], 1e-12, 1e-12))
	for i := range lab.Y {
		assert.True(t, linalg.VecClose(lab.Y[i], fb.Y[i], 1e-7, 1e-7), "t=%g: %v vs %v", lab.T[i], lab.Y[i], fb.Y[i])
	}
}

func TestTEvalLandsExactly(t *testing.T) {
	quad := func(t float64, y dynamo.State) dynamo.State { return dynamo.State{complex(t*t, 0)} }
	tEval := []float64{0.1, 0.1, 0.4, 0.75}

	res, err := SolveODE(context.Background(), quad, [2]float64{0, 1}, dynamo.State{0}, Options{TEval: tEval})
	require.NoError(t, err)
	require.Equal(t, tEval, res.T)
	for i, tm := range res.T {
		assert.InDelta(t, tm*tm*tm/3, real(res.Y[i][0]), 1e-9)
	}
}

type countingObserver struct {
	times []float64
}

func (o *countingObserver) OnStep(t float64, y dynamo.State) { o.times = append(o.times, t) }

type maxNorm struct{ v float64 }

func (m *maxNorm) Name() string { return "max_norm" }
func (m *maxNorm) Observe(t float64, y dynamo.State) {
	m.v = math.Max(m.v, y.Norm())
}
func (m *maxNorm) Value() float64 { return m.v }
func (m *maxNorm) Reset()         { m.v = 0 }

func TestObserversAndMetrics(t *testing.T) {
	obs := &countingObserver{}
	metric := &maxNorm{v: 42}
	opts := Options{Observers: []dynamo.Observer{obs}, Metrics: []dynamo.Metric{metric}}

	res, err := SolveODE(context.Background(), rabiGenerator(t), [2]float64{0, 1}, dynamo.State{1, 0}, opts)
	require.NoError(t, err)
	assert.Equal(t, res.T, obs.times)
	assert.InDelta(t, 1, res.Metrics["max_norm"], 1e-3)
	assert.Equal(t, res.Stats.Accepted+1, len(res.T))
}

func TestTooManySteps(t *testing.T) {
	rhs := func(t float64, y dynamo.State) dynamo.State { return y.Scale(-100i) }
	res, err := SolveODE(context.Background(), rhs, [2]float64{0, 10}, dynamo.State{1}, Options{MaxSteps: 5})

	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.ErrorIs(t, err, dynamo.ErrTooManySteps)
	assert.NotNil(t, res)
	assert.Less(t, simErr.Time, 10.0)
}

func TestStepTooSmall(t *testing.T) {
	// blows up at t = 1
	rhs := func(t float64, y dynamo.State) dynamo.State { return dynamo.State{y[0] * y[0]} }
	_, err := SolveODE(context.Background(), rhs, [2]float64{0, 2}, dynamo.State{1}, Options{})
	require.Error(t, err)
	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr), err.Error())
	assert.InDelta(t, 1, simErr.Time, 1e-2)
}

func TestInvalidStateFixedStep(t *testing.T) {
	rhs := func(t float64, y dynamo.State) dynamo.State {
		if t > 0.55 {
			return dynamo.State{cmplx.NaN()}
		}
		return dynamo.State{0}
	}
	_, err := SolveODE(context.Background(), rhs, [2]float64{0, 1}, dynamo.State{1}, Options{Method: "Euler", MaxStep: 0.1})
	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
	assert.Equal(t, 6, simErr.Step)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SolveODE(ctx, rabiGenerator(t), [2]float64{0, 1}, dynamo.State{1, 0}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveBatch(t *testing.T) {
	m := rabiGenerator(t)
	problems := []Problem{
		{Name: "ground", RHS: m, TSpan: [2]float64{0, 1}, Y0: dynamo.State{1, 0}},
		{Name: "excited", RHS: m, TSpan: [2]float64{0, 1}, Y0: dynamo.State{0, 1}},
		{Name: "quad", RHS: func(t float64, y dynamo.State) dynamo.State { return dynamo.State{complex(t*t, 0)} },
			TSpan: [2]float64{0, 1}, Y0: dynamo.State{0}, Options: tight()},
	}
	results, err := SolveBatch(context.Background(), problems, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	single, err := SolveODE(context.Background(), m, [2]float64{0, 1}, dynamo.State{0, 1}, Options{})
	require.NoError(t, err)
	assert.Equal(t, single.Final(), results[1].Final())
	assert.InDelta(t, 1.0/3, real(results[2].Final()[0]), 1e-8)

	problems[1].Options.Method = "bogus"
	_, err = SolveBatch(context.Background(), problems, 0)
	assert.ErrorIs(t, err, dynamo.ErrUnsupportedMethod)
	assert.Contains(t, err.Error(), "problem excited")
}
