package experiment

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/models"
	"github.com/san-kum/qdynsim/internal/signals"
	"github.com/san-kum/qdynsim/internal/solve"
)

// Experiment is a model built from a config together with its initial state
// and solver settings.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	model    *models.Model
	y0       dynamo.State
	metrics  []dynamo.Metric
	log      zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		y0:       dynamo.State(cfg.InitialState()),
		log:      log.With().Str("component", "experiment").Str("name", cfg.Name).Logger(),
	}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) setup() error {
	ops, err := buildOperators(e.cfg.Operators)
	if err != nil {
		return err
	}
	sigs := make(signals.SignalList, len(e.cfg.Signals))
	for i, sc := range e.cfg.Signals {
		s, err := e.registry.Signal(sc)
		if err != nil {
			return fmt.Errorf("signal %d: %w", i, err)
		}
		sigs[i] = s
	}

	mc := models.Config{Operators: ops, Signals: sigs, Validate: true, Logger: &e.log}
	if e.cfg.Drift != nil {
		if mc.Drift, err = e.cfg.Drift.Build(); err != nil {
			return fmt.Errorf("drift: %w", err)
		}
	}
	if e.cfg.Frame != nil {
		if mc.FrameOperator, err = e.cfg.Frame.Build(); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
	}

	switch e.cfg.Convention {
	case config.ConventionGenerator:
		e.model, err = models.NewGeneratorModel(mc)
	default:
		e.model, err = models.NewHamiltonianModel(mc)
	}
	if err != nil {
		return err
	}

	if d := e.cfg.Discretize; d != nil {
		if err := e.model.ApproximateSignals(d.Dt, d.Samples, d.Start); err != nil {
			return err
		}
	}

	if len(e.y0)%e.model.Dim() != 0 {
		return fmt.Errorf("y0 of length %d for dimension %d: %w", len(e.y0), e.model.Dim(), dynamo.ErrDimensionMismatch)
	}

	for _, name := range e.cfg.Metrics {
		m, err := e.registry.Metric(name, e.model.Dim())
		if err != nil {
			return err
		}
		e.metrics = append(e.metrics, m)
	}

	e.log.Debug().Str("model", e.model.String()).Msg("experiment ready")
	return nil
}

func (e *Experiment) Model() *models.Model { return e.model }

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) InitialState() dynamo.State { return e.y0.Clone() }

func (e *Experiment) TSpan() [2]float64 {
	return [2]float64{e.cfg.Solver.TStart, e.cfg.Solver.TEnd}
}

// Options returns the solver options for this experiment. Observers can be
// appended by the caller.
func (e *Experiment) Options() solve.Options {
	s := e.cfg.Solver
	return solve.Options{
		Method:       s.Method,
		RTol:         s.RTol,
		ATol:         s.ATol,
		MaxStep:      s.MaxStep,
		FirstStep:    s.FirstStep,
		MaxSteps:     s.MaxSteps,
		TEval:        e.cfg.TEval(),
		InFrameBasis: s.InFrameBasis,
		Metrics:      e.metrics,
		Logger:       &e.log,
	}
}

func (e *Experiment) Run(ctx context.Context, observers ...dynamo.Observer) (*dynamo.Result, error) {
	opts := e.Options()
	opts.Observers = observers
	return solve.SolveODE(ctx, e.model, e.TSpan(), e.y0, opts)
}

// Sweep solves the experiment once per carrier frequency of signal index,
// concurrently. Metrics are not collected for sweeps.
func (e *Experiment) Sweep(ctx context.Context, index int, freqs []float64) ([]*dynamo.Result, error) {
	if index < 0 || index >= len(e.cfg.Signals) {
		return nil, fmt.Errorf("signal index %d out of range [0, %d)", index, len(e.cfg.Signals))
	}
	problems := make([]solve.Problem, len(freqs))
	for i, f := range freqs {
		cfg := e.cfg.Clone()
		cfg.Signals[index].CarrierFreq = f
		cfg.Metrics = nil
		sub, err := New(cfg, e.log)
		if err != nil {
			return nil, err
		}
		problems[i] = solve.Problem{
			Name:    fmt.Sprintf("f=%g", f),
			RHS:     sub.model,
			TSpan:   sub.TSpan(),
			Y0:      sub.y0,
			Options: sub.Options(),
		}
	}
	e.log.Info().Int("points", len(freqs)).Msg("starting frequency sweep")
	return solve.SolveBatch(ctx, problems, runtime.NumCPU())
}

// PopulationTrace extracts |y[level]|² for every recorded state.
func PopulationTrace(res *dynamo.Result, level int) []float64 {
	out := make([]float64, len(res.Y))
	for i, y := range res.Y {
		if level < len(y) {
			out[i] = y.Populations()[level]
		}
	}
	return out
}
