package models

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/frame"
	"github.com/san-kum/qdynsim/internal/linalg"
	"github.com/san-kum/qdynsim/internal/signals"
	"gonum.org/v1/gonum/mat"
)

const (
	hermitianAtol = 1e-10
	hermitianRtol = 1e-10
)

type Convention int

const (
	// GeneratorConvention stores operators as given: y' = Σ sᵢ·Gᵢ·y.
	GeneratorConvention Convention = iota
	// SchrodingerConvention stores -i·Hᵢ: y' = -i·Σ sᵢ·Hᵢ·y.
	SchrodingerConvention
)

func (c Convention) String() string {
	switch c {
	case GeneratorConvention:
		return "generator"
	case SchrodingerConvention:
		return "schrodinger"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

type Config struct {
	Operators []*mat.CDense
	Signals   signals.SignalList
	// Drift is an optional time-independent term.
	Drift *mat.CDense
	// Frame takes precedence over FrameOperator when both are set.
	Frame         *frame.RotatingFrame
	FrameOperator *mat.CDense
	// Validate enables the Hermitian check of Hamiltonian operators.
	Validate bool
	Logger   *zerolog.Logger
}

// Model is a linear generator model. Mutation through the setters is not
// safe for concurrent use; evaluation is.
type Model struct {
	convention Convention
	dim        int
	// operators and drift are stored in the generator convention.
	operators []*mat.CDense
	drift     *mat.CDense
	signals   signals.SignalList
	frame     *frame.RotatingFrame
	validate  bool
	log       zerolog.Logger

	generation uint64
	mu         sync.Mutex
	cache      *basisCache
}

// basisCache holds drift and operators rotated into the frame basis.
type basisCache struct {
	generation uint64
	drift      *mat.CDense
	operators  []*mat.CDense
}

func NewGeneratorModel(cfg Config) (*Model, error) {
	return newModel(GeneratorConvention, cfg)
}

// NewHamiltonianModel builds a model of the Schrödinger equation
// y' = -i·H(t)·y with H(t) = drift + Σ sᵢ(t)·Hᵢ.
func NewHamiltonianModel(cfg Config) (*Model, error) {
	return newModel(SchrodingerConvention, cfg)
}

func newModel(conv Convention, cfg Config) (*Model, error) {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	m := &Model{
		convention: conv,
		validate:   cfg.Validate,
		log:        log.With().Str("component", "model").Str("convention", conv.String()).Logger(),
	}

	if len(cfg.Operators) == 0 && cfg.Drift == nil {
		return nil, dynamo.ErrNoOperators
	}
	dim, err := commonDim(cfg.Operators, cfg.Drift)
	if err != nil {
		return nil, err
	}
	m.dim = dim

	m.operators = make([]*mat.CDense, len(cfg.Operators))
	for i, op := range cfg.Operators {
		if err := m.checkOperator(fmt.Sprintf("operator %d", i), op); err != nil {
			return nil, err
		}
		m.operators[i] = m.toStored(op)
	}
	if cfg.Drift != nil {
		if err := m.checkOperator("drift", cfg.Drift); err != nil {
			return nil, err
		}
		m.drift = m.toStored(cfg.Drift)
	}
	if err := m.SetSignals(cfg.Signals); err != nil {
		return nil, err
	}

	switch {
	case cfg.Frame != nil:
		err = m.SetRotatingFrame(cfg.Frame)
	case cfg.FrameOperator != nil:
		err = m.SetFrameOperator(cfg.FrameOperator)
	}
	if err != nil {
		return nil, err
	}

	m.log.Debug().
		Int("dim", m.dim).
		Int("operators", len(m.operators)).
		Bool("drift", m.drift != nil).
		Bool("frame", m.frame != nil).
		Msg("model created")
	return m, nil
}

func commonDim(ops []*mat.CDense, drift *mat.CDense) (int, error) {
	dim := -1
	check := func(name string, op *mat.CDense) error {
		if op == nil {
			return fmt.Errorf("%s is nil: %w", name, dynamo.ErrDimensionMismatch)
		}
		n := linalg.Dim(op)
		if n < 0 {
			r, c := op.Dims()
			return fmt.Errorf("%s is %dx%d: %w: %w", name, r, c, dynamo.ErrDimensionMismatch, dynamo.ErrNotSquare)
		}
		if dim >= 0 && n != dim {
			return fmt.Errorf("%s has dimension %d, expected %d: %w", name, n, dim, dynamo.ErrDimensionMismatch)
		}
		dim = n
		return nil
	}
	for i, op := range ops {
		if err := check(fmt.Sprintf("operator %d", i), op); err != nil {
			return 0, err
		}
	}
	if drift != nil {
		if err := check("drift", drift); err != nil {
			return 0, err
		}
	}
	return dim, nil
}

func (m *Model) Convention() Convention { return m.convention }

// Dim is the size of the operators. States may stack several columns of
// this length (row-major), which evolves a block of vectors at once.
func (m *Model) Dim() int { return m.dim }

func (m *Model) Signals() signals.SignalList { return m.signals }

func (m *Model) RotatingFrame() *frame.RotatingFrame { return m.frame }

// Operators returns copies of the operators in the caller's convention.
func (m *Model) Operators() []*mat.CDense {
	out := make([]*mat.CDense, len(m.operators))
	for i, op := range m.operators {
		out[i] = m.fromStored(op)
	}
	return out
}

// Drift returns the drift in the caller's convention, or nil.
func (m *Model) Drift() *mat.CDense {
	if m.drift == nil {
		return nil
	}
	return m.fromStored(m.drift)
}

func (m *Model) toStored(op *mat.CDense) *mat.CDense {
	if m.convention == SchrodingerConvention {
		return linalg.Scale(-1i, op)
	}
	return linalg.Clone(op)
}

func (m *Model) fromStored(op *mat.CDense) *mat.CDense {
	if m.convention == SchrodingerConvention {
		return linalg.Scale(1i, op)
	}
	return linalg.Clone(op)
}

func (m *Model) checkOperator(name string, op *mat.CDense) error {
	if op == nil {
		return fmt.Errorf("%s is nil: %w", name, dynamo.ErrDimensionMismatch)
	}
	n := linalg.Dim(op)
	if n < 0 {
		r, c := op.Dims()
		return fmt.Errorf("%s is %dx%d: %w: %w", name, r, c, dynamo.ErrDimensionMismatch, dynamo.ErrNotSquare)
	}
	if n != m.dim {
		return fmt.Errorf("%s has dimension %d, model has %d: %w", name, n, m.dim, dynamo.ErrDimensionMismatch)
	}
	if m.validate && m.convention == SchrodingerConvention && !linalg.IsHermitian(op, hermitianAtol, hermitianRtol) {
		return fmt.Errorf("%s: %w", name, dynamo.ErrNotHermitian)
	}
	return nil
}

// SetOperators replaces the operators, keeping their number. Use SetTerms
// to change operators and signals together.
func (m *Model) SetOperators(ops []*mat.CDense) error {
	if len(ops) != len(m.signals) {
		return fmt.Errorf("%d operators for %d signals: %w", len(ops), len(m.signals), dynamo.ErrLengthMismatch)
	}
	return m.setOperators(ops)
}

// SetTerms replaces operators and signals at once.
func (m *Model) SetTerms(ops []*mat.CDense, s signals.SignalList) error {
	if len(ops) != len(s) {
		return fmt.Errorf("%d signals for %d operators: %w", len(s), len(ops), dynamo.ErrLengthMismatch)
	}
	if err := m.setOperators(ops); err != nil {
		return err
	}
	m.signals = s
	return nil
}

func (m *Model) setOperators(ops []*mat.CDense) error {
	if len(ops) == 0 && m.drift == nil {
		return dynamo.ErrNoOperators
	}
	stored := make([]*mat.CDense, len(ops))
	for i, op := range ops {
		if err := m.checkOperator(fmt.Sprintf("operator %d", i), op); err != nil {
			return err
		}
		stored[i] = m.toStored(op)
	}
	m.operators = stored
	m.invalidate()
	return nil
}

// SetDrift replaces the drift; nil removes it.
func (m *Model) SetDrift(drift *mat.CDense) error {
	if drift == nil {
		if len(m.operators) == 0 {
			return dynamo.ErrNoOperators
		}
		m.drift = nil
		m.invalidate()
		return nil
	}
	if err := m.checkOperator("drift", drift); err != nil {
		return err
	}
	m.drift = m.toStored(drift)
	m.invalidate()
	return nil
}

func (m *Model) SetSignals(s signals.SignalList) error {
	if len(s) != len(m.operators) {
		return fmt.Errorf("%d signals for %d operators: %w", len(s), len(m.operators), dynamo.ErrLengthMismatch)
	}
	m.signals = s
	m.generation++
	return nil
}

// SetRotatingFrame installs a frame; nil removes it.
func (m *Model) SetRotatingFrame(f *frame.RotatingFrame) error {
	if f != nil && f.Dim() != m.dim {
		return fmt.Errorf("frame has dimension %d, model has %d: %w", f.Dim(), m.dim, dynamo.ErrDimensionMismatch)
	}
	m.frame = f
	m.invalidate()
	return nil
}

// SetFrameOperator diagonalizes op and installs it as the frame.
func (m *Model) SetFrameOperator(op *mat.CDense) error {
	f, err := frame.New(op)
	if err != nil {
		return err
	}
	return m.SetRotatingFrame(f)
}

// ApproximateSignals replaces every signal with its discretization on the
// grid start + k·dt, k < n.
func (m *Model) ApproximateSignals(dt float64, n int, startTime float64) error {
	approx, err := m.signals.Approximate(dt, n, startTime)
	if err != nil {
		return fmt.Errorf("approximate signals: %w", err)
	}
	return m.SetSignals(approx)
}

// Clone returns an independent model sharing no mutable state.
func (m *Model) Clone() *Model {
	ops := make([]*mat.CDense, len(m.operators))
	for i, op := range m.operators {
		ops[i] = linalg.Clone(op)
	}
	var drift *mat.CDense
	if m.drift != nil {
		drift = linalg.Clone(m.drift)
	}
	sig := make(signals.SignalList, len(m.signals))
	copy(sig, m.signals)
	return &Model{
		convention: m.convention,
		dim:        m.dim,
		operators:  ops,
		drift:      drift,
		signals:    sig,
		frame:      m.frame,
		validate:   m.validate,
		log:        m.log,
		generation: m.generation,
	}
}

func (m *Model) invalidate() {
	m.generation++
}

// cached returns drift and operators in the frame basis, rebuilding them when
// the model changed since the last build.
func (m *Model) cached() *basisCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache != nil && m.cache.generation == m.generation {
		return m.cache
	}

	c := &basisCache{generation: m.generation, operators: make([]*mat.CDense, len(m.operators))}
	for i, op := range m.operators {
		c.operators[i] = m.frame.GeneratorIntoFrameBasis(op)
	}
	if m.drift != nil {
		c.drift = m.frame.GeneratorIntoFrameBasis(m.drift)
	}
	m.cache = c
	m.log.Debug().Uint64("generation", c.generation).Msg("rebuilt frame basis cache")
	return c
}

func (m *Model) String() string {
	return fmt.Sprintf("Model(%s, dim=%d, operators=%d, drift=%t, %s)",
		m.convention, m.dim, len(m.operators), m.drift != nil, m.frame)
}

var _ dynamo.FrameAware = (*Model)(nil)
