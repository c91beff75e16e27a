package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMethod   = "RK45"
	DefaultRTol     = 1e-8
	DefaultATol     = 1e-8
	DefaultDuration = 10.0
	DefaultSamples  = 200

	ConventionHamiltonian = "hamiltonian"
	ConventionGenerator   = "generator"
)

// Config describes one linear model, its drive signals and how to solve it.
// Operators are given in the convention named by Convention: Hermitian
// matrices for "hamiltonian", generators for "generator".
type Config struct {
	Name       string            `yaml:"name,omitempty"`
	System     string            `yaml:"system,omitempty"`
	Convention string            `yaml:"convention"`
	Drift      *OperatorConfig   `yaml:"drift,omitempty"`
	Operators  []OperatorConfig  `yaml:"operators,omitempty"`
	Signals    []SignalConfig    `yaml:"signals,omitempty"`
	Frame      *OperatorConfig   `yaml:"frame,omitempty"`
	Discretize *DiscretizeConfig `yaml:"discretize,omitempty"`
	Solver     SolverConfig      `yaml:"solver"`
	Y0         []ComplexValue    `yaml:"y0"`
	Metrics    []string          `yaml:"metrics,omitempty"`
}

type SignalConfig struct {
	Name        string       `yaml:"name,omitempty"`
	Amplitude   ComplexValue `yaml:"amplitude"`
	CarrierFreq float64      `yaml:"carrier_freq,omitempty"`
	Phase       float64      `yaml:"phase,omitempty"`
	// Envelope is "constant" (default), "gaussian" or "square".
	Envelope string  `yaml:"envelope,omitempty"`
	Center   float64 `yaml:"center,omitempty"`
	Sigma    float64 `yaml:"sigma,omitempty"`
	Start    float64 `yaml:"start,omitempty"`
	Stop     float64 `yaml:"stop,omitempty"`
}

// DiscretizeConfig replaces every signal by its piecewise-constant
// approximation before solving.
type DiscretizeConfig struct {
	Dt      float64 `yaml:"dt"`
	Samples int     `yaml:"samples"`
	Start   float64 `yaml:"start,omitempty"`
}

type SolverConfig struct {
	Method       string  `yaml:"method"`
	TStart       float64 `yaml:"t_start"`
	TEnd         float64 `yaml:"t_end"`
	RTol         float64 `yaml:"rtol,omitempty"`
	ATol         float64 `yaml:"atol,omitempty"`
	MaxStep      float64 `yaml:"max_step,omitempty"`
	FirstStep    float64 `yaml:"first_step,omitempty"`
	MaxSteps     int     `yaml:"max_steps,omitempty"`
	InFrameBasis bool    `yaml:"in_frame_basis,omitempty"`
	// Samples > 0 reports the solution on that many evenly spaced times.
	Samples int `yaml:"samples,omitempty"`
}

func DefaultConfig() *Config {
	return Presets["qubit"]["rabi"].Clone()
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Convention: ConventionHamiltonian,
		Solver: SolverConfig{
			Method: DefaultMethod,
			TEnd:   DefaultDuration,
			RTol:   DefaultRTol,
			ATol:   DefaultATol,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the structure of a config. Operator contents are checked
// when the model is built.
func (c *Config) Validate() error {
	switch c.Convention {
	case ConventionHamiltonian, ConventionGenerator:
	default:
		return fmt.Errorf("unknown convention %q", c.Convention)
	}
	if len(c.Operators) == 0 && c.Drift == nil {
		return fmt.Errorf("no operators or drift")
	}
	if len(c.Signals) != len(c.Operators) {
		return fmt.Errorf("%d signals for %d operators", len(c.Signals), len(c.Operators))
	}
	if len(c.Y0) == 0 {
		return fmt.Errorf("missing y0")
	}
	if c.Solver.TEnd <= c.Solver.TStart {
		return fmt.Errorf("t_end %g must be after t_start %g", c.Solver.TEnd, c.Solver.TStart)
	}
	if c.Solver.Samples == 1 {
		return fmt.Errorf("samples must be 0 or at least 2")
	}
	for i, s := range c.Signals {
		switch s.Envelope {
		case "", "constant":
		case "gaussian":
			if s.Sigma <= 0 {
				return fmt.Errorf("signal %d: gaussian envelope needs sigma > 0", i)
			}
		case "square":
			if s.Stop <= s.Start {
				return fmt.Errorf("signal %d: square envelope needs stop > start", i)
			}
		default:
			return fmt.Errorf("signal %d: unknown envelope %q", i, s.Envelope)
		}
	}
	if d := c.Discretize; d != nil && (d.Dt <= 0 || d.Samples <= 0) {
		return fmt.Errorf("discretize needs dt > 0 and samples > 0")
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

// InitialState returns y0 as a complex vector.
func (c *Config) InitialState() []complex128 {
	y := make([]complex128, len(c.Y0))
	for i, v := range c.Y0 {
		y[i] = v.Complex()
	}
	return y
}

// TEval returns the requested output times, or nil when every step is
// reported.
func (c *Config) TEval() []float64 {
	n := c.Solver.Samples
	if n < 2 {
		return nil
	}
	out := make([]float64, n)
	span := c.Solver.TEnd - c.Solver.TStart
	for i := range out {
		out[i] = c.Solver.TStart + span*float64(i)/float64(n-1)
	}
	out[n-1] = c.Solver.TEnd
	return out
}
