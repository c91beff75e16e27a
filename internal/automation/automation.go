package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/experiment"
)

// Scenario defines a scripted sequence of solves
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names a preset ("system/name") or a config file and the
// solver settings to override for it. Label replaces the config name.
type ScenarioStep struct {
	Preset  string  `yaml:"preset,omitempty"`
	Config  string  `yaml:"config,omitempty"`
	Method  string  `yaml:"method,omitempty"`
	TEnd    float64 `yaml:"t_end,omitempty"`
	RTol    float64 `yaml:"rtol,omitempty"`
	ATol    float64 `yaml:"atol,omitempty"`
	Samples int     `yaml:"samples,omitempty"`
	Label   string  `yaml:"label,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the validated config of the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		system, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q is not of the form system/name", s.Preset)
		}
		cfg = config.GetPreset(system, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		return nil, fmt.Errorf("step needs a preset or a config")
	}

	if s.Method != "" {
		cfg.Solver.Method = s.Method
	}
	if s.TEnd != 0 {
		cfg.Solver.TEnd = s.TEnd
	}
	if s.RTol != 0 {
		cfg.Solver.RTol = s.RTol
	}
	if s.ATol != 0 {
		cfg.Solver.ATol = s.ATol
	}
	if s.Samples != 0 {
		cfg.Solver.Samples = s.Samples
	}
	if s.Label != "" {
		cfg.Name = s.Label
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StepResult pairs a step with its solution.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.Result
}

// RunScenario executes all steps in order and stops at the first failure.
// Results of the steps that completed are returned alongside the error.
func RunScenario(ctx context.Context, scenario *Scenario, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info().Int("step", i+1).Int("of", len(scenario.Steps)).Str("name", cfg.Name).Msg("running scenario step")

		exp, err := experiment.New(cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// MonteCarloConfig perturbs the amplitude of every signal by a relative
// Gaussian error and records a metric per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Metric       string
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Scales  []float64
	Value   float64
}

// RunMonteCarlo executes the trials sequentially with one seeded source so
// the perturbations are reproducible.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log zerolog.Logger) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("number of trials must be positive, got %d", cfg.NumTrials)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		c := cfg.Base.Clone()
		if !slices.Contains(c.Metrics, cfg.Metric) {
			c.Metrics = append(c.Metrics, cfg.Metric)
		}

		scales := make([]float64, len(c.Signals))
		for i := range c.Signals {
			scales[i] = 1 + cfg.Perturbation*rng.NormFloat64()
			c.Signals[i].Amplitude.Re *= scales[i]
			c.Signals[i].Amplitude.Im *= scales[i]
		}

		exp, err := experiment.New(c, log)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID: trial,
			Scales:  scales,
			Value:   result.Metrics[cfg.Metric],
		})

		if (trial+1)%10 == 0 {
			log.Info().Int("done", trial+1).Int("trials", cfg.NumTrials).Msg("monte carlo progress")
		}
	}

	return results, nil
}

// MonteCarloStats returns the mean, sample standard deviation and minimum of
// the trial values.
func MonteCarloStats(results []MonteCarloResult) (mean, std, min float64) {
	if len(results) == 0 {
		return 0, 0, 0
	}
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Value
	}
	if len(values) == 1 {
		return values[0], 0, values[0]
	}
	mean, std = stat.MeanStdDev(values, nil)
	return mean, std, floats.Min(values)
}
