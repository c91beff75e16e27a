package config

import (
	"math"
	"sort"
)

var gaussianPiAmplitude = 1 / math.Sqrt(2*math.Pi)

// Presets are grouped by system. Returned configs are copies.
var Presets = map[string]map[string]*Config{
	"qubit": {
		"rabi": {
			Name: "rabi", System: "qubit", Convention: ConventionHamiltonian,
			Drift:     &OperatorConfig{Pauli: map[string]float64{"Z": 1.0}, TwoPi: true},
			Operators: []OperatorConfig{{Pauli: map[string]float64{"X": 0.05}, TwoPi: true}},
			Signals:   []SignalConfig{{Name: "drive", Amplitude: C(1, 0), CarrierFreq: 2.0}},
			Solver:    SolverConfig{Method: DefaultMethod, TEnd: 10, RTol: 1e-9, ATol: 1e-9, Samples: DefaultSamples},
			Y0:        []ComplexValue{C(0, 0), C(1, 0)},
			Metrics:   []string{"norm_drift", "population_0"},
		},
		"rabi_frame": {
			Name: "rabi_frame", System: "qubit", Convention: ConventionHamiltonian,
			Drift:     &OperatorConfig{Pauli: map[string]float64{"Z": 1.0}, TwoPi: true},
			Operators: []OperatorConfig{{Pauli: map[string]float64{"X": 0.05}, TwoPi: true}},
			Signals:   []SignalConfig{{Name: "drive", Amplitude: C(1, 0), CarrierFreq: 2.0}},
			Frame:     &OperatorConfig{Pauli: map[string]float64{"Z": 1.0}, TwoPi: true},
			Solver:    SolverConfig{Method: DefaultMethod, TEnd: 10, RTol: 1e-9, ATol: 1e-9, InFrameBasis: true, Samples: DefaultSamples},
			Y0:        []ComplexValue{C(0, 0), C(1, 0)},
			Metrics:   []string{"norm_drift", "population_0"},
		},
		"detuned_rabi": {
			Name: "detuned_rabi", System: "qubit", Convention: ConventionHamiltonian,
			Drift:     &OperatorConfig{Pauli: map[string]float64{"Z": 1.0}, TwoPi: true},
			Operators: []OperatorConfig{{Pauli: map[string]float64{"X": 0.05}, TwoPi: true}},
			Signals:   []SignalConfig{{Name: "drive", Amplitude: C(1, 0), CarrierFreq: 2.05}},
			Frame:     &OperatorConfig{Pauli: map[string]float64{"Z": 1.0}, TwoPi: true},
			Solver:    SolverConfig{Method: DefaultMethod, TEnd: 20, RTol: 1e-9, ATol: 1e-9, Samples: 400},
			Y0:        []ComplexValue{C(0, 0), C(1, 0)},
			Metrics:   []string{"population_0"},
		},
		"gaussian_pi": {
			Name: "gaussian_pi", System: "qubit", Convention: ConventionHamiltonian,
			Drift:     &OperatorConfig{Pauli: map[string]float64{"Z": 2.5}, TwoPi: true},
			Operators: []OperatorConfig{{Pauli: map[string]float64{"X": 0.5}, TwoPi: true}},
			Signals: []SignalConfig{{
				Name: "pi_pulse", Amplitude: C(gaussianPiAmplitude, 0), CarrierFreq: 5.0,
				Envelope: "gaussian", Center: 4, Sigma: 1,
			}},
			Frame:      &OperatorConfig{Pauli: map[string]float64{"Z": 2.5}, TwoPi: true},
			Discretize: &DiscretizeConfig{Dt: 0.01, Samples: 800},
			Solver:     SolverConfig{Method: DefaultMethod, TEnd: 8, RTol: 1e-8, ATol: 1e-8, Samples: DefaultSamples},
			Y0:         []ComplexValue{C(1, 0), C(0, 0)},
			Metrics:    []string{"norm_drift", "population_1"},
		},
		"rabi_generator": {
			Name: "rabi_generator", System: "qubit", Convention: ConventionGenerator,
			Operators: []OperatorConfig{
				{Matrix: [][]ComplexValue{{C(0, -0.5), C(0, 0)}, {C(0, 0), C(0, 0.5)}}, TwoPi: true},
				{Matrix: [][]ComplexValue{{C(0, 0), C(0, -0.05)}, {C(0, -0.05), C(0, 0)}}, TwoPi: true},
			},
			Signals: []SignalConfig{
				{Name: "frequency", Amplitude: C(2, 0)},
				{Name: "drive", Amplitude: C(1, 0), CarrierFreq: 2.0},
			},
			Solver:  SolverConfig{Method: "RK23", TEnd: 10, RTol: 1e-9, ATol: 1e-9, Samples: DefaultSamples},
			Y0:      []ComplexValue{C(0, 0), C(1, 0)},
			Metrics: []string{"population_0"},
		},
	},
	"qutrit": {
		"leakage": {
			Name: "leakage", System: "qutrit", Convention: ConventionHamiltonian,
			Drift: &OperatorConfig{Diag: []float64{0, 5, 9.7}, TwoPi: true},
			Operators: []OperatorConfig{{Matrix: [][]ComplexValue{
				{C(0, 0), C(1, 0), C(0, 0)},
				{C(1, 0), C(0, 0), C(math.Sqrt2, 0)},
				{C(0, 0), C(math.Sqrt2, 0), C(0, 0)},
			}, Scale: 0.1, TwoPi: true}},
			Signals: []SignalConfig{{Name: "drive", Amplitude: C(1, 0), CarrierFreq: 5.0}},
			Frame:   &OperatorConfig{Diag: []float64{0, 5, 10}, TwoPi: true},
			Solver:  SolverConfig{Method: DefaultMethod, TEnd: 10, RTol: 1e-8, ATol: 1e-8, InFrameBasis: true, Samples: 400},
			Y0:      []ComplexValue{C(1, 0), C(0, 0), C(0, 0)},
			Metrics: []string{"norm_drift", "population_0", "population_1", "population_2"},
		},
	},
}

func GetPreset(system, name string) *Config {
	if presets, ok := Presets[system]; ok {
		if cfg, ok := presets[name]; ok {
			return cfg.Clone()
		}
	}
	return nil
}

func ListPresets(system string) []string {
	presets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListSystems() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
