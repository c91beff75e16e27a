package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/qdynsim/internal/linalg"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "rabi", cfg.Name)
	assert.Equal(t, ConventionHamiltonian, cfg.Convention)
	assert.Greater(t, cfg.Solver.TEnd, cfg.Solver.TStart)

	cfg.Signals[0].CarrierFreq = 99
	assert.Equal(t, 2.0, Presets["qubit"]["rabi"].Signals[0].CarrierFreq, "default config must be a copy")
}

func TestPresetsAreValid(t *testing.T) {
	for _, system := range ListSystems() {
		for _, name := range ListPresets(system) {
			cfg := GetPreset(system, name)
			require.NotNil(t, cfg, "%s/%s", system, name)
			assert.NoError(t, cfg.Validate(), "%s/%s", system, name)
			assert.Equal(t, name, cfg.Name)

			dim := len(cfg.Y0)
			ops := cfg.Operators
			if cfg.Drift != nil {
				ops = append(ops, *cfg.Drift)
			}
			if cfg.Frame != nil {
				ops = append(ops, *cfg.Frame)
			}
			for i := range ops {
				m, err := ops[i].Build()
				require.NoError(t, err, "%s/%s operator %d", system, name, i)
				assert.Equal(t, dim, linalg.Dim(m), "%s/%s operator %d", system, name, i)
			}
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("qubit", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "rabi"))
	assert.Nil(t, ListPresets("nonexistent"))
	assert.Contains(t, ListPresets("qubit"), "rabi_frame")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leakage.yaml")
	want := GetPreset("qutrit", "leakage")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	doc := `
drift:
  pauli: {Z: 0.5}
y0: [1, 0]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ConventionHamiltonian, cfg.Convention)
	assert.Equal(t, DefaultMethod, cfg.Solver.Method)
	assert.Equal(t, DefaultDuration, cfg.Solver.TEnd)
	assert.Equal(t, []complex128{1, 0}, cfg.InitialState())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no operators", "y0: [1]\n"},
		{"length mismatch", "operators: [{pauli: {X: 1}}]\ny0: [1, 0]\n"},
		{"bad convention", "convention: lindblad\ndrift: {pauli: {Z: 1}}\ny0: [1, 0]\n"},
		{"missing y0", "drift: {pauli: {Z: 1}}\n"},
		{"bad span", "drift: {pauli: {Z: 1}}\ny0: [1, 0]\nsolver: {t_start: 2, t_end: 1}\n"},
		{"bad envelope", "operators: [{pauli: {X: 1}}]\nsignals: [{amplitude: 1, envelope: triangle}]\ny0: [1, 0]\n"},
		{"gaussian without sigma", "operators: [{pauli: {X: 1}}]\nsignals: [{amplitude: 1, envelope: gaussian}]\ny0: [1, 0]\n"},
		{"bad complex", "drift: {pauli: {Z: 1}}\ny0: [[1, 2, 3]]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestComplexValueYAML(t *testing.T) {
	var v struct {
		Values []ComplexValue `yaml:"values"`
	}
	doc := "values: [1.5, [0, -2], {re: 3, im: 4}]\n"
	require.NoError(t, yaml.Unmarshal([]byte(doc), &v))
	assert.Equal(t, []ComplexValue{C(1.5, 0), C(0, -2), C(3, 4)}, v.Values)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "re:")

	var back struct {
		Values []ComplexValue `yaml:"values"`
	}
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, v.Values, back.Values)
}

func TestOperatorBuild(t *testing.T) {
	op := OperatorConfig{
		Pauli: map[string]float64{"X": 1, "z": 2},
		Diag:  []float64{1, -1},
		Scale: 0.5,
		TwoPi: true,
	}
	m, err := op.Build()
	require.NoError(t, err)

	want := linalg.Scale(complex(math.Pi, 0), linalg.FromRows([][]complex128{{3, 1}, {1, -3}}))
	assert.True(t, linalg.AllClose(m, want, 1e-12, 1e-12), "got %v", m)

	_, err = (&OperatorConfig{Pauli: map[string]float64{"Q": 1}}).Build()
	assert.Error(t, err)
	_, err = (&OperatorConfig{}).Build()
	assert.Error(t, err)
	_, err = (&OperatorConfig{Pauli: map[string]float64{"X": 1}, Diag: []float64{1, 2, 3}}).Build()
	assert.Error(t, err)
	_, err = (&OperatorConfig{Matrix: [][]ComplexValue{{C(1, 0)}, {C(0, 0), C(1, 0)}}}).Build()
	assert.Error(t, err)
}

func TestTEval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver.TStart, cfg.Solver.TEnd, cfg.Solver.Samples = 1, 3, 5
	assert.Equal(t, []float64{1, 1.5, 2, 2.5, 3}, cfg.TEval())

	cfg.Solver.Samples = 0
	assert.Nil(t, cfg.TEval())
}
