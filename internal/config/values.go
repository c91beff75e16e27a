package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/qdynsim/internal/linalg"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// ComplexValue reads a number, a [re, im] pair or a {re, im} mapping.
type ComplexValue struct {
	Re float64 `yaml:"re"`
	Im float64 `yaml:"im"`
}

func C(re, im float64) ComplexValue { return ComplexValue{Re: re, Im: im} }

func (v ComplexValue) Complex() complex128 { return complex(v.Re, v.Im) }

func (v *ComplexValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v.Im = 0
		return node.Decode(&v.Re)
	case yaml.SequenceNode:
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: complex value needs [re, im], got %d entries", node.Line, len(pair))
		}
		v.Re, v.Im = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		type plain ComplexValue
		return node.Decode((*plain)(v))
	default:
		return fmt.Errorf("line %d: cannot read complex value", node.Line)
	}
}

func (v ComplexValue) MarshalYAML() (any, error) {
	if v.Im == 0 {
		return v.Re, nil
	}
	return []float64{v.Re, v.Im}, nil
}

// OperatorConfig is the sum of its Pauli terms, diagonal and explicit
// matrix, multiplied by Scale (and by 2π when TwoPi is set).
type OperatorConfig struct {
	Pauli  map[string]float64 `yaml:"pauli,omitempty"`
	Diag   []float64          `yaml:"diag,omitempty"`
	Matrix [][]ComplexValue   `yaml:"matrix,omitempty"`
	Scale  float64            `yaml:"scale,omitempty"`
	TwoPi  bool               `yaml:"two_pi,omitempty"`
}

func (o *OperatorConfig) Build() (*mat.CDense, error) {
	var out *mat.CDense
	add := func(m *mat.CDense, what string) error {
		if out == nil {
			out = m
			return nil
		}
		if linalg.Dim(out) != linalg.Dim(m) {
			return fmt.Errorf("%s has dimension %d, expected %d", what, linalg.Dim(m), linalg.Dim(out))
		}
		linalg.AddScaledTo(out, 1, m)
		return nil
	}

	names := make([]string, 0, len(o.Pauli))
	for name := range o.Pauli {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, ok := linalg.Pauli(name)
		if !ok {
			return nil, fmt.Errorf("unknown Pauli operator %q", name)
		}
		if err := add(linalg.Scale(complex(o.Pauli[name], 0), p), "pauli "+name); err != nil {
			return nil, err
		}
	}

	if len(o.Diag) > 0 {
		d := make([]complex128, len(o.Diag))
		for i, x := range o.Diag {
			d[i] = complex(x, 0)
		}
		if err := add(linalg.Diag(d), "diag"); err != nil {
			return nil, err
		}
	}

	if len(o.Matrix) > 0 {
		rows := make([][]complex128, len(o.Matrix))
		for i, row := range o.Matrix {
			if len(row) != len(o.Matrix) {
				return nil, fmt.Errorf("matrix row %d has %d entries, expected %d", i, len(row), len(o.Matrix))
			}
			rows[i] = make([]complex128, len(row))
			for j, v := range row {
				rows[i][j] = v.Complex()
			}
		}
		if err := add(linalg.FromRows(rows), "matrix"); err != nil {
			return nil, err
		}
	}

	if out == nil {
		return nil, fmt.Errorf("empty operator")
	}
	scale := o.Scale
	if scale == 0 {
		scale = 1
	}
	if o.TwoPi {
		scale *= 2 * math.Pi
	}
	if scale != 1 {
		out = linalg.Scale(complex(scale, 0), out)
	}
	return out, nil
}
