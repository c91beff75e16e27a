package metrics

import (
	"math"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// NormDrift is the largest deviation of ‖y‖ from its value at the first
// observed point. Unitary dynamics keeps it near zero.
type NormDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewNormDrift() *NormDrift {
	return &NormDrift{name: "norm_drift"}
}

func (n *NormDrift) Name() string { return n.name }

func (n *NormDrift) Observe(t float64, y dynamo.State) {
	norm := y.Norm()
	if n.samples == 0 {
		n.initial = norm
	}
	n.samples++
	n.maxDrift = math.Max(n.maxDrift, math.Abs(norm-n.initial))
}

func (n *NormDrift) Value() float64 { return n.maxDrift }

func (n *NormDrift) Reset() {
	n.initial = 0
	n.maxDrift = 0
	n.samples = 0
}
