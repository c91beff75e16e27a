package signals

import "fmt"

// Sum is the lazy sum of its components.
type Sum struct {
	components []Signal
}

// Add sums signals without evaluating them.
func Add(components ...Signal) *Sum {
	c := make([]Signal, len(components))
	copy(c, components)
	return &Sum{components: c}
}

func (s *Sum) Components() []Signal {
	c := make([]Signal, len(s.components))
	copy(c, s.components)
	return c
}

func (s *Sum) Len() int { return len(s.components) }

func (s *Sum) ComplexValue(t float64) complex128 {
	var v complex128
	for _, c := range s.components {
		v += c.ComplexValue(t)
	}
	return v
}

func (s *Sum) Value(t float64) float64 {
	return real(s.ComplexValue(t))
}

// Flatten expands nested sums in order.
func (s *Sum) Flatten() *Sum {
	out := &Sum{}
	var walk func(items []Signal)
	walk = func(items []Signal) {
		for _, c := range items {
			if nested, ok := c.(*Sum); ok {
				walk(nested.components)
				continue
			}
			if nested, ok := c.(*DiscreteSum); ok {
				walk(nested.components)
				continue
			}
			out.components = append(out.components, c)
		}
	}
	walk(s.components)
	return out
}

func (s *Sum) String() string {
	return fmt.Sprintf("SignalSum(%d components)", len(s.components))
}

// Product multiplies two signals. Its value is left.Value·right.Value and its
// complex value is left.ComplexValue·Re(right.ComplexValue), which is the
// analytic sum of the two mixing products at f₁+f₂ and f₁-f₂.
type Product struct {
	left  Signal
	right Signal
}

func Multiply(left, right Signal) *Product {
	return &Product{left: left, right: right}
}

// Scale multiplies a signal by a real factor.
func Scale(k float64, s Signal) *Product {
	return Multiply(s, Constant(complex(k, 0)))
}

func (p *Product) Operands() (Signal, Signal) { return p.left, p.right }

func (p *Product) ComplexValue(t float64) complex128 {
	return p.left.ComplexValue(t) * complex(p.right.Value(t), 0)
}

func (p *Product) Value(t float64) float64 {
	return p.left.Value(t) * p.right.Value(t)
}

func (p *Product) String() string {
	return fmt.Sprintf("SignalProduct(%v, %v)", p.left, p.right)
}
