package control

import (
	"math"
	"math/rand"
)

const cppnInputs = 6

// CPPN maps a pair of body coordinates to a connection weight in [-1, 1].
// Hidden units alternate between sine and gaussian activations.
type CPPN struct {
	hidden int
	genome []float64
}

func NewCPPN(hidden int, rng *rand.Rand) *CPPN {
	if hidden < 1 {
		hidden = 1
	}
	c := &CPPN{hidden: hidden}
	c.genome = make([]float64, hidden*cppnInputs+hidden+1)
	for i := range c.genome {
		c.genome[i] = 2*rng.Float64() - 1
	}
	return c
}

func (c *CPPN) Query(x1, y1, x2, y2 float64) float64 {
	in := [cppnInputs]float64{x1, y1, x2, y2, math.Hypot(x1-x2, y1-y2), 1}
	outW := c.genome[c.hidden*cppnInputs:]

	sum := outW[c.hidden]
	for h := 0; h < c.hidden; h++ {
		w := c.genome[h*cppnInputs : (h+1)*cppnInputs]
		s := 0.0
		for i, v := range in {
			s += w[i] * v
		}
		var act float64
		if h%2 == 0 {
			act = math.Sin(s)
		} else {
			act = math.Exp(-s * s)
		}
		sum += outW[h] * act
	}
	return math.Tanh(sum)
}

func (c *CPPN) Parameters() []float64 {
	p := make([]float64, len(c.genome))
	copy(p, c.genome)
	return p
}

func (c *CPPN) SetParameters(p []float64) {
	copy(c.genome, p)
}
