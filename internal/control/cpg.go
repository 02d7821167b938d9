package control

import (
	"math"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/integrators"
	"github.com/san-kum/robocore/internal/robot"
)

// stateBound keeps oscillators from drifting off while the learner tries
// unstable weights.
const stateBound = 5.0

type link struct {
	a, b int
}

// CPG is a network of coupled two-neuron oscillators, one per motor. Each
// oscillator i integrates
//
//	dx_i = w0 * (w_i*y_i + sum_j c_ij*x_j)
//	dy_i = -w0 * w_i*x_i
//
// and drives its motor with signal_factor*tanh(x_i). Links c_ij exist
// between motors closer than connection_range on the body grid.
type CPG struct {
	n            int
	coords       [][2]float64
	links        []link
	intra        []float64
	inter        []float64
	omega        float64
	signalFactor float64
	bound        float64
	cppn         *CPPN

	state integrators.State
	integ integrators.Integrator
	out   []float64
}

// NewCPG builds a CPG for motors. With a non-nil cppn the weights are
// generated from motor coordinates and the cppn genome becomes the
// parameter vector.
func NewCPG(motors []robot.Motor, attrs config.Attributes, cppn *CPPN) (*CPG, error) {
	init, err := attrs.FloatOr("init_state", 0.5)
	if err != nil {
		return nil, err
	}
	bound, err := attrs.FloatOr("range_ub", 1.0)
	if err != nil {
		return nil, err
	}
	signal, err := attrs.FloatOr("signal_factor", 1.0)
	if err != nil {
		return nil, err
	}
	reach, err := attrs.FloatOr("connection_range", 1.0)
	if err != nil {
		return nil, err
	}
	freq, err := attrs.FloatOr("base_frequency", 1.0)
	if err != nil {
		return nil, err
	}

	n := len(motors)
	c := &CPG{
		n:            n,
		coords:       make([][2]float64, n),
		intra:        make([]float64, n),
		omega:        2 * math.Pi * freq,
		signalFactor: signal,
		bound:        bound,
		cppn:         cppn,
		state:        make(integrators.State, 2*n),
		integ:        integrators.NewRK4(),
		out:          make([]float64, n),
	}

	for i, m := range motors {
		if p, ok := m.(robot.Positioned); ok {
			c.coords[i][0], c.coords[i][1] = p.Coordinates()
		} else {
			c.coords[i] = [2]float64{float64(i), 0}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := c.coords[i][0] - c.coords[j][0]
			dy := c.coords[i][1] - c.coords[j][1]
			if math.Hypot(dx, dy) <= reach+1e-9 {
				c.links = append(c.links, link{a: i, b: j})
			}
		}
	}
	c.inter = make([]float64, len(c.links))

	for i := 0; i < n; i++ {
		c.intra[i] = bound
		c.state[i] = init
		c.state[n+i] = -init
	}
	for k := range c.inter {
		c.inter[k] = 0.5 * bound
	}
	if cppn != nil {
		c.generateWeights()
	}
	return c, nil
}

func (c *CPG) Links() int { return len(c.links) }

func (c *CPG) Derive(x integrators.State, u integrators.Control, t float64) integrators.State {
	dx := make(integrators.State, len(x))
	for i := 0; i < c.n; i++ {
		dx[i] = c.intra[i] * x[c.n+i]
		dx[c.n+i] = -c.intra[i] * x[i]
	}
	for k, l := range c.links {
		dx[l.a] += c.inter[k] * x[l.b]
		dx[l.b] += c.inter[k] * x[l.a]
	}
	for i := range dx {
		dx[i] *= c.omega
	}
	return dx
}

func (c *CPG) Update(motors []robot.Motor, sensors []robot.Sensor, t, dt float64) {
	if dt > 0 {
		c.state = c.integ.Step(c, c.state, nil, t, dt)
		for i, v := range c.state {
			if math.IsNaN(v) {
				c.state[i] = 0
				continue
			}
			c.state[i] = math.Max(-stateBound, math.Min(stateBound, v))
		}
	}
	for i := 0; i < c.n; i++ {
		c.out[i] = c.signalFactor * math.Tanh(c.state[i])
	}
	robot.WriteAll(motors, c.out, dt)
}

func (c *CPG) Parameters() []float64 {
	if c.cppn != nil {
		return c.cppn.Parameters()
	}
	p := make([]float64, 0, len(c.intra)+len(c.inter))
	p = append(p, c.intra...)
	return append(p, c.inter...)
}

func (c *CPG) SetParameters(p []float64) {
	if c.cppn != nil {
		c.cppn.SetParameters(p)
		c.generateWeights()
		return
	}
	n := copy(c.intra, p)
	if n < len(p) {
		copy(c.inter, p[n:])
	}
}

func (c *CPG) generateWeights() {
	for i := 0; i < c.n; i++ {
		ci := c.coords[i]
		c.intra[i] = c.bound * c.cppn.Query(ci[0], ci[1], ci[0], ci[1])
	}
	for k, l := range c.links {
		a, b := c.coords[l.a], c.coords[l.b]
		c.inter[k] = c.bound * c.cppn.Query(a[0], a[1], b[0], b[1])
	}
}
