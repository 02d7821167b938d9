package metrics

import (
	"math"
	"sync"

	"github.com/san-kum/robocore/internal/robot"
)

// ControlEffort is the mean absolute motor command since the last Reset.
type ControlEffort struct {
	name string

	mu      sync.Mutex
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(outputs []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, val := range outputs {
		c.sum += math.Abs(val)
		c.samples++
	}
}

func (c *ControlEffort) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sum = 0
	c.samples = 0
}

// InstrumentMotors wraps motors so every command they receive is observed by
// effort. The wrappers keep the Feedback and Positioned capabilities of the
// motors they wrap.
func InstrumentMotors(motors []robot.Motor, effort *ControlEffort) []robot.Motor {
	out := make([]robot.Motor, len(motors))
	for i, m := range motors {
		out[i] = instrument(m, effort)
	}
	return out
}

func instrument(m robot.Motor, effort *ControlEffort) robot.Motor {
	base := &observedMotor{Motor: m, effort: effort}
	fb, hasFeedback := m.(robot.Feedback)
	pos, hasPosition := m.(robot.Positioned)
	switch {
	case hasFeedback && hasPosition:
		return &struct {
			*observedMotor
			robot.Feedback
			robot.Positioned
		}{base, fb, pos}
	case hasFeedback:
		return &struct {
			*observedMotor
			robot.Feedback
		}{base, fb}
	case hasPosition:
		return &struct {
			*observedMotor
			robot.Positioned
		}{base, pos}
	}
	return base
}

type observedMotor struct {
	robot.Motor
	effort *ControlEffort
}

func (m *observedMotor) Update(outputs []float64, step float64) {
	m.effort.Observe(outputs)
	m.Motor.Update(outputs, step)
}

func (m *observedMotor) Unwrap() robot.Motor { return m.Motor }
