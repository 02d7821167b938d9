package world

import (
	"math"

	"github.com/san-kum/robocore/internal/integrators"
	"github.com/san-kum/robocore/internal/robot"
)

type BodyParams struct {
	Stiffness float64
	Damping   float64
	// Stride scales how much a travelling joint wave moves the body forward.
	Stride float64
	// Turn scales how much a lopsided posture turns the body.
	Turn float64
}

func DefaultBodyParams() BodyParams {
	return BodyParams{
		Stiffness: 40.0,
		Damping:   8.0,
		Stride:    0.5,
		Turn:      0.2,
	}
}

// Body is a headless stand-in for a modular robot: n position-controlled
// joints driving a planar root body. State layout is
// [q_0..q_n-1, qd_0..qd_n-1, x, y, yaw].
type Body struct {
	params  BodyParams
	joints  int
	targets integrators.Control
	state   integrators.State
}

func NewBody(joints int, params BodyParams) *Body {
	return &Body{
		params:  params,
		joints:  joints,
		targets: make(integrators.Control, joints),
		state:   make(integrators.State, 2*joints+3),
	}
}

func (b *Body) Joints() int { return b.joints }

// SetTarget sets the commanded position of a joint, clamped to [-1, 1].
func (b *Body) SetTarget(joint int, v float64) {
	if joint < 0 || joint >= b.joints {
		return
	}
	b.targets[joint] = math.Max(-1, math.Min(1, v))
}

func (b *Body) Target(joint int) float64 {
	return b.targets[joint]
}

func (b *Body) JointPosition(joint int) float64 {
	return b.state[joint]
}

func (b *Body) JointVelocity(joint int) float64 {
	return b.state[b.joints+joint]
}

func (b *Body) Pose() robot.Pose {
	n := 2 * b.joints
	return robot.Pose{X: b.state[n], Y: b.state[n+1], Yaw: b.state[n+2]}
}

func (b *Body) Derive(x integrators.State, u integrators.Control, t float64) integrators.State {
	n := b.joints
	dx := make(integrators.State, len(x))

	thrust, lean := 0.0, 0.0
	for i := 0; i < n; i++ {
		q, qd := x[i], x[n+i]
		dx[i] = qd
		dx[n+i] = b.params.Stiffness*(u[i]-q) - b.params.Damping*qd
		if n > 1 {
			thrust += qd * x[(i+1)%n]
		}
		lean += q
	}
	if n > 0 {
		thrust /= float64(n)
		lean /= float64(n)
	}

	yaw := x[2*n+2]
	speed := b.params.Stride * math.Abs(thrust)
	dx[2*n] = speed * math.Cos(yaw)
	dx[2*n+1] = speed * math.Sin(yaw)
	dx[2*n+2] = b.params.Turn * lean * speed

	return dx
}

// Step advances the body by dt using integ.
func (b *Body) Step(integ integrators.Integrator, t, dt float64) {
	b.state = integ.Step(b, b.state, b.targets, t, dt)
}
