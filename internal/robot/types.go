package robot

import "math"

// Pose is the world pose of the robot's root body.
type Pose struct {
	X   float64
	Y   float64
	Z   float64
	Yaw float64
}

// PlanarDistance returns the distance to other projected on the ground plane.
func (p Pose) PlanarDistance(other Pose) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// UpdateInfo is what the simulation engine hands to world update callbacks.
type UpdateInfo struct {
	SimTime float64
	Pose    Pose
}

type Motor interface {
	ID() string
	PartID() string
	Outputs() int
	Update(outputs []float64, step float64)
}

// Feedback is implemented by motors that can report their joint position.
type Feedback interface {
	Position() float64
}

// Positioned is implemented by motors that know their place on the body grid.
type Positioned interface {
	Coordinates() (x, y float64)
}

type Sensor interface {
	Label() string
	Inputs() int
	Read(inputs []float64)
}

type Controller interface {
	Update(motors []Motor, sensors []Sensor, t, dt float64)
}

// Parametric controllers expose a flat parameter vector that learners can
// optimize.
type Parametric interface {
	Parameters() []float64
	SetParameters(p []float64)
}

type Learner interface {
	Optimize(t, dt float64)
	// Controller returns the live controller, or nil when there is none.
	Controller() Controller
}

type Evaluator interface {
	SimulationUpdate(pose Pose, t, dt float64)
	Reset()
	Fitness() float64
}

type Reporter interface {
	SimulationUpdate(pose Pose, t, dt float64)
	Report(r EvaluationReport)
}

type EvaluationReport struct {
	RobotID    string
	EvalID     int
	Dead       bool
	Fitness    float64
	Parameters []float64
	Time       float64
}

// TotalOutputs sums the output channels of motors.
func TotalOutputs(motors []Motor) int {
	n := 0
	for _, m := range motors {
		n += m.Outputs()
	}
	return n
}

// TotalInputs sums the input channels of sensors.
func TotalInputs(sensors []Sensor) int {
	n := 0
	for _, s := range sensors {
		n += s.Inputs()
	}
	return n
}

// ReadAll fills a single input vector from every sensor in order.
func ReadAll(sensors []Sensor, buf []float64) []float64 {
	n := TotalInputs(sensors)
	if cap(buf) < n {
		buf = make([]float64, n)
	}
	buf = buf[:n]
	off := 0
	for _, s := range sensors {
		s.Read(buf[off : off+s.Inputs()])
		off += s.Inputs()
	}
	return buf
}

// WriteAll splits outputs across motors in order.
func WriteAll(motors []Motor, outputs []float64, step float64) {
	off := 0
	for _, m := range motors {
		k := m.Outputs()
		if off+k > len(outputs) {
			return
		}
		m.Update(outputs[off:off+k], step)
		off += k
	}
}
