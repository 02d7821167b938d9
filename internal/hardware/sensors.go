package hardware

import (
	"fmt"
	"math"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/world"
)

// JointSensor reads the position of one joint.
type JointSensor struct {
	label string
	joint int
	body  *world.Body
}

func (s *JointSensor) Label() string { return s.label }
func (s *JointSensor) Inputs() int   { return 1 }

func (s *JointSensor) Read(inputs []float64) {
	inputs[0] = s.body.JointPosition(s.joint)
}

// OrientationSensor reads the heading of the root body as (sin, cos).
type OrientationSensor struct {
	label string
	body  *world.Body
}

func (s *OrientationSensor) Label() string { return s.label }
func (s *OrientationSensor) Inputs() int   { return 2 }

func (s *OrientationSensor) Read(inputs []float64) {
	yaw := s.body.Pose().Yaw
	inputs[0] = math.Sin(yaw)
	inputs[1] = math.Cos(yaw)
}

type SensorFactory struct {
	body   *world.Body
	motors *MotorFactory
}

func NewSensorFactory(body *world.Body, motors *MotorFactory) *SensorFactory {
	return &SensorFactory{body: body, motors: motors}
}

func (f *SensorFactory) Create(desc config.Sensor) (robot.Sensor, error) {
	switch desc.Type {
	case "joint":
		joint, ok := f.motors.Joint(desc.Joint)
		if !ok {
			return nil, fmt.Errorf("sensor %q: unknown joint %q", desc.ID, desc.Joint)
		}
		return &JointSensor{label: desc.ID, joint: joint, body: f.body}, nil
	case "imu", "orientation":
		return &OrientationSensor{label: desc.ID, body: f.body}, nil
	default:
		return nil, robot.Unsupported("sensor", desc.Type)
	}
}
