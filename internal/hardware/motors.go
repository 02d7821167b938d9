package hardware

import (
	"fmt"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/world"
)

// Servo is a position-controlled joint of the simulated body.
type Servo struct {
	id     string
	partID string
	joint  int
	gain   float64
	coords [2]float64
	body   *world.Body
}

func (s *Servo) ID() string     { return s.id }
func (s *Servo) PartID() string { return s.partID }
func (s *Servo) Outputs() int   { return 1 }
func (s *Servo) Joint() int     { return s.joint }

func (s *Servo) Update(outputs []float64, step float64) {
	if len(outputs) == 0 {
		return
	}
	s.body.SetTarget(s.joint, s.gain*outputs[0])
}

func (s *Servo) Position() float64 {
	return s.body.JointPosition(s.joint)
}

func (s *Servo) Coordinates() (float64, float64) {
	return s.coords[0], s.coords[1]
}

// MotorFactory binds actuator descriptions to consecutive body joints.
type MotorFactory struct {
	body   *world.Body
	joints map[string]int
}

func NewMotorFactory(body *world.Body) *MotorFactory {
	return &MotorFactory{body: body, joints: make(map[string]int)}
}

func (f *MotorFactory) Create(desc config.Actuator) (robot.Motor, error) {
	switch desc.Type {
	case "position", "servo", "servomotor":
	default:
		return nil, robot.Unsupported("motor", desc.Type)
	}
	joint := len(f.joints)
	if joint >= f.body.Joints() {
		return nil, fmt.Errorf("motor %q: body has only %d joints", desc.ID, f.body.Joints())
	}
	if _, dup := f.joints[desc.ID]; dup {
		return nil, fmt.Errorf("motor %q: already created", desc.ID)
	}
	gain := desc.Gain
	if gain == 0 {
		gain = 1
	}
	f.joints[desc.ID] = joint
	return &Servo{
		id:     desc.ID,
		partID: desc.PartID,
		joint:  joint,
		gain:   gain,
		coords: desc.Coordinates,
		body:   f.body,
	}, nil
}

// Joint returns the body joint bound to the motor with the given id.
func (f *MotorFactory) Joint(id string) (int, bool) {
	j, ok := f.joints[id]
	return j, ok
}
