package hardware

import (
	"fmt"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
)

// LoadActuators creates every actuator of the brain in declaration order.
// A missing brain yields no motors.
func LoadActuators(f *MotorFactory, brain *config.Brain) ([]robot.Motor, error) {
	if brain == nil {
		return nil, nil
	}
	motors := make([]robot.Motor, 0, len(brain.Actuators))
	for _, desc := range brain.Actuators {
		m, err := f.Create(desc)
		if err != nil {
			return nil, fmt.Errorf("load actuators: %w", err)
		}
		motors = append(motors, m)
	}
	return motors, nil
}

func LoadSensors(f *SensorFactory, brain *config.Brain) ([]robot.Sensor, error) {
	if brain == nil {
		return nil, nil
	}
	sensors := make([]robot.Sensor, 0, len(brain.Sensors))
	for _, desc := range brain.Sensors {
		s, err := f.Create(desc)
		if err != nil {
			return nil, fmt.Errorf("load sensors: %w", err)
		}
		sensors = append(sensors, s)
	}
	return sensors, nil
}

// BodyJoints is the number of joints a body needs for brain.
func BodyJoints(brain *config.Brain) int {
	if brain == nil {
		return 0
	}
	return len(brain.Actuators)
}
