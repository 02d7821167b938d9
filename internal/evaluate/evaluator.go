// Package evaluate scores robot behaviour and fans evaluation reports out to
// reporters.
package evaluate

import (
	"github.com/san-kum/robocore/internal/robot"
)

// Displacement scores the average planar speed of the robot since the last
// Reset.
type Displacement struct {
	start     robot.Pose
	startTime float64
	last      robot.Pose
	lastTime  float64
	started   bool
}

func NewDisplacement() *Displacement {
	return &Displacement{}
}

func (d *Displacement) SimulationUpdate(pose robot.Pose, t, dt float64) {
	if !d.started {
		d.start, d.startTime = pose, t
		d.started = true
	}
	d.last, d.lastTime = pose, t
}

func (d *Displacement) Reset() {
	d.started = false
}

func (d *Displacement) Fitness() float64 {
	if !d.started {
		return 0
	}
	elapsed := d.lastTime - d.startTime
	if elapsed <= 0 {
		return 0
	}
	return d.last.PlanarDistance(d.start) / elapsed
}
