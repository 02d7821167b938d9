package learn

import "github.com/san-kum/robocore/internal/robot"

// Offline owns a controller without optimizing it.
type Offline struct {
	controller robot.Controller
}

func NewOffline(c robot.Controller) *Offline {
	return &Offline{controller: c}
}

func (o *Offline) Optimize(t, dt float64) {}

func (o *Offline) Controller() robot.Controller { return o.controller }
