package integrators

import "fmt"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

type Control []float64

// System is an ODE dx/dt = f(x, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
}

type Integrator interface {
	Step(sys System, x State, u Control, t, dt float64) State
}

// New returns the integrator registered under name.
func New(name string) (Integrator, error) {
	switch name {
	case "", "rk4":
		return NewRK4(), nil
	case "euler":
		return NewEuler(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}
