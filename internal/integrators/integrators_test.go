package integrators

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type oscillator struct{}

func (oscillator) Derive(x State, u Control, t float64) State {
	return State{x[1], -x[0]}
}

func integrate(integ Integrator, steps int, dt float64) State {
	x := State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, nil, float64(i)*dt, dt)
	}
	return x
}

var _ = Describe("Integrators", func() {
	It("should integrate a harmonic oscillator accurately with RK4", func() {
		x := integrate(NewRK4(), 100, 0.01)

		Expect(x[0]).To(BeNumerically("~", math.Cos(1.0), 1e-4))
		Expect(x[1]).To(BeNumerically("~", -math.Sin(1.0), 1e-4))
	})

	It("should integrate a harmonic oscillator roughly with Euler", func() {
		x := integrate(NewEuler(), 100, 0.01)

		Expect(x[0]).To(BeNumerically("~", math.Cos(1.0), 1e-2))
	})

	It("should not modify the input state", func() {
		x := State{1.0, 0.0}
		NewRK4().Step(oscillator{}, x, nil, 0, 0.1)

		Expect(x).To(Equal(State{1.0, 0.0}))
	})

	It("should look integrators up by name", func() {
		integ, err := New("rk4")
		Expect(err).NotTo(HaveOccurred())
		Expect(integ).To(BeAssignableToTypeOf(&RK4{}))

		integ, err = New("euler")
		Expect(err).NotTo(HaveOccurred())
		Expect(integ).To(BeAssignableToTypeOf(&Euler{}))

		_, err = New("leapfrog")
		Expect(err).To(MatchError(ContainSubstring("unknown integrator")))
	})
})
