package metrics

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/sim"
)

type plainMotor struct {
	got []float64
}

func (m *plainMotor) ID() string     { return "m" }
func (m *plainMotor) PartID() string { return "p" }
func (m *plainMotor) Outputs() int   { return 1 }

func (m *plainMotor) Update(outputs []float64, step float64) {
	m.got = append(m.got, outputs...)
}

type servoMotor struct {
	plainMotor
}

func (m *servoMotor) Position() float64               { return 0.3 }
func (m *servoMotor) Coordinates() (float64, float64) { return 1, 2 }

var _ = Describe("ControlEffort", func() {
	It("should average absolute commands", func() {
		e := NewControlEffort()
		Expect(e.Value()).To(BeZero())
		e.Observe([]float64{1, -3})
		Expect(e.Value()).To(Equal(2.0))
		e.Reset()
		Expect(e.Value()).To(BeZero())
		Expect(e.Name()).To(Equal("control_effort"))
	})

	It("should observe commands sent through instrumented motors", func() {
		e := NewControlEffort()
		inner := &plainMotor{}
		motors := InstrumentMotors([]robot.Motor{inner}, e)

		motors[0].Update([]float64{-0.5}, 0.1)
		Expect(inner.got).To(Equal([]float64{-0.5}))
		Expect(e.Value()).To(Equal(0.5))
		Expect(motors[0].ID()).To(Equal("m"))
	})

	It("should keep the capabilities of the wrapped motor", func() {
		motors := InstrumentMotors([]robot.Motor{&plainMotor{}, &servoMotor{}}, NewControlEffort())

		_, ok := motors[0].(robot.Feedback)
		Expect(ok).To(BeFalse())

		fb, ok := motors[1].(robot.Feedback)
		Expect(ok).To(BeTrue())
		Expect(fb.Position()).To(Equal(0.3))
		pos, ok := motors[1].(robot.Positioned)
		Expect(ok).To(BeTrue())
		x, y := pos.Coordinates()
		Expect([]float64{x, y}).To(Equal([]float64{1, 2}))
	})
})

var _ = Describe("Collector", func() {
	var (
		reg *prometheus.Registry
		c   *Collector
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		c = NewCollector(reg, "spider")
	})

	It("should count cycles and skipped actuations", func() {
		ctx := context.Background()
		c.OnCycle(ctx, sim.CycleInfo{Time: 0.1, Delta: 0.1, ControllerDispatched: true})
		c.OnCycle(ctx, sim.CycleInfo{Time: 0.2, Delta: 0.1})

		Expect(testutil.ToFloat64(c.cycles)).To(Equal(2.0))
		Expect(testutil.ToFloat64(c.skipped)).To(Equal(1.0))
		Expect(testutil.ToFloat64(c.simTime)).To(Equal(0.2))
	})

	It("should track the last and best fitness", func() {
		c.Report(robot.EvaluationReport{Fitness: 0.4})
		c.Report(robot.EvaluationReport{Fitness: 0.9})
		c.Report(robot.EvaluationReport{Fitness: 0.2})

		Expect(testutil.ToFloat64(c.evaluations)).To(Equal(3.0))
		Expect(testutil.ToFloat64(c.fitness)).To(Equal(0.2))
		Expect(testutil.ToFloat64(c.bestFitness)).To(Equal(0.9))
	})

	It("should label every series with the robot", func() {
		c.Effort().Observe([]float64{0.5})
		level := 0.75
		c.WatchBattery(func() float64 { return level })

		expected := `
# HELP robocore_battery_level Battery level of the robot.
# TYPE robocore_battery_level gauge
robocore_battery_level{robot="spider"} 0.75
# HELP robocore_control_effort Mean absolute motor command.
# TYPE robocore_control_effort gauge
robocore_control_effort{robot="spider"} 0.5
`
		Expect(testutil.GatherAndCompare(reg, strings.NewReader(expected),
			"robocore_battery_level", "robocore_control_effort")).To(Succeed())
	})
})
