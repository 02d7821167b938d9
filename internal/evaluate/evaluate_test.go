package evaluate

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/robocore/internal/robot"
)

var _ = Describe("Displacement", func() {
	It("should score zero before any update", func() {
		Expect(NewDisplacement().Fitness()).To(BeZero())
	})

	It("should score planar speed since the first update", func() {
		d := NewDisplacement()
		d.SimulationUpdate(robot.Pose{X: 1, Y: 1, Z: 3}, 10, 0)
		d.SimulationUpdate(robot.Pose{X: 4, Y: 5, Z: 0}, 12, 2)
		Expect(d.Fitness()).To(BeNumerically("~", 2.5, 1e-12))
	})

	It("should start a new window after Reset", func() {
		d := NewDisplacement()
		d.SimulationUpdate(robot.Pose{}, 0, 0)
		d.SimulationUpdate(robot.Pose{X: 10}, 1, 1)
		d.Reset()
		Expect(d.Fitness()).To(BeZero())

		d.SimulationUpdate(robot.Pose{X: 10}, 1, 0)
		d.SimulationUpdate(robot.Pose{X: 11}, 3, 2)
		Expect(d.Fitness()).To(BeNumerically("~", 0.5, 1e-12))
	})
})

var _ = Describe("Reporters", func() {
	report := robot.EvaluationReport{RobotID: "spider", EvalID: 3, Fitness: 0.25, Parameters: []float64{1, 2}}

	It("should log every report", func() {
		var buf bytes.Buffer
		r := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))
		r.Report(report)
		Expect(buf.String()).To(ContainSubstring("robot=spider"))
		Expect(buf.String()).To(ContainSubstring("eval=3"))
		Expect(buf.String()).To(ContainSubstring("fitness=0.25"))
	})

	It("should fan out to every reporter and skip nil ones", func() {
		a, b := NewRecorder(), NewRecorder()
		agg := Aggregated{a, nil, b}
		agg.SimulationUpdate(robot.Pose{X: 1}, 1, 1)
		agg.Report(report)

		for _, r := range []*Recorder{a, b} {
			Expect(r.Reports()).To(HaveLen(1))
			Expect(r.Poses()).To(Equal([]robot.Pose{{X: 1}}))
		}
	})

	It("should record an independent copy of the parameters", func() {
		r := NewRecorder()
		params := []float64{1, 2}
		r.Report(robot.EvaluationReport{Fitness: 0.5, Parameters: params})
		params[0] = 9

		Expect(r.Reports()[0].Parameters).To(Equal([]float64{1, 2}))
		Expect(r.Fitnesses()).To(Equal([]float64{0.5}))
	})
})
