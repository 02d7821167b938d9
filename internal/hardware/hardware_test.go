package hardware

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/world"
)

var _ = Describe("Factories", func() {
	var (
		brain *config.Brain
		body  *world.Body
	)

	BeforeEach(func() {
		brain = config.GetPreset("worm-spline").Brain
		body = world.NewBody(BodyJoints(brain), world.DefaultBodyParams())
	})

	It("should bind actuators to consecutive joints", func() {
		motors, err := LoadActuators(NewMotorFactory(body), brain)
		Expect(err).NotTo(HaveOccurred())
		Expect(motors).To(HaveLen(3))

		for i, m := range motors {
			Expect(m.(*Servo).Joint()).To(Equal(i))
			Expect(m.ID()).To(Equal(brain.Actuators[i].ID))
		}

		motors[1].Update([]float64{0.4}, 0.1)
		Expect(body.Target(1)).To(Equal(0.4))

		x, y := motors[2].(robot.Positioned).Coordinates()
		Expect(x).To(Equal(2.0))
		Expect(y).To(BeZero())
	})

	It("should create sensors for the bound joints", func() {
		mf := NewMotorFactory(body)
		_, err := LoadActuators(mf, brain)
		Expect(err).NotTo(HaveOccurred())

		sensors, err := LoadSensors(NewSensorFactory(body, mf), brain)
		Expect(err).NotTo(HaveOccurred())
		Expect(sensors).To(HaveLen(3))
		Expect(robot.ReadAll(sensors, nil)).To(Equal([]float64{0, 0, 0}))
	})

	It("should read the heading", func() {
		s, err := NewSensorFactory(body, NewMotorFactory(body)).Create(config.Sensor{ID: "imu", Type: "imu"})
		Expect(err).NotTo(HaveOccurred())

		buf := make([]float64, s.Inputs())
		s.Read(buf)
		Expect(buf).To(Equal([]float64{0, 1}))
	})

	It("should refuse unknown device types", func() {
		_, err := NewMotorFactory(body).Create(config.Actuator{ID: "x", Type: "hydraulic"})
		Expect(errors.Is(err, robot.ErrUnsupportedVariant)).To(BeTrue())

		_, err = NewSensorFactory(body, NewMotorFactory(body)).Create(config.Sensor{ID: "x", Type: "lidar"})
		Expect(errors.Is(err, robot.ErrUnsupportedVariant)).To(BeTrue())
	})

	It("should refuse more motors than joints", func() {
		brain.Actuators = append(brain.Actuators, config.Actuator{ID: "extra", Type: "position"})
		_, err := LoadActuators(NewMotorFactory(body), brain)
		Expect(err).To(MatchError(ContainSubstring("only 3 joints")))
	})

	It("should yield nothing without a brain", func() {
		motors, err := LoadActuators(NewMotorFactory(body), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(motors).To(BeEmpty())
		Expect(BodyJoints(nil)).To(BeZero())
	})
})
