package config

import (
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/robocore/internal/robot"
)

const spiderYAML = `
name: spider
world: arena
update_rate: 8
brain:
  actuators:
    - {id: leg_a, part_id: leg_joint_a, type: position, coordinates: [1, 0]}
    - {id: leg_b, part_id: leg_joint_b, type: position, coordinates: [2, 0]}
  sensors:
    - {id: leg_a_sensor, part_id: leg_joint_a, type: joint, joint: leg_a}
  controller:
    type: cpg
  learner:
    type: nipes
    attributes:
      population_size: 10
      max_eval: "400"
  imc:
    active: "1"
    learning_rate: "5e-3"
battery:
  level: 3.5
`

var _ = Describe("Config", func() {
	It("should provide defaults", func() {
		cfg := DefaultConfig()

		Expect(cfg.World).To(Equal(DefaultWorld))
		Expect(cfg.Simulation.Dt).To(BeNumerically(">", 0))
		Expect(cfg.Simulation.Duration).To(BeNumerically(">", 0))
		Expect(cfg.Period()).To(BeZero())
	})

	It("should parse a robot configuration", func() {
		cfg, err := Parse([]byte(spiderYAML))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Name).To(Equal("spider"))
		Expect(cfg.Period()).To(BeNumerically("~", 0.125, 1e-12))
		Expect(cfg.Brain.Actuators).To(HaveLen(2))
		Expect(cfg.Brain.Actuators[1].Coordinates).To(Equal([2]float64{2, 0}))
		Expect(cfg.Brain.Learner.Attributes).To(HaveKeyWithValue("population_size", "10"))
		Expect(cfg.Brain.IMC.Flag("active")).To(BeTrue())
		Expect(cfg.Simulation.Integrator).To(Equal(DefaultIntegrator))

		lvl, ok := cfg.InitialBatteryLevel()
		Expect(ok).To(BeTrue())
		Expect(lvl).To(Equal(3.5))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should report malformed yaml as a configuration error", func() {
		_, err := Parse([]byte("name: [unterminated"))
		Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
	})

	It("should reject a non-positive update rate", func() {
		cfg := GetPreset("spider-offline")
		zero := 0.0
		cfg.UpdateRate = &zero

		err := cfg.Validate()
		Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("update_rate"))
	})

	It("should require a name", func() {
		cfg := DefaultConfig()
		Expect(errors.Is(cfg.Validate(), robot.ErrConfiguration)).To(BeTrue())
	})

	It("should round trip through a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "robot.yaml")
		cfg := GetPreset("gecko-de")

		Expect(Save(path, cfg)).To(Succeed())
		loaded, err := Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Brain.Learner).To(Equal(cfg.Brain.Learner))
		Expect(loaded.Brain.IMC).To(Equal(cfg.Brain.IMC))
	})
})

var _ = Describe("Identity", func() {
	It("should match the short and the scoped name", func() {
		id := Identity{Name: "spider", Scope: "arena"}

		Expect(id.ScopedName()).To(Equal("arena::spider"))
		Expect(id.Matches("spider")).To(BeTrue())
		Expect(id.Matches("arena::spider")).To(BeTrue())
		Expect(id.Matches("other")).To(BeFalse())
		Expect(id.Matches("")).To(BeFalse())
	})

	It("should fall back to the name without a scope", func() {
		Expect(Identity{Name: "spider"}.ScopedName()).To(Equal("spider"))
	})
})

var _ = Describe("Attributes", func() {
	attrs := Attributes{
		"population_size": "10",
		"CR":              "0.9",
		"broken":          "ten",
		"verbose":         "1",
		"quiet":           "0",
	}

	It("should convert numbers", func() {
		n, err := attrs.Int("population_size")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(10))

		f, err := attrs.Float("CR")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(0.9))
	})

	It("should fall back to defaults for missing optional fields", func() {
		n, err := attrs.IntOr("seed", 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(7))
	})

	It("should fail on missing required fields", func() {
		_, err := attrs.Float("F")

		var cfgErr *robot.ConfigError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("F"))
		Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
	})

	It("should fail on malformed values", func() {
		_, err := attrs.Int("broken")
		Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`"ten"`))

		_, err = attrs.FloatOr("broken", 1)
		Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
	})

	It("should read flags", func() {
		Expect(attrs.Flag("verbose")).To(BeTrue())
		Expect(attrs.Flag("quiet")).To(BeFalse())
		Expect(attrs.Flag("missing")).To(BeFalse())
	})
})

var _ = Describe("Presets", func() {
	It("should list every preset", func() {
		Expect(ListPresets()).To(ConsistOf("spider-offline", "spider-nipes", "snake-bo", "gecko-de", "worm-spline"))
	})

	It("should return valid and independent copies", func() {
		for _, name := range ListPresets() {
			cfg := GetPreset(name)
			Expect(cfg.Validate()).To(Succeed(), name)
		}

		a := GetPreset("spider-offline")
		a.Name = "changed"
		Expect(GetPreset("spider-offline").Name).To(Equal("spider"))
	})

	It("should return nil for unknown presets", func() {
		Expect(GetPreset("nonexistent")).To(BeNil())
	})
})
