package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/robocore/internal/robot"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWorld      = "default"
	DefaultDt         = 0.005
	DefaultDuration   = 120.0
	DefaultIntegrator = "rk4"

	// DefaultEvaluationRate is the length of one learner evaluation window
	// in seconds of simulation time.
	DefaultEvaluationRate = 60.0
	// DefaultMaxEvaluations caps the learning budget of every learner.
	DefaultMaxEvaluations = 300
)

type Config struct {
	Name       string     `yaml:"name"`
	World      string     `yaml:"world"`
	UpdateRate *float64   `yaml:"update_rate,omitempty"`
	Brain      *Brain     `yaml:"brain,omitempty"`
	Battery    *Battery   `yaml:"battery,omitempty"`
	Simulation Simulation `yaml:"simulation"`
}

type Simulation struct {
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Seed       int64   `yaml:"seed"`
	Integrator string  `yaml:"integrator"`
}

type Brain struct {
	Actuators  []Actuator `yaml:"actuators"`
	Sensors    []Sensor   `yaml:"sensors"`
	Controller Variant    `yaml:"controller"`
	Learner    Variant    `yaml:"learner"`
	IMC        Attributes `yaml:"imc,omitempty"`
}

// Variant selects one concrete implementation by name. Attributes are kept
// textual and converted by the component that consumes them.
type Variant struct {
	Type       string     `yaml:"type"`
	Attributes Attributes `yaml:"attributes,omitempty"`
}

type Actuator struct {
	ID          string     `yaml:"id"`
	PartID      string     `yaml:"part_id"`
	Type        string     `yaml:"type"`
	Coordinates [2]float64 `yaml:"coordinates"`
	Gain        float64    `yaml:"gain,omitempty"`
}

type Sensor struct {
	ID     string `yaml:"id"`
	PartID string `yaml:"part_id"`
	Type   string `yaml:"type"`
	Joint  string `yaml:"joint,omitempty"`
}

type Battery struct {
	Level *float64 `yaml:"level,omitempty"`
}

// Identity is how the robot is addressed on the message bus.
type Identity struct {
	Name  string
	Scope string
}

func (i Identity) ScopedName() string {
	if i.Scope == "" {
		return i.Name
	}
	return i.Scope + "::" + i.Name
}

// Matches reports whether s names this robot, short or scoped.
func (i Identity) Matches(s string) bool {
	return s == i.Name || s == i.ScopedName()
}

func DefaultConfig() *Config {
	return &Config{
		World: DefaultWorld,
		Simulation: Simulation{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Integrator: DefaultIntegrator,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", robot.ErrConfiguration, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Identity() Identity {
	return Identity{Name: c.Name, Scope: c.World}
}

// Period returns the actuation period in seconds. Zero means every tick.
func (c *Config) Period() float64 {
	if c.UpdateRate == nil || *c.UpdateRate <= 0 {
		return 0
	}
	return 1.0 / *c.UpdateRate
}

func (c *Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, robot.NewConfigError("name", "", nil))
	}
	if c.UpdateRate != nil && *c.UpdateRate <= 0 {
		errs = append(errs, robot.NewConfigError("update_rate",
			fmt.Sprint(*c.UpdateRate), errors.New("must be positive")))
	}
	if c.Simulation.Dt <= 0 {
		errs = append(errs, robot.NewConfigError("simulation.dt",
			fmt.Sprint(c.Simulation.Dt), errors.New("must be positive")))
	}
	if c.Simulation.Duration <= 0 {
		errs = append(errs, robot.NewConfigError("simulation.duration",
			fmt.Sprint(c.Simulation.Duration), errors.New("must be positive")))
	}
	if c.Brain != nil {
		if c.Brain.Controller.Type == "" {
			errs = append(errs, robot.NewConfigError("brain.controller.type", "", nil))
		}
		if c.Brain.Learner.Type == "" {
			errs = append(errs, robot.NewConfigError("brain.learner.type", "", nil))
		}
		seen := make(map[string]bool, len(c.Brain.Actuators))
		for _, a := range c.Brain.Actuators {
			if seen[a.ID] {
				errs = append(errs, robot.NewConfigError("brain.actuators.id", a.ID,
					errors.New("duplicate actuator id")))
			}
			seen[a.ID] = true
		}
	}
	return errors.Join(errs...)
}

// InitialBatteryLevel returns the configured level, if any.
func (c *Config) InitialBatteryLevel() (float64, bool) {
	if c.Battery == nil || c.Battery.Level == nil {
		return 0, false
	}
	return *c.Battery.Level, true
}
