package config

import "sort"

func rate(hz float64) *float64 { return &hz }

func level(v float64) *float64 { return &v }

func chain(prefix string, n int) []Actuator {
	out := make([]Actuator, n)
	for i := range out {
		out[i] = Actuator{
			ID:          prefix + "_" + string(rune('a'+i)),
			PartID:      prefix + "_joint_" + string(rune('a'+i)),
			Type:        "position",
			Coordinates: [2]float64{float64(i), 0},
		}
	}
	return out
}

func spider() []Actuator {
	legs := [][2]float64{{1, 0}, {2, 0}, {-1, 0}, {-2, 0}, {0, 1}, {0, 2}, {0, -1}, {0, -2}}
	out := make([]Actuator, len(legs))
	for i, c := range legs {
		out[i] = Actuator{
			ID:          "leg_" + string(rune('a'+i)),
			PartID:      "leg_joint_" + string(rune('a'+i)),
			Type:        "position",
			Coordinates: c,
		}
	}
	return out
}

func jointSensors(acts []Actuator) []Sensor {
	out := make([]Sensor, 0, len(acts)+1)
	for _, a := range acts {
		out = append(out, Sensor{ID: a.ID + "_sensor", PartID: a.PartID, Type: "joint", Joint: a.ID})
	}
	return out
}

// Presets are ready-made robots. Each call returns a fresh copy.
var Presets = map[string]func() *Config{
	"spider-offline": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "spider"
		cfg.UpdateRate = rate(8)
		acts := spider()
		cfg.Brain = &Brain{
			Actuators:  acts,
			Sensors:    jointSensors(acts),
			Controller: Variant{Type: "cpg"},
			Learner:    Variant{Type: "offline"},
		}
		cfg.Battery = &Battery{Level: level(1.0)}
		return cfg
	},
	"spider-nipes": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "spider"
		cfg.UpdateRate = rate(8)
		cfg.Simulation.Duration = 1200
		acts := spider()
		cfg.Brain = &Brain{
			Actuators:  acts,
			Sensors:    jointSensors(acts),
			Controller: Variant{Type: "cpg"},
			Learner: Variant{Type: "nipes", Attributes: Attributes{
				"population_size": "6",
				"max_eval":        "300",
				"verbose":         "1",
				"evaluation_rate": "30",
			}},
		}
		return cfg
	},
	"snake-bo": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "snake"
		cfg.UpdateRate = rate(10)
		cfg.Simulation.Duration = 600
		acts := chain("segment", 6)
		cfg.Brain = &Brain{
			Actuators:  acts,
			Sensors:    jointSensors(acts),
			Controller: Variant{Type: "cppn-cpg"},
			Learner: Variant{Type: "bo", Attributes: Attributes{
				"evaluation_rate":        "20",
				"n_init_samples":         "5",
				"n_learning_evaluations": "30",
			}},
		}
		return cfg
	},
	"gecko-de": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "gecko"
		cfg.UpdateRate = rate(8)
		cfg.Simulation.Duration = 900
		acts := chain("limb", 4)
		cfg.Brain = &Brain{
			Actuators:  acts,
			Sensors:    jointSensors(acts),
			Controller: Variant{Type: "cpg"},
			Learner: Variant{Type: "de", Attributes: Attributes{
				"subtype":         "revde",
				"CR":              "0.9",
				"F":               "0.5",
				"n_parents":       "3",
				"population_size": "8",
				"max_eval":        "120",
				"evaluation_rate": "15",
			}},
			IMC: Attributes{
				"active":             "1",
				"restore_checkpoint": "0",
				"save_checkpoint":    "1",
				"learning_rate":      "0.005",
				"beta1":              "0.9",
				"beta2":              "0.99",
				"weight_decay":       "0.001",
			},
		}
		return cfg
	},
	"worm-spline": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "worm"
		cfg.UpdateRate = rate(10)
		acts := chain("body", 3)
		cfg.Brain = &Brain{
			Actuators:  acts,
			Sensors:    jointSensors(acts),
			Controller: Variant{Type: "spline", Attributes: Attributes{"period": "2", "points": "6"}},
			Learner:    Variant{Type: "rlpower"},
		}
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
