package assembly

import "github.com/san-kum/robocore/internal/robot"

type ControllerKind string

const (
	ANN     ControllerKind = "ann"
	Spline  ControllerKind = "spline"
	CPG     ControllerKind = "cpg"
	CPPNCPG ControllerKind = "cppn-cpg"
)

type LearnerKind string

const (
	Offline     LearnerKind = "offline"
	RLPower     LearnerKind = "rlpower"
	Bayesian    LearnerKind = "bo"
	NIPES       LearnerKind = "nipes"
	DiffEvolver LearnerKind = "de"
)

func ParseControllerKind(s string) (ControllerKind, error) {
	switch k := ControllerKind(s); k {
	case ANN, Spline, CPG, CPPNCPG:
		return k, nil
	}
	return "", robot.Unsupported("controller", s)
}

func ParseLearnerKind(s string) (LearnerKind, error) {
	switch k := LearnerKind(s); k {
	case Offline, RLPower, Bayesian, NIPES, DiffEvolver:
		return k, nil
	}
	return "", robot.Unsupported("learner", s)
}

// Online reports whether the learner tunes controller parameters.
func (k LearnerKind) Online() bool {
	switch k {
	case Bayesian, NIPES, DiffEvolver:
		return true
	}
	return false
}
