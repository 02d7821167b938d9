package assembly

import (
	"log/slog"
	"math/rand"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/learn"
	"github.com/san-kum/robocore/internal/robot"
)

// EffectiveMaxEvaluations caps a configured learning budget.
func EffectiveMaxEvaluations(configured int) int {
	return min(configured, config.DefaultMaxEvaluations)
}

func newLearner(kind LearnerKind, ck ControllerKind, attrs config.Attributes, controller robot.Controller, b *Brain, robotID string, rng *rand.Rand, log *slog.Logger) (robot.Learner, error) {
	if !kind.Online() {
		return learn.NewOffline(controller), nil
	}

	var tunable learn.ParametricController
	var x0 []float64
	if controller != nil {
		pc, ok := controller.(learn.ParametricController)
		if !ok || len(pc.Parameters()) == 0 {
			return nil, robot.Incompatible("learner", string(kind), string(ck))
		}
		tunable, x0 = pc, pc.Parameters()
	}

	rate, err := attrs.FloatOr("evaluation_rate", config.DefaultEvaluationRate)
	if err != nil {
		return nil, err
	}
	opts := learn.Options{
		RobotID:        robotID,
		EvaluationRate: rate,
		Verbose:        attrs.Flag("verbose"),
		Logger:         log,
	}

	var strategy learn.Strategy
	switch kind {
	case Bayesian:
		budget, err := attrs.IntOr("n_learning_evaluations", config.DefaultMaxEvaluations)
		if err != nil {
			return nil, err
		}
		initSamples, err := attrs.IntOr("n_init_samples", learn.DefaultBayesOptions().InitSamples)
		if err != nil {
			return nil, err
		}
		bo := learn.DefaultBayesOptions()
		bo.InitSamples = initSamples
		opts.MaxEvaluations = EffectiveMaxEvaluations(budget)
		strategy = learn.NewBayes(x0, bo, rng)

	case NIPES:
		pop, err := attrs.Int("population_size")
		if err != nil {
			return nil, err
		}
		maxEval, err := attrs.Int("max_eval")
		if err != nil {
			return nil, err
		}
		opts.MaxEvaluations = EffectiveMaxEvaluations(maxEval)
		strategy = learn.NewNIPES(x0, pop, rng)

	case DiffEvolver:
		subtype, err := learn.ParseDESubtype(attrs.StringOr("subtype", string(learn.SubtypeDE)))
		if err != nil {
			return nil, err
		}
		de := learn.DEOptions{Subtype: subtype}
		if de.CR, err = attrs.Float("CR"); err != nil {
			return nil, err
		}
		if de.F, err = attrs.Float("F"); err != nil {
			return nil, err
		}
		if de.NParents, err = attrs.Int("n_parents"); err != nil {
			return nil, err
		}
		if de.Population, err = attrs.Int("population_size"); err != nil {
			return nil, err
		}
		maxEval, err := attrs.Int("max_eval")
		if err != nil {
			return nil, err
		}
		opts.MaxEvaluations = EffectiveMaxEvaluations(maxEval)
		if strategy, err = learn.NewDifferentialEvolution(x0, de, rng); err != nil {
			return nil, err
		}

	default:
		return nil, robot.Unsupported("learner", string(kind))
	}

	return learn.NewOnline(tunable, b.Evaluator, b.Reporter, strategy, opts), nil
}
