// Package assembly builds a robot brain from its configuration: a base
// controller, an optional adaptive-correction wrapper around it, and the
// learner that owns the result.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/control"
	"github.com/san-kum/robocore/internal/evaluate"
	"github.com/san-kum/robocore/internal/learn"
	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/sim"
)

const defaultCPPNHidden = 4

type Options struct {
	Logger *slog.Logger
	// Evaluator defaults to a displacement evaluator.
	Evaluator robot.Evaluator
	// Reporters receive reports after the log reporter.
	Reporters   []robot.Reporter
	Checkpoints control.CheckpointStore
	// CheckpointName keys the correction weights. Defaults to the robot name.
	CheckpointName string
	// Seed is used when the learner configures none.
	Seed int64
}

// Brain is an assembled control strategy. Controller is the live controller
// at assembly time and is nil when the configuration produced none.
type Brain struct {
	Controller robot.Controller
	Learner    robot.Learner
	Evaluator  robot.Evaluator
	Reporter   robot.Reporter

	ControllerKind ControllerKind
	LearnerKind    LearnerKind

	closers []func(context.Context) error
}

func (b *Brain) Components() sim.Components {
	return sim.Components{Evaluator: b.Evaluator, Reporter: b.Reporter, Learner: b.Learner}
}

// Close runs the shutdown hooks, such as persisting correction weights.
func (b *Brain) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range b.closers {
		errs = append(errs, fn(ctx))
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Assemble builds the brain described by cfg. Construction runs controller,
// then wrapper, then learner.
func Assemble(ctx context.Context, cfg *config.Config, motors []robot.Motor, sensors []robot.Sensor, opts Options) (*Brain, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("robot", cfg.Name)

	b := &Brain{Evaluator: opts.Evaluator}
	if b.Evaluator == nil {
		b.Evaluator = evaluate.NewDisplacement()
	}
	reporters := append(evaluate.Aggregated{evaluate.NewLogReporter(log)}, opts.Reporters...)
	b.Reporter = reporters

	if cfg.Brain == nil {
		log.WarnContext(ctx, "no brain configured, robot stays uncontrolled")
		b.Learner = learn.NewOffline(nil)
		b.LearnerKind = Offline
		return b, nil
	}
	brain := cfg.Brain

	ck, err := ParseControllerKind(brain.Controller.Type)
	if err != nil {
		return nil, err
	}
	lk, err := ParseLearnerKind(brain.Learner.Type)
	if err != nil {
		return nil, err
	}
	b.ControllerKind, b.LearnerKind = ck, lk
	if lk == RLPower && ck != Spline {
		return nil, robot.Incompatible("learner", string(lk), string(ck))
	}

	seed := opts.Seed
	if brain.Learner.Attributes.Has("seed") {
		s, err := brain.Learner.Attributes.Int("seed")
		if err != nil {
			return nil, fmt.Errorf("learner: %w", err)
		}
		seed = int64(s)
	}
	rng := rand.New(rand.NewSource(seed))

	controller, err := newController(ck, brain.Controller.Attributes, motors, sensors, rng)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", ck, err)
	}
	if controller == nil {
		log.WarnContext(ctx, "controller produced no instance, cycles will skip actuation",
			"controller", ck, "motors", len(motors))
	}

	if brain.IMC.Flag("active") {
		model := opts.CheckpointName
		if model == "" {
			model = cfg.Name
		}
		wrapped, err := wrapIMC(ctx, controller, model, brain.IMC, motors, opts.Checkpoints, log)
		if err != nil {
			return nil, fmt.Errorf("imc: %w", err)
		}
		if wrapped != nil {
			controller = wrapped
			b.closers = append(b.closers, wrapped.Close)
		}
	}

	learner, err := newLearner(lk, ck, brain.Learner.Attributes, controller, b, cfg.Name, rng, log)
	if err != nil {
		return nil, fmt.Errorf("learner %s: %w", lk, err)
	}
	b.Learner = learner
	b.Controller = learner.Controller()

	log.InfoContext(ctx, "brain assembled", "controller", ck, "learner", lk,
		"imc", brain.IMC.Flag("active"), "motors", len(motors), "sensors", len(sensors))
	return b, nil
}

func newController(kind ControllerKind, attrs config.Attributes, motors []robot.Motor, sensors []robot.Sensor, rng *rand.Rand) (robot.Controller, error) {
	switch kind {
	case ANN:
		return control.NewNeuralNetwork(motors, sensors, attrs, rng)
	case Spline:
		if len(motors) == 0 {
			return nil, nil
		}
		return control.NewSpline(motors, attrs, rng)
	case CPG:
		return control.NewCPG(motors, attrs, nil)
	case CPPNCPG:
		hidden, err := attrs.IntOr("cppn_hidden", defaultCPPNHidden)
		if err != nil {
			return nil, err
		}
		return control.NewCPG(motors, attrs, control.NewCPPN(hidden, rng))
	}
	return nil, robot.Unsupported("controller", string(kind))
}

func wrapIMC(ctx context.Context, base robot.Controller, model string, attrs config.Attributes, motors []robot.Motor, store control.CheckpointStore, log *slog.Logger) (*control.IMC, error) {
	p := control.IMCParams{
		RestoreCheckpoint: attrs.Flag("restore_checkpoint"),
		SaveCheckpoint:    attrs.Flag("save_checkpoint"),
		ModelName:         model,
	}
	var err error
	if p.LearningRate, err = attrs.Float("learning_rate"); err != nil {
		return nil, err
	}
	if p.Beta1, err = attrs.Float("beta1"); err != nil {
		return nil, err
	}
	if p.Beta2, err = attrs.Float("beta2"); err != nil {
		return nil, err
	}
	if p.WeightDecay, err = attrs.Float("weight_decay"); err != nil {
		return nil, err
	}

	if base == nil {
		log.WarnContext(ctx, "imc requested without a controller, not wrapping")
		return nil, nil
	}
	if store == nil && (p.RestoreCheckpoint || p.SaveCheckpoint) {
		log.WarnContext(ctx, "imc checkpoints requested but no checkpoint store configured")
	}
	log.InfoContext(ctx, "imc wrapper",
		"learning_rate", p.LearningRate,
		"beta1", p.Beta1,
		"beta2", p.Beta2,
		"weight_decay", p.WeightDecay,
		"restore_checkpoint", p.RestoreCheckpoint,
		"save_checkpoint", p.SaveCheckpoint,
		"model", p.ModelName)

	imc, err := control.NewIMC(base, motors, p, store, log)
	if err != nil {
		return nil, err
	}
	if err := imc.Restore(ctx); err != nil {
		return nil, err
	}
	return imc, nil
}
