package learn

import (
	"log/slog"

	"github.com/san-kum/robocore/internal/robot"
)

type Options struct {
	RobotID string
	// EvaluationRate is the length of one evaluation window in seconds.
	EvaluationRate float64
	MaxEvaluations int
	Verbose        bool
	Logger         *slog.Logger
}

// ParametricController is a controller a learner can tune.
type ParametricController interface {
	robot.Controller
	robot.Parametric
}

// Online scores one candidate per evaluation window and feeds the result to
// its strategy.
type Online struct {
	controller ParametricController
	evaluator  robot.Evaluator
	reporter   robot.Reporter
	strategy   Strategy
	opts       Options
	log        *slog.Logger

	started   bool
	done      bool
	evalStart float64
	evals     int
	current   []float64
}

// NewOnline builds a learner around c. A nil controller makes every Optimize
// call a no-op and never counts an evaluation.
func NewOnline(c ParametricController, evaluator robot.Evaluator, reporter robot.Reporter, strategy Strategy, opts Options) *Online {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Online{
		controller: c,
		evaluator:  evaluator,
		reporter:   reporter,
		strategy:   strategy,
		opts:       opts,
		log:        opts.Logger.With("learner", strategy.Name(), "robot", opts.RobotID),
	}
}

func (l *Online) Controller() robot.Controller {
	if l.controller == nil {
		return nil
	}
	return l.controller
}

func (l *Online) Evaluations() int { return l.evals }

func (l *Online) Done() bool { return l.done }

func (l *Online) MaxEvaluations() int { return l.opts.MaxEvaluations }

func (l *Online) EvaluationRate() float64 { return l.opts.EvaluationRate }

func (l *Online) Strategy() Strategy { return l.strategy }

func (l *Online) Best() ([]float64, float64) { return l.strategy.Best() }

func (l *Online) Optimize(t, dt float64) {
	if l.controller == nil || l.done {
		return
	}
	if !l.started {
		l.started = true
		l.load(t)
		return
	}
	if t-l.evalStart < l.opts.EvaluationRate {
		return
	}

	fitness := l.evaluator.Fitness()
	l.evals++
	if l.reporter != nil {
		l.reporter.Report(robot.EvaluationReport{
			RobotID:    l.opts.RobotID,
			EvalID:     l.evals,
			Fitness:    fitness,
			Parameters: l.current,
			Time:       t,
		})
	}
	l.strategy.Tell(l.current, fitness)
	if l.opts.Verbose {
		l.log.Info("evaluation", "eval", l.evals, "fitness", fitness, "sim_time", t)
	}

	if l.evals >= l.opts.MaxEvaluations {
		best, f := l.strategy.Best()
		l.controller.SetParameters(best)
		l.done = true
		l.log.Info("learning finished", "evaluations", l.evals, "best_fitness", f)
		return
	}
	l.load(t)
}

func (l *Online) load(t float64) {
	l.current = l.strategy.Ask()
	l.controller.SetParameters(l.current)
	l.evaluator.Reset()
	l.evalStart = t
}
