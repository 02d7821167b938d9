// Package experiment runs one configured robot from start to finish on the
// headless world engine.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/robocore/internal/assembly"
	"github.com/san-kum/robocore/internal/battery"
	"github.com/san-kum/robocore/internal/bus"
	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/control"
	"github.com/san-kum/robocore/internal/evaluate"
	"github.com/san-kum/robocore/internal/hardware"
	"github.com/san-kum/robocore/internal/integrators"
	"github.com/san-kum/robocore/internal/metrics"
	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/sim"
	"github.com/san-kum/robocore/internal/world"
)

type Options struct {
	Logger *slog.Logger
	// Registerer receives the robot's metrics. Nil disables metrics.
	Registerer  prometheus.Registerer
	Checkpoints control.CheckpointStore
	// CheckpointName keys the correction weights. Defaults to the robot name.
	CheckpointName string
	Reporters      []robot.Reporter
	// Requests, when set, is served by the robot's battery responder, which
	// answers on Responses.
	Requests  *bus.Topic[battery.Request]
	Responses *bus.Topic[battery.Response]
}

type Result struct {
	Steps         int
	FinalTime     float64
	FinalPose     robot.Pose
	Stats         sim.Stats
	Evaluations   []robot.EvaluationReport
	Trajectory    []robot.Pose
	BestFitness   float64
	ControlEffort float64
	Errors        []error
}

// Experiment owns everything one robot needs to run: body, devices, brain,
// coordinator and battery.
type Experiment struct {
	cfg         *config.Config
	log         *slog.Logger
	engine      *world.Engine
	brain       *assembly.Brain
	coordinator *sim.Coordinator
	battery     *battery.Store
	recorder    *evaluate.Recorder
	effort      *metrics.ControlEffort
	teardown    []func()
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	integ, err := integrators.New(cfg.Simulation.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", robot.ErrConfiguration, err)
	}

	body := world.NewBody(hardware.BodyJoints(cfg.Brain), world.DefaultBodyParams())
	mf := hardware.NewMotorFactory(body)
	motors, err := hardware.LoadActuators(mf, cfg.Brain)
	if err != nil {
		return nil, err
	}
	sensors, err := hardware.LoadSensors(hardware.NewSensorFactory(body, mf), cfg.Brain)
	if err != nil {
		return nil, err
	}

	var level *float64
	if v, ok := cfg.InitialBatteryLevel(); ok {
		level = &v
	}
	e := &Experiment{
		cfg:      cfg,
		log:      log,
		engine:   world.NewEngine(body, integ, log),
		battery:  battery.NewStore(level),
		recorder: evaluate.NewRecorder(),
	}

	reporters := append([]robot.Reporter{e.recorder}, opts.Reporters...)
	var observers []sim.Option
	if opts.Registerer != nil {
		collector := metrics.NewCollector(opts.Registerer, cfg.Name)
		collector.WatchBattery(e.battery.Level)
		reporters = append(reporters, collector)
		observers = append(observers, sim.WithObserver(collector))
		e.effort = collector.Effort()
	} else {
		e.effort = metrics.NewControlEffort()
	}
	motors = metrics.InstrumentMotors(motors, e.effort)

	e.brain, err = assembly.Assemble(ctx, cfg, motors, sensors, assembly.Options{
		Logger:         log,
		Reporters:      reporters,
		Checkpoints:    opts.Checkpoints,
		CheckpointName: opts.CheckpointName,
		Seed:           cfg.Simulation.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble %q: %w", cfg.Name, err)
	}

	e.coordinator = sim.NewCoordinator(e.engine.SimTime(), cfg.Period(), motors, sensors,
		e.brain.Components(), append(observers, sim.WithLogger(log))...)
	e.teardown = append(e.teardown, e.engine.ConnectWorldUpdateBegin(func(ctx context.Context, info robot.UpdateInfo) {
		e.coordinator.OnWorldUpdate(ctx, info)
	}))

	if opts.Requests != nil && opts.Responses != nil {
		responder := battery.NewResponder(cfg.Identity(), e.battery, opts.Responses, log)
		e.teardown = append(e.teardown, responder.Attach(opts.Requests))
	}
	return e, nil
}

func (e *Experiment) Brain() *assembly.Brain { return e.brain }

func (e *Experiment) Battery() *battery.Store { return e.battery }

func (e *Experiment) Coordinator() *sim.Coordinator { return e.coordinator }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	res, err := e.engine.Run(ctx, world.RunConfig{
		Dt:       e.cfg.Simulation.Dt,
		Duration: e.cfg.Simulation.Duration,
	})
	if res == nil {
		return nil, err
	}

	out := &Result{
		Steps:         res.StepsTaken,
		FinalTime:     res.FinalTime,
		FinalPose:     res.FinalPose,
		Stats:         e.coordinator.Stats(),
		Evaluations:   e.recorder.Reports(),
		Trajectory:    e.recorder.Poses(),
		ControlEffort: e.effort.Value(),
		Errors:        res.Errors,
	}
	for i, r := range out.Evaluations {
		if i == 0 || r.Fitness > out.BestFitness {
			out.BestFitness = r.Fitness
		}
	}
	return out, err
}

// RunOnce builds the robot, runs it and closes it. The close error, such as a
// failed checkpoint save, is joined to the run error. Closing ignores ctx
// cancellation so a cancelled run still persists its state.
func RunOnce(ctx context.Context, cfg *config.Config, opts Options) (res *Result, err error) {
	exp, err := New(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, exp.Close(context.WithoutCancel(ctx)))
	}()
	return exp.Run(ctx)
}

// Close detaches the robot from the engine and the bus, then runs the
// brain's shutdown hooks.
func (e *Experiment) Close(ctx context.Context) error {
	for _, fn := range e.teardown {
		fn()
	}
	e.teardown = nil
	if e.brain == nil {
		return nil
	}
	if err := e.brain.Close(ctx); err != nil {
		return fmt.Errorf("close %q: %w", e.cfg.Name, err)
	}
	return nil
}
