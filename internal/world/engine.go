package world

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/san-kum/robocore/internal/integrators"
	"github.com/san-kum/robocore/internal/robot"
)

// UpdateHandler is called at the beginning of every engine step.
type UpdateHandler func(ctx context.Context, info robot.UpdateInfo)

type RunConfig struct {
	Dt       float64
	Duration float64
}

type Result struct {
	StepsTaken int
	FinalTime  float64
	FinalPose  robot.Pose
	Errors     []error
}

// Engine steps a Body and notifies world update handlers, in the order they
// connected, before every step.
type Engine struct {
	body       *Body
	integrator integrators.Integrator
	log        *slog.Logger

	mu       sync.Mutex
	handlers []handlerEntry
	nextID   int
	clock    time.Duration
}

type handlerEntry struct {
	id int
	fn UpdateHandler
}

func NewEngine(body *Body, integrator integrators.Integrator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		body:       body,
		integrator: integrator,
		log:        logger,
	}
}

func (e *Engine) Body() *Body { return e.body }

// SimTime is the engine clock in seconds. The clock itself counts whole
// nanoseconds.
func (e *Engine) SimTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Seconds()
}

// ConnectWorldUpdateBegin registers fn and returns a function that removes it.
func (e *Engine) ConnectWorldUpdateBegin(fn UpdateHandler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.handlers = append(e.handlers, handlerEntry{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, h := range e.handlers {
			if h.id == id {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	tick := time.Duration(math.Round(cfg.Dt * float64(time.Second)))
	result := &Result{Errors: make([]error, 0)}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			e.finish(result)
			return result, ctx.Err()
		default:
		}

		now := e.SimTime()
		info := robot.UpdateInfo{SimTime: now, Pose: e.body.Pose()}
		if err := e.emit(ctx, i, info); err != nil {
			e.log.ErrorContext(ctx, "world update failed",
				"step", i, "sim_time", now, "error", err)
			result.Errors = append(result.Errors, err)
			e.finish(result)
			return result, err
		}

		e.body.Step(e.integrator, now, cfg.Dt)

		e.mu.Lock()
		e.clock += tick
		e.mu.Unlock()
		result.StepsTaken++
	}

	e.finish(result)
	return result, nil
}

func (e *Engine) finish(result *Result) {
	result.FinalTime = e.SimTime()
	result.FinalPose = e.body.Pose()
}

// emit runs the handlers and turns a panic in any of them into a StepError.
func (e *Engine) emit(ctx context.Context, step int, info robot.UpdateInfo) (err error) {
	e.mu.Lock()
	handlers := make([]handlerEntry, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = &StepError{Step: step, Time: info.SimTime, Cause: r}
		}
	}()

	for _, h := range handlers {
		h.fn(ctx, info)
	}
	return nil
}

func validateRunConfig(cfg RunConfig) error {
	if cfg.Dt*float64(time.Second) < 1 {
		return fmt.Errorf("dt must be at least 1ns, got %g", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
