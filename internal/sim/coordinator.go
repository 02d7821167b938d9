// Package sim schedules control cycles against the simulation clock.
//
// The engine calls [Coordinator.OnWorldUpdate] once per step. When a full
// period has passed since the last cycle (see [ShouldFire]), the coordinator
// hands the elapsed time and the delta since the last cycle to the evaluator,
// the reporter and the learner, in that order, and then actuates whatever
// controller the learner holds after optimizing.
package sim

import (
	"context"
	"log/slog"

	"github.com/san-kum/robocore/internal/robot"
)

// Components are the collaborators of a cycle. Any of them may be nil.
type Components struct {
	Evaluator robot.Evaluator
	Reporter  robot.Reporter
	Learner   robot.Learner
}

// CycleInfo describes one accepted cycle.
type CycleInfo struct {
	Time                 float64
	Elapsed              float64
	Delta                float64
	ControllerDispatched bool
}

// CycleObserver is notified after every accepted cycle.
type CycleObserver interface {
	OnCycle(ctx context.Context, info CycleInfo)
}

type Stats struct {
	Ticks             int
	Cycles            int
	SkippedController int
}

type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func WithObserver(o CycleObserver) Option {
	return func(c *Coordinator) { c.observers = append(c.observers, o) }
}

type Coordinator struct {
	period     float64
	initTime   float64
	lastUpdate float64
	motors     []robot.Motor
	sensors    []robot.Sensor
	brain      Components
	observers  []CycleObserver
	log        *slog.Logger
	stats      Stats
	warned     bool
}

// NewCoordinator starts the clock at initTime. period is fixed for the life
// of the coordinator.
func NewCoordinator(initTime, period float64, motors []robot.Motor, sensors []robot.Sensor, brain Components, opts ...Option) *Coordinator {
	c := &Coordinator{
		period:     period,
		initTime:   initTime,
		lastUpdate: initTime,
		motors:     motors,
		sensors:    sensors,
		brain:      brain,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Period() float64     { return c.period }
func (c *Coordinator) InitTime() float64   { return c.initTime }
func (c *Coordinator) LastUpdate() float64 { return c.lastUpdate }
func (c *Coordinator) Stats() Stats        { return c.stats }

// OnWorldUpdate runs one cycle if it is due and reports whether it did.
// Panics raised by collaborators propagate to the caller and leave the last
// update time untouched.
func (c *Coordinator) OnWorldUpdate(ctx context.Context, info robot.UpdateInfo) bool {
	c.stats.Ticks++
	now := info.SimTime
	delta := Since(now, c.lastUpdate)
	if !Due(delta, c.period) {
		return false
	}
	elapsed := Since(now, c.initTime)

	if c.brain.Evaluator != nil {
		c.brain.Evaluator.SimulationUpdate(info.Pose, elapsed, delta)
	}
	if c.brain.Reporter != nil {
		c.brain.Reporter.SimulationUpdate(info.Pose, elapsed, delta)
	}

	var controller robot.Controller
	if c.brain.Learner != nil {
		c.brain.Learner.Optimize(elapsed, delta)
		controller = c.brain.Learner.Controller()
	}

	dispatched := controller != nil
	if dispatched {
		controller.Update(c.motors, c.sensors, elapsed, delta)
	} else {
		c.stats.SkippedController++
		if !c.warned {
			c.log.WarnContext(ctx, "no active controller, skipping actuation", "sim_time", now)
			c.warned = true
		}
	}

	c.lastUpdate = now
	c.stats.Cycles++

	cycle := CycleInfo{Time: now, Elapsed: elapsed, Delta: delta, ControllerDispatched: dispatched}
	for _, o := range c.observers {
		o.OnCycle(ctx, cycle)
	}
	return true
}
