// Package metrics exports control-loop metrics to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/sim"
)

const namespace = "robocore"

// Collector counts control cycles and evaluations of one robot. It is both
// a cycle observer and a reporter.
type Collector struct {
	cycles      prometheus.Counter
	skipped     prometheus.Counter
	cycleDelta  prometheus.Histogram
	simTime     prometheus.Gauge
	evaluations prometheus.Counter
	fitness     prometheus.Gauge
	bestFitness prometheus.Gauge
	effort      *ControlEffort

	reg    prometheus.Registerer
	labels prometheus.Labels
	best   float64
	seen   bool
}

func NewCollector(reg prometheus.Registerer, robotID string) *Collector {
	labels := prometheus.Labels{"robot": robotID}
	factory := promauto.With(reg)
	c := &Collector{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "control_cycles_total",
			Help:        "Control cycles accepted by the tick gate.",
			ConstLabels: labels,
		}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "control_cycles_skipped_total",
			Help:        "Control cycles that had no controller to actuate.",
			ConstLabels: labels,
		}),
		cycleDelta: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "control_cycle_delta_seconds",
			Help:        "Simulation time between accepted control cycles.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		simTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "simulation_time_seconds",
			Help:        "Simulation time of the last accepted cycle.",
			ConstLabels: labels,
		}),
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "evaluations_total",
			Help:        "Learner evaluations reported.",
			ConstLabels: labels,
		}),
		fitness: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "fitness",
			Help:        "Fitness of the last evaluation.",
			ConstLabels: labels,
		}),
		bestFitness: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "fitness_best",
			Help:        "Best fitness reported so far.",
			ConstLabels: labels,
		}),
		effort: NewControlEffort(),
		reg:    reg,
		labels: labels,
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "control_effort",
		Help:        "Mean absolute motor command.",
		ConstLabels: labels,
	}, c.effort.Value)
	return c
}

func (c *Collector) Effort() *ControlEffort { return c.effort }

// WatchBattery exports level as a gauge read at scrape time.
func (c *Collector) WatchBattery(level func() float64) {
	promauto.With(c.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "battery_level",
		Help:        "Battery level of the robot.",
		ConstLabels: c.labels,
	}, level)
}

func (c *Collector) OnCycle(_ context.Context, info sim.CycleInfo) {
	c.cycles.Inc()
	if !info.ControllerDispatched {
		c.skipped.Inc()
	}
	c.cycleDelta.Observe(info.Delta)
	c.simTime.Set(info.Time)
}

func (c *Collector) SimulationUpdate(pose robot.Pose, t, dt float64) {}

func (c *Collector) Report(rep robot.EvaluationReport) {
	c.evaluations.Inc()
	c.fitness.Set(rep.Fitness)
	if !c.seen || rep.Fitness > c.best {
		c.best = rep.Fitness
		c.seen = true
		c.bestFitness.Set(rep.Fitness)
	}
}
