package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/robocore/internal/battery"
	"github.com/san-kum/robocore/internal/bus"
	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type checkpoints struct {
	mu       sync.Mutex
	failSave error
	saved    map[string][]float64
}

func (c *checkpoints) Load(context.Context, string) ([]float64, bool, error) {
	return nil, false, nil
}

func (c *checkpoints) Save(_ context.Context, name string, w []float64) error {
	if c.failSave != nil {
		return c.failSave
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saved == nil {
		c.saved = make(map[string][]float64)
	}
	c.saved[name] = w
	return nil
}

func (c *checkpoints) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for name := range c.saved {
		out = append(out, name)
	}
	return out
}

func short(name string, duration float64) *config.Config {
	cfg := config.GetPreset(name)
	cfg.Simulation.Duration = duration
	return cfg
}

var _ = Describe("Experiment", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should run cycles at the configured rate", func() {
		exp, err := New(ctx, short("spider-offline", 2), Options{Logger: quiet})
		Expect(err).NotTo(HaveOccurred())
		defer exp.Close(ctx)

		res, err := exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(400))
		Expect(res.Stats.Ticks).To(Equal(400))
		Expect(res.Stats.Cycles).To(Equal(15))
		Expect(res.Stats.SkippedController).To(BeZero())
		Expect(res.ControlEffort).To(BeNumerically(">", 0))
		Expect(res.Trajectory).To(HaveLen(res.Stats.Cycles))
	})

	It("should keep the configured rate on a fine timestep", func() {
		cfg := short("spider-offline", 2)
		rate := 50.0
		cfg.UpdateRate = &rate
		cfg.Simulation.Dt = 0.001

		res, err := RunOnce(ctx, cfg, Options{Logger: quiet})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(2000))
		Expect(res.Stats.Cycles).To(Equal(99))
	})

	It("should evaluate candidates while learning", func() {
		cfg := short("spider-nipes", 10)
		cfg.Brain.Learner.Attributes["evaluation_rate"] = "2"
		cfg.Brain.Learner.Attributes["verbose"] = "0"

		exp, err := New(ctx, cfg, Options{Logger: quiet})
		Expect(err).NotTo(HaveOccurred())
		defer exp.Close(ctx)

		res, err := exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(res.Evaluations)).To(BeNumerically(">=", 3))
		for i, r := range res.Evaluations {
			Expect(r.EvalID).To(Equal(i + 1))
			Expect(r.RobotID).To(Equal("spider"))
			Expect(r.Fitness).To(BeNumerically("<=", res.BestFitness))
		}
	})

	It("should export metrics when a registry is given", func() {
		reg := prometheus.NewRegistry()
		exp, err := New(ctx, short("worm-spline", 1), Options{Logger: quiet, Registerer: reg})
		Expect(err).NotTo(HaveOccurred())
		defer exp.Close(ctx)

		_, err = exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		n, err := testutil.GatherAndCount(reg, "robocore_control_cycles_total", "robocore_battery_level")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("should answer battery requests addressed to the robot", func() {
		requests := bus.NewTopic[battery.Request](battery.RequestTopic)
		responses := bus.NewTopic[battery.Response](battery.ResponseTopic)
		var got []battery.Response
		responses.Subscribe(func(_ context.Context, r battery.Response) error {
			got = append(got, r)
			return nil
		})

		exp, err := New(ctx, short("spider-offline", 1), Options{
			Logger:    quiet,
			Requests:  requests,
			Responses: responses,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(requests.Publish(ctx, battery.Request{ID: "1", Data: "spider", Request: battery.GetLevel})).To(Succeed())
		Expect(requests.Publish(ctx, battery.Request{ID: "2", Data: "default::spider", Request: battery.SetLevel, DblData: 0.25})).To(Succeed())
		Expect(got).To(HaveLen(2))
		Expect(got[0].Response).To(Equal("1"))
		Expect(exp.Battery().Level()).To(Equal(0.25))

		Expect(exp.Close(ctx)).To(Succeed())
		Expect(requests.Subscribers()).To(BeZero())
	})

	It("should refuse an unknown integrator", func() {
		cfg := short("spider-offline", 1)
		cfg.Simulation.Integrator = "leapfrog"

		_, err := New(ctx, cfg, Options{Logger: quiet})
		Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
	})

	It("should surface assembly failures", func() {
		cfg := short("spider-offline", 1)
		cfg.Brain.Controller.Type = "unknown-type"

		_, err := New(ctx, cfg, Options{Logger: quiet})
		Expect(errors.Is(err, robot.ErrUnsupportedVariant)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("unknown-type"))
	})

	It("should stop when the context is cancelled", func() {
		exp, err := New(ctx, short("spider-offline", 5), Options{Logger: quiet})
		Expect(err).NotTo(HaveOccurred())
		defer exp.Close(ctx)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := exp.Run(cctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Steps).To(BeZero())
	})
})

var _ = Describe("Checkpoint failures", func() {
	It("should surface a failed save when the robot closes", func() {
		ctx := context.Background()
		store := &checkpoints{failSave: errors.New("disk full")}
		exp, err := New(ctx, short("gecko-de", 1), Options{Logger: quiet, Checkpoints: store})
		Expect(err).NotTo(HaveOccurred())

		_, err = exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.Close(ctx)).To(MatchError(ContainSubstring("disk full")))
	})

	It("should return the save error from a full run", func() {
		store := &checkpoints{failSave: errors.New("disk full")}
		res, err := RunOnce(context.Background(), short("gecko-de", 1), Options{Logger: quiet, Checkpoints: store})

		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(res).NotTo(BeNil())
		Expect(res.Steps).To(Equal(200))
	})

	It("should still save after the run is cancelled", func() {
		store := &checkpoints{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := RunOnce(ctx, short("gecko-de", 1), Options{Logger: quiet, Checkpoints: store})
		Expect(err).To(MatchError(context.Canceled))
		Expect(store.names()).To(ConsistOf("gecko"))
	})

	It("should fail an ensemble whose saves fail", func() {
		store := &checkpoints{failSave: errors.New("disk full")}
		e := NewEnsemble(short("gecko-de", 1), 2, 1, Options{Logger: quiet, Checkpoints: store})

		_, err := e.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("disk full")))
	})
})

var _ = Describe("Ensemble", func() {
	It("should save each run under its own checkpoint name", func() {
		store := &checkpoints{}
		e := NewEnsemble(short("gecko-de", 1), 3, 4, Options{Logger: quiet, Checkpoints: store})

		_, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(store.names()).To(ConsistOf("gecko/seed-4", "gecko/seed-5", "gecko/seed-6"))
		Expect(e.CheckpointName(4)).To(Equal("gecko/seed-4"))
	})

	It("should run one robot per seed", func() {
		reg := prometheus.NewRegistry()
		e := NewEnsemble(short("snake-bo", 1), 3, 10, Options{Logger: quiet, Registerer: reg})

		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r).NotTo(BeNil())
			Expect(r.Steps).To(Equal(200))
		}

		n, err := testutil.GatherAndCount(reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})
})
