package experiment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/robocore/internal/config"
)

// Ensemble runs the same robot once per seed, concurrently. Runs do not
// export metrics or serve battery requests, and each keeps its correction
// weights under its own checkpoint name.
type Ensemble struct {
	cfg       *config.Config
	numRuns   int
	seedStart int64
	opts      Options
}

func NewEnsemble(cfg *config.Config, numRuns int, seedStart int64, opts Options) *Ensemble {
	opts.Registerer = nil
	opts.Requests, opts.Responses = nil, nil
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart, opts: opts}
}

// CheckpointName returns the checkpoint name of the run with the given seed.
func (e *Ensemble) CheckpointName(seed int64) string {
	base := e.opts.CheckpointName
	if base == "" {
		base = e.cfg.Name
	}
	return fmt.Sprintf("%s/seed-%d", base, seed)
}

// Run returns one result per seed, in seed order. The first failure cancels
// the remaining runs; every run is still closed.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		cfg := *e.cfg
		cfg.Simulation.Seed = e.seedStart + int64(i)
		opts := e.opts
		opts.CheckpointName = e.CheckpointName(cfg.Simulation.Seed)

		g.Go(func() error {
			var err error
			results[i], err = RunOnce(gctx, &cfg, opts)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
