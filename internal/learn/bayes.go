package learn

import (
	"math"
	"math/rand"
)

type BayesOptions struct {
	InitSamples int
	// Kappa weighs exploration in the upper confidence bound.
	Kappa       float64
	LengthScale float64
	Noise       float64
	Candidates  int
}

func DefaultBayesOptions() BayesOptions {
	return BayesOptions{
		InitSamples: 10,
		Kappa:       2.0,
		LengthScale: 0.5,
		Noise:       1e-4,
		Candidates:  512,
	}
}

// Bayes is Gaussian-process Bayesian optimization with an RBF kernel and an
// upper confidence bound acquisition maximized over random candidates.
type Bayes struct {
	dim  int
	x0   []float64
	opts BayesOptions
	rng  *rand.Rand

	xs   [][]float64
	ys   []float64
	best incumbent
}

func NewBayes(x0 []float64, opts BayesOptions, rng *rand.Rand) *Bayes {
	def := DefaultBayesOptions()
	if opts.InitSamples < 1 {
		opts.InitSamples = def.InitSamples
	}
	if opts.Kappa <= 0 {
		opts.Kappa = def.Kappa
	}
	if opts.LengthScale <= 0 {
		opts.LengthScale = def.LengthScale
	}
	if opts.Noise <= 0 {
		opts.Noise = def.Noise
	}
	if opts.Candidates < 1 {
		opts.Candidates = def.Candidates
	}
	return &Bayes{
		dim:  len(x0),
		x0:   clip(append([]float64(nil), x0...)),
		opts: opts,
		rng:  rng,
	}
}

func (b *Bayes) Name() string { return "bo" }

func (b *Bayes) Ask() []float64 {
	switch {
	case len(b.xs) == 0:
		return append([]float64(nil), b.x0...)
	case len(b.xs) < b.opts.InitSamples:
		return b.uniform()
	}

	gp, ok := b.fit()
	if !ok {
		return b.uniform()
	}
	incumbentX, _ := b.best.best()
	var (
		pick  []float64
		score = math.Inf(-1)
	)
	for i := 0; i < b.opts.Candidates; i++ {
		var c []float64
		if i%2 == 0 {
			c = b.uniform()
		} else {
			c = b.perturb(incumbentX, 0.1)
		}
		mu, sd := gp.predict(c)
		if s := mu + b.opts.Kappa*sd; s > score {
			pick, score = c, s
		}
	}
	if pick == nil {
		return b.uniform()
	}
	return pick
}

func (b *Bayes) Tell(x []float64, fitness float64) {
	b.xs = append(b.xs, append([]float64(nil), x...))
	b.ys = append(b.ys, fitness)
	b.best.offer(x, fitness)
}

func (b *Bayes) Best() ([]float64, float64) { return b.best.best() }

func (b *Bayes) uniform() []float64 {
	x := make([]float64, b.dim)
	for i := range x {
		x[i] = bound * (2*b.rng.Float64() - 1)
	}
	return x
}

func (b *Bayes) perturb(x []float64, sigma float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v + sigma*b.rng.NormFloat64()
	}
	return clip(out)
}

type gaussianProcess struct {
	xs    [][]float64
	chol  [][]float64
	alpha []float64
	mean  float64
	scale float64
	ls    float64
}

func (b *Bayes) fit() (*gaussianProcess, bool) {
	n := len(b.xs)
	mean := 0.0
	for _, y := range b.ys {
		mean += y
	}
	mean /= float64(n)
	variance := 0.0
	for _, y := range b.ys {
		variance += (y - mean) * (y - mean)
	}
	scale := math.Sqrt(variance / float64(n))
	if scale < 1e-12 {
		scale = 1
	}

	gp := &gaussianProcess{xs: b.xs, mean: mean, scale: scale, ls: b.opts.LengthScale}
	k := make([][]float64, n)
	for i := range k {
		k[i] = make([]float64, n)
		for j := range k[i] {
			k[i][j] = gp.kernel(b.xs[i], b.xs[j])
		}
		k[i][i] += b.opts.Noise
	}
	l, ok := cholesky(k)
	if !ok {
		return nil, false
	}
	gp.chol = l

	y := make([]float64, n)
	for i, v := range b.ys {
		y[i] = (v - mean) / scale
	}
	gp.alpha = backSubstitute(l, forwardSubstitute(l, y))
	return gp, true
}

func (gp *gaussianProcess) kernel(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		d += (a[i] - b[i]) * (a[i] - b[i])
	}
	return math.Exp(-d / (2 * gp.ls * gp.ls))
}

// predict returns the posterior mean and standard deviation in fitness units.
func (gp *gaussianProcess) predict(x []float64) (float64, float64) {
	ks := make([]float64, len(gp.xs))
	for i, xi := range gp.xs {
		ks[i] = gp.kernel(x, xi)
	}
	mu := 0.0
	for i := range ks {
		mu += ks[i] * gp.alpha[i]
	}
	v := forwardSubstitute(gp.chol, ks)
	variance := 1.0
	for _, vi := range v {
		variance -= vi * vi
	}
	return gp.mean + gp.scale*mu, gp.scale * math.Sqrt(math.Max(variance, 0))
}

// cholesky returns the lower triangular L with L*L^T = a.
func cholesky(a [][]float64) ([][]float64, bool) {
	n := len(a)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, false
				}
				l[i][i] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, true
}

// forwardSubstitute solves L*x = b.
func forwardSubstitute(l [][]float64, b []float64) []float64 {
	x := make([]float64, len(b))
	for i := range b {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x
}

// backSubstitute solves L^T*x = b.
func backSubstitute(l [][]float64, b []float64) []float64 {
	n := len(b)
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x
}
