package learn

import (
	"math"
	"math/rand"
	"sort"
)

const (
	initialSigma  = 0.5
	minSigma      = 1e-3
	stagnationGen = 10
)

// NIPES is an evolution strategy with weighted recombination, cumulative
// step-size adaptation and restarts that double the population each time
// the search stagnates.
type NIPES struct {
	dim    int
	lambda int
	mu     int
	rng    *rand.Rand

	mean    []float64
	sigma   float64
	path    []float64
	weights []float64
	muEff   float64
	cs, ds  float64
	chiN    float64

	gen      []sample
	next     int
	told     []scored
	genBest  float64
	stalled  int
	restarts int
	best     incumbent
}

type sample struct {
	x, z []float64
}

type scored struct {
	sample
	fitness float64
}

func NewNIPES(x0 []float64, population int, rng *rand.Rand) *NIPES {
	if population < 2 {
		population = 2
	}
	n := &NIPES{
		dim:   len(x0),
		rng:   rng,
		mean:  clip(append([]float64(nil), x0...)),
		sigma: initialSigma,
	}
	n.resize(population)
	return n
}

func (n *NIPES) Name() string { return "nipes" }

func (n *NIPES) Restarts() int { return n.restarts }

func (n *NIPES) Population() int { return n.lambda }

func (n *NIPES) resize(lambda int) {
	n.lambda = lambda
	n.mu = lambda / 2
	if n.mu < 1 {
		n.mu = 1
	}
	n.weights = make([]float64, n.mu)
	sum, sq := 0.0, 0.0
	for i := range n.weights {
		n.weights[i] = math.Log(float64(n.mu)+0.5) - math.Log(float64(i+1))
		sum += n.weights[i]
	}
	for i := range n.weights {
		n.weights[i] /= sum
		sq += n.weights[i] * n.weights[i]
	}
	n.muEff = 1 / sq
	d := float64(n.dim)
	n.cs = (n.muEff + 2) / (d + n.muEff + 5)
	n.ds = 1 + n.cs + 2*math.Max(0, math.Sqrt((n.muEff-1)/(d+1))-1)
	n.chiN = math.Sqrt(d) * (1 - 1/(4*d) + 1/(21*d*d))
	n.path = make([]float64, n.dim)
	n.gen = nil
	n.told = nil
	n.next = 0
	n.genBest = math.Inf(-1)
	n.stalled = 0
}

func (n *NIPES) Ask() []float64 {
	if n.next >= len(n.gen) {
		n.sampleGeneration()
	}
	s := n.gen[n.next]
	n.next++
	return append([]float64(nil), s.x...)
}

func (n *NIPES) sampleGeneration() {
	n.gen = make([]sample, n.lambda)
	n.next = 0
	n.told = n.told[:0]
	for i := range n.gen {
		z := make([]float64, n.dim)
		x := make([]float64, n.dim)
		for j := range z {
			z[j] = n.rng.NormFloat64()
			x[j] = n.mean[j] + n.sigma*z[j]
		}
		n.gen[i] = sample{x: clip(x), z: z}
	}
}

func (n *NIPES) Tell(x []float64, fitness float64) {
	n.best.offer(x, fitness)
	if len(n.told) >= len(n.gen) {
		return
	}
	n.told = append(n.told, scored{sample: n.gen[len(n.told)], fitness: fitness})
	if len(n.told) == n.lambda {
		n.evolve()
	}
}

func (n *NIPES) Best() ([]float64, float64) { return n.best.best() }

func (n *NIPES) evolve() {
	sort.SliceStable(n.told, func(i, j int) bool {
		return n.told[i].fitness > n.told[j].fitness
	})

	step := make([]float64, n.dim)
	for i := 0; i < n.mu; i++ {
		for j := range step {
			step[j] += n.weights[i] * n.told[i].z[j]
		}
	}
	norm := 0.0
	c := math.Sqrt(n.cs * (2 - n.cs) * n.muEff)
	for j := range n.mean {
		n.mean[j] += n.sigma * step[j]
		n.path[j] = (1-n.cs)*n.path[j] + c*step[j]
		norm += n.path[j] * n.path[j]
	}
	clip(n.mean)
	n.sigma *= math.Exp((n.cs / n.ds) * (math.Sqrt(norm)/n.chiN - 1))

	if top := n.told[0].fitness; top > n.genBest {
		n.genBest = top
		n.stalled = 0
	} else {
		n.stalled++
	}
	n.gen = nil
	n.next = 0

	if n.sigma < minSigma || n.stalled >= stagnationGen {
		n.restart()
	}
}

func (n *NIPES) restart() {
	n.restarts++
	for j := range n.mean {
		n.mean[j] = bound * (2*n.rng.Float64() - 1)
	}
	n.sigma = initialSigma
	n.resize(2 * n.lambda)
}
