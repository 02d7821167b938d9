package learn

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/robocore/internal/robot"
)

type DESubtype string

const (
	SubtypeDE    DESubtype = "de"
	SubtypeRevDE DESubtype = "revde"
	SubtypeDEx3  DESubtype = "dex3"
)

// ParseDESubtype accepts the textual subtype names.
func ParseDESubtype(s string) (DESubtype, error) {
	switch DESubtype(s) {
	case SubtypeDE, SubtypeRevDE, SubtypeDEx3:
		return DESubtype(s), nil
	default:
		return "", robot.Unsupported("de subtype", s)
	}
}

type DEOptions struct {
	Subtype    DESubtype
	CR         float64
	F          float64
	NParents   int
	Population int
}

// DifferentialEvolution evaluates a whole generation of trial vectors before
// selecting survivors.
//
//   - de: rand/1 mutation, binomial crossover, one-to-one selection.
//   - revde: reversible triplets y1=x1+F(x2-x3), y2=x2+F(x3-y1),
//     y3=x3+F(y1-y2), survivors are the best of parents and children.
//   - dex3: rand/3 mutation over seven parents, one-to-one selection.
type DifferentialEvolution struct {
	opts DEOptions
	dim  int
	rng  *rand.Rand

	pop     [][]float64
	fit     []float64
	pending [][]float64
	next    int
	scores  []float64
	seeded  bool
	gens    int
	best    incumbent
}

func NewDifferentialEvolution(x0 []float64, opts DEOptions, rng *rand.Rand) (*DifferentialEvolution, error) {
	if _, err := ParseDESubtype(string(opts.Subtype)); err != nil {
		return nil, err
	}
	if opts.Subtype == SubtypeDEx3 {
		opts.NParents = 7
	}
	if opts.NParents < 3 {
		return nil, robot.NewConfigError("n_parents", fmt.Sprint(opts.NParents), fmt.Errorf("need at least 3 parents"))
	}
	if opts.Population < 3 {
		return nil, robot.NewConfigError("population_size", fmt.Sprint(opts.Population), fmt.Errorf("need at least 3 individuals"))
	}
	d := &DifferentialEvolution{opts: opts, dim: len(x0), rng: rng}

	d.pending = make([][]float64, opts.Population)
	d.pending[0] = clip(append([]float64(nil), x0...))
	for i := 1; i < opts.Population; i++ {
		x := make([]float64, d.dim)
		for j := range x {
			x[j] = x0[j] + 0.5*(2*rng.Float64()-1)
		}
		d.pending[i] = clip(x)
	}
	return d, nil
}

func (d *DifferentialEvolution) Name() string { return "de/" + string(d.opts.Subtype) }

func (d *DifferentialEvolution) Parents() int { return d.opts.NParents }

func (d *DifferentialEvolution) Generations() int { return d.gens }

func (d *DifferentialEvolution) Ask() []float64 {
	if d.next >= len(d.pending) {
		d.breed()
	}
	x := d.pending[d.next]
	d.next++
	return append([]float64(nil), x...)
}

func (d *DifferentialEvolution) Tell(x []float64, fitness float64) {
	d.best.offer(x, fitness)
	if len(d.scores) >= len(d.pending) {
		return
	}
	d.scores = append(d.scores, fitness)
	if len(d.scores) < len(d.pending) {
		return
	}
	if !d.seeded {
		d.pop, d.fit = d.pending, d.scores
		d.seeded = true
	} else {
		d.survive()
		d.gens++
	}
	d.pending, d.scores, d.next = nil, nil, 0
}

func (d *DifferentialEvolution) Best() ([]float64, float64) { return d.best.best() }

func (d *DifferentialEvolution) breed() {
	n := d.opts.Population
	d.pending = make([][]float64, 0, n)
	d.next = 0
	switch d.opts.Subtype {
	case SubtypeRevDE:
		for len(d.pending) < n {
			p := d.parents(3, -1)
			y1 := d.combine(p[0], p[1], p[2])
			y2 := d.combine(p[1], p[2], y1)
			y3 := d.combine(p[2], y1, y2)
			for _, y := range [][]float64{y1, y2, y3} {
				if len(d.pending) < n {
					d.pending = append(d.pending, clip(d.crossover(p[0], y)))
				}
			}
		}
	default:
		for i := 0; i < n; i++ {
			p := d.parents(d.opts.NParents, i)
			v := append([]float64(nil), p[0]...)
			for k := 1; k+1 < len(p); k += 2 {
				for j := range v {
					v[j] += d.opts.F * (p[k][j] - p[k+1][j])
				}
			}
			d.pending = append(d.pending, clip(d.crossover(d.pop[i], v)))
		}
	}
}

func (d *DifferentialEvolution) combine(a, b, c []float64) []float64 {
	out := make([]float64, len(a))
	for j := range out {
		out[j] = a[j] + d.opts.F*(b[j]-c[j])
	}
	return out
}

func (d *DifferentialEvolution) crossover(target, mutant []float64) []float64 {
	out := append([]float64(nil), target...)
	forced := d.rng.Intn(len(out))
	for j := range out {
		if j == forced || d.rng.Float64() < d.opts.CR {
			out[j] = mutant[j]
		}
	}
	return out
}

// parents draws k members, distinct and different from skip while the
// population allows it.
func (d *DifferentialEvolution) parents(k, skip int) [][]float64 {
	idx := d.rng.Perm(len(d.pop))
	out := make([][]float64, 0, k)
	for _, i := range idx {
		if i != skip {
			out = append(out, d.pop[i])
		}
		if len(out) == k {
			return out
		}
	}
	for len(out) < k {
		out = append(out, d.pop[d.rng.Intn(len(d.pop))])
	}
	return out
}

func (d *DifferentialEvolution) survive() {
	if d.opts.Subtype == SubtypeRevDE {
		type member struct {
			x []float64
			f float64
		}
		all := make([]member, 0, len(d.pop)+len(d.pending))
		for i := range d.pop {
			all = append(all, member{d.pop[i], d.fit[i]})
		}
		for i := range d.pending {
			all = append(all, member{d.pending[i], d.scores[i]})
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].f > all[j].f })
		for i := range d.pop {
			d.pop[i], d.fit[i] = all[i].x, all[i].f
		}
		return
	}
	for i := range d.pop {
		if d.scores[i] >= d.fit[i] {
			d.pop[i], d.fit[i] = d.pending[i], d.scores[i]
		}
	}
}
