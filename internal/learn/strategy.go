package learn

import "math"

// Strategy is an ask/tell black-box optimizer that maximizes fitness.
type Strategy interface {
	Name() string
	// Ask returns the next candidate to evaluate.
	Ask() []float64
	// Tell reports the fitness of a candidate returned by Ask.
	Tell(x []float64, fitness float64)
	// Best returns the best candidate told so far.
	Best() ([]float64, float64)
}

// Search space bound for every parameter.
const bound = 1.0

func clip(x []float64) []float64 {
	for i, v := range x {
		x[i] = math.Max(-bound, math.Min(bound, v))
	}
	return x
}

type incumbent struct {
	x       []float64
	fitness float64
	set     bool
}

func (b *incumbent) offer(x []float64, f float64) {
	if b.set && f <= b.fitness {
		return
	}
	b.x = append(b.x[:0], x...)
	b.fitness = f
	b.set = true
}

func (b *incumbent) best() ([]float64, float64) {
	out := make([]float64, len(b.x))
	copy(out, b.x)
	return out, b.fitness
}
