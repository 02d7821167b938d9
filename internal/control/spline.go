package control

import (
	"errors"
	"math"
	"math/rand"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
)

// Spline plays back one periodic, linearly interpolated curve per motor
// output. Its knots are the parameters a learner tunes.
type Spline struct {
	points  int
	period  float64
	outputs int
	knots   []float64
	out     []float64
}

func NewSpline(motors []robot.Motor, attrs config.Attributes, rng *rand.Rand) (*Spline, error) {
	points, err := attrs.IntOr("points", 5)
	if err != nil {
		return nil, err
	}
	if points < 2 {
		return nil, robot.NewConfigError("points", attrs["points"], errors.New("need at least 2 points"))
	}
	period, err := attrs.FloatOr("period", 1.0)
	if err != nil {
		return nil, err
	}
	if period <= 0 {
		return nil, robot.NewConfigError("period", attrs["period"], errors.New("must be positive"))
	}
	amplitude, err := attrs.FloatOr("init_amplitude", 0.5)
	if err != nil {
		return nil, err
	}

	s := &Spline{
		points:  points,
		period:  period,
		outputs: robot.TotalOutputs(motors),
	}
	s.knots = make([]float64, s.outputs*points)
	for i := range s.knots {
		s.knots[i] = amplitude * (2*rng.Float64() - 1)
	}
	s.out = make([]float64, s.outputs)
	return s, nil
}

// Value returns the curve of output o at time t.
func (s *Spline) Value(o int, t float64) float64 {
	pos := math.Mod(t, s.period) / s.period * float64(s.points)
	if pos < 0 {
		pos += float64(s.points)
	}
	i := int(pos) % s.points
	frac := pos - math.Floor(pos)
	curve := s.knots[o*s.points : (o+1)*s.points]
	return (1-frac)*curve[i] + frac*curve[(i+1)%s.points]
}

func (s *Spline) Update(motors []robot.Motor, sensors []robot.Sensor, t, dt float64) {
	for o := range s.out {
		s.out[o] = s.Value(o, t)
	}
	robot.WriteAll(motors, s.out, dt)
}

func (s *Spline) Parameters() []float64 {
	p := make([]float64, len(s.knots))
	copy(p, s.knots)
	return p
}

func (s *Spline) SetParameters(p []float64) {
	copy(s.knots, p)
}
