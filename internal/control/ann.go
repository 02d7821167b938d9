package control

import (
	"math"
	"math/rand"

	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/robot"
)

// clock inputs: sin, cos and a bias.
const clockInputs = 3

type NeuralNetwork struct {
	inputs  int
	outputs int
	freq    float64
	weights []float64

	in  []float64
	out []float64
}

func NewNeuralNetwork(motors []robot.Motor, sensors []robot.Sensor, attrs config.Attributes, rng *rand.Rand) (*NeuralNetwork, error) {
	freq, err := attrs.FloatOr("frequency", 1.0)
	if err != nil {
		return nil, err
	}
	bound, err := attrs.FloatOr("weight_range", 1.0)
	if err != nil {
		return nil, err
	}

	n := &NeuralNetwork{
		inputs:  robot.TotalInputs(sensors) + clockInputs,
		outputs: robot.TotalOutputs(motors),
		freq:    freq,
	}
	n.weights = make([]float64, n.inputs*n.outputs)
	for i := range n.weights {
		n.weights[i] = bound * (2*rng.Float64() - 1)
	}
	n.out = make([]float64, n.outputs)
	return n, nil
}

func (n *NeuralNetwork) Update(motors []robot.Motor, sensors []robot.Sensor, t, dt float64) {
	n.in = robot.ReadAll(sensors, n.in)
	phase := 2 * math.Pi * n.freq * t
	n.in = append(n.in, math.Sin(phase), math.Cos(phase), 1)

	cols := min(len(n.in), n.inputs)
	for o := 0; o < n.outputs; o++ {
		row := n.weights[o*n.inputs : (o+1)*n.inputs]
		sum := 0.0
		for i := 0; i < cols; i++ {
			sum += row[i] * n.in[i]
		}
		n.out[o] = math.Tanh(sum)
	}

	robot.WriteAll(motors, n.out, dt)
}

func (n *NeuralNetwork) Parameters() []float64 {
	p := make([]float64, len(n.weights))
	copy(p, n.weights)
	return p
}

func (n *NeuralNetwork) SetParameters(p []float64) {
	copy(n.weights, p)
}
