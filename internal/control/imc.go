package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/robocore/internal/robot"
)

// features per motor: tracking error, reference change and a bias.
const imcFeatures = 3

type IMCParams struct {
	LearningRate      float64
	Beta1             float64
	Beta2             float64
	WeightDecay       float64
	RestoreCheckpoint bool
	SaveCheckpoint    bool
	ModelName         string
}

// CheckpointStore persists the correction weights between runs.
type CheckpointStore interface {
	Load(ctx context.Context, name string) ([]float64, bool, error)
	Save(ctx context.Context, name string, weights []float64) error
}

// IMC wraps a controller with an adaptive correction. The inner controller
// writes references into capture motors; the wrapper then commands
//
//	u = r + theta . [e, r - r_prev, 1]
//
// per motor, where e is the tracking error of the previous command, and
// trains theta online with AdamW.
type IMC struct {
	inner   robot.Controller
	params  IMCParams
	store   CheckpointStore
	log     *slog.Logger
	capture []*captureMotor

	theta []float64
	m, v  []float64
	steps int

	prevRef  []float64
	prevFeat []float64
	hasPrev  bool
}

func NewIMC(inner robot.Controller, motors []robot.Motor, params IMCParams, store CheckpointStore, logger *slog.Logger) (*IMC, error) {
	if inner == nil {
		return nil, errors.New("imc: inner controller is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := len(motors)
	c := &IMC{
		inner:    inner,
		params:   params,
		store:    store,
		log:      logger,
		capture:  make([]*captureMotor, n),
		theta:    make([]float64, n*imcFeatures),
		m:        make([]float64, n*imcFeatures),
		v:        make([]float64, n*imcFeatures),
		prevRef:  make([]float64, n),
		prevFeat: make([]float64, n*imcFeatures),
	}
	for i, mot := range motors {
		c.capture[i] = &captureMotor{Motor: mot}
	}
	return c, nil
}

// Restore loads saved weights if RestoreCheckpoint is set. A missing
// checkpoint is not an error.
func (c *IMC) Restore(ctx context.Context) error {
	if !c.params.RestoreCheckpoint || c.store == nil {
		return nil
	}
	w, ok, err := c.store.Load(ctx, c.params.ModelName)
	if err != nil {
		return fmt.Errorf("imc: restore %q: %w", c.params.ModelName, err)
	}
	if !ok {
		c.log.InfoContext(ctx, "no imc checkpoint", "model", c.params.ModelName)
		return nil
	}
	if len(w) != len(c.theta) {
		return fmt.Errorf("imc: checkpoint %q has %d weights, want %d", c.params.ModelName, len(w), len(c.theta))
	}
	copy(c.theta, w)
	c.log.InfoContext(ctx, "imc checkpoint restored", "model", c.params.ModelName)
	return nil
}

// Close saves the weights when SaveCheckpoint is set.
func (c *IMC) Close(ctx context.Context) error {
	if !c.params.SaveCheckpoint || c.store == nil {
		return nil
	}
	if err := c.store.Save(ctx, c.params.ModelName, c.Weights()); err != nil {
		return fmt.Errorf("imc: save %q: %w", c.params.ModelName, err)
	}
	return nil
}

func (c *IMC) Inner() robot.Controller { return c.inner }

func (c *IMC) Weights() []float64 {
	w := make([]float64, len(c.theta))
	copy(w, c.theta)
	return w
}

func (c *IMC) Update(motors []robot.Motor, sensors []robot.Sensor, t, dt float64) {
	proxies := make([]robot.Motor, len(motors))
	for i, m := range motors {
		if i < len(c.capture) && c.capture[i].Motor == m {
			proxies[i] = c.capture[i]
		} else {
			proxies[i] = m
		}
	}
	for _, p := range c.capture {
		p.set = false
	}
	c.inner.Update(proxies, sensors, t, dt)

	errs := make([]float64, len(c.capture))
	for i, p := range c.capture {
		if fb, ok := p.Motor.(robot.Feedback); ok && c.hasPrev {
			errs[i] = c.prevRef[i] - fb.Position()
		}
	}
	if c.hasPrev {
		c.train(errs)
	}

	for i, p := range c.capture {
		if !p.set {
			continue
		}
		r := p.ref
		f := c.prevFeat[i*imcFeatures : (i+1)*imcFeatures]
		f[0], f[1], f[2] = errs[i], r-c.prevRef[i], 1
		w := c.theta[i*imcFeatures : (i+1)*imcFeatures]
		u := r + w[0]*f[0] + w[1]*f[1] + w[2]*f[2]
		p.Motor.Update([]float64{u}, p.step)
		c.prevRef[i] = r
	}
	c.hasPrev = true
}

// train takes one AdamW step on 0.5*e^2, treating the plant as having unit
// gain from command to position.
func (c *IMC) train(errs []float64) {
	c.steps++
	lr := c.params.LearningRate
	b1, b2 := c.params.Beta1, c.params.Beta2
	bc1 := 1 - math.Pow(b1, float64(c.steps))
	bc2 := 1 - math.Pow(b2, float64(c.steps))
	for i := range c.theta {
		g := -errs[i/imcFeatures] * c.prevFeat[i]
		c.m[i] = b1*c.m[i] + (1-b1)*g
		c.v[i] = b2*c.v[i] + (1-b2)*g*g
		mh := c.m[i] / bc1
		vh := c.v[i] / bc2
		c.theta[i] -= lr * (mh/(math.Sqrt(vh)+1e-8) + c.params.WeightDecay*c.theta[i])
	}
}

func (c *IMC) Parameters() []float64 {
	if p, ok := c.inner.(robot.Parametric); ok {
		return p.Parameters()
	}
	return nil
}

func (c *IMC) SetParameters(p []float64) {
	if pc, ok := c.inner.(robot.Parametric); ok {
		pc.SetParameters(p)
	}
}

// captureMotor records the reference written by the inner controller instead
// of forwarding it.
type captureMotor struct {
	robot.Motor
	ref  float64
	step float64
	set  bool
}

func (m *captureMotor) Update(outputs []float64, step float64) {
	if len(outputs) == 0 {
		return
	}
	m.ref = outputs[0]
	m.step = step
	m.set = true
}
