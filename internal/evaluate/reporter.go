package evaluate

import (
	"log/slog"
	"sync"

	"github.com/san-kum/robocore/internal/robot"
)

// LogReporter writes every evaluation report to a structured logger.
type LogReporter struct {
	log *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{log: logger}
}

func (r *LogReporter) SimulationUpdate(pose robot.Pose, t, dt float64) {}

func (r *LogReporter) Report(rep robot.EvaluationReport) {
	r.log.Info("evaluation",
		"robot", rep.RobotID,
		"eval", rep.EvalID,
		"fitness", rep.Fitness,
		"dead", rep.Dead,
		"sim_time", rep.Time)
}

// Aggregated forwards to every reporter in order. Nil entries are skipped.
type Aggregated []robot.Reporter

func (a Aggregated) SimulationUpdate(pose robot.Pose, t, dt float64) {
	for _, r := range a {
		if r != nil {
			r.SimulationUpdate(pose, t, dt)
		}
	}
}

func (a Aggregated) Report(rep robot.EvaluationReport) {
	for _, r := range a {
		if r != nil {
			r.Report(rep)
		}
	}
}

// Recorder keeps every report and the pose trajectory it observed.
type Recorder struct {
	mu      sync.Mutex
	reports []robot.EvaluationReport
	poses   []robot.Pose
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SimulationUpdate(pose robot.Pose, t, dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poses = append(r.poses, pose)
}

func (r *Recorder) Report(rep robot.EvaluationReport) {
	rep.Parameters = append([]float64(nil), rep.Parameters...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *Recorder) Reports() []robot.EvaluationReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]robot.EvaluationReport, len(r.reports))
	copy(out, r.reports)
	return out
}

func (r *Recorder) Poses() []robot.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]robot.Pose, len(r.poses))
	copy(out, r.poses)
	return out
}

// Fitnesses returns the fitness of every report in order.
func (r *Recorder) Fitnesses() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.reports))
	for i, rep := range r.reports {
		out[i] = rep.Fitness
	}
	return out
}
