// Package storage keeps the results of past runs on disk, one directory per
// run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/robocore/internal/robot"
)

const (
	metadataFile    = "metadata.json"
	evaluationsFile = "evaluations.csv"
	trajectoryFile  = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Robot       string             `json:"robot"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Integrator  string             `json:"integrator"`
	Controller  string             `json:"controller"`
	Learner     string             `json:"learner"`
	Steps       int                `json:"steps"`
	Cycles      int                `json:"cycles"`
	FinalPose   robot.Pose         `json:"final_pose"`
	BestFitness float64            `json:"best_fitness"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Run is everything recorded about one run.
type Run struct {
	Meta        RunMetadata
	Evaluations []robot.EvaluationReport
	Trajectory  []robot.Pose
}

// Save writes run under a fresh id and returns the id.
func (s *Store) Save(run Run) (string, error) {
	meta := run.Meta
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, evaluationsFile), func(w io.Writer) error {
		return WriteEvaluations(w, run.Evaluations)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return writeTrajectory(w, run.Trajectory)
	}); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadEvaluations(runID string) ([]robot.EvaluationReport, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, evaluationsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEvaluations(f)
}

func (s *Store) LoadTrajectory(runID string) ([]robot.Pose, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	poses := make([]robot.Pose, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		v, err := parseFloats(rec)
		if err != nil || len(v) != 4 {
			return nil, fmt.Errorf("trajectory line %d: malformed record", i+1)
		}
		poses = append(poses, robot.Pose{X: v[0], Y: v[1], Z: v[2], Yaw: v[3]})
	}
	return poses, nil
}

var evaluationHeader = []string{"robot", "eval", "time", "fitness", "dead", "parameters"}

// WriteEvaluations writes reports as CSV. Parameters are joined with ';'.
func WriteEvaluations(w io.Writer, reports []robot.EvaluationReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(evaluationHeader); err != nil {
		return err
	}
	for _, r := range reports {
		params := make([]string, len(r.Parameters))
		for i, p := range r.Parameters {
			params[i] = formatFloat(p)
		}
		if err := cw.Write([]string{
			r.RobotID,
			strconv.Itoa(r.EvalID),
			formatFloat(r.Time),
			formatFloat(r.Fitness),
			strconv.FormatBool(r.Dead),
			strings.Join(params, ";"),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadEvaluations(r io.Reader) ([]robot.EvaluationReport, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("evaluations: missing header")
	}

	reports := make([]robot.EvaluationReport, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) != len(evaluationHeader) {
			return nil, fmt.Errorf("evaluations line %d: want %d fields, got %d", line, len(evaluationHeader), len(rec))
		}
		id, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("evaluations line %d: %w", line, err)
		}
		nums, err := parseFloats(rec[2:4])
		if err != nil {
			return nil, fmt.Errorf("evaluations line %d: %w", line, err)
		}
		dead, err := strconv.ParseBool(rec[4])
		if err != nil {
			return nil, fmt.Errorf("evaluations line %d: %w", line, err)
		}
		var params []float64
		if rec[5] != "" {
			if params, err = parseFloats(strings.Split(rec[5], ";")); err != nil {
				return nil, fmt.Errorf("evaluations line %d: %w", line, err)
			}
		}
		reports = append(reports, robot.EvaluationReport{
			RobotID:    rec[0],
			EvalID:     id,
			Time:       nums[0],
			Fitness:    nums[1],
			Dead:       dead,
			Parameters: params,
		})
	}
	return reports, nil
}

func writeTrajectory(w io.Writer, poses []robot.Pose) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y", "z", "yaw"}); err != nil {
		return err
	}
	for _, p := range poses {
		if err := cw.Write([]string{formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z), formatFloat(p.Yaw)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ExportJSON writes the run as a single JSON document.
func ExportJSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Meta        RunMetadata              `json:"meta"`
		Evaluations []robot.EvaluationReport `json:"evaluations"`
		Trajectory  []robot.Pose             `json:"trajectory"`
	}{run.Meta, run.Evaluations, run.Trajectory})
}
