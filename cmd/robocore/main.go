package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/robocore/internal/assembly"
	"github.com/san-kum/robocore/internal/battery"
	"github.com/san-kum/robocore/internal/checkpoint"
	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/experiment"
	"github.com/san-kum/robocore/internal/robot"
	"github.com/san-kum/robocore/internal/storage"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile  string
	preset      string
	dt          float64
	duration    float64
	seed        int64
	integrator  string
	metricsAddr string
	checkpoints string
	numRuns     int
	showPlot    bool
	asJSON      bool
	noSave      bool

	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "robocore",
		Short:         "simulated robot control core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".robocore", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a robot",
		Args:  cobra.NoArgs,
		RunE:  runRobot,
	}
	addRobotFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in simulated seconds")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringVar(&checkpoints, "checkpoints", "", "sqlite checkpoint database")
	runCmd.Flags().IntVar(&numRuns, "runs", 1, "number of robots to run, one seed each")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot fitness after the run")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the run as json")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check a robot configuration",
		Args:  cobra.NoArgs,
		RunE:  validateRobot,
	}
	addRobotFlags(validateCmd)

	batteryCmd := &cobra.Command{
		Use:   "battery get|set [level]",
		Short: "query or set a robot's battery level over the bus",
		Long:  `Loads the robot in-process, attaches its battery responder to the
battery request and response topics and exchanges messages with it.
The robot is discarded afterwards, so a set level does not persist.
Use it to check how a configuration answers battery requests.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: batteryLevel,
	}
	addRobotFlags(batteryCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot fitness and displacement of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list stored imc checkpoints",
		RunE:  listModels,
	}
	modelsCmd.Flags().StringVar(&checkpoints, "checkpoints", "", "sqlite checkpoint database")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tROBOT\tCONTROLLER\tLEARNER")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, cfg.Name,
					cfg.Brain.Controller.Type, cfg.Brain.Learner.Type)
			}
			w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd, batteryCmd, listCmd, plotCmd, exportCmd, modelsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error:"), err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func addRobotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch logFormat {
	case "text":
		h = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format: %s", logFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// loadConfig resolves --preset and --config. The config file wins over the
// preset, and explicitly set flags win over both.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		return nil, errors.New("one of --config or --preset is required")
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Simulation.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	return cfg, nil
}

func runRobot(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := experiment.Options{Logger: slog.Default()}

	if checkpoints != "" {
		store, err := checkpoint.Open(checkpoints)
		if err != nil {
			return err
		}
		atexit.Register(func() { store.Close() })
		opts.Checkpoints = store
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts.Registerer = reg
		serveMetrics(reg)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if numRuns > 1 {
		return runEnsemble(ctx, cfg, opts, st)
	}

	exp, err := experiment.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, exp.Close(context.WithoutCancel(ctx)))
	}()

	slog.Info("running robot", "robot", cfg.Name, "controller", exp.Brain().ControllerKind,
		"learner", exp.Brain().LearnerKind, "duration", cfg.Simulation.Duration)
	start := time.Now()
	result, err := exp.Run(ctx)
	if result == nil {
		return err
	}
	if errors.Is(err, context.Canceled) {
		slog.Warn("run interrupted", "sim_time", result.FinalTime)
	} else if err != nil {
		return err
	}
	elapsed := time.Since(start)

	run := toRun(cfg, result)
	if !noSave {
		id, err := st.Save(run)
		if err != nil {
			return err
		}
		run.Meta.ID = id
	}

	if asJSON {
		return storage.ExportJSON(os.Stdout, run)
	}
	printSummary(run, elapsed)
	if showPlot {
		printFitness(run.Evaluations, plotHeight)
	}
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config, opts experiment.Options, st *storage.Store) error {
	ens := experiment.NewEnsemble(cfg, numRuns, cfg.Simulation.Seed, opts)

	slog.Info("running ensemble", "robot", cfg.Name, "runs", numRuns, "seed_start", cfg.Simulation.Seed)
	start := time.Now()
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEED\tCYCLES\tEVALS\tBEST\tX\tY")
	for i, res := range results {
		runCfg := *cfg
		runCfg.Simulation.Seed = cfg.Simulation.Seed + int64(i)
		run := toRun(&runCfg, res)
		if !noSave {
			if run.Meta.ID, err = st.Save(run); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4f\t%.3f\t%.3f\n",
			shortID(run.Meta.ID),
			run.Meta.Seed,
			run.Meta.Cycles,
			len(run.Evaluations),
			run.Meta.BestFitness,
			run.Meta.FinalPose.X,
			run.Meta.FinalPose.Y,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(labelStyle.Render("completed in"), elapsed.Round(time.Millisecond))
	return nil
}

func serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", metricsAddr, "error", err)
		}
	}()
	atexit.Register(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	slog.Info("serving metrics", "addr", metricsAddr)
}

func toRun(cfg *config.Config, res *experiment.Result) storage.Run {
	learner := ""
	controller := ""
	if cfg.Brain != nil {
		controller = cfg.Brain.Controller.Type
		learner = cfg.Brain.Learner.Type
	}
	return storage.Run{
		Meta: storage.RunMetadata{
			Robot:       cfg.Name,
			Preset:      preset,
			Timestamp:   time.Now(),
			Seed:        cfg.Simulation.Seed,
			Dt:          cfg.Simulation.Dt,
			Duration:    cfg.Simulation.Duration,
			Integrator:  cfg.Simulation.Integrator,
			Controller:  controller,
			Learner:     learner,
			Steps:       res.Steps,
			Cycles:      res.Stats.Cycles,
			FinalPose:   res.FinalPose,
			BestFitness: res.BestFitness,
			Metrics: map[string]float64{
				"control_effort":     res.ControlEffort,
				"skipped_controller": float64(res.Stats.SkippedController),
				"final_time":         res.FinalTime,
			},
		},
		Evaluations: res.Evaluations,
		Trajectory:  res.Trajectory,
	}
}

func validateRobot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Brain != nil {
		ck, err := assembly.ParseControllerKind(cfg.Brain.Controller.Type)
		if err != nil {
			return err
		}
		lk, err := assembly.ParseLearnerKind(cfg.Brain.Learner.Type)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: controller=%s learner=%s actuators=%d sensors=%d\n",
			okStyle.Render("ok"), cfg.Identity().ScopedName(), ck, lk,
			len(cfg.Brain.Actuators), len(cfg.Brain.Sensors))
		return nil
	}
	fmt.Printf("%s %s: no brain\n", okStyle.Render("ok"), cfg.Identity().ScopedName())
	return nil
}

// batteryLevel loads the robot in-process and talks to it through the
// battery topics, the same way another node on the bus would. A set is
// followed by a read so the round trip is visible.
func batteryLevel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := cfg.Identity().ScopedName()
	var reqs []battery.Request
	switch args[0] {
	case "get":
	case "set":
		if len(args) != 2 {
			return errors.New("set needs a level")
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("level %q: %w", args[1], err)
		}
		reqs = append(reqs, battery.NewRequest(name, battery.SetLevel, v))
	default:
		return fmt.Errorf("unknown battery command: %s", args[0])
	}
	reqs = append(reqs, battery.NewRequest(name, battery.GetLevel, 0))

	got, err := exchangeBattery(cmd.Context(), cfg, reqs)
	if err != nil {
		return err
	}
	for _, r := range got {
		fmt.Printf("%s %s\n", labelStyle.Render(r.Request), r.Response)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tROBOT\tTIME\tDURATION\tCTRL\tLEARNER\tBEST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%s\t%s\t%.4f\n",
			run.ID,
			run.Robot,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Controller,
			run.Learner,
			run.BestFitness,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	evals, err := st.LoadEvaluations(runID)
	if err != nil {
		return err
	}
	poses, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("robot: %s\n", meta.Robot)
	fmt.Printf("controller: %s, learner: %s\n\n", meta.Controller, meta.Learner)

	if len(poses) > 1 {
		dist := make([]float64, len(poses))
		for i, p := range poses {
			dist[i] = p.PlanarDistance(poses[0])
		}
		fmt.Println(asciigraph.Plot(dist,
			asciigraph.Height(plotHeight),
			asciigraph.Width(60),
			asciigraph.Caption("displacement")))
		fmt.Println()
	}
	if !printFitness(evals, plotHeight) && len(poses) <= 1 {
		return fmt.Errorf("no data to plot")
	}
	return nil
}

func printFitness(evals []robot.EvaluationReport, height int) bool {
	if len(evals) < 2 {
		return false
	}
	fitness := make([]float64, len(evals))
	for i, r := range evals {
		fitness[i] = r.Fitness
	}
	fmt.Println(asciigraph.Plot(fitness,
		asciigraph.Height(height),
		asciigraph.Width(60),
		asciigraph.Caption("fitness per evaluation")))
	return true
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	evals, err := st.LoadEvaluations(runID)
	if err != nil {
		return err
	}
	poses, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, storage.Run{Meta: *meta, Evaluations: evals, Trajectory: poses})
}

func listModels(cmd *cobra.Command, args []string) error {
	if checkpoints == "" {
		return errors.New("--checkpoints is required")
	}
	store, err := checkpoint.Open(checkpoints)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.Models(cmd.Context())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no checkpoints found")
		return nil
	}
	fmt.Println(strings.Join(names, "\n"))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
