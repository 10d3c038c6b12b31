package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/experiment"
	"github.com/san-kum/vmc/internal/logging"
	"github.com/san-kum/vmc/internal/optim"
	"github.com/san-kum/vmc/internal/storage"
	"github.com/san-kum/vmc/internal/store"
	"github.com/san-kum/vmc/internal/sweep"
	"github.com/san-kum/vmc/internal/tui"
	"github.com/san-kum/vmc/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile string
	preset     string

	particles   int
	dim         int
	sampler     string
	steps       int
	stepSize    float64
	seed        int64
	alpha       float64
	beta        float64
	omega       float64
	lambda      float64
	jastrow     bool
	interacting bool
	numerical   bool

	alphaFrom  float64
	alphaTo    float64
	betaFrom   float64
	betaTo     float64
	points     int
	betaPoints int
	workers    int
	skipFailed bool

	learningRate float64
	iterations   int
	tolerance    float64
	sgdSteps     int

	trace    bool
	density  bool
	asJSON   bool
	outFile  string
	watch    bool
	fps      int
	ensemble int
	save     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "vmc",
		Short:         "variational monte carlo for trapped electrons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vmc", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a single chain",
		Args:  cobra.NoArgs,
		RunE:  runChain,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().BoolVar(&trace, "trace", true, "keep the local energy trace for blocking and autocorrelation")
	runCmd.Flags().BoolVar(&density, "density", false, "collect the one-body density")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the JSON result to a file instead of stdout")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the walkers while sampling")
	runCmd.Flags().IntVar(&fps, "fps", 20, "frame rate for --watch")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "repeat one point over independent seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSystemFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&ensemble, "chains", 8, "number of chains")
	ensembleCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel chains")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate a linear alpha grid in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	addSweepFlags(sweepCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "alpha sweep with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	addSweepFlags(liveCmd)

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "search an alpha × beta grid for the lowest energy",
		Args:  cobra.NoArgs,
		RunE:  runGrid,
	}
	addSystemFlags(gridCmd)
	addSweepFlags(gridCmd)
	gridCmd.Flags().Float64Var(&betaFrom, "beta-from", 0.2, "first beta")
	gridCmd.Flags().Float64Var(&betaTo, "beta-to", 0.6, "last beta")
	gridCmd.Flags().IntVar(&betaPoints, "beta-points", 5, "number of beta values")

	sgdCmd := &cobra.Command{
		Use:   "sgd",
		Short: "optimise alpha (and beta) by gradient descent",
		Args:  cobra.NoArgs,
		RunE:  runSGD,
	}
	addSystemFlags(sgdCmd)
	sgdCmd.Flags().Float64Var(&learningRate, "lr", 0.1, "learning rate")
	sgdCmd.Flags().IntVar(&iterations, "iterations", 50, "maximum iterations")
	sgdCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-4, "stop when the parameter step is smaller")
	sgdCmd.Flags().IntVar(&sgdSteps, "chain-steps", 1<<15, "steps per iteration")
	sgdCmd.Flags().BoolVar(&save, "save", true, "store the trajectory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print a stored table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tN\tDIM\tSAMPLER\tALPHA\tBETA\tJASTROW\tINTERACTING")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.3f\t%.3f\t%v\t%v\n",
					name, p.Particles, p.Dim, p.Sampler,
					p.WaveFunction.Alpha, p.WaveFunction.Beta,
					p.WaveFunction.Jastrow, p.Interacting)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure steps per second of both samplers",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 20000, "production steps per chain")

	rootCmd.AddCommand(runCmd, ensembleCmd, sweepCmd, liveCmd, gridCmd, sgdCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&particles, "particles", "n", d.Particles, "number of particles")
	cmd.Flags().IntVar(&dim, "dim", d.Dim, "dimensions")
	cmd.Flags().StringVar(&sampler, "sampler", d.Sampler, "sampler (bruteforce, importance)")
	cmd.Flags().IntVar(&steps, "steps", d.Steps, "production steps")
	cmd.Flags().Float64Var(&stepSize, "step-size", d.StepSize, "brute force step length")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&alpha, "alpha", d.WaveFunction.Alpha, "variational alpha")
	cmd.Flags().Float64Var(&beta, "beta", d.WaveFunction.Beta, "jastrow beta")
	cmd.Flags().Float64Var(&omega, "omega", d.WaveFunction.Omega, "trap frequency")
	cmd.Flags().Float64Var(&lambda, "lambda", d.Trap.Lambda, "elliptical trap z factor")
	cmd.Flags().BoolVar(&jastrow, "jastrow", d.WaveFunction.Jastrow, "include the jastrow factor")
	cmd.Flags().BoolVar(&interacting, "interacting", d.Interacting, "include coulomb repulsion")
	cmd.Flags().BoolVar(&numerical, "numerical", d.NumericalLaplace, "numerical laplacian")
}

func addSweepFlags(cmd *cobra.Command) {
	d := config.DefaultConfig().Sweep
	cmd.Flags().Float64Var(&alphaFrom, "alpha-from", d.AlphaFrom, "first alpha")
	cmd.Flags().Float64Var(&alphaTo, "alpha-to", d.AlphaTo, "last alpha")
	cmd.Flags().IntVar(&points, "points", d.Points, "number of alpha values")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel chains")
	cmd.Flags().BoolVar(&skipFailed, "skip-failed", false, "skip points whose chain fails")
}

// buildConfig layers defaults, preset, config file and explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("particles") {
		cfg.Particles = particles
	}
	if f.Changed("dim") {
		cfg.Dim = dim
	}
	if f.Changed("sampler") {
		cfg.Sampler = sampler
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("step-size") {
		cfg.StepSize = stepSize
	}
	if f.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if f.Changed("alpha") {
		cfg.WaveFunction.Alpha = alpha
	}
	if f.Changed("beta") {
		cfg.WaveFunction.Beta = beta
	}
	if f.Changed("omega") {
		cfg.WaveFunction.Omega = omega
	}
	if f.Changed("lambda") {
		cfg.Trap.Lambda = lambda
	}
	if f.Changed("jastrow") {
		cfg.WaveFunction.Jastrow = jastrow
	}
	if f.Changed("interacting") {
		cfg.Interacting = interacting
	}
	if f.Changed("numerical") {
		cfg.NumericalLaplace = numerical
	}
	if f.Lookup("alpha-from") != nil {
		if f.Changed("alpha-from") {
			cfg.Sweep.AlphaFrom = alphaFrom
		}
		if f.Changed("alpha-to") {
			cfg.Sweep.AlphaTo = alphaTo
		}
		if f.Changed("points") {
			cfg.Sweep.Points = points
		}
		if f.Changed("skip-failed") {
			cfg.Sweep.SkipFailed = skipFailed
		}
	}
	if f.Lookup("beta-from") != nil {
		if f.Changed("beta-from") {
			cfg.Sweep.BetaFrom = betaFrom
		}
		if f.Changed("beta-to") {
			cfg.Sweep.BetaTo = betaTo
		}
		if f.Changed("beta-points") {
			cfg.Sweep.BetaPoints = betaPoints
		}
	}
	if f.Lookup("lr") != nil {
		if f.Changed("lr") {
			cfg.SGD.LearningRate = learningRate
		}
		if f.Changed("iterations") {
			cfg.SGD.Iterations = iterations
		}
		if f.Changed("tolerance") {
			cfg.SGD.Tolerance = tolerance
		}
		if f.Changed("chain-steps") {
			cfg.SGD.Steps = sgdSteps
		}
	}
	if f.Lookup("trace") != nil {
		cfg.Analysis.Trace = trace
		if f.Changed("density") {
			cfg.Analysis.Density = density
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	exp := experiment.New(cfg, logger)
	if watch {
		r := tui.NewWalkerRenderer(os.Stdout, fmt.Sprintf("%d particles, alpha=%.3f", cfg.Particles, cfg.WaveFunction.Alpha), 3, fps)
		r.Start()
		defer r.Stop()
		exp.AddObserver(r)
	}

	logger.Info("running chain", "particles", cfg.Particles, "dim", cfg.Dim, "sampler", cfg.Sampler, "steps", cfg.Steps)
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		if outFile != "" {
			if err := store.ExportJSON(outFile, cfg, res); err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			logger.Info("exported", "path", outFile)
			return nil
		}
		return store.ExportJSONStdout(cfg, res)
	}

	fmt.Println(viz.RunPanel(cfg, res))
	if chart := viz.TraceCurve(res.Trace, 70, 8); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}
	if res.Density != nil {
		if chart := viz.DensityCurve(*res.Density, 70, 10); chart != "" {
			fmt.Println(chart)
		}
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	logger.Info("running ensemble", "chains", ensemble, "workers", workers)
	res, err := sweep.Ensemble(ctx, cfg, ensemble, workers)
	if err != nil {
		return err
	}

	fmt.Println(viz.Metric("chains", "%d", len(res.Energies)))
	fmt.Println(viz.Metric("energy", "%.8f ± %.2e", res.Mean, res.StdErr))
	fmt.Println(viz.Metric("E/N", "%.8f", res.Mean/float64(cfg.Particles)))
	fmt.Println(viz.Sparkline(res.Energies, 40))
	return nil
}

func sweepPoints(cfg *config.Config) []sweep.Point {
	return sweep.AlphaPoints(sweep.Alphas(cfg.Sweep.AlphaFrom, cfg.Sweep.AlphaTo, cfg.Sweep.Points), cfg.WaveFunction.Beta)
}

func saveSweep(kind string, cfg *config.Config, results []sweep.Result) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(kind, cfg, results)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	r := &sweep.Runner{Workers: workers, SkipFailed: cfg.Sweep.SkipFailed, Logger: logger}
	results, err := r.Run(ctx, cfg, sweepPoints(cfg))
	if err != nil {
		return err
	}

	fmt.Println(viz.SweepTable(results))
	if chart := viz.EnergyCurve(results, 70, 10); chart != "" {
		fmt.Println(chart)
	}
	return saveSweep("sweep", cfg, results)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	// Log lines would tear the live view; only errors get through.
	quiet, err := logging.New("error", os.Stderr)
	if err != nil {
		return err
	}
	results, err := tui.RunLive(ctx, cfg, sweepPoints(cfg), workers, quiet)
	if err != nil {
		return err
	}
	return saveSweep("sweep", cfg, results)
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	alphas := sweep.Alphas(cfg.Sweep.AlphaFrom, cfg.Sweep.AlphaTo, cfg.Sweep.Points)
	betas := sweep.Alphas(cfg.Sweep.BetaFrom, cfg.Sweep.BetaTo, cfg.Sweep.BetaPoints)
	res, err := optim.NewGridSearch(alphas, betas, workers, logger).Search(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println(viz.SweepTable(res.Points))
	fmt.Println(viz.Metric("best", "α=%.4f β=%.4f E=%.8f", res.Best.Alpha, res.Best.Beta, res.Best.Energy))
	return saveSweep("grid", cfg, res.Points)
}

func runSGD(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	sgd := optim.NewSGD(cfg.SGD, logger)
	sgd.OnIteration = func(it optim.Iteration) {
		logger.Info("iteration", "n", it.Iteration, "alpha", it.Alpha, "beta", it.Beta, "E/N", it.EnergyPerParticle)
	}
	res, err := sgd.Optimize(ctx, cfg)
	if err != nil {
		return err
	}

	if chart := viz.TrajectoryCurve(res.Trajectory, 70, 10); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}
	fmt.Println(viz.Metric("alpha", "%.6f", res.Alpha))
	if cfg.WaveFunction.Jastrow {
		fmt.Println(viz.Metric("beta", "%.6f", res.Beta))
	}
	fmt.Println(viz.Metric("energy", "%.8f", res.Energy))
	fmt.Println(viz.Metric("converged", "%v", res.Converged))

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveTrajectory(cfg, res)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
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
	fmt.Fprintln(w, "ID\tKIND\tTIME\tN\tDIM\tSAMPLER\tSTEPS\tROWS\tJASTROW")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%d\t%v\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Dim,
			run.Sampler,
			run.Steps,
			run.Rows,
			run.Jastrow,
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

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("particles: %d (%dD)\n\n", meta.Particles, meta.Dim)

	if meta.Kind == "sgd" {
		traj, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		if len(traj) < 2 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Println(viz.TrajectoryCurve(traj, 70, 10))
		fmt.Println()
		fmt.Println(viz.ParameterCurves(traj, 70, 8))
		return nil
	}

	pts, err := st.LoadPoints(runID)
	if err != nil {
		return err
	}
	if len(pts) < 2 {
		return fmt.Errorf("no data to plot")
	}
	fmt.Println(viz.EnergyCurve(pts, 70, 10))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	header, rows, err := st.Table(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func bench(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	sizes := []int{2, 6, 12, 20}

	fmt.Printf("benchmarking %d production steps per chain\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLER\tN\tSTEPS\tTIME\tSTEPS/SEC\tACCEPT")

	for _, name := range registry.ListSamplers() {
		for _, n := range sizes {
			cfg := config.DefaultConfig()
			cfg.Sampler = name
			cfg.Particles = n
			cfg.Steps = steps
			cfg.Seed = 42
			cfg.Interacting = true
			cfg.WaveFunction.Jastrow = true

			start := time.Now()
			res, err := experiment.New(cfg, logger).Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			total := steps + steps/4
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\t%.3f\n",
				name, n, total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), res.Acceptance)
		}
	}

	return w.Flush()
}
