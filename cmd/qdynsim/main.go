package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/analysis"
	"github.com/san-kum/qdynsim/internal/automation"
	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/experiment"
	"github.com/san-kum/qdynsim/internal/export"
	"github.com/san-kum/qdynsim/internal/logger"
	"github.com/san-kum/qdynsim/internal/optim"
	"github.com/san-kum/qdynsim/internal/solve"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	configFile   string
	preset       string
	method       string
	tEnd         float64
	rtol         float64
	atol         float64
	samples      int
	inFrameBasis bool
	csvOut       bool
	jsonOut      bool

	level      int
	sweepLevel int
	signalIdx  int
	freqFrom   float64
	freqTo     float64
	freqPoints int
	gridFrom   float64
	gridTo     float64
	gridPoints int

	param    string
	metric   string
	maximize bool

	trials       int
	perturbation float64
	seed         int64
)

var log zerolog.Logger

func main() {
	env := config.LoadEnvironment()

	rootCmd := &cobra.Command{
		Use:   "qdynsim",
		Short: "driven quantum system solver",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lc := logger.Config{Level: env.LogLevel, Pretty: env.LogPretty}
			if verbose {
				lc.Level = "debug"
			}
			log = logger.New(lc, os.Stderr)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve a preset or config file",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().BoolVar(&csvOut, "csv", false, "write the trajectory as csv to stdout")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write the trajectory and metrics as json to stdout")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [trajectory.csv]",
		Short: "oscillation frequency and bloch trajectory",
		Long: "analyze a trajectory written by run --csv (\"-\" reads stdin), " +
			"or solve the selected problem when no file is given",
		Args: cobra.MaximumNArgs(1),
		RunE: analyzeRun,
	}
	addProblemFlags(analyzeCmd)
	analyzeCmd.Flags().IntVar(&level, "level", 0, "population level to analyze")

	compareCmd := &cobra.Command{
		Use:   "compare [method1] [method2] ...",
		Short: "compare solver methods on the same problem",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	addProblemFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a drive carrier frequency",
		Args:  cobra.NoArgs,
		RunE:  sweepFrequency,
	}
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&signalIdx, "signal", 0, "signal index to sweep")
	sweepCmd.Flags().Float64Var(&freqFrom, "from", 4.5, "first carrier frequency")
	sweepCmd.Flags().Float64Var(&freqTo, "to", 5.5, "last carrier frequency")
	sweepCmd.Flags().IntVar(&freqPoints, "points", 21, "number of frequencies")
	sweepCmd.Flags().IntVar(&sweepLevel, "level", 1, "population level to report")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "grid search one signal parameter against a metric",
		Args:  cobra.NoArgs,
		RunE:  calibrate,
	}
	addProblemFlags(calibrateCmd)
	calibrateCmd.Flags().IntVar(&signalIdx, "signal", 0, "signal index")
	calibrateCmd.Flags().StringVar(&param, "param", "amplitude", "amplitude, carrier_freq, phase, center or sigma")
	calibrateCmd.Flags().Float64Var(&gridFrom, "from", 0, "first parameter value")
	calibrateCmd.Flags().Float64Var(&gridTo, "to", 1, "last parameter value")
	calibrateCmd.Flags().IntVar(&gridPoints, "points", 11, "number of grid points")
	calibrateCmd.Flags().StringVar(&metric, "metric", "population_1", "metric to optimize")
	calibrateCmd.Flags().BoolVar(&maximize, "maximize", true, "maximize instead of minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of solves",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "metric statistics under random drive amplitude errors",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addProblemFlags(monteCarloCmd)
	monteCarloCmd.Flags().StringVar(&metric, "metric", "population_1", "metric to collect")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "sigma", 0.05, "relative amplitude error")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list solver methods",
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range solve.Methods() {
				kind := "fixed"
				if solve.IsAdaptive(m) {
					kind = "adaptive"
				}
				fmt.Printf("  %-6s %s\n", m, kind)
			}
		},
	}

	rootCmd.AddCommand(runCmd, analyzeCmd, compareCmd, sweepCmd, calibrateCmd, scenarioCmd, monteCarloCmd, presetsCmd, methodsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset as system/name, e.g. qubit/rabi")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "solver method")
	cmd.Flags().Float64Var(&tEnd, "time", config.DefaultDuration, "final time")
	cmd.Flags().Float64Var(&rtol, "rtol", config.DefaultRTol, "relative tolerance")
	cmd.Flags().Float64Var(&atol, "atol", config.DefaultATol, "absolute tolerance")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "number of output samples")
	cmd.Flags().BoolVar(&inFrameBasis, "in-frame-basis", false, "solve in the frame eigenbasis")
}

// loadProblem resolves --preset or --config (config wins) and applies the
// flags the user set explicitly.
func loadProblem(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		system, name, ok := strings.Cut(preset, "/")
		if !ok {
			system, name = "qubit", preset
		}
		cfg = config.GetPreset(system, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available for %s: %v)", preset, system, config.ListPresets(system))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Solver.Method = method
	}
	if flags.Changed("time") {
		cfg.Solver.TEnd = tEnd
	}
	if flags.Changed("rtol") {
		cfg.Solver.RTol = rtol
	}
	if flags.Changed("atol") {
		cfg.Solver.ATol = atol
	}
	if flags.Changed("samples") {
		cfg.Solver.Samples = samples
	}
	if flags.Changed("in-frame-basis") {
		cfg.Solver.InFrameBasis = inFrameBasis
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	switch {
	case csvOut:
		return export.WriteCSV(os.Stdout, result)
	case jsonOut:
		return export.WriteJSON(os.Stdout, runInfo(cfg), result)
	}

	fmt.Printf("%s completed in %v\n", cfg.Name, elapsed)
	fmt.Printf("points: %d  accepted: %d  rejected: %d  evaluations: %d\n",
		len(result.T), result.Stats.Accepted, result.Stats.Rejected, result.Stats.Evaluations)
	printMetrics(result.Metrics)
	fmt.Println()
	fmt.Println(plotPopulations(result.Y, "populations"))
	return nil
}

func runInfo(cfg *config.Config) export.RunInfo {
	return export.RunInfo{
		Name:       cfg.Name,
		System:     cfg.System,
		Convention: cfg.Convention,
		Method:     cfg.Solver.Method,
		TStart:     cfg.Solver.TStart,
		TEnd:       cfg.Solver.TEnd,
		RTol:       cfg.Solver.RTol,
		ATol:       cfg.Solver.ATol,
	}
}

func printMetrics(metrics map[string]float64) {
	if len(metrics) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedNames(metrics) {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, metrics[name])
	}
	w.Flush()
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func plotPopulations(ys []dynamo.State, caption string) string {
	if len(ys) == 0 {
		return ""
	}
	series := make([][]float64, len(ys[0]))
	for k := range series {
		series[k] = make([]float64, len(ys))
	}
	for i, y := range ys {
		for k, v := range y {
			series[k][i] = real(v)*real(v) + imag(v)*imag(v)
		}
	}
	colors := []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow}
	if len(series) < len(colors) {
		colors = colors[:len(series)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
}

// trajectory reads a csv trajectory from path, or solves the selected
// problem when path is empty.
func trajectory(cmd *cobra.Command, path string) (*dynamo.Result, string, error) {
	switch path {
	case "":
		cfg, err := loadProblem(cmd)
		if err != nil {
			return nil, "", err
		}
		exp, err := experiment.New(cfg, log)
		if err != nil {
			return nil, "", err
		}
		ctx, cancel := signalContext()
		defer cancel()
		res, err := exp.Run(ctx)
		return res, cfg.Name, err
	case "-":
		res, err := export.ReadCSV(os.Stdin)
		return res, "stdin", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	res, err := export.ReadCSV(f)
	return res, path, err
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	result, source, err := trajectory(cmd, path)
	if err != nil {
		return err
	}
	if len(result.T) < 4 {
		return fmt.Errorf("%s has too few points for analysis", source)
	}
	dim := len(result.Y[0])
	if level < 0 || level >= dim {
		return fmt.Errorf("level %d out of range for dim %d", level, dim)
	}

	fmt.Printf("analysis: %s (%d points, dim %d)\n\n", source, len(result.T), dim)

	data := experiment.PopulationTrace(result, level)
	dt := (result.T[len(result.T)-1] - result.T[0]) / float64(len(result.T)-1)
	if !uniform(result.T, dt) {
		log.Warn().Str("source", source).Msg("output times are not evenly spaced; frequency estimate is approximate")
	}

	ps := analysis.PowerSpectrum(data)
	plotData := ps[1:]
	if len(plotData) > 80 {
		plotData = plotData[:len(plotData)/2]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (population %d)", level)),
	))
	fmt.Println()

	freq, err := analysis.DominantFrequency(data, dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}

	if dim >= 2 {
		bloch, err := analysis.BlochTrajectory(result, 0, 1)
		if err != nil {
			return err
		}
		fmt.Println("\nbloch trajectory (x-z):")
		fmt.Println(analysis.ProjectionToASCII(analysis.ProjectXZ(bloch), 41, 21))
	}
	return nil
}

func uniform(ts []float64, dt float64) bool {
	for i := 1; i < len(ts); i++ {
		if math.Abs(ts[i]-ts[i-1]-dt) > 1e-6*math.Max(dt, 1) {
			return false
		}
	}
	return true
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing methods for %s (t_end=%.2f, rtol=%.0e, atol=%.0e)\n\n",
		cfg.Name, cfg.Solver.TEnd, cfg.Solver.RTol, cfg.Solver.ATol)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tFINAL_P0\tNORM_DRIFT\tACCEPTED\tREJECTED\tEVALS\tTIME")

	for _, m := range args {
		c := cfg.Clone()
		c.Solver.Method = m
		exp, err := experiment.New(c, log)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", m, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", m, err)
			continue
		}

		final := result.Final()
		drift := math.Abs(final.Norm() - exp.InitialState().Norm())
		fmt.Fprintf(w, "%s\t%.6f\t%.2e\t%d\t%d\t%d\t%v\n",
			m, final.Populations()[0], drift,
			result.Stats.Accepted, result.Stats.Rejected, result.Stats.Evaluations,
			elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func sweepFrequency(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd)
	if err != nil {
		return err
	}
	if freqPoints < 2 {
		return fmt.Errorf("need at least 2 points, got %d", freqPoints)
	}

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}
	if sweepLevel < 0 || sweepLevel >= exp.Model().Dim() {
		return fmt.Errorf("level %d out of range for dim %d", sweepLevel, exp.Model().Dim())
	}

	freqs := optim.Linspace(freqFrom, freqTo, freqPoints)

	ctx, cancel := signalContext()
	defer cancel()

	results, err := exp.Sweep(ctx, signalIdx, freqs)
	if err != nil {
		return err
	}

	pops := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FREQ\tPOP_%d\n", sweepLevel)
	for i, res := range results {
		pops[i] = res.Final().Populations()[sweepLevel]
		fmt.Fprintf(w, "%.4f\t%.6f\n", freqs[i], pops[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(pops,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption(fmt.Sprintf("final population %d vs carrier frequency [%g, %g]", sweepLevel, freqFrom, freqTo)),
	))
	return nil
}

func calibrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd)
	if err != nil {
		return err
	}
	if !slices.Contains(cfg.Metrics, metric) {
		cfg.Metrics = append(cfg.Metrics, metric)
	}

	goal := optim.Minimize
	if maximize {
		goal = optim.Maximize
	}
	gs, err := optim.NewGridSearch([]string{param}, [][]float64{optim.Linspace(gridFrom, gridTo, gridPoints)}, goal)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	quiet := log.Level(zerolog.WarnLevel)
	best, val, err := gs.Search(ctx, func(p map[string]float64) (*experiment.Experiment, error) {
		c, err := optim.ApplySignalParams(cfg, signalIdx, p)
		if err != nil {
			return nil, err
		}
		return experiment.New(c, quiet)
	}, metric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", param, best[param])
	fmt.Printf("%s: %.6f\n", metric, val)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, runErr := automation.RunScenario(ctx, sc, log)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tMETHOD\tPOINTS\tEVALS\tFINAL_P0")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.6f\n", i+1, r.Config.Name, r.Config.Solver.Method,
			len(r.Result.T), r.Result.Stats.Evaluations, r.Result.Final().Populations()[0])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Metric:       metric,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
	}, log.Level(zerolog.WarnLevel))
	if err != nil {
		return err
	}

	mean, std, worst := automation.MonteCarloStats(results)
	fmt.Printf("%s over %d trials (sigma=%.3g, seed=%d)\n", metric, len(results), perturbation, seed)
	fmt.Printf("  mean:  %.6f\n", mean)
	fmt.Printf("  std:   %.3e\n", std)
	fmt.Printf("  worst: %.6f\n", worst)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	systems := config.ListSystems()
	if len(args) == 1 {
		systems = []string{args[0]}
	}

	for _, system := range systems {
		presets := config.ListPresets(system)
		if len(presets) == 0 {
			fmt.Printf("no presets for system: %s\n", system)
			continue
		}
		fmt.Printf("presets for %s:\n", system)
		for _, p := range presets {
			fmt.Printf("  %s/%s\n", system, p)
		}
	}
	return nil
}
