package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/config"
	"github.com/san-kum/miegruneisen/internal/export"
	"github.com/san-kum/miegruneisen/internal/metrics"
	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/series"
	"github.com/san-kum/miegruneisen/internal/storage"
	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
	"github.com/san-kum/miegruneisen/internal/validate"
	"github.com/san-kum/miegruneisen/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	// Overrides, applied only when the flag is set.
	evaluator   string
	beta        float64
	gamma       float64
	refVolume   float64
	unitScale   float64
	samples     int
	minFraction float64
	sumMethod   string
	digits      int
	precision   uint32
	maxTerms    int64
	window      int
	workers     int
	decimal     int
	step        float64

	every    int
	save     bool
	verbose  bool
	withHug  bool
	bounds   []int64
	quantity string
	outPath  string
	plotW    int
	plotH    int
	logger   *slog.Logger
	registry = thermo.NewRegistry()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "miegruneisen",
		Short:         "Mie-Grüneisen oscillator thermodynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      lvl,
				TimeFormat: "15:04:05",
			}))
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".miegruneisen", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&evaluator, "evaluator", "series", "evaluator (series, analytic)")
	pf.Float64Var(&beta, "beta", model.DefaultBeta, "inverse temperature 1/kT")
	pf.Float64Var(&gamma, "gamma", model.DefaultGamma, "Grüneisen parameter")
	pf.Float64Var(&refVolume, "v0", model.DefaultRefVolume, "reference volume")
	pf.Float64Var(&unitScale, "unit-scale", model.DefaultUnitScale, "frequency unit scale")
	pf.IntVar(&samples, "samples", model.DefaultSamples, "number of sampled volumes")
	pf.Float64Var(&minFraction, "min-fraction", model.DefaultMinFraction, "smallest volume as a fraction of v0")
	pf.StringVar(&sumMethod, "sum", "ratio", "series method (ratio, direct, shanks)")
	pf.IntVar(&digits, "digits", series.DefaultDigits, "relative stopping tolerance 10^-digits")
	pf.Uint32Var(&precision, "precision", series.DefaultPrecision, "working precision in decimal digits")
	pf.Int64Var(&maxTerms, "max-terms", series.DefaultMaxTerms, "term limit before reporting divergence")
	pf.IntVar(&window, "window", series.DefaultWindow, "shanks window")
	pf.IntVar(&workers, "workers", sweep.DefaultConfig().Workers, "parallel workers")
	pf.IntVar(&decimal, "decimal", validate.DefaultDecimal, "validation decimal places")
	pf.Float64Var(&step, "step", analysis.DefaultStep, "finite difference step")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "sweep Z, E and F over the volume range",
		Args:  cobra.NoArgs,
		RunE:  runSweepCmd,
	}
	runCmd.Flags().IntVar(&every, "every", 10, "print every n-th sample")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the series against closed forms; exits 1 on mismatch",
		Args:  cobra.NoArgs,
		RunE:  validateCmdRun,
	}
	validateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the report on success")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot Z, E and F for a saved run or a fresh sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	hugoniotCmd := &cobra.Command{
		Use:   "hugoniot [run_id]",
		Short: "compare the numeric and analytic Hugoniot",
		Args:  cobra.MaximumNArgs(1),
		RunE:  hugoniotRun,
	}
	hugoniotCmd.Flags().IntVar(&every, "every", 10, "print every n-th sample")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a sweep in an interactive view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().BoolVar(&save, "save", false, "save the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a saved run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&withHug, "hugoniot", false, "include pressure and Hugoniot curves")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw Z, E, F or the Hugoniot of a saved run or fresh sweep as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&quantity, "quantity", "hugoniot", "Z, E, F or hugoniot")
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEVAL\tSUM\tBETA\tGAMMA\tUNIT\tV0")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%g\n",
					name, c.Evaluator, c.Series.Method, c.Model.Beta, c.Model.Gamma, c.Model.UnitScale, c.Model.RefVolume)
			}
			return w.Flush()
		},
	}

	convergeCmd := &cobra.Command{
		Use:   "converge [volume]",
		Short: "compare truncated partition sums with the accelerated value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convergeRun,
	}
	convergeCmd.Flags().Int64SliceVar(&bounds, "bounds", []int64{10, 100, 1000, 3000, 10000, 30000, 100000}, "truncation points")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return config.Write(os.Stdout, cfg)
			}
			return config.Save(args[0], cfg)
		},
	}

	for _, c := range []*cobra.Command{plotCmd, hugoniotCmd, convergeCmd} {
		c.Flags().IntVar(&plotW, "width", viz.DefaultPlotWidth, "plot width")
		c.Flags().IntVar(&plotH, "height", viz.DefaultPlotHeight, "plot height")
	}

	rootCmd.AddCommand(runCmd, validateCmd, plotCmd, hugoniotCmd, liveCmd, listCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, convergeCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if logger != nil {
			logger.Error("command failed", tint.Err(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// resolveConfig layers defaults, preset, config file and changed flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("evaluator") {
		cfg.Evaluator = evaluator
	}
	if flags.Changed("beta") {
		cfg.Model.Beta = beta
	}
	if flags.Changed("gamma") {
		cfg.Model.Gamma = gamma
	}
	if flags.Changed("v0") {
		cfg.Model.RefVolume = refVolume
	}
	if flags.Changed("unit-scale") {
		cfg.Model.UnitScale = unitScale
	}
	if flags.Changed("samples") {
		cfg.Model.Samples = samples
	}
	if flags.Changed("min-fraction") {
		cfg.Model.MinFraction = minFraction
	}
	if flags.Changed("sum") {
		cfg.Series.Method = sumMethod
	}
	if flags.Changed("digits") {
		cfg.Series.Digits = digits
	}
	if flags.Changed("precision") {
		cfg.Series.Precision = precision
	}
	if flags.Changed("max-terms") {
		cfg.Series.MaxTerms = maxTerms
	}
	if flags.Changed("window") {
		cfg.Series.Window = window
	}
	if flags.Changed("workers") {
		cfg.Sweep.Workers = workers
	}
	if flags.Changed("decimal") {
		cfg.Validation.Decimal = decimal
	}
	if flags.Changed("step") {
		cfg.Analysis.Step = step
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunner(cfg *config.Config) (*sweep.Runner, error) {
	eval, err := cfg.NewEvaluator(registry)
	if err != nil {
		return nil, err
	}
	return sweep.New(eval, cfg.Params()), nil
}

func sweepFromConfig(ctx context.Context, cfg *config.Config, observers ...sweep.Observer) (*sweep.Result, error) {
	r, err := newRunner(cfg)
	if err != nil {
		return nil, err
	}
	r.SetLogger(logger)
	for _, o := range observers {
		r.AddObserver(o)
	}
	return r.Run(ctx, cfg.SweepConfig())
}

// loadOrSweep returns the saved run named in args, or a fresh sweep.
func loadOrSweep(cmd *cobra.Command, args []string, cfg *config.Config) (*sweep.Result, error) {
	if len(args) == 1 {
		return storage.New(dataDir).LoadSweep(args[0])
	}
	return sweepFromConfig(cmd.Context(), cfg)
}

// metricsFor adds a validation summary to the sweep metrics.
func metricsFor(r *validate.Report, m map[string]float64) map[string]float64 {
	if m == nil {
		m = make(map[string]float64, len(r.Checks)+1)
	}
	ok := 0.0
	if r.OK() {
		ok = 1
	}
	m["validated"] = ok
	for _, c := range r.Checks {
		m["max_abs_diff_"+c.Name] = c.MaxAbsDiff
	}
	return m
}

func saveRun(res *sweep.Result, decimal int, sweepMetrics map[string]float64) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	report, err := validate.Run(res, decimal)
	if err != nil {
		return "", err
	}
	return st.Save(res, metricsFor(report, sweepMetrics))
}

func runSweepCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ms := metrics.Defaults(cfg.Model.Beta)
	observers := make([]sweep.Observer, len(ms))
	for i, m := range ms {
		observers[i] = m
	}
	res, err := sweepFromConfig(cmd.Context(), cfg, observers...)
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderTable(res, every))

	collected := metrics.Collect(ms)
	fmt.Println()
	for _, m := range ms {
		fmt.Println(viz.MetricLabel.Render(m.Name()) + viz.MetricValue.Render(fmt.Sprintf("%.6g", collected[m.Name()])))
	}

	if save {
		runID, err := saveRun(res, cfg.Validation.Decimal, collected)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func validateCmdRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	res, err := sweepFromConfig(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	report, err := validate.Run(res, cfg.Validation.Decimal)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Print(viz.RenderReport(report, true))
	} else if !report.OK() {
		fmt.Fprint(os.Stderr, viz.RenderReport(report, false))
	}
	return report.Err()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	res, err := loadOrSweep(cmd, args, cfg)
	if err != nil {
		return err
	}
	fmt.Print(viz.PlotQuantities(res, plotW, plotH))
	return nil
}

// curvesFor differentiates the free energy of the evaluator that produced
// res, with the stored model parameters.
func curvesFor(res *sweep.Result, cfg *config.Config) (*analysis.Curves, error) {
	opts, err := cfg.SeriesOptions()
	if err != nil {
		return nil, err
	}
	eval, err := registry.Get(res.Method, res.Params, opts)
	if err != nil {
		return nil, err
	}
	return analysis.Compute(eval, res, cfg.Analysis.Step, cfg.Sweep.Workers)
}

func hugoniotRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	res, err := loadOrSweep(cmd, args, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	c, err := curvesFor(res, cfg)
	if err != nil {
		return err
	}
	logger.Info("curves computed", "elapsed", time.Since(start), "step", cfg.Analysis.Step)

	fmt.Println(viz.PlotHugoniot(c, plotW, plotH))
	fmt.Println(viz.MetricLabel.Render("rms gap") + viz.MetricValue.Render(fmt.Sprintf("%.6g", metrics.HugoniotRMS(c))))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "V\tstrain\tp\tK\tP_H\tP_H analytic\t")
	if every < 1 {
		every = 1
	}
	for i := 0; i < len(c.Volumes); i++ {
		if i%every != 0 && i != len(c.Volumes)-1 {
			continue
		}
		fmt.Fprintf(w, "%.5f\t%.6f\t%.8g\t%.8g\t%.8g\t%.8g\t\n",
			c.Volumes[i], res.Strains[i], c.Pressure[i], c.BulkModulus[i], c.Hugoniot[i], c.HugoniotAnalytic[i])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	m := viz.NewLiveModel(cfg.Evaluator, cfg.Model.Samples)
	p := tea.NewProgram(m)
	r.AddObserver(viz.NewObserver(p))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		res, err := r.Run(ctx, cfg.SweepConfig())
		p.Send(viz.DoneMsg{Result: res, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	res, err := final.(viz.LiveModel).Result()
	if err != nil {
		return err
	}
	if res == nil || !save {
		return nil
	}

	runID, err := saveRun(res, cfg.Validation.Decimal, nil)
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
	fmt.Fprintln(w, "ID\tMETHOD\tTIME\tSAMPLES\tBETA\tGAMMA\tTERMS\tELAPSED\tVALID")

	for _, run := range runs {
		valid := "-"
		if v, ok := run.Metrics["validated"]; ok {
			valid = strconv.FormatBool(v == 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%d\t%v\t%s\n",
			run.ID,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.Params.Beta,
			run.Params.Gamma,
			run.Terms,
			run.Elapsed.Round(time.Millisecond),
			valid,
		)
	}

	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	res, err := storage.New(dataDir).LoadSweep(args[0])
	if err != nil {
		return err
	}
	if res.Len() == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	res, err := storage.New(dataDir).LoadSweep(args[0])
	if err != nil {
		return err
	}

	var c *analysis.Curves
	if withHug {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if c, err = curvesFor(res, cfg); err != nil {
			return err
		}
	}
	return storage.ExportJSON(os.Stdout, res, c)
}

func convergeRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	v := cfg.Model.RefVolume
	if len(args) == 1 {
		if v, err = strconv.ParseFloat(args[0], 64); err != nil {
			return fmt.Errorf("invalid volume %q: %w", args[0], err)
		}
	}
	if len(bounds) == 0 {
		return errors.New("no truncation points given")
	}

	opts, err := cfg.SeriesOptions()
	if err != nil {
		return err
	}
	eng, err := series.New(opts)
	if err != nil {
		return err
	}
	s, err := thermo.NewSeries(cfg.Params(), eng)
	if err != nil {
		return err
	}

	st, err := s.Convergence(v, bounds)
	if err != nil {
		return err
	}

	fmt.Println(viz.PlotConvergence(st, plotW, plotH))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "terms\tpartial Z\tshortfall\t")
	for i, n := range st.Bounds {
		fmt.Fprintf(w, "%d\t%.15g\t%.3e\t\n", n, st.Partial[i], st.Accelerated-st.Partial[i])
	}
	fmt.Fprintf(w, "%d\t%.15g\t%s\t\n", st.Terms, st.Accelerated, opts.Method)
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	res, err := loadOrSweep(cmd, args, cfg)
	if err != nil {
		return err
	}

	var svg string
	if quantity == "hugoniot" {
		c, err := curvesFor(res, cfg)
		if err != nil {
			return err
		}
		svg, err = export.Hugoniot(c, 800, 500)
		if err != nil {
			return err
		}
	} else if svg, err = export.Quantity(res, quantity, 800, 500); err != nil {
		return err
	}

	if outPath == "" {
		_, err = fmt.Print(svg)
		return err
	}
	return os.WriteFile(outPath, []byte(svg), 0644)
}
