package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/photolab/internal/analysis"
	"github.com/san-kum/photolab/internal/config"
	"github.com/san-kum/photolab/internal/experiment"
	"github.com/san-kum/photolab/internal/export"
	"github.com/san-kum/photolab/internal/ledger"
	"github.com/san-kum/photolab/internal/logging"
	"github.com/san-kum/photolab/internal/physics"
	"github.com/san-kum/photolab/internal/sampler"
	"github.com/san-kum/photolab/internal/storage"
	"github.com/san-kum/photolab/internal/tui"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	dataDir    string
	logLevel   string
	seed       int64

	material   string
	wavelength float64
	intensity  float64
	area       float64
	voltage    float64

	sweepFrom float64
	sweepTo   float64
	sweepStep float64

	count       int
	save        bool
	csvOut      string
	svgOut      string
	jsonOut     bool
	wavelengths []float64
)

var log *slog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:           "photolab",
		Short:         "photoelectric effect lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.NewLogger(logLevel, os.Stderr)
		},
		RunE: runInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (info, debug, trace)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.StringVar(&material, "material", config.DefaultMaterial, "photocathode material id")
	pf.Float64Var(&wavelength, "wavelength", config.DefaultWavelength, "wavelength in nm")
	pf.Float64Var(&intensity, "intensity", config.DefaultIntensity, "intensity in W/m^2")
	pf.Float64Var(&area, "area", config.DefaultArea, "cathode area in cm^2")
	pf.Float64Var(&voltage, "voltage", config.DefaultVoltage, "applied voltage in V")
	pf.Float64Var(&sweepFrom, "from", config.DefaultSweepFrom, "sweep start voltage")
	pf.Float64Var(&sweepTo, "to", config.DefaultSweepTo, "sweep end voltage")
	pf.Float64Var(&sweepStep, "step", config.DefaultSweepStep, "sweep voltage step")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate the emission model",
		RunE:  evaluate,
	}
	evalCmd.Flags().BoolVar(&jsonOut, "json", false, "print result as JSON")

	measureCmd := &cobra.Command{
		Use:   "measure",
		Short: "take repeated measurements at one setting",
		RunE:  measure,
	}
	measureCmd.Flags().IntVarP(&count, "count", "n", 1, "number of measurements")
	measureCmd.Flags().BoolVar(&save, "save", false, "save dataset to the data directory")
	measureCmd.Flags().StringVar(&csvOut, "csv", "", "write CSV dataset to file")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "acquire an I-V curve over a voltage range",
		RunE:  sweep,
	}
	sweepCmd.Flags().BoolVar(&save, "save", false, "save dataset to the data directory")
	sweepCmd.Flags().StringVar(&csvOut, "csv", "", "write CSV dataset to file")
	sweepCmd.Flags().StringVar(&svgOut, "svg", "", "write I-V curve SVG to file")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "estimate Planck's constant from sweeps at several wavelengths",
		RunE:  fitPlanck,
	}
	fitCmd.Flags().Float64SliceVar(&wavelengths, "wavelengths", []float64{200, 250, 300, 350, 400, 450, 500}, "wavelengths in nm")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list photocathode materials",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-18s %-10s %6.1f nm  %5.2f W/m²  %4.2f cm²\n", name, p.Material, p.WavelengthNm, p.Intensity, p.AreaCm2)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved I-V curve",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&jsonOut, "json", false, "print as JSON instead of CSV")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the effective config to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(evalCmd, measureCmd, sweepCmd, fitCmd, materialsCmd, presetsCmd, listCmd, showCmd, plotCmd, exportCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, preset, config file, PHOTOLAB_* environment
// and explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("material") {
		cfg.Material = material
	}
	if flags.Changed("wavelength") {
		cfg.WavelengthNm = wavelength
	}
	if flags.Changed("intensity") {
		cfg.Intensity = intensity
	}
	if flags.Changed("area") {
		cfg.AreaCm2 = area
	}
	if flags.Changed("voltage") {
		cfg.VoltageV = voltage
	}
	if flags.Changed("from") {
		cfg.Sweep.From = sweepFrom
	}
	if flags.Changed("to") {
		cfg.Sweep.To = sweepTo
	}
	if flags.Changed("step") {
		cfg.Sweep.Step = sweepStep
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if cfg.Seed == 0 {
		s, err := sampler.NewSeed()
		if err != nil {
			return nil, err
		}
		cfg.Seed = s
	}

	log = logging.NewLogger(cfg.LogLevel, os.Stderr)
	log.Debug("config resolved", "material", cfg.Material, "wavelength_nm", cfg.WavelengthNm, "seed", cfg.Seed)
	return cfg, nil
}

func newLab(cfg *config.Config) *experiment.Lab {
	return experiment.New(experiment.Config{Seed: cfg.Seed}, experiment.WithLogger(log))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return tui.RunInteractive(newLab(cfg), tui.Options{
		Params:     cfg.Parameters(),
		SweepFrom:  cfg.Sweep.From,
		SweepTo:    cfg.Sweep.To,
		SweepStep:  cfg.Sweep.Step,
		ExportPath: "photolab.csv",
	})
}

func evaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lab := newLab(cfg)

	res, err := lab.Evaluate(cfg.Parameters())
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	mat, _ := lab.Material(cfg.Material)
	fmt.Printf("%s %s (%s), W = %.2f eV\n", tui.Swatch(mat.DisplayColor), mat.Name, mat.Symbol, mat.WorkFunctionEv)
	printResult(res)
	return nil
}

func printResult(res physics.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frequency\t%.4e Hz\n", res.FrequencyHz)
	fmt.Fprintf(w, "photon energy\t%.4f eV\n", res.PhotonEnergyEv)
	fmt.Fprintf(w, "max kinetic energy\t%.4f eV\n", res.MaxKineticEnergyEv)
	fmt.Fprintf(w, "threshold wavelength\t%.1f nm\n", res.ThresholdWavelengthNm)
	fmt.Fprintf(w, "stopping potential\t%.4f V\n", res.StoppingPotentialV)
	fmt.Fprintf(w, "saturation current\t%.6f uA\n", res.SaturationCurrentUa)
	fmt.Fprintf(w, "current\t%.6f uA\n", res.CurrentUa)
	fmt.Fprintf(w, "emission\t%v\n", res.EmissionOccurs)
	w.Flush()
}

func measure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	lab := newLab(cfg)
	p := cfg.Parameters()

	res, err := lab.Evaluate(p)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if _, err := lab.Measure(p, res); err != nil {
			return err
		}
	}

	printRecords(lab.Snapshot(count))
	return finishDataset(lab, cfg)
}

func printRecords(recs []ledger.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tMATERIAL\tLAMBDA\tV\tMEAN uA\tSTDDEV uA\tSTDERR uA")
	for _, r := range recs {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.3f\t%.6f\t%.3e\t%.3e\n",
			r.Sequence, r.Material, r.Parameters.WavelengthNm, r.Parameters.AppliedVoltageV,
			r.MeanUa, r.StdDevUa, r.StdErrorUa)
	}
	w.Flush()
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return err
	}
	lab := newLab(cfg)

	recs, err := lab.Sweep(cfg.Parameters(), cfg.Sweep.From, cfg.Sweep.To, cfg.Sweep.Step)
	if err != nil {
		return err
	}

	curve := lab.IVCurve()
	fmt.Printf("%s: %d points, %.2f V to %.2f V\n\n", recs[0].Material, len(recs), cfg.Sweep.From, cfg.Sweep.To)
	fmt.Println(plotCurve(curve, "mean current (uA) vs sweep point"))
	fmt.Println()

	if vs, ok := analysis.StoppingPotential(curve); ok {
		fmt.Printf("stopping potential (measured): %.3f V  (model %.3f V)\n", vs, recs[0].Result.StoppingPotentialV)
	} else {
		fmt.Println("no photocurrent: light is below the threshold frequency")
	}
	if sat, ok := analysis.SaturationCurrent(curve); ok {
		fmt.Printf("saturation current: %.6f uA\n", sat)
	}

	if svgOut != "" {
		svg := export.IVCurveSVG(curve, 640, 400, "#00ff88")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgOut)
	}
	return finishDataset(lab, cfg)
}

func plotCurve(curve []ledger.IVPoint, caption string) string {
	data := make([]float64, len(curve))
	for i, p := range curve {
		data[i] = p.CurrentUa
	}
	return asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Precision(6),
		asciigraph.Caption(caption),
	)
}

func curveMetrics(curve []ledger.IVPoint) map[string]float64 {
	m := map[string]float64{}
	if vs, ok := analysis.StoppingPotential(curve); ok {
		m["stopping_potential_v"] = vs
	}
	if sat, ok := analysis.SaturationCurrent(curve); ok {
		m["saturation_current_ua"] = sat
	}
	return m
}

// finishDataset writes the CSV file and/or saves the run when requested.
func finishDataset(lab *experiment.Lab, cfg *config.Config) error {
	if csvOut != "" {
		text, err := lab.Export()
		if err != nil {
			return err
		}
		if err := os.WriteFile(csvOut, []byte(text), 0644); err != nil {
			return err
		}
		fmt.Printf("csv: %s\n", csvOut)
	}

	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Material, lab.Seed(), lab.Records(), curveMetrics(lab.IVCurve()))
		if err != nil {
			return err
		}
		log.Info("run saved", "run_id", runID, "records", lab.Count())
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func fitPlanck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ens := experiment.NewEnsemble(experiment.Config{Seed: cfg.Seed})
	scan, err := ens.Scan(cmd.Context(), cfg.Parameters(), wavelengths, physics.MinVoltage, 0, cfg.Sweep.Step)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAMBDA nm\tFREQ Hz\tVs measured\tVs model")
	for _, pt := range scan {
		measured := "-"
		if pt.Resolved {
			measured = fmt.Sprintf("%.3f", pt.MeasuredStopV)
		}
		fmt.Fprintf(w, "%.1f\t%.4e\t%s\t%.3f\n", pt.WavelengthNm, pt.Result.FrequencyHz, measured, pt.Result.StoppingPotentialV)
	}
	w.Flush()

	fit, err := analysis.MillikanFit(experiment.FrequencyPoints(scan))
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			return fmt.Errorf("need at least two emitting wavelengths: %w", err)
		}
		return err
	}

	mat, _ := experiment.New(experiment.Config{}).Material(cfg.Material)
	fmt.Printf("\nh  = %.4e eV·s  (reference %.4e)\n", fit.PlanckEvS, physics.PlanckEvS)
	fmt.Printf("W  = %.3f eV     (catalog %.3f)\n", fit.WorkFunctionEv, mat.WorkFunctionEv)
	fmt.Printf("f0 = %.4e Hz\n", fit.ThresholdFrequency)
	fmt.Printf("R² = %.6f over %d points\n", fit.R2, fit.Points)
	return nil
}

func listMaterials(cmd *cobra.Command, args []string) error {
	lab := experiment.New(experiment.Config{})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tSYMBOL\tW eV\tTHRESHOLD nm")
	for _, m := range lab.Catalog().List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.1f\n",
			tui.Swatch(m.DisplayColor), m.ID, m.Name, m.Symbol, m.WorkFunctionEv, physics.ThresholdWavelength(m.WorkFunctionEv))
	}
	return w.Flush()
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tSAVED\tPOINTS\tLAMBDA\tVOLTAGE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1fnm\t%.2f..%.2fV\n",
			run.ID,
			run.Material,
			humanize.Time(run.Timestamp),
			run.Count,
			run.WavelengthNm,
			run.VoltageMinV,
			run.VoltageMaxV,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	curve := make([]ledger.IVPoint, len(rows))
	for i, r := range rows {
		curve[i] = ledger.IVPoint{VoltageV: r.AppliedVoltageV, CurrentUa: r.MeanCurrentUa}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("material: %s\n", meta.Material)
	fmt.Printf("points: %d\n\n", len(rows))
	fmt.Println(plotCurve(curve, fmt.Sprintf("%s @ %.0f nm", strings.ToLower(rows[0].Material), meta.WavelengthNm)))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}

	if !jsonOut {
		data, err := os.ReadFile(st.CSVPath(runID))
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", storage.ErrRunNotFound, runID)
			}
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}

	recs := make([]ledger.Record, len(rows))
	for i, r := range rows {
		recs[i] = ledger.Record{
			Sequence:  i + 1,
			Timestamp: r.Timestamp,
			Material:  r.Material,
			Parameters: physics.Parameters{
				MaterialID:      meta.Material,
				WavelengthNm:    r.WavelengthNm,
				IntensityWPerM2: r.IntensityWPerM2,
				AreaCm2:         r.AreaCm2,
				AppliedVoltageV: r.AppliedVoltageV,
			},
			Result: physics.Result{
				WorkFunctionEv: r.WorkFunctionEv,
				PhotonEnergyEv: r.PhotonEnergyEv,
			},
			MeanUa:      r.MeanCurrentUa,
			StdDevUa:    r.StdDevUa,
			StdErrorUa:  r.StdErrorUa,
			SampleCount: r.MeasurementsCount,
			Samples:     r.Readings,
		}
	}

	ds := export.NewDataset(meta.Material, meta.Seed, recs)
	ds.RunID = meta.ID
	return export.WriteJSON(os.Stdout, ds)
}
