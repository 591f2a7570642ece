package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/cruisesim/internal/config"
	"github.com/san-kum/cruisesim/internal/cruise"
	"github.com/san-kum/cruisesim/internal/experiment"
	"github.com/san-kum/cruisesim/internal/optim"
	"github.com/san-kum/cruisesim/internal/report"
	"github.com/san-kum/cruisesim/internal/storage"
	"github.com/san-kum/cruisesim/internal/vehicle"
	"github.com/san-kum/cruisesim/internal/viz"
)

var (
	dataDir string

	dt        float64
	horizon   float64
	speed     float64
	initSpeed float64

	plant      string
	integrator string
	controller string

	kp         float64
	ki         float64
	kd         float64
	limited    bool
	uMin       float64
	uMax       float64
	antiWindup bool

	gradeProfile string
	gradeStart   float64
	gradeRise    float64
	gradeDeg     float64
	gradePeriod  float64

	mass            float64
	rollingFriction float64
	aeroDrag        float64
	gear            int

	configFile string
	preset     string

	outDir string

	kpMin, kpMax float64
	kiMin, kiMax float64
	gridSteps    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cruisesim",
		Short: "cruise-control simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cruisesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and persist the result",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "terminal plots of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	plotPNGCmd := &cobra.Command{
		Use:   "plot-png [run_id]",
		Short: "write PNG plots of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotPNG,
	}
	plotPNGCmd.Flags().StringVar(&outDir, "out", "plots", "output directory")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search PI gains for the lowest tracking error",
		RunE:  sweepGains,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&kpMin, "kp-min", 100, "kp lower bound")
	sweepCmd.Flags().Float64Var(&kpMax, "kp-max", 1200, "kp upper bound")
	sweepCmd.Flags().Float64Var(&kiMin, "ki-min", 5, "ki lower bound")
	sweepCmd.Flags().Float64Var(&kiMax, "ki-max", 100, "ki upper bound")
	sweepCmd.Flags().IntVar(&gridSteps, "steps", 8, "grid points per gain")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, plotPNGCmd, exportCmd, exportJSONCmd, exportCSVCmd, compareCmd, sweepCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&horizon, "time", config.DefaultHorizon, "horizon")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "reference speed m/s")
	cmd.Flags().Float64Var(&initSpeed, "init-speed", config.DefaultSpeed, "initial speed m/s")
	cmd.Flags().StringVar(&plant, "plant", "force", "plant (force|drivetrain)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler|rk4)")
	cmd.Flags().StringVar(&controller, "controller", "pi", "controller (pi|pid|none)")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	cmd.Flags().Float64Var(&kd, "kd", 0, "derivative gain")
	cmd.Flags().BoolVar(&limited, "limited", true, "saturate controller output")
	cmd.Flags().Float64Var(&uMin, "umin", 0, "control lower limit")
	cmd.Flags().Float64Var(&uMax, "umax", config.DefaultForceMax, "control upper limit")
	cmd.Flags().BoolVar(&antiWindup, "anti-windup", true, "freeze integral while saturated")
	cmd.Flags().StringVar(&gradeProfile, "grade", "flat", "grade profile (flat|hill|rolling)")
	cmd.Flags().Float64Var(&gradeStart, "grade-start", 10, "grade onset time s")
	cmd.Flags().Float64Var(&gradeRise, "grade-rise", 1, "hill ramp duration s")
	cmd.Flags().Float64Var(&gradeDeg, "grade-deg", 4, "grade angle deg")
	cmd.Flags().Float64Var(&gradePeriod, "grade-period", 30, "rolling grade period s")
	cmd.Flags().Float64Var(&mass, "mass", 1000, "vehicle mass kg")
	cmd.Flags().Float64Var(&rollingFriction, "friction", 0.01, "rolling friction coefficient")
	cmd.Flags().Float64Var(&aeroDrag, "drag", 1.2, "aero drag coefficient")
	cmd.Flags().IntVar(&gear, "gear", 4, "gear (drivetrain plant)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig merges preset, config file and flags. Precedence, lowest to
// highest: defaults, preset, config file, explicitly changed flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Horizon = horizon
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
		if !flags.Changed("init-speed") {
			cfg.InitSpeed = speed
		}
	}
	if flags.Changed("init-speed") {
		cfg.InitSpeed = initSpeed
	}
	if flags.Changed("plant") {
		cfg.Plant = plant
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Gains.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Gains.Kd = kd
	}
	if flags.Changed("limited") {
		cfg.Gains.Limited = limited
	}
	if flags.Changed("umin") {
		cfg.Gains.Min = uMin
	}
	if flags.Changed("umax") {
		cfg.Gains.Max = uMax
	}
	if flags.Changed("anti-windup") {
		cfg.Gains.AntiWindup = antiWindup
	}
	if flags.Changed("grade") {
		cfg.Grade.Profile = gradeProfile
	}
	if flags.Changed("grade-start") {
		cfg.Grade.Start = gradeStart
	}
	if flags.Changed("grade-rise") {
		cfg.Grade.Rise = gradeRise
	}
	if flags.Changed("grade-deg") {
		cfg.Grade.AngleDeg = gradeDeg
	}
	if flags.Changed("grade-period") {
		cfg.Grade.Period = gradePeriod
	}
	if flags.Changed("mass") {
		cfg.Vehicle.Mass = mass
	}
	if flags.Changed("friction") {
		cfg.Vehicle.RollingFriction = rollingFriction
	}
	if flags.Changed("drag") {
		cfg.Vehicle.AeroDrag = aeroDrag
	}
	if flags.Changed("gear") {
		cfg.Vehicle.Gear = gear
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s plant on %s grade...\n", cfg.Plant, cfg.Grade.Profile)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Plant:      cfg.Plant,
		Dt:         cfg.Dt,
		Horizon:    cfg.Horizon,
		Speed:      cfg.Speed,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Profile:    cfg.Grade.Profile,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", result.Len())
	fmt.Printf("final speed: %.3f m/s (ref %.3f)\n", result.Final().Speed, result.Final().Ref)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
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
	fmt.Fprintln(w, "ID\tPLANT\tTIME\tHORIZON\tDT\tINTEG\tCTRL\tGRADE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%.3fs\t%s\t%s\t%s\n",
			run.ID,
			run.Plant,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Horizon,
			run.Dt,
			run.Integrator,
			run.Controller,
			run.Profile,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s, grade: %s\n", meta.Plant, meta.Profile)
	fmt.Printf("samples: %d\n\n", len(samples))

	speeds := make([]float64, len(samples))
	controls := make([]float64, len(samples))
	grades := make([]float64, len(samples))
	for i, s := range samples {
		speeds[i] = s.Speed
		controls[i] = s.Control
		grades[i] = s.Grade
	}

	fmt.Println(report.Ascii(speeds, fmt.Sprintf("velocity [m/s] (ref %.1f)", meta.Speed)))
	fmt.Println()
	fmt.Println(report.Ascii(controls, "control input"))
	fmt.Println()
	fmt.Println(report.Ascii(grades, "road grade [rad]"))

	return nil
}

func plotPNG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if err := report.WritePlots(outDir, samples); err != nil {
		return err
	}
	fmt.Printf("plots written to %s\n", outDir)
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

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, samples)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "vref", "v", "u", "grade"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.FormatFloat(s.Ref, 'f', 6, 64),
			strconv.FormatFloat(s.Speed, 'f', 6, 64),
			strconv.FormatFloat(s.Control, 'f', 6, 64),
			strconv.FormatFloat(s.Grade, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.3f, horizon=%.1fs, grade=%s)\n\n", cfg.Dt, cfg.Horizon, cfg.Grade.Profile)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_V\tTRACKING_RMS\tTIME")

	for _, name := range args {
		runCfg := *cfg
		runCfg.Integrator = name

		exp, err := experiment.FromConfig(&runCfg)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)

		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%v\n",
			name, result.Final().Speed, result.Metrics["tracking_rms"], elapsed)
	}

	return w.Flush()
}

func sweepGains(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	search := optim.NewGridSearch(
		[]string{"kp", "ki"},
		[][]float64{
			optim.Linspace(kpMin, kpMax, gridSteps),
			optim.Linspace(kiMin, kiMax, gridSteps),
		},
	)

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		trial := *cfg
		trial.Gains.Kp = params["kp"]
		trial.Gains.Ki = params["ki"]
		return experiment.FromConfig(&trial)
	}

	fmt.Printf("sweeping %dx%d gain grid...\n", gridSteps, gridSteps)
	best, val, err := search.Search(context.Background(), build, "tracking_rms")
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no stable gain combination found")
	}

	fmt.Printf("best: kp=%.2f ki=%.2f (tracking_rms=%.6f)\n", best["kp"], best["ki"], val)
	return nil
}

// validateComponents rejects bad plant or controller parameters before the
// live view starts stepping; Simulator.Run does this itself, the live loop
// does not.
func validateComponents(plant cruise.System, ctrl cruise.Controller) error {
	if v, ok := plant.(cruise.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if v, ok := ctrl.(cruise.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	plantSys, err := registry.GetPlant(cfg.Plant, cfg.Vehicle)
	if err != nil {
		return err
	}
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := registry.GetController(cfg.Controller, cfg.Gains)
	if err != nil {
		return err
	}
	grade, err := registry.GetProfile(cfg.Grade.Profile, cfg.Grade)
	if err != nil {
		return err
	}

	if err := validateComponents(plantSys, ctrl); err != nil {
		return err
	}

	m := viz.NewModel(plantSys, integ, ctrl, vehicle.ConstantRef(cfg.Speed), grade, []float64{cfg.InitSpeed}, cfg.Dt)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
