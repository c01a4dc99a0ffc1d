package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/metrics"
	"github.com/san-kum/fluidsim/internal/sim"
	"github.com/san-kum/fluidsim/internal/storage"
	"github.com/san-kum/fluidsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	particles  int
	frames     int
	substeps   int
	layout     string
	seed       int64
	jitter     float64
	viscosity  float64
	tension    float64
	gravity    float64
	// Scripted pointer for headless runs
	stir bool
	// Output file for export
	outFile string
	// Particle counts and frames for bench
	benchCounts string
	benchFrames int
)

// main registers the commands and runs the preset menu when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "fluidsim",
		Short: "2-D particle fluid in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fluidsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store its diagnostics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().BoolVar(&stir, "stir", false, "stir the fluid with a circling pointer")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  printConfig,
	}
	addConfigFlags(configCmd)
	configCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure frame throughput across particle counts",
		RunE:  bench,
	}
	benchCmd.Flags().StringVar(&benchCounts, "counts", "100,400,1000,2000", "comma separated particle counts")
	benchCmd.Flags().IntVar(&benchFrames, "frames", 100, "frames per count")

	rootCmd.AddCommand(runCmd, liveCmd, configCmd, listCmd, plotCmd, exportCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	def := fluid.DefaultParams()
	cmd.Flags().StringVar(&preset, "preset", "default", "preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "fluid particle count")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "solver sub-steps per frame")
	cmd.Flags().StringVar(&layout, "layout", "centered", "initial layout (centered, dam_break)")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "jitter seed")
	cmd.Flags().Float64Var(&jitter, "jitter", 0, "initial position jitter")
	cmd.Flags().Float64Var(&viscosity, "viscosity", def.Viscosity, "artificial viscosity coefficient")
	cmd.Flags().Float64Var(&tension, "tension", def.Tension, "surface tension coefficient")
	cmd.Flags().Float64Var(&gravity, "gravity", def.Gravity, "gravity (positive is down)")
}

// buildConfig layers the preset, then the config file, then any flags
// set explicitly on the command line.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("layout") {
		cfg.Layout = layout
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("jitter") {
		cfg.Jitter = jitter
	}
	if flags.Changed("viscosity") {
		cfg.Fluid.Viscosity = viscosity
	}
	if flags.Changed("tension") {
		cfg.Fluid.Tension = tension
	}
	if flags.Changed("gravity") {
		cfg.Fluid.Gravity = gravity
	}
	if flags.Lookup("frames") != nil && flags.Changed("frames") {
		cfg.Frames = frames
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runName() string {
	if configFile != "" {
		base := filepath.Base(configFile)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return preset
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

	drv, err := sim.New(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default() {
		drv.AddMetric(m)
	}
	if stir {
		drv.SetInput(sim.Stir(cfg.Width/2, cfg.Height*0.75, cfg.Width/4, 2))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	name := runName()
	fmt.Fprintf(out, "running %s: %d particles, %d frames...\n", name, cfg.Particles, cfg.Frames)
	start := time.Now()

	result, err := drv.Run(ctx, cfg.Frames)
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(out, "stopped early: %v\n", err)
	}

	runID, saveErr := st.Save(name, cfg, result, elapsed)
	if saveErr != nil {
		return saveErr
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "frames: %d (%.3fs simulated)\n", result.Frames, result.Time)
	fmt.Fprintln(out, "\nmetrics:")
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Fprintf(out, "  %-16s %.6f\n", k, result.Metrics[k])
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	drv, err := sim.New(cfg)
	if err != nil {
		return err
	}
	return viz.Run(drv, runName())
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPARTICLES\tLAYOUT\tFRAMES\tWALL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%.2fs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Particles,
			run.Config.Layout,
			run.Frames,
			run.WallSeconds,
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

	series, times, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "particles: %d  layout: %s\n", meta.Config.Particles, meta.Config.Layout)
	fmt.Fprintf(out, "frames: %d\n\n", len(times))

	for _, name := range sortedKeys(series) {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs frame", name)),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile != "" {
		return st.ExportFile(outFile, args[0])
	}
	return st.Export(cmd.OutOrStdout(), args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tLAYOUT\tVISCOSITY\tTENSION\tFRAMES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%.1f\t%.1f\t%d\n",
			name, p.Particles, p.Layout, p.Fluid.Viscosity, p.Fluid.Tension, p.Frames)
	}
	return w.Flush()
}

// bench runs one driver per particle count concurrently and reports
// throughput. Each driver is single-threaded.
func bench(cmd *cobra.Command, args []string) error {
	counts, err := parseCounts(benchCounts)
	if err != nil {
		return err
	}

	cfgs := make([]*config.Config, len(counts))
	for i, n := range counts {
		cfg := config.DefaultConfig()
		cfg.Particles = n
		cfg.Frames = benchFrames
		cfgs[i] = cfg
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %d frames at %v particles\n\n", benchFrames, counts)

	start := time.Now()
	results, err := sim.NewEnsemble(cfgs, func() []sim.Metric {
		return []sim.Metric{metrics.NewTruncation()}
	}).Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tFRAMES\tSIM TIME\tTRUNCATED")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.3fs\t%.0f\n", counts[i], r.Frames, r.Time, r.Metrics["truncated"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := 0
	for _, r := range results {
		total += r.Frames
	}
	fmt.Fprintf(out, "\nwall: %v  frames/sec: %.1f\n", elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return nil
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid particle count %q: %w", part, err)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no particle counts given")
	}
	return counts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
