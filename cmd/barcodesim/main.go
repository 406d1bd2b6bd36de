package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mchu-1/barcode-simulator/internal/config"
	"github.com/mchu-1/barcode-simulator/internal/experiment"
	"github.com/mchu-1/barcode-simulator/internal/logging"
	"github.com/mchu-1/barcode-simulator/internal/population"
	"github.com/mchu-1/barcode-simulator/internal/render"
	"github.com/mchu-1/barcode-simulator/internal/storage"
	"github.com/mchu-1/barcode-simulator/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	colormap   string
	scale      int
	interval   time.Duration
	maxSize    int

	barcodes     int
	generations  int
	parity       int
	wells        int
	cells        int
	seed         uint64
	maxCells     int
	continuation float64
	rounds       int
	divisions    int
	loss         float64
	splits       int
)

// main registers the barcodesim commands and exits with status 1 if the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "barcodesim",
		Short:        "simulate evolving DNA barcodes in clonal populations",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "output", "o", "./out", "output directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate generations and save lineage heatmaps",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimulationFlags(runCmd)
	runCmd.Flags().IntVar(&scale, "scale", 8, "heatmap pixels per clone")
	runCmd.Flags().StringVar(&colormap, "colormap", "mako", "colormap (mako, greys)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate with a live terminal heatmap",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimulationFlags(liveCmd)
	liveCmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "pause between generations")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id] [generation]",
		Short: "show a lineage heatmap in the terminal",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&colormap, "colormap", "mako", "colormap (mako, greys)")
	showCmd.Flags().IntVar(&maxSize, "size", 32, "maximum heatmap side in cells")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-generation statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [generation]",
		Short: "export a lineage matrix to CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [generation]",
		Short: "export a lineage heatmap as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&colormap, "colormap", "mako", "colormap (mako, greys)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tN\tK\tPARITY\tWELLS\tCELLS\tPOLICY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
					name, p.Barcodes, p.Generations, p.Parity, p.Wells, p.Cells, p.Policy)
			}
			return w.Flush()
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file with default or preset values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "preset to write")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimulationFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&barcodes, "barcodes", "n", def.Barcodes, "barcode space size")
	cmd.Flags().IntVarP(&generations, "generations", "k", def.Generations, "number of generations")
	cmd.Flags().IntVar(&parity, "parity", def.Parity, "encoded recording width")
	cmd.Flags().IntVar(&wells, "wells", def.Wells, "starting wells")
	cmd.Flags().IntVar(&cells, "cells", def.Cells, "cells per starting well")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().IntVar(&maxCells, "max-cells", 0, "abort if a well grows past this many cells (0 = no limit)")
	cmd.Flags().Float64Var(&continuation, "continuation", def.Policy.Continuation, "recording continuation probability")
	cmd.Flags().IntVar(&rounds, "rounds", def.Policy.Rounds, "transfection rounds per generation")
	cmd.Flags().IntVar(&divisions, "divisions", def.Policy.Divisions, "divisions per generation")
	cmd.Flags().Float64Var(&loss, "loss", def.Policy.Loss, "fraction of cells lost per generation")
	cmd.Flags().IntVar(&splits, "splits", def.Policy.Splits, "clones per well")
}

// resolveConfig layers preset, config file and changed flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
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

	flags := cmd.Flags()
	if flags.Changed("barcodes") {
		cfg.Barcodes = barcodes
	}
	if flags.Changed("generations") {
		cfg.Generations = generations
	}
	if flags.Changed("parity") {
		cfg.Parity = parity
	}
	if flags.Changed("wells") {
		cfg.Wells = wells
	}
	if flags.Changed("cells") {
		cfg.Cells = cells
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("max-cells") {
		cfg.MaxCells = maxCells
	}
	if flags.Changed("continuation") {
		cfg.Policy.Continuation = continuation
	}
	if flags.Changed("rounds") {
		cfg.Policy.Rounds = rounds
	}
	if flags.Changed("divisions") {
		cfg.Policy.Divisions = divisions
	}
	if flags.Changed("loss") {
		cfg.Policy.Loss = loss
	}
	if flags.Changed("splits") {
		cfg.Policy.Splits = splits
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(logLevel, os.Stderr)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta, err := st.Create(*cfg, cfg.Seed)
	if err != nil {
		return err
	}
	logger = logger.With("run", meta.ID)

	exp, err := experiment.New(*cfg, population.NewSource(cfg.Seed), logger)
	if err != nil {
		return err
	}
	exp.AddObserver(experiment.ObserverFunc(func(s experiment.Snapshot) error {
		return saveGeneration(st, meta.ID, s, logger)
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d generations (n=%d, %s)...\n", cfg.Generations, cfg.Barcodes, cfg.Policy)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	meta.Generations = result.Generations
	meta.Status = storage.StatusComplete
	if runErr != nil {
		meta.Status = storage.StatusFailed
		meta.Error = runErr.Error()
	}
	if err := st.SaveMetadata(meta); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("seed: %d\n\n", cfg.Seed)
	return printStats(result.Generations)
}

func saveGeneration(st *storage.Store, runID string, s experiment.Snapshot, logger *slog.Logger) error {
	if err := st.SaveMatrix(runID, s.Generation, s.Matrix); err != nil {
		return err
	}
	if s.Matrix.Size() == 0 {
		logger.Warn("no clones left, skipping heatmap", "generation", s.Generation)
		return nil
	}
	path := st.HeatmapPath(runID, s.Generation)
	logger.Debug("writing heatmap", "generation", s.Generation, "path", path)
	return render.WritePNG(path, s.Matrix, render.LookupColormap(colormap), scale)
}

func printStats(gens []experiment.Stats) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GEN\tCLONES\tCELLS\tMEAN_LEN\tMAX_LEN\tEMPTY\tTIME")
	for _, s := range gens {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%d\t%.1f%%\t%v\n",
			s.Generation, s.Clones, s.Cells, s.MeanRecordingLength, s.MaxRecordingLength,
			100*s.EmptyFraction, s.Elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the view; only warnings and errors reach stderr.
	logger := logging.NewLogger("error", os.Stderr)

	exp, err := experiment.New(*cfg, population.NewSource(cfg.Seed), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return viz.Run(ctx, exp, interval)
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
	fmt.Fprintln(w, "ID\tTIME\tSTATUS\tN\tK\tWELLS\tCELLS\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Config.Barcodes,
			run.Config.Generations,
			run.Config.Wells,
			run.Config.Cells,
			run.Seed,
		)
	}
	return w.Flush()
}

// generationArg parses args[1], defaulting to the run's last generation.
func generationArg(meta *storage.RunMetadata, args []string) (int, error) {
	if len(args) < 2 {
		if len(meta.Generations) == 0 {
			return 0, fmt.Errorf("run %s has no generations", meta.ID)
		}
		return meta.Generations[len(meta.Generations)-1].Generation, nil
	}
	g, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid generation %q: %w", args[1], err)
	}
	return g, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	g, err := generationArg(meta, args)
	if err != nil {
		return err
	}
	m, err := st.LoadMatrix(meta.ID, g)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("generation: %d\n\n", g)
	fmt.Println(render.Terminal(m, render.LookupColormap(colormap), maxSize))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if len(meta.Generations) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("generations: %d\n\n", len(meta.Generations))

	series := []struct {
		caption string
		value   func(experiment.Stats) float64
	}{
		{"clones", func(s experiment.Stats) float64 { return float64(s.Clones) }},
		{"cells", func(s experiment.Stats) float64 { return float64(s.Cells) }},
		{"mean recording length", func(s experiment.Stats) float64 { return s.MeanRecordingLength }},
		{"empty recording fraction", func(s experiment.Stats) float64 { return s.EmptyFraction }},
	}

	for _, sr := range series {
		data := make([]float64, len(meta.Generations))
		for i, s := range meta.Generations {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
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

func loadMatrixArgs(args []string) (*storage.Store, int, error) {
	g, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, fmt.Errorf("invalid generation %q: %w", args[1], err)
	}
	return storage.New(dataDir), g, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, g, err := loadMatrixArgs(args)
	if err != nil {
		return err
	}
	m, err := st.LoadMatrix(args[0], g)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	header := []string{"clone"}
	for j := range m {
		header = append(header, fmt.Sprintf("c%d", j))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range m {
		rec := []string{fmt.Sprintf("c%d", i)}
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st, g, err := loadMatrixArgs(args)
	if err != nil {
		return err
	}
	m, err := st.LoadMatrix(args[0], g)
	if err != nil {
		return err
	}
	fmt.Println(render.SVG(m, render.LookupColormap(colormap), 10))
	return nil
}
