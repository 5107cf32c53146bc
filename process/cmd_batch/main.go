// Command cmd_batch fills picklist spreadsheets for every photo in a
// directory, optionally watching it for new photos.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"picklist/pkg/config"
	_ "picklist/pkg/contour/cvcontour"
	"picklist/pkg/logging"
	"picklist/pkg/scan"
	"picklist/process/batch"
)

var (
	configPath   string
	dir          string
	outDir       string
	processedDir string
	keepSources  bool
	workers      int
	preset       string
	itemsFile    string
	archiveMax   int64
	dryRun       bool
	verbose      bool

	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cmd_batch",
	Short: "Fill picklist spreadsheets for a directory of photos",
	Long: `Scans every picklist photo in --dir, writes <name>.xlsx into --out and
moves the photo into --processed so it is handled only once.

Examples:
  cmd_batch --dir ./inbox
  cmd_batch --dir ./inbox --dry-run
  cmd_batch watch --dir ./inbox --workers 2`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOnce,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process existing photos, then keep processing new ones until interrupted",
	RunE:  runWatch,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (default config.yaml)")
	pf.StringVarP(&dir, "dir", "d", "inbox", "directory with picklist photos")
	pf.StringVar(&outDir, "out", "", "output directory for spreadsheets (default <dir>/out)")
	pf.StringVar(&processedDir, "processed", "", "archive directory for finished photos (default <dir>/processed)")
	pf.BoolVar(&keepSources, "keep", false, "leave finished photos in place")
	pf.IntVarP(&workers, "workers", "w", 0, "worker pool size (default NumCPU)")
	pf.StringVar(&preset, "preset", "", "marks preset (default from config)")
	pf.StringVar(&itemsFile, "items", "", "YAML picklist items (default from config)")
	pf.Int64Var(&archiveMax, "archive-max-bytes", 0, "downsize archived photos larger than this")
	pf.BoolVar(&dryRun, "dry-run", false, "only list the photos that would be processed")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every file")
	rootCmd.AddCommand(watchCmd)
}

func setup(ctx context.Context) (*batch.Runner, *scan.Scanner, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	mode := "release"
	if verbose {
		mode = "debug"
	}
	log := logging.Must(mode)
	if !verbose {
		log = log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	if itemsFile != "" {
		cfg.Picklist.ItemsFile = itemsFile
	}
	scanner, err := scan.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	r := batch.New(scanner, batch.Options{
		Dir:             dir,
		OutDir:          outDir,
		ProcessedDir:    processedDir,
		KeepSources:     keepSources,
		ArchiveMaxBytes: archiveMax,
		Workers:         workers,
		Preset:          preset,
		SheetName:       cfg.Picklist.SheetName,
		Log:             log,
	})
	return r, scanner, log, nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	files, err := listCandidates()
	if err != nil || dryRun {
		return err
	}
	r, scanner, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer scanner.Close()
	return processAll(cmd.Context(), r, files)
}

func runWatch(cmd *cobra.Command, args []string) error {
	files, err := listCandidates()
	if err != nil || dryRun {
		return err
	}
	r, scanner, log, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer scanner.Close()
	if err := processAll(cmd.Context(), r, files); err != nil {
		colorYellow.Printf("initial pass: %v\n", err)
	}
	colorCyan.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return r.Watch(cmd.Context(), printOutcome)
}

func listCandidates() ([]string, error) {
	files, err := batch.ListImageFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	colorCyan.Printf("Found %d candidate files in %s\n", len(files), dir)
	if dryRun {
		for _, f := range files {
			fmt.Println("  " + f)
		}
	}
	return files, nil
}

func processAll(ctx context.Context, r *batch.Runner, files []string) error {
	fmt.Printf("Processing with %d workers\n", batch.EffectiveWorkers(workers))
	outcomes := r.Run(ctx, files)
	failed := 0
	for _, o := range outcomes {
		printOutcome(o)
		if o.Err != nil {
			failed++
		}
	}
	printSummary(outcomes)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

func printOutcome(o batch.Outcome) {
	switch {
	case o.Err != nil:
		colorRed.Printf("  ✗ %s: %v\n", o.Name, o.Err)
	case o.Skipped:
		colorYellow.Printf("  - %s: already done (%s)\n", o.Name, o.Output)
	default:
		colorGreen.Printf("  ✓ %s", o.Name)
		fmt.Printf(" → %s (%d regions, %d checked)\n", o.Output, o.Regions, o.Checks)
	}
}

func printSummary(outcomes []batch.Outcome) {
	var done, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Skipped:
			skipped++
		default:
			done++
		}
	}
	fmt.Println()
	colorGreen.Printf("done: %d  ", done)
	colorYellow.Printf("skipped: %d  ", skipped)
	colorRed.Printf("failed: %d\n", failed)
}
