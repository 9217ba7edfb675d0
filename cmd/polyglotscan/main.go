// Package main is the polyglotscan CLI entrypoint: a one-shot scan of a
// filesystem root that emits a single hierarchical JSON document describing
// per-file lines-of-code, indentation, timestamps, git history and coupling
// indicators.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teratoma-labs/polyglotscan/internal/cliconfig"
	"github.com/teratoma-labs/polyglotscan/internal/obs"
	"github.com/teratoma-labs/polyglotscan/pkg/coupling"
	"github.com/teratoma-labs/polyglotscan/pkg/report"
	"github.com/teratoma-labs/polyglotscan/pkg/serialize"
	"github.com/teratoma-labs/polyglotscan/pkg/tree"
	"github.com/teratoma-labs/polyglotscan/pkg/version"
	"github.com/teratoma-labs/polyglotscan/pkg/walker"
)

func main() {
	version.InitBinaryVersion()

	root := &cobra.Command{
		Use:           "polyglotscan",
		Short:         "Polyglot source-repository analyzer",
		Long:          "Walks a filesystem root and emits a hierarchical JSON document of per-file LOC, indentation, timestamp, git and coupling indicators.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newScanCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "polyglotscan %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

// scanCommand holds the flag values bound by cobra for the scan command.
type scanCommand struct {
	root string
	name string
	out  string
	id   string

	noGit          bool
	noDetailedGit  bool
	noFileStats    bool
	coupling       bool
	followSymlinks bool
	years          int
	cacheDir       string

	couplingBucketDays            int
	couplingMinBursts             int
	couplingMinRatio              float64
	couplingMinActivityGapMinutes int
	couplingTimeOverlapMinutes    int
	couplingMinDistance           int
	couplingMaxCommonRoots        int

	configFile     string
	validateSchema string
	couplingPlot   string
	metricsOut     string

	verbose bool
	quiet   bool
	noColor bool
	logJSON bool
}

// errCouplingPlotRequiresCoupling is returned when --coupling-plot is passed
// without --coupling.
var errCouplingPlotRequiresCoupling = errors.New("--coupling-plot requires --coupling")

func newScanCommand() *cobra.Command {
	sc := &scanCommand{}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a filesystem root and emit the indicator document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				sc.root = args[0]
			}

			return sc.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&sc.root, "path", "p", ".", "Root directory to scan (overridden by the positional argument)")
	cmd.Flags().StringVar(&sc.name, "name", "", "Document name (required)")
	cmd.Flags().StringVarP(&sc.out, "out", "o", "", "Output file for the JSON document (default: stdout)")
	cmd.Flags().StringVar(&sc.id, "id", "", "Document id (default: a freshly generated UUID)")

	cmd.Flags().BoolVar(&sc.noGit, "no-git", false, "Disable the git indicator entirely")
	cmd.Flags().BoolVar(&sc.noDetailedGit, "no-detailed-git", false, "Keep summary git fields but drop per-day/per-commit breakdowns")
	cmd.Flags().BoolVar(&sc.noFileStats, "no-file-stats", false, "Disable the file creation/modification timestamp indicator")
	cmd.Flags().BoolVar(&sc.coupling, "coupling", false, "Enable the temporal file-coupling indicator (requires git and detailed git)")
	cmd.Flags().BoolVar(&sc.followSymlinks, "follow-symlinks", false, "Descend into symlinked directories and read through symlinked files")
	cmd.Flags().IntVar(&sc.years, "years", 0, "Only consider commits from the last N years (0 = no horizon)")
	cmd.Flags().StringVar(&sc.cacheDir, "cache-dir", "", "Directory for the HEAD-keyed commit log cache (empty disables caching)")

	cmd.Flags().IntVar(&sc.couplingBucketDays, "coupling-bucket-days", cliconfig.DefaultCouplingBucketDays, "Coupling time-bucket width in days")
	cmd.Flags().IntVar(&sc.couplingMinBursts, "coupling-min-bursts", cliconfig.DefaultCouplingMinBursts, "Minimum activity bursts for a file to be considered in a bucket")
	cmd.Flags().Float64Var(&sc.couplingMinRatio, "coupling-min-ratio", cliconfig.DefaultCouplingMinRatio, "Minimum co-change ratio for a pair to survive")
	cmd.Flags().IntVar(&sc.couplingMinActivityGapMinutes, "coupling-min-activity-gap-minutes", cliconfig.DefaultCouplingMinActivityGapMinutes, "Minimum gap between activity bursts, in minutes")
	cmd.Flags().IntVar(&sc.couplingTimeOverlapMinutes, "coupling-time-overlap-minutes", cliconfig.DefaultCouplingTimeOverlapMinutes, "Maximum time distance for two commits to be considered coupled, in minutes")
	cmd.Flags().IntVar(&sc.couplingMinDistance, "coupling-min-distance", cliconfig.DefaultCouplingMinDistance, "Minimum path distance between two coupled files")
	cmd.Flags().IntVar(&sc.couplingMaxCommonRoots, "coupling-max-common-roots", 0, "Maximum shared path root components allowed between coupled files (unset = no limit)")

	cmd.Flags().StringVar(&sc.configFile, "config", "", "Optional YAML config file layering in scan defaults")
	cmd.Flags().StringVar(&sc.validateSchema, "validate", "", "Validate the emitted document against the JSON Schema at this path before writing it")
	cmd.Flags().StringVar(&sc.couplingPlot, "coupling-plot", "", "Render an HTML chart of the strongest coupling edges to this file (requires --coupling)")
	cmd.Flags().StringVar(&sc.metricsOut, "metrics-out", "", "Write Prometheus exposition-format scan metrics to this file")

	cmd.Flags().BoolVarP(&sc.verbose, "verbose", "v", false, "Enable debug-level logging")
	cmd.Flags().BoolVarP(&sc.quiet, "quiet", "q", false, "Suppress the human-readable summary on stderr")
	cmd.Flags().BoolVar(&sc.noColor, "no-color", false, "Disable colorized log/summary output")
	cmd.Flags().BoolVar(&sc.logJSON, "log-format-json", false, "Emit structured JSON logs instead of colorized text")

	return cmd
}

func (sc *scanCommand) run(cmd *cobra.Command) error {
	cfg, err := cliconfig.Load(sc.flags(cmd))
	if err != nil {
		return err
	}

	if sc.noColor {
		color.NoColor = true
	}

	logger := obs.NewLogger(sc.logLevel(), sc.logJSON)

	outWriter, closeOut, err := sc.openOutput(cfg.Out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	defer closeOut()

	calculators, gitCalc, couplingCalc := buildCalculators(cfg, logger)

	if gitCalc != nil {
		defer gitCalc.Close()
	}

	if sc.couplingPlot != "" && couplingCalc == nil {
		return errCouplingPlotRequiresCoupling
	}

	startedAt := time.Now()

	root, metadata, err := walker.Walk(cfg.Root, walker.Config{FollowSymlinks: cfg.FollowSymlinks}, calculators, logger)
	if err != nil {
		return fmt.Errorf("scan %s: %w", cfg.Root, err)
	}

	duration := time.Since(startedAt)

	doc := serialize.Build(cfg.Name, sc.id, root, featuresFor(cfg), metadata)

	if sc.validateSchema != "" {
		if err := serialize.Validate(doc, sc.validateSchema); err != nil {
			return fmt.Errorf("validate document: %w", err)
		}
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if _, err := outWriter.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	if !sc.quiet {
		if err := report.Render(doc, cmd.ErrOrStderr(), sc.noColor); err != nil {
			logger.Warn("report: render failed", "error", err)
		}
	}

	if err := sc.renderCouplingPlot(couplingCalc); err != nil {
		return err
	}

	if err := sc.writeMetrics(root, gitCalc, duration); err != nil {
		logger.Warn("metrics: write failed", "error", err)
	}

	return nil
}

func (sc *scanCommand) flags(cmd *cobra.Command) cliconfig.Flags {
	return cliconfig.Flags{
		Root:           sc.root,
		Name:           sc.name,
		Out:            sc.out,
		NoGit:          sc.noGit,
		NoDetailedGit:  sc.noDetailedGit,
		NoFileStats:    sc.noFileStats,
		Coupling:       sc.coupling,
		FollowSymlinks: sc.followSymlinks,
		Years:          sc.years,
		CacheDir:       sc.cacheDir,

		CouplingBucketDays:            sc.couplingBucketDays,
		CouplingMinBursts:             sc.couplingMinBursts,
		CouplingMinRatio:              sc.couplingMinRatio,
		CouplingMinActivityGapMinutes: sc.couplingMinActivityGapMinutes,
		CouplingTimeOverlapMinutes:    sc.couplingTimeOverlapMinutes,
		CouplingMinDistance:           sc.couplingMinDistance,
		CouplingMaxCommonRoots:        sc.couplingMaxCommonRoots,
		CouplingMaxCommonRootsSet:     cmd.Flags().Changed("coupling-max-common-roots"),

		ConfigFile: sc.configFile,
	}
}

func (sc *scanCommand) logLevel() slog.Level {
	if sc.verbose {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

// openOutput returns the document writer and a cleanup func that closes it
// if it is a file. An empty path means stdout, never closed by us.
func (sc *scanCommand) openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		return nil, func() {}, fmt.Errorf("create %s: %w", path, err)
	}

	return f, func() { _ = f.Close() }, nil
}

// buildCalculators assembles the calculator pipeline in the order the
// walker's registration contract requires: LOC and file-stats first, git
// next (the coupling calculator reads the git indicator a preceding
// calculator attached to the same node), coupling last.
func buildCalculators(cfg *cliconfig.Config, logger *slog.Logger) ([]walker.Calculator, *walker.GitCalculator, *walker.CouplingCalculator) {
	calculators := []walker.Calculator{
		walker.NewLOCCalculator(logger),
		walker.NewIndentationCalculator(logger),
	}

	if !cfg.NoFileStats {
		calculators = append(calculators, walker.NewFileStatsCalculator(logger))
	}

	var gitCalc *walker.GitCalculator

	if !cfg.NoGit {
		built, err := walker.NewGitCalculator(cfg.Root, walker.GitConfig{
			Since:    cfg.GitSince(time.Now()),
			Detailed: !cfg.NoDetailedGit,
			CacheDir: cfg.CacheDir,
		}, logger)
		if err != nil {
			logger.Warn("git: calculator init failed", "error", err)
		} else {
			gitCalc = built
			calculators = append(calculators, gitCalc)
		}
	}

	var couplingCalc *walker.CouplingCalculator

	if cfg.Coupling {
		couplingCalc = walker.NewCouplingCalculator(cfg.CouplingEngineConfig())
		calculators = append(calculators, couplingCalc)
	}

	return calculators, gitCalc, couplingCalc
}

func featuresFor(cfg *cliconfig.Config) serialize.Features {
	return serialize.Features{
		Git:         !cfg.NoGit,
		DetailedGit: !cfg.NoGit && !cfg.NoDetailedGit,
		Coupling:    cfg.Coupling,
		FileStats:   !cfg.NoFileStats,
		LOC:         true,
		Indentation: true,
	}
}

func (sc *scanCommand) renderCouplingPlot(couplingCalc *walker.CouplingCalculator) error {
	if sc.couplingPlot == "" || couplingCalc == nil {
		return nil
	}

	f, err := os.Create(sc.couplingPlot) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		return fmt.Errorf("create %s: %w", sc.couplingPlot, err)
	}
	defer f.Close()

	result, meta := couplingCalc.Result()

	if err := coupling.RenderPlot(result, meta, f); err != nil {
		return fmt.Errorf("render coupling plot: %w", err)
	}

	return nil
}

func (sc *scanCommand) writeMetrics(root *tree.Node, gitCalc *walker.GitCalculator, duration time.Duration) error {
	if sc.metricsOut == "" {
		return nil
	}

	metrics, err := obs.NewMetrics()
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	ctx := context.Background()

	metrics.FilesScanned.Add(ctx, int64(countFiles(root)))

	if gitCalc != nil {
		metrics.CommitsRead.Add(ctx, int64(gitCalc.CommitCount()))
	}

	metrics.ScanDuration.Record(ctx, duration.Seconds())

	f, err := os.Create(sc.metricsOut) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		return fmt.Errorf("create %s: %w", sc.metricsOut, err)
	}
	defer f.Close()

	if err := metrics.WriteExposition(f); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return metrics.Shutdown(ctx)
}

func countFiles(n *tree.Node) int {
	if n.IsFile {
		return 1
	}

	count := 0
	for _, child := range n.GetChildren() {
		count += countFiles(child)
	}

	return count
}
