package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/StinkyLord/archmap/internal/config"
	"github.com/StinkyLord/archmap/internal/detector"
	"github.com/StinkyLord/archmap/internal/inference"
	"github.com/StinkyLord/archmap/internal/output"
	"github.com/StinkyLord/archmap/internal/rules"
	"github.com/StinkyLord/archmap/internal/scanner"
)

const toolVersion = "1.0.0"

var (
	flagDir       string
	flagConfig    string
	flagInventory string
	flagVerbose   bool

	// Each subcommand binds --output to its own variable: sharing one
	// variable would make the last default registered win for every
	// command, since pflag assigns defaults at registration time.
	flagAnalyzeOutput string
	flagInferOutput   string
	flagRunOutput     string
)

var rootCmd = &cobra.Command{
	Use:   "archmap",
	Short: "Repository architecture analyzer",
	Long: `archmap inspects a repository's file tree, infers which technologies and
internal modules it uses, and emits a structured model for an architecture
diagram renderer.

The pipeline has two stages, runnable separately or chained:
  analyze  — scan the tree and detect components (frameworks, datastores,
             cloud services, controllers, services, models, jobs)
  infer    — derive directed relationships between detected components
             from textual cross-references, with confidence priorities

Detection is deliberately heuristic: patterns match free text, including
comments and string literals. Every inferred edge carries a priority
(high/medium/low) reflecting match confidence, and low-confidence candidates
are surfaced as suggestions for human review instead of confirmed edges.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan a repository and emit the component inventory",
	Long: `Scan a repository tree, detect components, and write the component
inventory document consumed by the infer stage.

Examples:
  archmap analyze --dir /path/to/repo --output components.json
  archmap analyze --dir . --output - --verbose
  archmap analyze --dir . --config archmap.yaml --output components.json`,
	RunE: runAnalyze,
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Infer relationships from a prior component inventory",
	Long: `Run the relationship inference engine against an inventory document
produced by a prior analyze run, plus the original file tree. Emits the
relationship and suggestion document.

Examples:
  archmap infer --dir /path/to/repo --inventory components.json --output relations.json`,
	RunE: runInfer,
}

var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"analyze-and-infer"},
	Short:   "Run both stages and emit the combined analysis model",
	Long: `Chain analyze and infer in one invocation and write the canonical
AnalysisModel document for the diagram renderer.

Examples:
  archmap run --dir /path/to/repo --output model.json
  archmap run --dir . --output -`,
	RunE: runCombined,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", ".", "Path to the repository root directory")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Optional YAML config: include/exclude globs and rule-table override")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")

	analyzeCmd.Flags().StringVarP(&flagAnalyzeOutput, "output", "o", "components.json", "Output file path (use '-' for stdout)")
	inferCmd.Flags().StringVarP(&flagInferOutput, "output", "o", "relations.json", "Output file path (use '-' for stdout)")
	inferCmd.Flags().StringVarP(&flagInventory, "inventory", "i", "components.json", "Component inventory document from a prior analyze run")
	runCmd.Flags().StringVarP(&flagRunOutput, "output", "o", "model.json", "Output file path (use '-' for stdout)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(runCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves and validates the shared flags: repository root, optional
// config file, rule table, and logger. Any failure here is a configuration
// error — fatal before any stage runs.
func setup() (absDir string, table *rules.Table, cfg *config.Config, logger *zap.Logger, err error) {
	absDir, err = filepath.Abs(flagDir)
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("cannot resolve directory %q: %w", flagDir, err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("directory %q does not exist: %w", absDir, err)
	}
	if !info.IsDir() {
		return "", nil, nil, nil, fmt.Errorf("%q is not a directory", absDir)
	}

	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return "", nil, nil, nil, err
		}
	}

	table, err = rules.New(cfg)
	if err != nil {
		return "", nil, nil, nil, err
	}

	logger, err = newLogger(flagVerbose)
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("cannot initialise logger: %w", err)
	}

	return absDir, table, cfg, logger, nil
}

// newLogger builds the CLI logger: human-readable debug output in verbose
// mode, warnings-only otherwise. Logs go to stderr so stdout stays clean
// for '--output -'.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func newScanner(absDir string, cfg *config.Config, logger *zap.Logger) *scanner.Scanner {
	s := scanner.New(absDir, logger)
	if cfg != nil {
		s.Include = cfg.Include
		s.Exclude = cfg.Exclude
	}
	return s
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	absDir, table, cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintf(os.Stderr, "archmap v%s\n", toolVersion)
	fmt.Fprintf(os.Stderr, "Analyzing: %s\n", absDir)

	scan, err := newScanner(absDir, cfg, logger).Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	inv := detector.New(table, logger).Detect(scan.Files)

	doc := output.BuildInventoryDoc(filepath.Base(absDir), inv, scan.Warnings, table.FrameworkPriority())
	if err := output.WriteJSON(doc, flagAnalyzeOutput); err != nil {
		return fmt.Errorf("failed to write inventory document: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Scanned %d file(s), %d warning(s)\n", inv.FilesScanned, len(scan.Warnings))
	if flagAnalyzeOutput != "-" {
		fmt.Fprintf(os.Stderr, "Inventory written to: %s\n", flagAnalyzeOutput)
	}
	return nil
}

func runInfer(cmd *cobra.Command, args []string) error {
	absDir, table, cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintf(os.Stderr, "archmap v%s\n", toolVersion)

	doc, inv, err := output.LoadInventoryDoc(flagInventory)
	if err != nil {
		return err
	}

	scan, err := newScanner(absDir, cfg, logger).Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	rep := inference.New(table, logger).Infer(inv, scan.Files)

	out := output.BuildRelationsDoc(doc.Repository, rep)
	if err := output.WriteJSON(out, flagInferOutput); err != nil {
		return fmt.Errorf("failed to write relationship document: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Inferred %d relationship(s), %d suggestion(s)\n", len(rep.Edges), len(rep.Suggestions))
	if flagInferOutput != "-" {
		fmt.Fprintf(os.Stderr, "Relationships written to: %s\n", flagInferOutput)
	}
	return nil
}

func runCombined(cmd *cobra.Command, args []string) error {
	absDir, table, cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintf(os.Stderr, "archmap v%s\n", toolVersion)
	fmt.Fprintf(os.Stderr, "Analyzing: %s\n", absDir)

	scan, err := newScanner(absDir, cfg, logger).Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	inv := detector.New(table, logger).Detect(scan.Files)
	rep := inference.New(table, logger).Infer(inv, scan.Files)

	mdl, err := output.BuildModel(filepath.Base(absDir), inv, rep, scan.Warnings, table.FrameworkPriority())
	if err != nil {
		return fmt.Errorf("failed to build analysis model: %w", err)
	}
	if err := output.WriteJSON(mdl, flagRunOutput); err != nil {
		return fmt.Errorf("failed to write analysis model: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Scanned %d file(s): %d component category(ies), %d relationship(s), %d suggestion(s)\n",
		inv.FilesScanned, len(mdl.Components), len(rep.Edges), len(rep.Suggestions))
	if flagRunOutput != "-" {
		fmt.Fprintf(os.Stderr, "Model written to: %s\n", flagRunOutput)
	}
	return nil
}
