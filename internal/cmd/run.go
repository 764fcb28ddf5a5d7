package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/flatpack/internal/config"
	"github.com/harrison/flatpack/internal/display"
	"github.com/harrison/flatpack/internal/filelock"
	"github.com/harrison/flatpack/internal/flatten"
	"github.com/harrison/flatpack/internal/history"
	"github.com/harrison/flatpack/internal/logger"
	"github.com/harrison/flatpack/internal/models"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input-dir> <output-dir>",
		Short: "Flatten an input directory into an output directory",
		Long: `Flatten the input directory tree into a single-level output directory.

Every non-hidden, non-ignored file reachable from the input root is
represented exactly once in the output: supported file types are copied
byte-for-byte, everything else readable is converted to UTF-8 .txt.
Nested paths are encoded into the output filename with '%' separators
(src/main.py becomes src%main.py).

Configuration is loaded from .flatpack/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Flatten a project for upload
  flatpack run ./myproject ./upload

  # Preview without writing anything
  flatpack run --dry-run ./myproject ./upload

  # Show per-file progress
  flatpack run --verbose ./myproject ./upload

  # Keep a detailed run log
  flatpack run --log-dir .flatpack/logs ./myproject ./upload

  # Record the run in history
  flatpack run --record ./myproject ./upload`,
		Args: cobra.ExactArgs(2),
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .flatpack/config.yaml)")
	cmd.Flags().Bool("dry-run", false, "Classify and report without writing any output")
	cmd.Flags().Bool("verbose", false, "Show per-file progress")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().Bool("record", false, "Record run statistics in the history database")
	cmd.Flags().Int("size-warn-mb", 0, "Output size (MB) above which a warning is emitted (0 = use config)")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Load configuration from file
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only explicitly set values)
	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDir, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &logDir
	}

	var dryRunPtr *bool
	if cmd.Flags().Changed("dry-run") {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		dryRunPtr = &dryRun
	}

	var sizeWarnPtr *int
	if cmd.Flags().Changed("size-warn-mb") {
		sizeWarn, _ := cmd.Flags().GetInt("size-warn-mb")
		sizeWarnPtr = &sizeWarn
	}

	var recordPtr *bool
	if cmd.Flags().Changed("record") {
		record, _ := cmd.Flags().GetBool("record")
		recordPtr = &record
	}

	// Verbose flag overrides the configured log level
	var logLevelPtr *string
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		debug := "debug"
		logLevelPtr = &debug
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(logLevelPtr, logDirPtr, sizeWarnPtr, dryRunPtr, recordPtr)

	// Validate merged configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Build the classification tables, extended by config
	tables := flatten.DefaultTables()
	for _, dir := range cfg.ExtraSkipDirs {
		tables.SkipDirs[dir] = true
	}
	for _, ext := range cfg.ExtraIgnoredExtensions {
		tables.Ignored[strings.ToLower(ext)] = true
	}

	// Create console logger for real-time progress
	consoleLog := logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)
	loggers := []flatten.Logger{consoleLog}

	// Create file logger for detailed logs (skipped in dry-run)
	var fileLog *logger.FileLogger
	if cfg.LogDir != "" && !cfg.DryRun {
		fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}

	multiLog := &multiLogger{loggers: loggers}

	// Create the transformer; path validation happens here
	fl, err := flatten.New(flatten.Options{
		InputDir:        args[0],
		OutputDir:       args[1],
		Tables:          tables,
		DryRun:          cfg.DryRun,
		MaxConvertBytes: int64(cfg.MaxConvertMB) * 1024 * 1024,
		Logger:          multiLog,
	})
	if err != nil {
		return err
	}

	if cfg.DryRun {
		fmt.Fprintf(out, "Dry-run mode: no files will be written.\n")
	} else {
		state, err := fl.PrepareOutput()
		if err != nil {
			return err
		}
		if state.Created {
			fmt.Fprintf(out, "Created output directory: %s\n", fl.OutputDir())
		}
		if state.NonEmpty {
			display.NonEmptyOutputWarning(fl.OutputDir()).Display(out)
		}

		// Hold the run lock so concurrent runs cannot interleave writes
		// into the same output directory.
		lock, err := filelock.Acquire(fl.OutputDir())
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	// Execute the pass
	stats, err := fl.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("flattening failed: %w", err)
	}

	// Render the user-facing summary
	colorOutput := out == os.Stdout && isatty.IsTerminal(os.Stdout.Fd())
	display.RenderSummary(out, *stats, colorOutput)

	if collisions := fl.Collisions(); len(collisions) > 0 {
		display.CollisionWarning(collisions).Display(out)
	}

	if stats.ExceedsSizeLimit(int64(cfg.SizeWarnMB) * 1024 * 1024) {
		display.SizeLimitWarning(stats.TotalMB(), cfg.SizeWarnMB).Display(out)
	}

	// Record the run in history if enabled
	if cfg.History.Enabled && !cfg.DryRun {
		if err := recordRun(cmd, cfg, fl, *stats); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Warning: failed to record run history: %v\n", err)
		}
	}

	if fileLog != nil {
		fmt.Fprintf(out, "Log written to: %s\n", fileLog.Path())
	}

	return nil
}

// recordRun persists the run statistics in the history database.
func recordRun(cmd *cobra.Command, cfg *config.Config, fl *flatten.Flattener, stats models.RunStats) error {
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.NewRun(uuid.New().String(), fl.InputDir(), fl.OutputDir(), stats)
	if err := store.RecordRun(cmd.Context(), run); err != nil {
		return err
	}

	if cfg.History.KeepRuns > 0 {
		if err := store.Prune(cmd.Context(), cfg.History.KeepRuns); err != nil {
			return err
		}
	}

	return nil
}

// multiLogger implements flatten.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []flatten.Logger
}

// LogRunStart forwards to all loggers
func (ml *multiLogger) LogRunStart(inputDir, outputDir string) {
	for _, logger := range ml.loggers {
		logger.LogRunStart(inputDir, outputDir)
	}
}

// LogOutcome forwards to all loggers
func (ml *multiLogger) LogOutcome(outcome models.FileOutcome) {
	for _, logger := range ml.loggers {
		logger.LogOutcome(outcome)
	}
}

// LogWarning forwards to all loggers
func (ml *multiLogger) LogWarning(message string) {
	for _, logger := range ml.loggers {
		logger.LogWarning(message)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(stats models.RunStats) {
	for _, logger := range ml.loggers {
		logger.LogSummary(stats)
	}
}
