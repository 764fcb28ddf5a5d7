// Package logger provides logging implementations for flattening runs.
//
// The logger package offers progress logging at the per-file and summary
// levels. Implementations are thread-safe and support console and file
// output destinations with level filtering.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/flatpack/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread
// safety. All output is prefixed with [HH:MM:SS] timestamps. It supports
// log level filtering to control message verbosity. Color output is
// automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// io.Writer. If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		mutex:       sync.Mutex{},
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		// The color library's detection also honors NO_COLOR.
		return !color.NoColor
	}

	return false
}

// normalizeLogLevel converts a log level string to lowercase and
// validates it. Returns "info" for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info" // Default level
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogRunStart logs the beginning of a flattening run at INFO level.
func (cl *ConsoleLogger) LogRunStart(inputDir, outputDir string) {
	if !cl.shouldLog("info") {
		return
	}
	cl.write(fmt.Sprintf("[%s] Processing files from %s into %s\n",
		time.Now().Format("15:04:05"), inputDir, outputDir))
}

// LogOutcome logs a single file outcome. Successful outcomes log at
// DEBUG level; errored outcomes log at ERROR level in red.
func (cl *ConsoleLogger) LogOutcome(outcome models.FileOutcome) {
	timestamp := time.Now().Format("15:04:05")

	switch outcome.Kind {
	case models.OutcomeErrored:
		if !cl.shouldLog("error") {
			return
		}
		line := fmt.Sprintf("[%s] ERROR %s: %v\n", timestamp, outcome.RelPath, outcome.Err)
		if cl.colorOutput {
			line = color.RedString("%s", line)
		}
		cl.write(line)
	case models.OutcomeIgnored:
		if !cl.shouldLog("debug") {
			return
		}
		cl.write(fmt.Sprintf("[%s] Ignoring: %s\n", timestamp, outcome.RelPath))
	default:
		if !cl.shouldLog("debug") {
			return
		}
		verb := "Copied"
		if outcome.Kind == models.OutcomeConverted {
			verb = "Converted"
		}
		cl.write(fmt.Sprintf("[%s] %s: %s -> %s\n", timestamp, verb, outcome.RelPath, outcome.OutputName))
	}
}

// LogWarning logs a non-fatal warning at WARN level in yellow.
func (cl *ConsoleLogger) LogWarning(message string) {
	if !cl.shouldLog("warn") {
		return
	}
	line := fmt.Sprintf("[%s] Warning: %s\n", time.Now().Format("15:04:05"), message)
	if cl.colorOutput {
		line = color.YellowString("%s", line)
	}
	cl.write(line)
}

// LogSummary logs the final run statistics at DEBUG level. The run
// command renders the user-facing summary block itself; this duplicate
// exists for parity with the file log in verbose mode.
func (cl *ConsoleLogger) LogSummary(stats models.RunStats) {
	if !cl.shouldLog("debug") {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Run Summary:\n")
	fmt.Fprintf(&b, "  Files processed (copied or converted): %d\n", stats.Processed)
	fmt.Fprintf(&b, "  Files converted to .txt: %d\n", stats.Converted)
	fmt.Fprintf(&b, "  Files/directories ignored or skipped: %d\n", stats.Ignored)
	if stats.Errors > 0 {
		fmt.Fprintf(&b, "  Errors encountered: %d\n", stats.Errors)
	}
	if stats.Collisions > 0 {
		fmt.Fprintf(&b, "  Output name collisions: %d\n", stats.Collisions)
	}
	fmt.Fprintf(&b, "  Output size: %.2f MB\n", stats.TotalMB())
	fmt.Fprintf(&b, "  Duration: %s\n", stats.Duration.Round(time.Millisecond))

	cl.write(b.String())
}

// write is a thread-safe helper that writes to the underlying writer.
func (cl *ConsoleLogger) write(message string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if cl.writer != nil {
		fmt.Fprint(cl.writer, message)
	}
}
