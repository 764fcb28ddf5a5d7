package flatten

import "github.com/harrison/flatpack/internal/models"

// Logger receives progress events during a flattening run. Implementations
// must be safe for use from a single goroutine; the transformer is
// strictly sequential.
type Logger interface {
	// LogRunStart is called once before traversal begins.
	LogRunStart(inputDir, outputDir string)

	// LogOutcome is called once per traversal entry with its outcome.
	LogOutcome(outcome models.FileOutcome)

	// LogWarning reports a non-fatal condition (output name collision,
	// non-empty output directory).
	LogWarning(message string)

	// LogSummary is called once after traversal with the final counters.
	LogSummary(stats models.RunStats)
}

// nopLogger discards all events. Used when no logger is configured.
type nopLogger struct{}

func (nopLogger) LogRunStart(inputDir, outputDir string) {}
func (nopLogger) LogOutcome(outcome models.FileOutcome) {}
func (nopLogger) LogWarning(message string) {}
func (nopLogger) LogSummary(stats models.RunStats) {}
