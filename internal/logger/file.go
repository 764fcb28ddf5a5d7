package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrison/flatpack/internal/models"
)

// FileLogger logs run events to timestamped files in a log directory and
// maintains a latest.log symlink pointing to the most recent run.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to the given directory
// at the given level. It creates the directory if it doesn't exist,
// opens a timestamped run log file, and updates the latest.log symlink.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Timestamped filename: run-YYYYMMDD-HHMMSS.log
	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
		mu:       sync.Mutex{},
	}

	logger.writeRunLog("=== Flatpack Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// shouldLog checks if a message at the given level should be logged.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogRunStart logs the input and output directories at INFO level.
func (fl *FileLogger) LogRunStart(inputDir, outputDir string) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Input:  %s\n", time.Now().Format("15:04:05"), inputDir))
	fl.writeRunLog(fmt.Sprintf("[%s] Output: %s\n", time.Now().Format("15:04:05"), outputDir))
}

// LogOutcome logs one line per file. Errors log at ERROR level, ignored
// entries at TRACE, everything else at DEBUG.
func (fl *FileLogger) LogOutcome(outcome models.FileOutcome) {
	timestamp := time.Now().Format("15:04:05")

	switch outcome.Kind {
	case models.OutcomeErrored:
		if !fl.shouldLog("error") {
			return
		}
		fl.writeRunLog(fmt.Sprintf("[%s] [ERROR] %s: %v\n", timestamp, outcome.RelPath, outcome.Err))
	case models.OutcomeIgnored:
		if !fl.shouldLog("trace") {
			return
		}
		fl.writeRunLog(fmt.Sprintf("[%s] [TRACE] ignored %s\n", timestamp, outcome.RelPath))
	case models.OutcomeCopied:
		if !fl.shouldLog("debug") {
			return
		}
		fl.writeRunLog(fmt.Sprintf("[%s] [DEBUG] copied %s -> %s (%d bytes)\n", timestamp, outcome.RelPath, outcome.OutputName, outcome.Bytes))
	case models.OutcomeConverted:
		if !fl.shouldLog("debug") {
			return
		}
		note := ""
		if outcome.Truncated {
			note = " [placeholder: over conversion limit]"
		}
		fl.writeRunLog(fmt.Sprintf("[%s] [DEBUG] converted %s -> %s (%d bytes)%s\n", timestamp, outcome.RelPath, outcome.OutputName, outcome.Bytes, note))
	}
}

// LogWarning logs a non-fatal warning at WARN level.
func (fl *FileLogger) LogWarning(message string) {
	if !fl.shouldLog("warn") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [WARN] %s\n", time.Now().Format("15:04:05"), message))
}

// LogSummary logs the final run statistics at INFO level.
func (fl *FileLogger) LogSummary(stats models.RunStats) {
	if !fl.shouldLog("info") {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(
		"\n[%s] === RUN SUMMARY ===\n"+
			"[%s] Processed:  %d\n"+
			"[%s] Converted:  %d\n"+
			"[%s] Ignored:    %d\n"+
			"[%s] Errors:     %d\n"+
			"[%s] Collisions: %d\n"+
			"[%s] Output:     %.2f MB\n"+
			"[%s] Duration:   %.1fs\n"+
			"[%s] Completed at: %s\n",
		timestamp,
		timestamp, stats.Processed,
		timestamp, stats.Converted,
		timestamp, stats.Ignored,
		timestamp, stats.Errors,
		timestamp, stats.Collisions,
		timestamp, stats.TotalMB(),
		timestamp, stats.Duration.Seconds(),
		timestamp, time.Now().Format(time.RFC3339),
	)

	fl.writeRunLog(message)
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time tailing.
		fl.runLog.Sync()
	}
}
