package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/flatpack/internal/models"
)

// newTestFileLogger creates a FileLogger in a temp dir and registers
// cleanup
func newTestFileLogger(t *testing.T, level string) (*FileLogger, string) {
	t.Helper()
	logDir := t.TempDir()
	fl, err := NewFileLogger(logDir, level)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	t.Cleanup(func() { fl.Close() })
	return fl, logDir
}

// readRunLog closes the logger and returns the log contents
func readRunLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(fl.Path())
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	return string(data)
}

// TestNewFileLogger verifies file creation, header and symlink
func TestNewFileLogger(t *testing.T) {
	fl, logDir := newTestFileLogger(t, "info")

	if !strings.HasPrefix(filepath.Base(fl.Path()), "run-") {
		t.Errorf("run log name = %q, want run-*.log", filepath.Base(fl.Path()))
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log symlink: %v", err)
	}
	if target != filepath.Base(fl.Path()) {
		t.Errorf("latest.log -> %q, want %q", target, filepath.Base(fl.Path()))
	}

	content := readRunLog(t, fl)
	if !strings.Contains(content, "=== Flatpack Run Log ===") {
		t.Errorf("missing header: %q", content)
	}
}

// TestFileLoggerSymlinkReplaced verifies a second run repoints latest.log
func TestFileLoggerSymlinkReplaced(t *testing.T) {
	logDir := t.TempDir()

	first, err := NewFileLogger(logDir, "info")
	if err != nil {
		t.Fatal(err)
	}
	first.Close()

	// Filenames have second resolution; force a distinct timestamp.
	time.Sleep(1100 * time.Millisecond)

	second, err := NewFileLogger(logDir, "info")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatal(err)
	}
	if target != filepath.Base(second.Path()) {
		t.Errorf("latest.log -> %q, want %q", target, filepath.Base(second.Path()))
	}
}

// TestFileLoggerOutcomeLevels verifies level tags and filtering
func TestFileLoggerOutcomeLevels(t *testing.T) {
	fl, _ := newTestFileLogger(t, "trace")

	fl.LogRunStart("/in", "/out")
	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeCopied, RelPath: "a.py", OutputName: "a.py", Bytes: 10})
	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeConverted, RelPath: "b.md", OutputName: "b.md.txt", Bytes: 20})
	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeConverted, RelPath: "big.dat", OutputName: "big.dat.txt", Bytes: 5, Truncated: true})
	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeIgnored, RelPath: "c.png"})
	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeErrored, RelPath: "d.md", Err: errors.New("denied")})
	fl.LogWarning("collision on e.txt")

	content := readRunLog(t, fl)

	for _, want := range []string{
		"Input:  /in",
		"Output: /out",
		"[DEBUG] copied a.py -> a.py (10 bytes)",
		"[DEBUG] converted b.md -> b.md.txt (20 bytes)",
		"[placeholder: over conversion limit]",
		"[TRACE] ignored c.png",
		"[ERROR] d.md: denied",
		"[WARN] collision on e.txt",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("run log missing %q:\n%s", want, content)
		}
	}
}

// TestFileLoggerFiltering verifies per-file noise is dropped at info
// level while the summary survives
func TestFileLoggerFiltering(t *testing.T) {
	fl, _ := newTestFileLogger(t, "info")

	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeCopied, RelPath: "a.py", OutputName: "a.py"})
	fl.LogOutcome(models.FileOutcome{Kind: models.OutcomeIgnored, RelPath: "b.png"})
	fl.LogSummary(models.RunStats{Processed: 1, Ignored: 1, Duration: time.Second})

	content := readRunLog(t, fl)
	if strings.Contains(content, "copied") || strings.Contains(content, "ignored b.png") {
		t.Errorf("per-file lines should be filtered at info level:\n%s", content)
	}
	if !strings.Contains(content, "=== RUN SUMMARY ===") {
		t.Errorf("summary missing:\n%s", content)
	}
	if !strings.Contains(content, "Processed:  1") {
		t.Errorf("summary counters missing:\n%s", content)
	}
}

// TestFileLoggerCloseIdempotent verifies double close is safe
func TestFileLoggerCloseIdempotent(t *testing.T) {
	fl, _ := newTestFileLogger(t, "info")
	if err := fl.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
