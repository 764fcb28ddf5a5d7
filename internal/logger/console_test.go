package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/harrison/flatpack/internal/models"
)

// TestNormalizeLogLevel verifies level normalization and fallback
func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"DEBUG", "debug"},
		{"  Info  ", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"", "info"},
		{"verbose", "info"},
	}

	for _, tt := range tests {
		if got := normalizeLogLevel(tt.in); got != tt.want {
			t.Errorf("normalizeLogLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestConsoleLoggerRunStart verifies the start line at info level
func TestConsoleLoggerRunStart(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogRunStart("/in", "/out")

	out := buf.String()
	if !strings.Contains(out, "Processing files from /in into /out") {
		t.Errorf("unexpected start line: %q", out)
	}
	if !strings.HasPrefix(out, "[") {
		t.Errorf("start line should carry a timestamp prefix: %q", out)
	}
}

// TestConsoleLoggerOutcomeLevels verifies per-file lines only appear at
// debug and below, while errors always surface
func TestConsoleLoggerOutcomeLevels(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogOutcome(models.FileOutcome{Kind: models.OutcomeCopied, RelPath: "a.py", OutputName: "a.py"})
	cl.LogOutcome(models.FileOutcome{Kind: models.OutcomeIgnored, RelPath: "b.png"})
	if buf.Len() != 0 {
		t.Errorf("copied/ignored lines should be suppressed at info level, got %q", buf.String())
	}

	cl.LogOutcome(models.FileOutcome{Kind: models.OutcomeErrored, RelPath: "c.md", Err: errors.New("read failed")})
	if !strings.Contains(buf.String(), "ERROR c.md: read failed") {
		t.Errorf("errored outcome missing: %q", buf.String())
	}
}

// TestConsoleLoggerOutcomeDebug verifies copy and convert lines at debug
// level
func TestConsoleLoggerOutcomeDebug(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "debug")

	cl.LogOutcome(models.FileOutcome{Kind: models.OutcomeCopied, RelPath: "src/a.py", OutputName: "src%a.py"})
	cl.LogOutcome(models.FileOutcome{Kind: models.OutcomeConverted, RelPath: "README.md", OutputName: "README.md.txt"})
	cl.LogOutcome(models.FileOutcome{Kind: models.OutcomeIgnored, RelPath: "pic.png"})

	out := buf.String()
	if !strings.Contains(out, "Copied: src/a.py -> src%a.py") {
		t.Errorf("copied line missing: %q", out)
	}
	if !strings.Contains(out, "Converted: README.md -> README.md.txt") {
		t.Errorf("converted line missing: %q", out)
	}
	if !strings.Contains(out, "Ignoring: pic.png") {
		t.Errorf("ignored line missing: %q", out)
	}
}

// TestConsoleLoggerWarning verifies warnings respect the level threshold
func TestConsoleLoggerWarning(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "error")
	cl.LogWarning("output directory is not empty")
	if buf.Len() != 0 {
		t.Errorf("warning should be suppressed at error level, got %q", buf.String())
	}

	buf.Reset()
	cl = NewConsoleLogger(&buf, "warn")
	cl.LogWarning("output directory is not empty")
	if !strings.Contains(buf.String(), "Warning: output directory is not empty") {
		t.Errorf("warning line missing: %q", buf.String())
	}
}

// TestConsoleLoggerSummaryGated verifies the summary only appears in
// verbose mode (the run command prints the user-facing block itself)
func TestConsoleLoggerSummaryGated(t *testing.T) {
	stats := models.RunStats{Processed: 3, Converted: 1, Ignored: 2}

	var buf bytes.Buffer
	NewConsoleLogger(&buf, "info").LogSummary(stats)
	if buf.Len() != 0 {
		t.Errorf("summary should be suppressed at info level, got %q", buf.String())
	}

	buf.Reset()
	NewConsoleLogger(&buf, "debug").LogSummary(stats)
	out := buf.String()
	if !strings.Contains(out, "Files processed (copied or converted): 3") {
		t.Errorf("summary missing processed line: %q", out)
	}
	if !strings.Contains(out, "Files converted to .txt: 1") {
		t.Errorf("summary missing converted line: %q", out)
	}
	if strings.Contains(out, "Errors encountered") {
		t.Errorf("zero errors should not be reported: %q", out)
	}
}

// TestConsoleLoggerNilWriter verifies a nil writer discards silently
func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "trace")
	cl.LogRunStart("/in", "/out")
	cl.LogWarning("ignored")
	cl.LogSummary(models.RunStats{})
	// No panic is the assertion.
}

// TestConsoleLoggerNoColorForBuffers verifies non-terminal writers never
// get ANSI escapes
func TestConsoleLoggerNoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "warn")
	cl.LogWarning("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("buffer output should be colorless: %q", buf.String())
	}
}
