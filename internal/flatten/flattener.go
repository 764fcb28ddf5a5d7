// Package flatten implements the core transformer: it walks an input
// directory, classifies every file by extension, and produces a flat
// output directory where filenames encode the original relative paths.
package flatten

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harrison/flatpack/internal/filelock"
	"github.com/harrison/flatpack/internal/fileutil"
	"github.com/harrison/flatpack/internal/models"
)

// DefaultMaxConvertBytes caps how much of a convertible file is loaded
// into memory for decoding. Files above the cap get a placeholder .txt
// instead of their content.
const DefaultMaxConvertBytes = 256 * 1024 * 1024

// Options configures a Flattener.
type Options struct {
	// InputDir is the root of the tree to flatten.
	InputDir string

	// OutputDir receives the flattened files. Created if missing.
	OutputDir string

	// Tables are the classification sets. Nil selects DefaultTables.
	Tables *Tables

	// DryRun classifies and names files without writing anything.
	DryRun bool

	// MaxConvertBytes overrides DefaultMaxConvertBytes when positive.
	MaxConvertBytes int64

	// Logger receives progress events. Nil discards them.
	Logger Logger
}

// OutputState describes what PrepareOutput found or did.
type OutputState struct {
	// Created is true when the output directory was newly created.
	Created bool

	// NonEmpty is true when the output directory already existed and
	// contained entries; files may be overwritten.
	NonEmpty bool
}

// Flattener performs a single traversal-and-transform pass. Construct
// with New, optionally call PrepareOutput, then call Run once.
type Flattener struct {
	inputDir        string
	outputDir       string
	tables          *Tables
	dryRun          bool
	maxConvertBytes int64
	logger          Logger

	prepared bool

	// seen maps produced output names to the relative path that first
	// produced them, for collision detection.
	seen       map[string]string
	collisions []string
}

// New validates the input and output paths and returns a Flattener.
// Validation failures are fatal: they wrap ErrInvalidInput or
// ErrInvalidOutput and no output is produced.
func New(opts Options) (*Flattener, error) {
	inputDir, err := filepath.Abs(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, inputDir)
	}

	// The output directory must not be nested inside the input
	// directory (equal paths are permitted; the traversal excludes the
	// output subtree either way).
	inside, err := fileutil.Contains(inputDir, outputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if inside {
		return nil, fmt.Errorf("%w: output directory %s is inside input directory %s", ErrInvalidOutput, outputDir, inputDir)
	}

	if info, err := os.Stat(outputDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s exists and is not a directory", ErrInvalidOutput, outputDir)
	}

	tables := opts.Tables
	if tables == nil {
		tables = DefaultTables()
	}

	maxConvert := opts.MaxConvertBytes
	if maxConvert <= 0 {
		maxConvert = DefaultMaxConvertBytes
	}

	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Flattener{
		inputDir:        inputDir,
		outputDir:       outputDir,
		tables:          tables,
		dryRun:          opts.DryRun,
		maxConvertBytes: maxConvert,
		logger:          logger,
		seen:            make(map[string]string),
	}, nil
}

// InputDir returns the resolved absolute input directory.
func (f *Flattener) InputDir() string { return f.inputDir }

// OutputDir returns the resolved absolute output directory.
func (f *Flattener) OutputDir() string { return f.outputDir }

// Collisions returns the output names produced by more than one input
// file during the last run, sorted.
func (f *Flattener) Collisions() []string {
	out := make([]string, len(f.collisions))
	copy(out, f.collisions)
	sort.Strings(out)
	return out
}

// PrepareOutput creates the output directory if needed and reports
// whether an existing one is non-empty. It is idempotent and a no-op in
// dry-run mode. Creation failure wraps ErrOutputCreate.
func (f *Flattener) PrepareOutput() (OutputState, error) {
	if f.dryRun {
		return OutputState{}, nil
	}

	if info, err := os.Stat(f.outputDir); err == nil {
		if !info.IsDir() {
			return OutputState{}, fmt.Errorf("%w: %s exists and is not a directory", ErrInvalidOutput, f.outputDir)
		}
		entries, err := os.ReadDir(f.outputDir)
		if err != nil {
			return OutputState{}, fmt.Errorf("%w: %v", ErrOutputCreate, err)
		}
		f.prepared = true
		return OutputState{NonEmpty: len(entries) > 0}, nil
	}

	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return OutputState{}, fmt.Errorf("%w: %v", ErrOutputCreate, err)
	}
	f.prepared = true
	return OutputState{Created: true}, nil
}

// Run performs the traversal. Per-file failures are counted and logged
// but never abort the pass; the returned stats are always complete for
// the files that were visited. The context is checked between files.
func (f *Flattener) Run(ctx context.Context) (*models.RunStats, error) {
	if !f.dryRun && !f.prepared {
		state, err := f.PrepareOutput()
		if err != nil {
			return nil, err
		}
		if state.NonEmpty {
			f.logger.LogWarning(fmt.Sprintf("output directory %s is not empty; files may be overwritten", f.outputDir))
		}
	}

	f.logger.LogRunStart(f.inputDir, f.outputDir)

	stats := &models.RunStats{StartedAt: time.Now()}

	record := func(outcome models.FileOutcome) {
		stats.Record(outcome)
		f.logger.LogOutcome(outcome)
	}

	walkOpts := fileutil.WalkOptions{
		SkipDirs: f.tables.SkipDirs,
		Exclude:  f.outputDir,
		OnPrune: func(entry fileutil.Entry) {
			record(models.FileOutcome{
				Kind:       models.OutcomeIgnored,
				SourcePath: entry.Path,
				RelPath:    entry.Rel,
			})
		},
	}

	err := fileutil.WalkFiles(f.inputDir, walkOpts, func(entry fileutil.Entry, accessErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		record(f.processFile(entry, accessErr))
		return nil
	})

	stats.Duration = time.Since(stats.StartedAt)
	f.logger.LogSummary(*stats)

	if err != nil {
		return stats, fmt.Errorf("traversal aborted: %w", err)
	}
	return stats, nil
}

// processFile runs the per-file sequence: classify, act, report. It
// never returns an error; failures become OutcomeErrored entries.
func (f *Flattener) processFile(entry fileutil.Entry, accessErr error) models.FileOutcome {
	outcome := models.FileOutcome{
		SourcePath: entry.Path,
		RelPath:    entry.Rel,
	}

	if accessErr != nil {
		outcome.Kind = models.OutcomeErrored
		outcome.Err = accessErr
		return outcome
	}

	base := filepath.Base(entry.Rel)

	// Hidden files are skipped without an extension check.
	if strings.HasPrefix(base, ".") {
		outcome.Kind = models.OutcomeIgnored
		return outcome
	}

	class := f.tables.Classify(base)
	if class == ClassIgnored {
		outcome.Kind = models.OutcomeIgnored
		return outcome
	}

	name := OutputName(entry.Rel)
	if class == ClassConvertible {
		name += ConvertedSuffix
	}
	outcome.OutputName = name

	// Two distinct relative paths can flatten to the same output name
	// (a literal delimiter in a filename vs a separator). The later file
	// overwrites; the collision is counted and reported.
	if first, dup := f.seen[name]; dup {
		outcome.Collision = true
		f.collisions = append(f.collisions, name)
		f.logger.LogWarning(fmt.Sprintf("output name collision: %s produced by both %s and %s", name, first, entry.Rel))
	} else {
		f.seen[name] = entry.Rel
	}

	target := filepath.Join(f.outputDir, name)

	if class == ClassSupported {
		return f.copyOutcome(outcome, entry, target)
	}
	return f.convertOutcome(outcome, entry, base, target)
}

// copyOutcome copies a supported file verbatim, preserving modification
// time where the platform allows.
func (f *Flattener) copyOutcome(outcome models.FileOutcome, entry fileutil.Entry, target string) models.FileOutcome {
	if f.dryRun {
		info, err := os.Stat(entry.Path)
		if err != nil {
			outcome.Kind = models.OutcomeErrored
			outcome.Err = err
			return outcome
		}
		outcome.Kind = models.OutcomeCopied
		outcome.Bytes = info.Size()
		return outcome
	}

	n, err := copyFile(entry.Path, target)
	if err != nil {
		outcome.Kind = models.OutcomeErrored
		outcome.Err = fmt.Errorf("copy failed: %w", err)
		return outcome
	}
	outcome.Kind = models.OutcomeCopied
	outcome.Bytes = n
	return outcome
}

// convertOutcome decodes a convertible file as UTF-8 text (lossy) and
// writes it with a .txt suffix. Files above the in-memory cap get a
// placeholder naming the original file and extension; the outcome still
// counts as converted but is flagged as truncated.
func (f *Flattener) convertOutcome(outcome models.FileOutcome, entry fileutil.Entry, base, target string) models.FileOutcome {
	info, err := os.Stat(entry.Path)
	if err != nil {
		outcome.Kind = models.OutcomeErrored
		outcome.Err = err
		return outcome
	}

	if info.Size() > f.maxConvertBytes {
		placeholder := fmt.Sprintf(
			"[Content of '%s' could not be converted: file exceeds the in-memory conversion limit. Original extension: %s]",
			base, filepath.Ext(base))
		outcome.Kind = models.OutcomeConverted
		outcome.Truncated = true
		outcome.Bytes = int64(len(placeholder))
		if f.dryRun {
			return outcome
		}
		if err := filelock.AtomicWrite(target, []byte(placeholder)); err != nil {
			outcome.Kind = models.OutcomeErrored
			outcome.Truncated = false
			outcome.Bytes = 0
			outcome.Err = fmt.Errorf("placeholder write failed: %w", err)
		}
		return outcome
	}

	if f.dryRun {
		outcome.Kind = models.OutcomeConverted
		outcome.Bytes = info.Size()
		return outcome
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		outcome.Kind = models.OutcomeErrored
		outcome.Err = fmt.Errorf("read failed: %w", err)
		return outcome
	}

	text := decodeLossy(data)
	if err := filelock.AtomicWrite(target, []byte(text)); err != nil {
		outcome.Kind = models.OutcomeErrored
		outcome.Err = fmt.Errorf("write failed: %w", err)
		return outcome
	}

	outcome.Kind = models.OutcomeConverted
	outcome.Bytes = int64(len(text))
	return outcome
}

// decodeLossy interprets data as UTF-8, substituting U+FFFD for every
// invalid byte. Valid input passes through unchanged, so re-running the
// transform on clean UTF-8 is idempotent.
func decodeLossy(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			// One replacement per invalid byte, not per invalid run.
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:size])
		}
		data = data[size:]
	}
	return b.String()
}

// copyFile copies src to dst byte-for-byte, carrying over the source
// permission bits and modification time. Returns the bytes written.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}

	// Best effort: some platforms refuse timestamp changes.
	_ = os.Chtimes(dst, time.Now(), info.ModTime())

	return n, nil
}
