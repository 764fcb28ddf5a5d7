package models

import (
	"time"
)

// OutcomeKind classifies the result of processing a single input file.
type OutcomeKind string

const (
	// OutcomeCopied means the file had a supported extension and was
	// copied byte-for-byte into the output directory.
	OutcomeCopied OutcomeKind = "copied"

	// OutcomeConverted means the file was decoded as UTF-8 text and
	// written with a .txt suffix.
	OutcomeConverted OutcomeKind = "converted"

	// OutcomeIgnored means no output was produced: hidden file, ignored
	// extension, or a pruned directory.
	OutcomeIgnored OutcomeKind = "ignored"

	// OutcomeErrored means processing failed for this file; the run
	// continues with the next file.
	OutcomeErrored OutcomeKind = "errored"
)

// FileOutcome is the result of one classify→act step for a single
// traversal entry. Outcomes are produced by the flattener and consumed
// by RunStats.Record, which owns all counter arithmetic.
type FileOutcome struct {
	// Kind is the outcome classification.
	Kind OutcomeKind

	// SourcePath is the absolute path of the input file (or pruned
	// directory for ignored-directory outcomes).
	SourcePath string

	// RelPath is the path relative to the input root.
	RelPath string

	// OutputName is the flattened output filename, empty when no output
	// was produced.
	OutputName string

	// Bytes is the size of the output written for this file.
	Bytes int64

	// Collision is set when OutputName was already produced by an
	// earlier file in the same run (the later file overwrites).
	Collision bool

	// Truncated is set when the file exceeded the in-memory conversion
	// cap and a placeholder .txt was written instead of its content.
	Truncated bool

	// Err holds the per-file failure for errored outcomes.
	Err error
}

// RunStats accumulates counters for a single flattening run. It is
// mutated once per file via Record and read only at the end for
// reporting.
type RunStats struct {
	// Processed counts files that produced output (copied or converted).
	Processed int

	// Converted counts files written as .txt (subset of Processed).
	Converted int

	// Ignored counts hidden files, ignored extensions and pruned
	// directories.
	Ignored int

	// Errors counts per-file failures, including placeholder writes for
	// oversized convertible files.
	Errors int

	// Collisions counts output names produced by more than one input.
	Collisions int

	// TotalBytes is the cumulative size of all output written.
	TotalBytes int64

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the total wall-clock time of the traversal.
	Duration time.Duration
}

// Record updates the counters for a single file outcome.
func (s *RunStats) Record(o FileOutcome) {
	switch o.Kind {
	case OutcomeCopied:
		s.Processed++
		s.TotalBytes += o.Bytes
	case OutcomeConverted:
		s.Processed++
		s.Converted++
		s.TotalBytes += o.Bytes
		// A placeholder written for an oversized file still counts as
		// processed/converted but is flagged as an error condition.
		if o.Truncated {
			s.Errors++
		}
	case OutcomeIgnored:
		s.Ignored++
	case OutcomeErrored:
		s.Errors++
	}

	if o.Collision {
		s.Collisions++
	}
}

// ExceedsSizeLimit reports whether the cumulative output size is over
// the given byte threshold.
func (s *RunStats) ExceedsSizeLimit(limit int64) bool {
	return limit > 0 && s.TotalBytes > limit
}

// TotalMB returns the cumulative output size in megabytes.
func (s *RunStats) TotalMB() float64 {
	return float64(s.TotalBytes) / (1024 * 1024)
}
