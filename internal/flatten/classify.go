package flatten

import (
	"path/filepath"
	"strings"
)

// Classification is the action bucket for a file extension.
type Classification int

const (
	// ClassConvertible files are decoded as UTF-8 text and written with
	// a .txt suffix. Any extension not explicitly supported or ignored
	// (including no extension at all) lands here.
	ClassConvertible Classification = iota

	// ClassSupported files are copied to the output verbatim.
	ClassSupported

	// ClassIgnored files produce no output.
	ClassIgnored
)

// String returns a human-readable name for the classification.
func (c Classification) String() string {
	switch c {
	case ClassSupported:
		return "supported"
	case ClassIgnored:
		return "ignored"
	default:
		return "convertible"
	}
}

// Ext extracts the normalized extension of a filename: the lowercased
// substring after the final dot, or "" when the name has no dot.
func Ext(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Classify determines the action bucket for a filename based on the
// tables. Matching is case-insensitive on the final dot-suffix.
func (t *Tables) Classify(filename string) Classification {
	ext := Ext(filename)
	switch {
	case t.Ignored[ext]:
		return ClassIgnored
	case t.Supported[ext]:
		return ClassSupported
	default:
		return ClassConvertible
	}
}
