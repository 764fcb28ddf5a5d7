package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related output files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}

		for i, file := range w.Files {
			b.WriteString("      ")
			b.WriteString(fmt.Sprintf("%d. %s", i+1, file))
			b.WriteString("\n")
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")

	fmt.Fprint(out, b.String())
}

// SizeLimitWarning builds the warning shown when the flattened output
// exceeds the recommended upload size.
func SizeLimitWarning(totalMB float64, limitMB int) Warning {
	return Warning{
		Title:      fmt.Sprintf("Output size (%.2f MB) exceeds the recommended %d MB limit", totalMB, limitMB),
		Message:    "The upload target might struggle or fail to process folders this large.",
		Suggestion: "Consider reducing the input scope or removing large files.",
	}
}

// CollisionWarning builds the warning shown when distinct input paths
// flattened to the same output name (the later file overwrote).
func CollisionWarning(names []string) Warning {
	return Warning{
		Title:   "Output name collisions detected; later files overwrote earlier ones",
		Message: "Distinct input paths flattened to the same output filename.",
		Files:   names,
	}
}

// NonEmptyOutputWarning builds the warning shown when the output
// directory already contains files.
func NonEmptyOutputWarning(outputDir string) Warning {
	return Warning{
		Title:   fmt.Sprintf("Output directory %s exists and is not empty", outputDir),
		Message: "Existing files may be overwritten.",
	}
}
