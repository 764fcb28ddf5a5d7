package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harrison/flatpack/internal/models"
)

// RenderSummary prints the end-of-run statistics block. With colorOutput
// enabled, the error line is red and the header green.
func RenderSummary(out io.Writer, stats models.RunStats, colorOutput bool) {
	header := "--- Processing Summary ---"
	if colorOutput {
		header = color.GreenString("%s", header)
	}

	fmt.Fprintf(out, "\n%s\n", header)
	fmt.Fprintf(out, "Files processed (copied or converted): %d\n", stats.Processed)
	fmt.Fprintf(out, "Files converted to .txt: %d\n", stats.Converted)
	fmt.Fprintf(out, "Files/directories ignored or skipped: %d\n", stats.Ignored)

	if stats.Errors > 0 {
		line := fmt.Sprintf("Errors encountered: %d", stats.Errors)
		if colorOutput {
			line = color.RedString("%s", line)
		}
		fmt.Fprintf(out, "%s\n", line)
	}
	if stats.Collisions > 0 {
		fmt.Fprintf(out, "Output name collisions: %d\n", stats.Collisions)
	}

	fmt.Fprintf(out, "Final output size: %.2f MB\n", stats.TotalMB())
}
