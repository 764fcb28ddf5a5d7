package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/flatpack/internal/flatten"
)

// NewExtensionsCommand creates the extensions command, which prints the
// built-in classification tables.
func NewExtensionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "Show the extension classification tables",
		Long: `Show how file extensions are classified.

Supported extensions are copied to the output verbatim. Ignored
extensions are skipped entirely. Every other file type is converted to
.txt if text-readable. Matching is case-insensitive on the suffix after
the final dot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTables(cmd.OutOrStdout(), flatten.DefaultTables())
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}

// printTables renders the classification tables in sorted order.
func printTables(out io.Writer, tables *flatten.Tables) {
	fmt.Fprintf(out, "Supported extensions (copied verbatim):\n")
	fmt.Fprintf(out, "  %s\n\n", joinSorted(tables.SupportedList()))

	fmt.Fprintf(out, "Ignored extensions (skipped):\n")
	fmt.Fprintf(out, "  %s\n\n", joinSorted(tables.IgnoredList()))

	fmt.Fprintf(out, "Skipped directories (never descended into):\n")
	fmt.Fprintf(out, "  %s\n\n", joinSorted(tables.SkipDirList()))

	fmt.Fprintf(out, "All other file types are converted to .txt (if text-readable).\n")
}

// joinSorted sorts and comma-joins a list of names.
func joinSorted(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
