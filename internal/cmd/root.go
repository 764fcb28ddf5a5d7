package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for flatpack
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatpack",
		Short: "Flatten a directory tree for flat-file upload targets",
		Long: `Flatpack prepares a codebase or document set for upload to tools that
only accept a flat list of files.

It walks an input directory, renames every file so the flattened name
encodes its original relative path, copies files with supported
extensions verbatim, converts other readable text files to .txt, and
skips multimedia/binary files entirely.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewExtensionsCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
