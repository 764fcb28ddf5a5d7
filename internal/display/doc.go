// Package display provides terminal UI utilities for user-facing warnings
// and the end-of-run summary.
//
// # Warning Messages
//
// Display warnings with optional components:
//
//	warning := display.SizeLimitWarning(stats.TotalMB(), 100)
//	warning.Display(os.Stdout)
//
// # Summary
//
// Render final run statistics:
//
//	display.RenderSummary(os.Stdout, stats, isatty.IsTerminal(os.Stdout.Fd()))
//
// All functions accept io.Writer interfaces for testability.
package display
