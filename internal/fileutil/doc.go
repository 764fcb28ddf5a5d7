// Package fileutil provides the directory traversal and path containment
// helpers used by the flattening transformer.
//
// WalkFiles walks a tree depth-first and top-down, pruning hidden
// directories and a caller-supplied skip-set before descent, excluding a
// designated subtree (the output directory), and reporting per-entry
// access errors to the callback instead of aborting the walk.
//
// Contains implements proper path containment (filepath.Rel based) so
// sibling directories with a shared name prefix are never confused.
package fileutil
