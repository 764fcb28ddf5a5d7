package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Entry is a single traversal result: the absolute source path of a file
// plus its path relative to the walk root.
type Entry struct {
	// Path is the absolute path of the file.
	Path string
	// Rel is the path relative to the walk root.
	Rel string
}

// WalkOptions configures directory traversal.
type WalkOptions struct {
	// SkipDirs is a set of directory names to prune before descent
	// (version control, dependency caches, virtual environments).
	// Directories whose name starts with "." are always pruned.
	SkipDirs map[string]bool

	// Exclude is a subtree to skip entirely. Any path equal to or
	// contained in Exclude is never visited. Empty disables exclusion.
	Exclude string

	// OnPrune, if set, is called once for each directory pruned by
	// SkipDirs or the dot-prefix rule (not for the Exclude subtree).
	OnPrune func(entry Entry)
}

// WalkFn is called once per regular file, including symlinks that
// resolve to one. A non-nil err means the entry could not be accessed;
// entry.Path is still set. Returning an error stops the walk.
type WalkFn func(entry Entry, err error) error

// WalkFiles walks the tree rooted at dir depth-first, directories
// top-down, applying the pruning rules in opts and invoking fn for every
// file encountered. Access errors on individual entries are passed to fn
// so the caller can count them without aborting the traversal.
func WalkFiles(dir string, opts WalkOptions, fn WalkFn) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve walk root %s: %w", dir, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	var exclude string
	if opts.Exclude != "" {
		exclude, err = filepath.Abs(opts.Exclude)
		if err != nil {
			return fmt.Errorf("failed to resolve excluded path %s: %w", opts.Exclude, err)
		}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if walkErr != nil {
			// Surface the access error to the caller and keep walking.
			return fn(Entry{Path: path, Rel: rel}, walkErr)
		}

		// Skip the walk root itself.
		if path == root {
			return nil
		}

		// Never descend into (or process) the excluded subtree.
		if exclude != "" {
			if path == exclude {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if inside, _ := Contains(exclude, path); inside {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if opts.SkipDirs[d.Name()] || len(d.Name()) > 0 && d.Name()[0] == '.' {
				if opts.OnPrune != nil {
					opts.OnPrune(Entry{Path: path, Rel: rel})
				}
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are followed one level: a link to a regular file is
		// visited like the file itself (reads through the link resolve
		// to the target content). Links to directories are not followed,
		// matching the no-descent traversal contract; broken links
		// surface their stat error so the caller can count them.
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				return fn(Entry{Path: path, Rel: rel}, statErr)
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			return fn(Entry{Path: path, Rel: rel}, nil)
		}

		// Other non-regular entries (sockets, devices) produce no output.
		if !d.Type().IsRegular() {
			return nil
		}

		return fn(Entry{Path: path, Rel: rel}, nil)
	})
}
