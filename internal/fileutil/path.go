package fileutil

import (
	"path/filepath"
	"strings"
)

// Contains reports whether child is located inside parent (strictly:
// Contains(p, p) is false). Both paths are compared after cleaning and
// converting to absolute form, using filepath.Rel rather than string
// prefixing so sibling directories with a shared prefix (/data/out vs
// /data/out2) are never confused.
func Contains(parent, child string) (bool, error) {
	absParent, err := filepath.Abs(parent)
	if err != nil {
		return false, err
	}
	absChild, err := filepath.Abs(child)
	if err != nil {
		return false, err
	}

	if absParent == absChild {
		return false, nil
	}

	rel, err := filepath.Rel(absParent, absChild)
	if err != nil {
		// Different volumes (Windows) cannot contain each other.
		return false, nil
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}
