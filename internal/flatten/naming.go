package flatten

import (
	"path/filepath"
	"strings"
)

// Delimiter replaces the platform path separator when a relative path is
// flattened into a single output filename. It must stay stable: output
// names are a compatibility contract with the upload target.
const Delimiter = "%"

// ConvertedSuffix is appended to the output name of convertible files.
const ConvertedSuffix = ".txt"

// sanitizeComponent replaces path separator literals inside a name
// component so the result can never escape the output directory.
func sanitizeComponent(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, `\`, "_")
}

// OutputName derives the flattened output filename for a file at the
// given path relative to the input root. Files directly in the root keep
// their name; nested files get their directory components joined by the
// delimiter: a/b/name -> a%b%name.
//
// The .txt suffix for convertible files is appended by the caller.
func OutputName(rel string) string {
	dir, base := filepath.Split(rel)
	base = sanitizeComponent(base)

	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir == "" || dir == "." {
		return base
	}

	prefix := strings.ReplaceAll(dir, string(filepath.Separator), Delimiter)
	prefix = sanitizeComponent(prefix)
	return prefix + Delimiter + base
}
