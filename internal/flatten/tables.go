package flatten

// Tables holds the extension classification sets and the directory
// skip-set used by a Flattener. Tables are built once at construction
// and never mutated afterwards; matching is case-insensitive against the
// substring after the final dot of a filename.
type Tables struct {
	// Supported extensions are copied to the output byte-for-byte.
	Supported map[string]bool

	// Ignored extensions produce no output at all.
	Ignored map[string]bool

	// SkipDirs are directory names pruned before descent.
	SkipDirs map[string]bool
}

// supportedExtensions lists file types accepted as-is by the upload
// target. Extensions not listed here and not in ignoredExtensions are
// converted to .txt.
var supportedExtensions = []string{
	// Code
	"c", "cpp", "py", "java", "php", "sql", "html",
	// Documents
	"doc", "docx", "pdf", "rtf", "dot", "dotx", "hwp", "hwpx",
	// Plain text
	"txt",
	// Presentations
	"pptx",
}

// ignoredExtensions lists multimedia, archive and binary artifact types
// that are skipped entirely.
var ignoredExtensions = []string{
	// Images
	"jpg", "jpeg", "png", "gif", "bmp", "tiff", "svg", "webp", "ico",
	// Audio
	"mp3", "wav", "aac", "ogg", "flac", "m4a",
	// Video
	"mp4", "mov", "avi", "mkv", "webm", "wmv", "flv",
	// Archives
	"zip", "rar", "7z", "tar", "gz", "bz2", "xz",
	// Executables / system
	"exe", "dll", "so", "dylib", "dmg", "app", "iso", "bin", "msi", "jar",
	// Fonts
	"ttf", "otf", "woff", "woff2",
	// Other non-text assets
	"psd", "ai", "eps", "indd", "obj", "stl", "pdb", "log",
	// Config / env files that are often sensitive or generated
	"env", "lock",
	// Build artifacts
	"o", "a", "lib", "class", "pyc", "pyd",
}

// skipDirNames lists directories whose contents are never visited.
var skipDirNames = []string{
	".git", ".svn", ".vscode", ".idea", "node_modules", "__pycache__", "venv", ".env",
}

// DefaultTables returns a fresh Tables value with the stock extension
// and skip-dir sets. Callers may extend the returned sets before
// constructing a Flattener; the supported set must not be changed, as
// the output naming contract depends on it.
func DefaultTables() *Tables {
	return &Tables{
		Supported: toSet(supportedExtensions),
		Ignored:   toSet(ignoredExtensions),
		SkipDirs:  toSet(skipDirNames),
	}
}

// toSet builds a lookup map from a slice of names.
func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// SupportedList returns the supported extensions as a sorted-ready slice
// copy for display purposes.
func (t *Tables) SupportedList() []string {
	return setToSlice(t.Supported)
}

// IgnoredList returns the ignored extensions as a slice copy.
func (t *Tables) IgnoredList() []string {
	return setToSlice(t.Ignored)
}

// SkipDirList returns the skip-set directory names as a slice copy.
func (t *Tables) SkipDirList() []string {
	return setToSlice(t.SkipDirs)
}

func setToSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}
