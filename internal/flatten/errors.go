package flatten

import "errors"

// Fatal setup errors. All three abort a run before any traversal; they
// are checked during construction so a failed run never produces partial
// output.
var (
	// ErrInvalidInput means the input path does not exist or is not a
	// directory.
	ErrInvalidInput = errors.New("input path does not exist or is not a directory")

	// ErrInvalidOutput means the output path exists but is not a
	// directory, or is nested inside the input directory.
	ErrInvalidOutput = errors.New("invalid output path")

	// ErrOutputCreate means the output directory could not be created.
	ErrOutputCreate = errors.New("could not create output directory")
)
