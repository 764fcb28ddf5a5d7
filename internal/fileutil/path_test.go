package fileutil

import (
	"path/filepath"
	"testing"
)

// TestContains verifies strict containment semantics
func TestContains(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   bool
	}{
		{
			name:   "direct child",
			parent: "/data/out",
			child:  "/data/out/file.txt",
			want:   true,
		},
		{
			name:   "nested child",
			parent: "/data/out",
			child:  "/data/out/a/b/c",
			want:   true,
		},
		{
			name:   "same path is not contained",
			parent: "/data/out",
			child:  "/data/out",
			want:   false,
		},
		{
			name:   "sibling with shared prefix",
			parent: "/data/out",
			child:  "/data/out2",
			want:   false,
		},
		{
			name:   "parent of the parent",
			parent: "/data/out",
			child:  "/data",
			want:   false,
		},
		{
			name:   "unrelated",
			parent: "/data/out",
			child:  "/var/log",
			want:   false,
		},
		{
			name:   "unclean child path",
			parent: "/data/out",
			child:  "/data/out/../out/file.txt",
			want:   true,
		},
		{
			name:   "unclean escape",
			parent: "/data/out",
			child:  "/data/out/../other",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Contains(tt.parent, tt.child)
			if err != nil {
				t.Fatalf("Contains(%q, %q) error: %v", tt.parent, tt.child, err)
			}
			if got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.parent, tt.child, got, tt.want)
			}
		})
	}
}

// TestContainsRelativePaths verifies relative inputs are resolved against
// the working directory before comparison
func TestContainsRelativePaths(t *testing.T) {
	wd, err := filepath.Abs(".")
	if err != nil {
		t.Fatal(err)
	}

	got, err := Contains(wd, "sub/file.txt")
	if err != nil {
		t.Fatalf("Contains error: %v", err)
	}
	if !got {
		t.Error("expected relative child to be contained in the working directory")
	}
}
