// Package ports defines the core interfaces for the application.
package ports

import "time"

// FileInfo is the result of a stat call.
type FileInfo struct {
	Size        int64
	ModTime     time.Time
	Permissions string
	IsDir       bool
	IsLink      bool
	IsHidden    bool
	Exists      bool
}

// ListOptions controls which entries a directory listing returns.
type ListOptions struct {
	// ShowHidden includes entries whose names start with a dot.
	ShowHidden bool
	// IncludeLinks includes symbolic links. Without it links are left out of the listing.
	IncludeLinks bool
}

// FileSystem is the set of filesystem primitives the workers consume.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Exists reports whether path exists. A dangling symbolic link does not exist.
	Exists(path string) bool

	// Stat describes path. IsLink is taken from the link itself; every other field
	// describes the link target when it resolves. A missing path is reported with
	// Exists false and a nil error.
	Stat(path string) (FileInfo, error)

	// ListDirectory returns the full paths of the entries of dir, in directory order.
	ListDirectory(dir string, opts ListOptions) ([]string, error)

	// Canonicalize resolves symbolic links and "." / ".." elements in path.
	Canonicalize(path string) (string, error)

	// Copy copies the file at src to dst.
	Copy(src, dst string) error
}
