// Package fs provides the file system adapter consumed by the workers.
package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxLinkHops bounds symbolic link resolution in Canonicalize.
const maxLinkHops = 255

var errTooManyLinks = zerr.New("too many levels of symbolic links")

// FileSystem implements ports.FileSystem on top of an afero file system.
// Link handling needs a backend that implements afero.Lstater and afero.LinkReader,
// such as afero.OsFs. Other backends behave as if no links exist.
type FileSystem struct {
	fs afero.Fs
}

// New creates a FileSystem backed by fs.
func New(fs afero.Fs) *FileSystem {
	return &FileSystem{fs: fs}
}

// NewOS creates a FileSystem backed by the operating system.
func NewOS() *FileSystem {
	return New(afero.NewOsFs())
}

var _ ports.FileSystem = (*FileSystem)(nil)

// Exists reports whether path exists. A dangling link does not exist.
func (f *FileSystem) Exists(path string) bool {
	_, err := f.fs.Stat(path)
	return err == nil
}

// Stat describes path, following a final symbolic link for everything but IsLink.
func (f *FileSystem) Stat(path string) (ports.FileInfo, error) {
	linfo, err := f.lstat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return ports.FileInfo{}, nil
		}
		return ports.FileInfo{}, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}

	isLink := linfo.Mode()&os.ModeSymlink != 0
	info := linfo
	if isLink {
		info, err = f.fs.Stat(path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return ports.FileInfo{}, nil
			}
			return ports.FileInfo{}, zerr.With(zerr.Wrap(err, "failed to stat link target"), "path", path)
		}
	}

	return ports.FileInfo{
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Permissions: info.Mode().Perm().String(),
		IsDir:       info.IsDir(),
		IsLink:      isLink,
		IsHidden:    isHidden(path),
		Exists:      true,
	}, nil
}

// ListDirectory returns the full paths of the entries of dir, sorted by name.
func (f *FileSystem) ListDirectory(dir string, opts ports.ListOptions) ([]string, error) {
	info, err := f.fs.Stat(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat directory"), "path", dir)
	}
	if !info.IsDir() {
		return nil, zerr.With(domain.ErrNotADirectory, "path", dir)
	}

	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read directory"), "path", dir)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if !opts.IncludeLinks && entry.Mode()&os.ModeSymlink != 0 {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// Canonicalize returns the absolute form of path with every symbolic link resolved.
func (f *FileSystem) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve absolute path"), "path", path)
	}

	reader, ok := f.fs.(afero.LinkReader)
	if !ok {
		return abs, nil
	}

	resolved := string(filepath.Separator)
	rest := strings.Split(strings.TrimPrefix(abs, filepath.VolumeName(abs)), string(filepath.Separator))
	hops := 0
	for len(rest) > 0 {
		part := rest[0]
		rest = rest[1:]
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, part)
		info, err := f.lstat(next)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxLinkHops {
			return "", zerr.With(errTooManyLinks, "path", path)
		}
		target, err := reader.ReadlinkIfPossible(next)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to read link"), "path", next)
		}
		if filepath.IsAbs(target) {
			resolved = string(filepath.Separator)
		}
		rest = append(strings.Split(target, string(filepath.Separator)), rest...)
	}
	return filepath.VolumeName(abs) + resolved, nil
}

// Copy copies the regular file at src to dst. A directory destination receives a file
// with the source name.
func (f *FileSystem) Copy(src, dst string) error {
	in, err := f.fs.Open(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open source"), "path", src)
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat source"), "path", src)
	}
	if info.IsDir() {
		return zerr.With(zerr.New("source is a directory"), "path", src)
	}

	if dstInfo, err := f.fs.Stat(dst); err == nil && dstInfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	out, err := f.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create destination"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy contents"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close destination"), "path", dst)
	}
	return nil
}

func (f *FileSystem) lstat(path string) (os.FileInfo, error) {
	if l, ok := f.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return f.fs.Stat(path)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
