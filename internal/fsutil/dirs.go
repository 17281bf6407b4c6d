package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// EnsureDir creates dir and any missing parents. An existing directory is not an error.
func EnsureDir(bfs billy.Filesystem, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := bfs.MkdirAll(dir, dirPerm); err != nil {
		return errors.FileSystemError("failed to create directory").
			WithCause(err).
			WithContext("path", dir).Build()
	}
	return nil
}

// DirEnsurer memoizes EnsureDir so concurrent writers into the same leaf directory
// create it once. Safe for concurrent use.
type DirEnsurer struct {
	fs   billy.Filesystem
	mu   sync.Mutex
	done map[string]struct{}
}

// NewDirEnsurer returns a DirEnsurer for bfs.
func NewDirEnsurer(bfs billy.Filesystem) *DirEnsurer {
	return &DirEnsurer{fs: bfs, done: make(map[string]struct{})}
}

// Ensure creates dir unless this ensurer already did. A failed attempt is not
// remembered, so a later call retries.
func (d *DirEnsurer) Ensure(dir string) error {
	dir = filepath.Clean(dir)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.done[dir]; ok {
		return nil
	}
	if err := EnsureDir(d.fs, dir); err != nil {
		return err
	}
	for p := dir; p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		d.done[p] = struct{}{}
		if filepath.Dir(p) == p {
			break
		}
	}
	return nil
}

// EnsureParent creates the parent directory of file.
func (d *DirEnsurer) EnsureParent(file string) error {
	return d.Ensure(filepath.Dir(file))
}

// Reset removes dir recursively (absence is fine) and recreates it empty.
func Reset(bfs billy.Filesystem, dir string) error {
	if err := util.RemoveAll(bfs, dir); err != nil && !os.IsNotExist(err) {
		return errors.FileSystemError("failed to remove destination root").
			WithCause(err).
			WithContext("path", dir).
			Fatal().Build()
	}
	if err := bfs.MkdirAll(dir, dirPerm); err != nil {
		return errors.FileSystemError("failed to create destination root").
			WithCause(err).
			WithContext("path", dir).
			Fatal().Build()
	}
	return nil
}

// ReadFile reads the whole file at p.
func ReadFile(bfs billy.Filesystem, p string) ([]byte, error) {
	data, err := util.ReadFile(bfs, p)
	if err != nil {
		return nil, errors.FileSystemError("failed to read file").
			WithCause(err).
			WithContext("path", p).Build()
	}
	return data, nil
}

// WriteFile writes data to p, truncating any existing file. The parent directory
// must already exist.
func WriteFile(bfs billy.Filesystem, p string, data []byte) error {
	if err := util.WriteFile(bfs, p, data, filePerm); err != nil {
		return errors.FileSystemError("failed to write file").
			WithCause(err).
			WithContext("path", p).Build()
	}
	return nil
}

// CopyFile copies src to dst byte for byte and returns the number of bytes written.
// The parent directory of dst must already exist.
func CopyFile(bfs billy.Filesystem, src, dst string) (int64, error) {
	in, err := bfs.Open(src)
	if err != nil {
		return 0, errors.FileSystemError("failed to open source file").
			WithCause(err).
			WithContext("path", src).Build()
	}
	defer func() { _ = in.Close() }()

	out, err := bfs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return 0, errors.FileSystemError("failed to create destination file").
			WithCause(err).
			WithContext("path", dst).Build()
	}

	n, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return n, errors.FileSystemError("failed to copy file").
			WithCause(copyErr).
			WithContext("source", src).
			WithContext("path", dst).Build()
	}
	return n, nil
}

// FileSize returns the size of p, or -1 when it does not exist.
func FileSize(bfs billy.Filesystem, p string) (int64, error) {
	info, err := bfs.Stat(p)
	if os.IsNotExist(err) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
