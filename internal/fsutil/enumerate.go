package fsutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// WalkFiles calls fn for every regular file below root, in lexical order, with
// the path relative to root using forward slashes. Directories are descended
// into but never reported. A missing or unreadable root is a fatal filesystem
// error; an error returned by fn stops the walk and is returned as-is.
func WalkFiles(bfs billy.Filesystem, root string, fn func(rel string) error) error {
	info, err := bfs.Stat(root)
	if err != nil {
		return errors.FileSystemError("source root cannot be enumerated").
			WithCause(err).
			WithContext("path", root).
			Fatal().Build()
	}
	if !info.IsDir() {
		return errors.FileSystemError("source root is not a directory").
			WithContext("path", root).
			Fatal().Build()
	}

	return util.Walk(bfs, root, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return errors.FileSystemError("failed to read source tree").
				WithCause(walkErr).
				WithContext("path", p).
				Fatal().Build()
		}
		if fi.IsDir() || !fi.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.InternalError("path outside source root").
				WithCause(err).
				WithContext("path", p).Build()
		}
		return fn(filepath.ToSlash(rel))
	})
}

// EnumerateFiles collects WalkFiles into a sorted slice.
func EnumerateFiles(bfs billy.Filesystem, root string) ([]string, error) {
	var files []string
	err := WalkFiles(bfs, root, func(rel string) error {
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Exists reports whether p exists. Errors other than "not exist" are returned.
func Exists(bfs billy.Filesystem, p string) (bool, error) {
	_, err := bfs.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}
