package testing

import (
	"path"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
)

// FileAssertions provides utilities for asserting file system state in tests.
// Paths are slash-separated and relative to baseDir.
type FileAssertions struct {
	t       *testing.T
	fs      billy.Filesystem
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, fs billy.Filesystem, baseDir string) *FileAssertions {
	return &FileAssertions{
		t:       t,
		fs:      fs,
		baseDir: baseDir,
	}
}

func (fa *FileAssertions) full(relativePath string) string {
	return path.Join(fa.baseDir, relativePath)
}

// Seed writes files (relative path -> content) below baseDir.
func (fa *FileAssertions) Seed(files map[string]string) *FileAssertions {
	fa.t.Helper()
	for rel, content := range files {
		if err := util.WriteFile(fa.fs, fa.full(rel), []byte(content), testFilePermissions); err != nil {
			fa.t.Fatalf("Failed to seed %s: %v", rel, err)
		}
	}
	return fa
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	if ok, err := fsutil.Exists(fa.fs, fa.full(relativePath)); err != nil || !ok {
		fa.t.Errorf("Expected file to exist: %s", fa.full(relativePath))
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist.
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	if ok, _ := fsutil.Exists(fa.fs, fa.full(relativePath)); ok {
		fa.t.Errorf("Expected file to not exist: %s", fa.full(relativePath))
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	content, err := util.ReadFile(fa.fs, fa.full(relativePath))
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fa.full(relativePath), err)
		return fa
	}
	if !strings.Contains(string(content), expectedContent) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s",
			relativePath, expectedContent, string(content))
	}
	return fa
}

// AssertFileEquals validates that a file holds exactly the expected content.
func (fa *FileAssertions) AssertFileEquals(relativePath, expected string) *FileAssertions {
	fa.t.Helper()
	if got := fa.GetFileContent(relativePath); got != expected {
		fa.t.Errorf("File %s differs\nexpected: %q\nactual:   %q", relativePath, expected, got)
	}
	return fa
}

// ListFiles returns every regular file below baseDir, sorted.
func (fa *FileAssertions) ListFiles() []string {
	fa.t.Helper()
	files, err := fsutil.EnumerateFiles(fa.fs, fa.baseDir)
	if err != nil {
		fa.t.Fatalf("Failed to enumerate %s: %v", fa.baseDir, err)
	}
	return files
}

// Snapshot returns the content of every file below baseDir keyed by relative path.
func (fa *FileAssertions) Snapshot() map[string]string {
	fa.t.Helper()
	files := fa.ListFiles()
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f] = fa.GetFileContent(f)
	}
	return out
}

// GetFileContent reads and returns the content of a file.
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	content, err := util.ReadFile(fa.fs, fa.full(relativePath))
	if err != nil {
		fa.t.Fatalf("Failed to read file %s: %v", fa.full(relativePath), err)
	}
	return string(content)
}
