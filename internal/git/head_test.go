package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRevision_NotRepository(t *testing.T) {
	_, err := ReadRevision(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
	assert.Equal(t, Revision{}, RevisionOrEmpty(t.TempDir()))
}

func TestReadRevision_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	rev, err := ReadRevision(dir)
	require.NoError(t, err)
	assert.Empty(t, rev.Commit)
}

func TestReadRevision_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	src := filepath.Join(dir, "src", "public")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("src/public/index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	rev, err := ReadRevision(src)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), rev.Commit)
	assert.Equal(t, hash.String()[:12], rev.Short())
	assert.Equal(t, "master", rev.Branch)
	assert.False(t, rev.Dirty)

	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("changed"), 0o644))
	rev, err = ReadRevision(src)
	require.NoError(t, err)
	assert.True(t, rev.Dirty)
}
