package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/mrsummary/pkg/models"
)

// initRepo creates a repository on master with one commit and a second
// local branch named feature.
func initRepo(t *testing.T, dir string) (*git.Repository, plumbing.Hash) {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	writeFile(t, dir, "README.md", "hello\n")
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("feature"), hash)
	require.NoError(t, repo.Storer.SetReference(ref))
	return repo, hash
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStatus_Clean(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	st, err := NewClient().Status(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), st.Repository)
	assert.Equal(t, "master", st.CurrentBranch)
	assert.Equal(t, models.NoRemoteConfigured, st.RemoteURL)
	assert.False(t, st.IsDirty)
	assert.Zero(t, st.UntrackedFiles)
	assert.Zero(t, st.StagedChanges)
	assert.Zero(t, st.UnstagedChanges)
}

func TestStatus_Dirty(t *testing.T) {
	dir := t.TempDir()
	repo, _ := initRepo(t, dir)
	_, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://example.com/acme/app.git"},
	})
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	writeFile(t, dir, "README.md", "changed\n")
	writeFile(t, dir, "staged.go", "package main\n")
	_, err = wt.Add("staged.go")
	require.NoError(t, err)
	writeFile(t, dir, "untracked.txt", "x\n")

	st, err := NewClient().Status(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/acme/app.git", st.RemoteURL)
	assert.True(t, st.IsDirty)
	assert.Equal(t, 1, st.UntrackedFiles)
	assert.Equal(t, 1, st.StagedChanges)
	assert.Equal(t, 1, st.UnstagedChanges)
}

func TestStatus_UntrackedOnlyIsClean(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	writeFile(t, dir, "notes.txt", "x\n")

	st, err := NewClient().Status(dir)
	require.NoError(t, err)
	assert.False(t, st.IsDirty)
	assert.Equal(t, 1, st.UntrackedFiles)
}

func TestStatus_DetachedHead(t *testing.T) {
	dir := t.TempDir()
	repo, hash := initRepo(t, dir)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, hash)))

	st, err := NewClient().Status(dir)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), st.CurrentBranch)
}

func TestStatus_Subdirectory(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	st, err := NewClient().Status(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), st.Repository)
}

func TestStatus_NotRepository(t *testing.T) {
	_, err := NewClient().Status(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRepository))
}

func TestBranches(t *testing.T) {
	dir := t.TempDir()
	repo, hash := initRepo(t, dir)

	for _, ref := range []*plumbing.Reference{
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "main"), hash),
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "develop"), hash),
		plumbing.NewSymbolicReference(plumbing.NewRemoteHEADReferenceName("origin"),
			plumbing.NewRemoteReferenceName("origin", "main")),
	} {
		require.NoError(t, repo.Storer.SetReference(ref))
	}

	list, err := NewClient().Branches(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"feature", "master"}, list.LocalBranches)
	assert.Equal(t, []string{"origin/develop", "origin/main"}, list.RemoteBranches)
	assert.Equal(t, "master", list.CurrentBranch)
}

func TestBranches_NoRemotes(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	list, err := NewClient().Branches(dir)
	require.NoError(t, err)
	assert.NotNil(t, list.RemoteBranches)
	assert.Empty(t, list.RemoteBranches)
}
