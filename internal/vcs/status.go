package vcs

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/panbanda/mrsummary/pkg/models"
)

// Status reports the branch, origin remote, and working tree counts of the
// repository containing path.
func (c *Client) Status(path string) (*models.RepoStatus, error) {
	repo, err := c.open(path)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "open worktree")
	}

	branch, err := currentBranch(repo)
	if err != nil {
		return nil, err
	}

	st := &models.RepoStatus{
		Repository:    filepath.Base(wt.Filesystem.Root()),
		CurrentBranch: branch,
		RemoteURL:     remoteURL(repo, "origin"),
	}

	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrap(err, "read worktree status")
	}
	for _, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			st.UntrackedFiles++
			continue
		}
		if s.Staging != git.Unmodified {
			st.StagedChanges++
		}
		if s.Worktree != git.Unmodified {
			st.UnstagedChanges++
		}
	}
	// Untracked files do not make the tree dirty.
	st.IsDirty = st.StagedChanges > 0 || st.UnstagedChanges > 0
	return st, nil
}

// Branches lists local and remote-tracking branches, sorted by name.
func (c *Client) Branches(path string) (*models.BranchList, error) {
	repo, err := c.open(path)
	if err != nil {
		return nil, err
	}

	local, err := branchNames(repo)
	if err != nil {
		return nil, err
	}

	remote := []string{}
	refs, err := repo.References()
	if err != nil {
		return nil, errors.Wrap(err, "list references")
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		if !name.IsRemote() || strings.HasSuffix(name.Short(), "/HEAD") {
			return nil
		}
		remote = append(remote, name.Short())
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list remote branches")
	}
	sort.Strings(remote)

	branch, err := currentBranch(repo)
	if err != nil {
		return nil, err
	}

	return &models.BranchList{
		LocalBranches:  local,
		RemoteBranches: remote,
		CurrentBranch:  branch,
	}, nil
}

func (c *Client) open(path string) (*git.Repository, error) {
	if path == "" {
		path = "."
	}
	repo, err := c.opener.PlainOpenWithDetect(path)
	if err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("%s is not a git repository", path), ErrNotRepository),
			"run the command inside a git work tree or pass --repo")
	}
	return repo, nil
}

func (c *Client) localBranches(path string) ([]string, error) {
	repo, err := c.open(path)
	if err != nil {
		return nil, err
	}
	return branchNames(repo)
}

func branchNames(repo *git.Repository) ([]string, error) {
	iter, err := repo.Branches()
	if err != nil {
		return nil, errors.Wrap(err, "list branches")
	}
	names := []string{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list branches")
	}
	sort.Strings(names)
	return names, nil
}

// currentBranch returns the checked out branch, or the commit hash when HEAD
// is detached. An unborn branch reports the name HEAD points at.
func currentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", errors.Wrap(err, "read HEAD")
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return head.Hash().String(), nil
}

// remoteURL returns the first URL of the named remote.
func remoteURL(repo *git.Repository, name string) string {
	remote, err := repo.Remote(name)
	if err != nil {
		return models.NoRemoteConfigured
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return models.NoRemoteConfigured
	}
	return urls[0]
}
