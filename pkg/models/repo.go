package models

// NoRemoteConfigured is reported when the repository has no origin remote.
const NoRemoteConfigured = "No remote configured"

// RepoStatus describes the working tree of a repository.
type RepoStatus struct {
	Repository      string `json:"repository" toon:"repository"`
	CurrentBranch   string `json:"current_branch" toon:"current_branch"`
	RemoteURL       string `json:"remote_url" toon:"remote_url"`
	IsDirty         bool   `json:"is_dirty" toon:"is_dirty"`
	UntrackedFiles  int    `json:"untracked_files" toon:"untracked_files"`
	StagedChanges   int    `json:"staged_changes" toon:"staged_changes"`
	UnstagedChanges int    `json:"unstaged_changes" toon:"unstaged_changes"`
}

// BranchList holds the local and remote branches of a repository.
type BranchList struct {
	LocalBranches  []string `json:"local_branches" toon:"local_branches"`
	RemoteBranches []string `json:"remote_branches" toon:"remote_branches"`
	CurrentBranch  string   `json:"current_branch" toon:"current_branch"`
}
