package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to read what it returns.

func describeSummary() string {
	return `Generates a merge request title and description from the commits between two branches.

USE WHEN:
- Opening a merge request and drafting its title and description
- Summarizing a feature branch for reviewers
- Estimating how long a branch will take to review

INTERPRETING RESULTS:
- Title prefix reflects the dominant change: feat, refactor, fix, or chore
- An empty range returns "No commits found between <base> and <current>."; in json the title is "No changes detected"
- Key Changes lists commits touching more than 100 lines
- Breaking Changes lists commits mentioning breaking, deprecate, or remove
- Estimated review time grows with commits, files, and changed lines

METRICS RETURNED:
- markdown (default): "# title" followed by the description
- json: title, description, total_commits, total_files_changed,
  total_insertions, total_deletions, key_changes, breaking_changes,
  new_features, bug_fixes, refactoring, files_affected, estimated_review_time`
}

func describeAnalyze() string {
	return `Categorizes every commit between two branches and reports change statistics.

USE WHEN:
- Understanding what kind of work a branch contains
- Finding the largest commits before a review
- Checking whether a branch mixes features, fixes, and refactors

INTERPRETING RESULTS:
- Categories come from keywords in the commit subject
- Commits with no keyword and more than 50 changed lines are significant changes
- Significant changes list the commits touching more than 100 lines
- An empty range returns "No commits found between the specified branches."

METRICS RETURNED:
- Summary: total commits, insertions, deletions
- Per category: commits with short hash, subject, and line counts
- Significant changes: hash, subject, and total lines`
}

func describeStatus() string {
	return `Reports the working tree state of a git repository.

USE WHEN:
- Checking for uncommitted work before summarizing a branch
- Finding the current branch and remote of a repository

INTERPRETING RESULTS:
- is_dirty is true when any tracked or untracked change exists
- remote_url is "No remote configured" when origin is missing

METRICS RETURNED:
- repository, current_branch, remote_url, is_dirty,
  untracked_files, staged_changes, unstaged_changes`
}

func describeBranches() string {
	return `Lists the local and remote branches of a git repository.

USE WHEN:
- Choosing the base branch for a merge request summary
- Confirming a branch exists before comparing it

INTERPRETING RESULTS:
- Remote branches are prefixed with their remote name, e.g. origin/main
- current_branch is the checked out branch

METRICS RETURNED:
- local_branches, remote_branches, current_branch`
}

func describeHistory() string {
	return `Lists the commits between two branches with per-commit line counts.

USE WHEN:
- Reviewing a branch commit by commit
- Finding who changed what and when

INTERPRETING RESULTS:
- Commits are listed in git log order, newest first
- Hashes are shortened to 8 characters
- An empty commit list means the range holds no commits

METRICS RETURNED:
- range, total_commits
- Per commit: hash, message, author, date, insertions, deletions, files_changed`
}

func describeFiles() string {
	return `Lists the files changed between two branches, grouped by category.

USE WHEN:
- Seeing which areas of the codebase a branch touches
- Picking reviewers by the kind of files changed

INTERPRETING RESULTS:
- Each file lands in exactly one category: Services, Models, Controllers,
  Tests, Configuration, Documentation, Frontend, Backend, or Other
- Categories are matched in that order, first match wins

METRICS RETURNED:
- range, total_files
- files: category to file list, in category order`
}
