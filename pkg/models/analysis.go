package models

// CommitAnalysis is the categorized commit report produced without the
// narrative description.
type CommitAnalysis struct {
	TotalCommits       int                 `json:"total_commits" toon:"total_commits"`
	TotalInsertions    int                 `json:"total_insertions" toon:"total_insertions"`
	TotalDeletions     int                 `json:"total_deletions" toon:"total_deletions"`
	Categories         []CategoryBucket    `json:"categories" toon:"categories"`
	SignificantChanges []SignificantChange `json:"significant_changes" toon:"significant_changes"`
	FilesAffected      []string            `json:"files_affected" toon:"files_affected"`
	FileGroups         FileGroups          `json:"file_groups" toon:"file_groups"`
	Skipped            int                 `json:"skipped,omitempty" toon:"skipped,omitempty"`
}

// CategoryBucket lists the commits tagged with one category.
type CategoryBucket struct {
	Category CommitCategory      `json:"category" toon:"category"`
	Commits  []CategorizedCommit `json:"commits" toon:"commits"`
}

// CategorizedCommit is a commit as listed under a category.
type CategorizedCommit struct {
	Hash       string `json:"hash" toon:"hash"`
	Message    string `json:"message" toon:"message"`
	Insertions int    `json:"insertions" toon:"insertions"`
	Deletions  int    `json:"deletions" toon:"deletions"`
}

// SignificantChange is a commit whose combined line count crossed the
// key-change threshold.
type SignificantChange struct {
	Hash       string `json:"hash" toon:"hash"`
	Message    string `json:"message" toon:"message"`
	TotalLines int    `json:"total_lines" toon:"total_lines"`
}
