package models

import (
	"bytes"
	"encoding/json"
)

// SummaryReport is the merge request summary produced from a commit range.
// JSON field names are part of the output contract.
type SummaryReport struct {
	Title               string   `json:"title" toon:"title"`
	Description         string   `json:"description" toon:"description"`
	TotalCommits        int      `json:"total_commits" toon:"total_commits"`
	TotalFilesChanged   int      `json:"total_files_changed" toon:"total_files_changed"`
	TotalInsertions     int      `json:"total_insertions" toon:"total_insertions"`
	TotalDeletions      int      `json:"total_deletions" toon:"total_deletions"`
	KeyChanges          []string `json:"key_changes" toon:"key_changes"`
	BreakingChanges     []string `json:"breaking_changes" toon:"breaking_changes"`
	NewFeatures         []string `json:"new_features" toon:"new_features"`
	BugFixes            []string `json:"bug_fixes" toon:"bug_fixes"`
	Refactoring         []string `json:"refactoring" toon:"refactoring"`
	FilesAffected       []string `json:"files_affected" toon:"files_affected"`
	EstimatedReviewTime string   `json:"estimated_review_time" toon:"estimated_review_time"`
}

// FileGroup holds the files filed under one category.
type FileGroup struct {
	Category FileCategory `json:"category" toon:"category"`
	Files    []string     `json:"files" toon:"files"`
}

// FileGroups is an ordered set of file groups. It marshals to a JSON object
// keyed by category, preserving category order.
type FileGroups []FileGroup

// MarshalJSON writes the groups as {"Services": [...], "Models": [...]}.
func (g FileGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(group.Category))
		if err != nil {
			return nil, err
		}
		files := group.Files
		if files == nil {
			files = []string{}
		}
		val, err := json.Marshal(files)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Total returns the number of files across all groups.
func (g FileGroups) Total() int {
	n := 0
	for _, group := range g {
		n += len(group.Files)
	}
	return n
}

// Lookup returns the files filed under category, or nil.
func (g FileGroups) Lookup(category FileCategory) []string {
	for _, group := range g {
		if group.Category == category {
			return group.Files
		}
	}
	return nil
}
