package models

// CommitRecord is one parsed entry of `git log --stat` output.
type CommitRecord struct {
	Hash         string   `json:"hash" toon:"hash"`
	Author       string   `json:"author" toon:"author"`
	Date         string   `json:"date" toon:"date"` // YYYY-MM-DD, opaque to the parser
	Message      string   `json:"message" toon:"message"`
	FilesChanged []string `json:"files_changed" toon:"files_changed"`
	Insertions   int      `json:"insertions" toon:"insertions"`
	Deletions    int      `json:"deletions" toon:"deletions"`
}

// ShortHashLen is the number of hash characters shown in reports.
const ShortHashLen = 8

// ShortHash returns the abbreviated commit hash used in report entries.
func (c CommitRecord) ShortHash() string {
	return ShortHash(c.Hash)
}

// TotalLines returns insertions plus deletions.
func (c CommitRecord) TotalLines() int {
	return c.Insertions + c.Deletions
}

// ShortHash abbreviates a hash to ShortHashLen characters.
func ShortHash(hash string) string {
	if len(hash) <= ShortHashLen {
		return hash
	}
	return hash[:ShortHashLen]
}

// HistoryEntry is the per-commit view returned by the commit history command.
type HistoryEntry struct {
	Hash         string   `json:"hash" toon:"hash"`
	Message      string   `json:"message" toon:"message"`
	Author       string   `json:"author" toon:"author"`
	Date         string   `json:"date" toon:"date"`
	Insertions   int      `json:"insertions" toon:"insertions"`
	Deletions    int      `json:"deletions" toon:"deletions"`
	FilesChanged []string `json:"files_changed" toon:"files_changed"`
}

// NewHistory converts parsed records into history entries.
func NewHistory(records []CommitRecord) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		files := r.FilesChanged
		if files == nil {
			files = []string{}
		}
		entries = append(entries, HistoryEntry{
			Hash:         r.ShortHash(),
			Message:      r.Message,
			Author:       r.Author,
			Date:         r.Date,
			Insertions:   r.Insertions,
			Deletions:    r.Deletions,
			FilesChanged: files,
		})
	}
	return entries
}
