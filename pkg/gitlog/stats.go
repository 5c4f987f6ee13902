// Package gitlog parses the output of `git log --stat` rendered with the
// hash/author/date/subject format used by mrsummary.
package gitlog

import (
	"regexp"
	"strconv"
)

// Stats holds the line counts extracted from one stat line.
type Stats struct {
	Insertions int
	Deletions  int
}

// Patterns are tried in priority order. The first two carry both counts.
var (
	bothSignedPattern   = regexp.MustCompile(`(\d+)\s+insertions?\(\+\),\s*(\d+)\s+deletions?\(-\)`)
	bothUnsignedPattern = regexp.MustCompile(`(\d+)\s+insertions?,\s*(\d+)\s+deletions?`)
	insertionsPattern   = regexp.MustCompile(`(\d+)\s+insertions?\(\+\)`)
	deletionsPattern    = regexp.MustCompile(`(\d+)\s+deletions?\(-\)`)
)

// ParseStats extracts insertion and deletion counts from a stat line such as
// "2 files changed, 10 insertions(+), 5 deletions(-)". The boolean reports
// whether any pattern matched, so a line of zero counts is distinguishable
// from a line with no counts at all.
func ParseStats(line string) (Stats, bool) {
	for _, pattern := range []*regexp.Regexp{bothSignedPattern, bothUnsignedPattern} {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return Stats{Insertions: atoi(m[1]), Deletions: atoi(m[2])}, true
		}
	}

	var stats Stats
	matched := false
	if m := insertionsPattern.FindStringSubmatch(line); m != nil {
		stats.Insertions = atoi(m[1])
		matched = true
	}
	if m := deletionsPattern.FindStringSubmatch(line); m != nil {
		stats.Deletions = atoi(m[1])
		matched = true
	}
	return stats, matched
}

// atoi converts a run of digits; overflowing values count as zero.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
