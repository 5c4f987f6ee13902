package gitlog

import (
	"io"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/panbanda/mrsummary/pkg/models"
	"go.uber.org/zap"
)

var (
	// ErrMalformedSection marks a section whose author, date, or subject is
	// empty. Parsing continues after it.
	ErrMalformedSection = errors.New("malformed commit section")

	// ErrTruncatedSection marks a hash line followed by fewer than three
	// header lines. Nothing can follow it, so parsing stops.
	ErrTruncatedSection = errors.New("truncated commit section")
)

var hashPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// IsCommitHash reports whether s is a full 40 character hex object name.
func IsCommitHash(s string) bool {
	return hashPattern.MatchString(s)
}

// Section is the raw text of one commit in the log output.
type Section struct {
	Hash      string
	Author    string
	Date      string
	Message   string
	StatLines []string
}

// SplitLines splits log output into lines, tolerating CRLF endings.
func SplitLines(output string) []string {
	if output == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}

// NextSection reads the first commit section at or after pos and returns it
// along with the position to resume from. It returns io.EOF when no further
// hash line exists, ErrMalformedSection (resume at next) for sections missing
// a header field, and ErrTruncatedSection when the input ends inside a header.
func NextSection(lines []string, pos int) (Section, int, error) {
	start := -1
	for i := pos; i < len(lines); i++ {
		if IsCommitHash(strings.TrimSpace(lines[i])) {
			start = i
			break
		}
	}
	if start < 0 {
		return Section{}, len(lines), io.EOF
	}

	hash := strings.ToLower(strings.TrimSpace(lines[start]))
	if start+3 >= len(lines) {
		return Section{Hash: hash}, len(lines), ErrTruncatedSection
	}

	sec := Section{
		Hash:    hash,
		Author:  strings.TrimSpace(lines[start+1]),
		Date:    strings.TrimSpace(lines[start+2]),
		Message: strings.TrimSpace(lines[start+3]),
	}
	if sec.Author == "" || sec.Date == "" || sec.Message == "" {
		return sec, start + 1, ErrMalformedSection
	}

	i := start + 4
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || IsCommitHash(line) {
			break
		}
		sec.StatLines = append(sec.StatLines, line)
		i++
	}
	return sec, i, nil
}

// BuildRecord turns a section into a CommitRecord. A summary line
// ("N files changed, ...") sets the totals outright; without one, counts
// carried by individual file lines are summed.
func BuildRecord(sec Section) models.CommitRecord {
	rec := models.CommitRecord{
		Hash:         sec.Hash,
		Author:       sec.Author,
		Date:         sec.Date,
		Message:      sec.Message,
		FilesChanged: []string{},
	}

	var summed Stats
	summary, haveSummary := Stats{}, false
	for _, line := range sec.StatLines {
		switch {
		case isFileStatLine(line):
			name, rest, _ := strings.Cut(line, "|")
			if name = strings.TrimSpace(name); name != "" {
				rec.FilesChanged = append(rec.FilesChanged, name)
			}
			if s, ok := ParseStats(rest); ok {
				summed.Insertions += s.Insertions
				summed.Deletions += s.Deletions
			}
		case isSummaryLine(line):
			summary, _ = ParseStats(line)
			haveSummary = true
		}
	}

	if haveSummary {
		rec.Insertions, rec.Deletions = summary.Insertions, summary.Deletions
	} else {
		rec.Insertions, rec.Deletions = summed.Insertions, summed.Deletions
	}
	return rec
}

func isFileStatLine(line string) bool {
	return strings.Contains(line, "|") && strings.ContainsAny(line, "0123456789")
}

func isSummaryLine(line string) bool {
	return strings.Contains(line, "file changed") || strings.Contains(line, "files changed")
}

// Parser converts log output into commit records. A Parser holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	logger *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used to report skipped sections.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the well-formed commits in output, in input order.
// Malformed sections are skipped.
func (p *Parser) Parse(output string) []models.CommitRecord {
	lines := SplitLines(output)
	records := []models.CommitRecord{}

	for pos := 0; pos < len(lines); {
		sec, next, err := NextSection(lines, pos)
		pos = next
		switch {
		case errors.Is(err, io.EOF):
			return records
		case err != nil:
			p.logger.Debug("skipping commit section",
				zap.String("hash", models.ShortHash(sec.Hash)),
				zap.Error(err))
			continue
		}
		records = append(records, BuildRecord(sec))
	}

	p.logger.Debug("parsed git log", zap.Int("lines", len(lines)), zap.Int("commits", len(records)))
	return records
}

// Parse is a convenience for NewParser().Parse(output).
func Parse(output string) []models.CommitRecord {
	return NewParser().Parse(output)
}
