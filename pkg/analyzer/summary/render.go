package summary

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/panbanda/mrsummary/pkg/models"
)

// RenderMarkdown renders a report as "# title" followed by its description.
func RenderMarkdown(r *models.SummaryReport) string {
	return "# " + r.Title + "\n\n" + r.Description
}

// RenderJSON serializes a report with two-space indentation.
func RenderJSON(r *models.SummaryReport) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal summary")
	}
	return data, nil
}
