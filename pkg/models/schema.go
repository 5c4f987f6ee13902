package models

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/summary.schema.json
var summarySchemaJSON []byte

const summarySchemaURL = "https://github.com/panbanda/mrsummary/schema/summary.schema.json"

var (
	summarySchemaOnce sync.Once
	summarySchema     *jsonschema.Schema
	summarySchemaErr  error
)

// SummarySchema returns the raw JSON schema describing SummaryReport.
func SummarySchema() []byte {
	return summarySchemaJSON
}

func compiledSummarySchema() (*jsonschema.Schema, error) {
	summarySchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(summarySchemaJSON))
		if err != nil {
			summarySchemaErr = errors.Wrap(err, "parse summary schema")
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(summarySchemaURL, doc); err != nil {
			summarySchemaErr = errors.Wrap(err, "load summary schema")
			return
		}
		summarySchema, summarySchemaErr = c.Compile(summarySchemaURL)
	})
	return summarySchema, summarySchemaErr
}

// ValidateSummaryJSON checks a serialized SummaryReport against the schema.
func ValidateSummaryJSON(data []byte) error {
	sch, err := compiledSummarySchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "parse summary json")
	}
	if err := sch.Validate(inst); err != nil {
		return errors.Wrap(err, "summary does not match schema")
	}
	return nil
}
