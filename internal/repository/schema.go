package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Extraction payloads are schema-checked before they hit the store: a
// payload that fails here is a programming error in the parsers, and it is
// much cheaper to catch at write time than in a downstream consumer.

const payrollSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["tutors"],
	"properties": {
		"period": {"type": "string"},
		"tutors": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "name", "total_hours", "sessions"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"assignment": {"type": "string"},
					"regular_hours": {"type": "number", "minimum": 0},
					"total_hours": {"type": "number", "minimum": 0},
					"hourly_rate": {"type": "number", "minimum": 0},
					"sessions": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["date", "clock_in", "clock_out"],
							"properties": {
								"date": {"type": "string"},
								"clock_in": {"type": "string"},
								"clock_out": {"type": "string"},
								"hours": {"type": "number", "minimum": 0}
							}
						}
					}
				}
			}
		}
	}
}`

const feedbackSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["students", "sessions"],
	"properties": {
		"students": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "full_name", "status"],
				"properties": {
					"id": {"type": "string", "pattern": "^[0-9a-f]{8}$"},
					"first_name": {"type": "string"},
					"last_name": {"type": "string"},
					"full_name": {"type": "string", "minLength": 1},
					"status": {"type": "string"}
				}
			}
		},
		"sessions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["student_id", "student_name", "date", "hours", "is_no_show"],
				"properties": {
					"student_id": {"type": "string", "pattern": "^[0-9a-f]{8}$"},
					"student_name": {"type": "string"},
					"date": {"type": "string"},
					"time_in": {"type": "string"},
					"time_out": {"type": "string"},
					"hours": {"type": "number", "minimum": 0},
					"is_no_show": {"type": "boolean"}
				}
			}
		}
	}
}`

var extractionSchemas = map[string]*jsonschema.Schema{
	"payroll":  jsonschema.MustCompileString("payroll.json", payrollSchema),
	"feedback": jsonschema.MustCompileString("feedback.json", feedbackSchema),
}

// validatePayload checks raw JSON against the schema registered for the
// document type. Types without a schema pass unchecked.
func validatePayload(docType string, raw []byte) error {
	schema, ok := extractionSchemas[docType]
	if !ok {
		return nil
	}
	var doc interface{}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return fmt.Errorf("decode %s payload: %w", docType, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s payload rejected by schema: %w", docType, err)
	}
	return nil
}
