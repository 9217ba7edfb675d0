package serialize

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is returned by Validate when the document fails
// schema validation; the message lists every violation gojsonschema found.
var ErrSchemaViolation = errors.New("document violates schema")

// Validate checks doc against the JSON schema at schemaPath. Intended for
// an optional --validate flag; a scan never fails without it.
func Validate(doc *Document, schemaPath string) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document for validation: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return fmt.Errorf("decode document for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaPath)
	docLoader := gojsonschema.NewGoLoader(decoded)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("run schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		messages = append(messages, e.String())
	}

	return fmt.Errorf("%w: %v", ErrSchemaViolation, messages)
}
