// Package schemaval validates extracted payloads against the resolved
// field schema using a real JSON Schema engine, so tenant-defined schemas
// behave exactly like the built-ins.
package schemaval

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(payload domain.FieldMap, schema domain.Schema) error {
	compiled, err := compile(schema)
	if err != nil {
		return err
	}

	// The jsonschema engine expects JSON-decoded values; round-trip the
	// payload so typed values (ints, json.Number) normalize to float64.
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	if err := compiled.Validate(instance); err != nil {
		return domain.WrapError(domain.ErrSchemaInvalid, "validate extraction", err)
	}
	return nil
}

func compile(schema domain.Schema) (*jsonschema.Schema, error) {
	doc := map[string]any{
		"type":     "object",
		"required": schema.Required,
	}
	if doc["required"] == nil {
		doc["required"] = []string{}
	}
	properties := map[string]any{}
	for name, prop := range schema.Properties {
		properties[name] = map[string]any{"type": prop.Type}
	}
	doc["properties"] = properties

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	compiled, err := jsonschema.CompileString("schema.json", string(encoded))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}
