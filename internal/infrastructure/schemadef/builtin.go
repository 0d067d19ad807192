// Package schemadef ships the built-in extraction schemas, embedded so a
// fresh deployment classifies and extracts without any tenant setup.
package schemadef

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

//go:embed schemas.yaml
var rawSchemas []byte

// Builtin parses the embedded schema set. The result is stable for the
// process lifetime; callers share one map.
func Builtin() (map[domain.DocumentType]domain.Schema, error) {
	var decoded map[string]domain.Schema
	if err := yaml.Unmarshal(rawSchemas, &decoded); err != nil {
		return nil, fmt.Errorf("parse builtin schemas: %w", err)
	}

	schemas := make(map[domain.DocumentType]domain.Schema, len(decoded))
	for docType, schema := range decoded {
		if schema.Required == nil {
			schema.Required = []string{}
		}
		schemas[domain.DocumentType(docType)] = schema
	}
	return schemas, nil
}
