package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

const extractionAttempts = 2

// FieldExtractor produces the structured field mapping for a document:
// resolved schema, up to two external attempts validated against it, then
// the deterministic local fallback, which is itself re-validated.
type FieldExtractor struct {
	registry  *SchemaRegistry
	provider  ports.LLMProvider
	validator ports.SchemaValidator
}

func NewFieldExtractor(registry *SchemaRegistry, provider ports.LLMProvider, validator ports.SchemaValidator) *FieldExtractor {
	return &FieldExtractor{registry: registry, provider: provider, validator: validator}
}

func (e *FieldExtractor) Extract(ctx context.Context, tenantID string, docType domain.DocumentType, filename, content string) (domain.FieldMap, error) {
	schema, err := e.registry.Resolve(ctx, tenantID, docType)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}

	prompt := buildExtractionPrompt(schema, content)

	var lastValidation error
	for attempt := 0; attempt < extractionAttempts; attempt++ {
		payload, err := e.provider.Extract(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("llm extract: %w", err)
		}
		if err := e.validator.Validate(payload, schema); err != nil {
			lastValidation = err
			continue
		}
		return payload, nil
	}

	fields := fallbackExtract(docType, filename, content)
	if err := e.validator.Validate(fields, schema); err != nil {
		return nil, domain.WrapError(
			domain.ErrSchemaInvalid,
			"fallback extract",
			fmt.Errorf("%w (llm attempts: %v)", err, lastValidation),
		)
	}
	return fields, nil
}

func buildExtractionPrompt(schema domain.Schema, content string) string {
	encoded, err := json.Marshal(schema)
	if err != nil {
		encoded = []byte("{}")
	}
	return fmt.Sprintf("Extraia dados e retorne JSON válido para schema: %s. Conteúdo: %s", encoded, content)
}
