package usecase

import (
	"context"
	"fmt"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

// SchemaRegistry resolves the field schema for a (tenant, document type)
// pair: tenant-defined active schema first, then the built-in schema for the
// type, then the generic default. Resolution always succeeds.
type SchemaRegistry struct {
	tenants  ports.TenantRepository
	builtins map[domain.DocumentType]domain.Schema
}

func NewSchemaRegistry(tenants ports.TenantRepository, builtins map[domain.DocumentType]domain.Schema) *SchemaRegistry {
	return &SchemaRegistry{tenants: tenants, builtins: builtins}
}

func (r *SchemaRegistry) Resolve(ctx context.Context, tenantID string, docType domain.DocumentType) (domain.Schema, error) {
	override, err := r.tenants.ActiveSchema(ctx, tenantID, docType)
	if err != nil {
		return domain.Schema{}, fmt.Errorf("lookup tenant schema: %w", err)
	}
	if override != nil {
		return *override, nil
	}
	if builtin, ok := r.builtins[docType]; ok {
		return builtin, nil
	}
	return GenericSchema(), nil
}

// GenericSchema is the last-resort schema: descriptive fields only, none
// required, so any well-formed object passes.
func GenericSchema() domain.Schema {
	return domain.Schema{
		Properties: map[string]domain.SchemaProperty{
			"title":      {Type: "string"},
			"main_topic": {Type: "string"},
			"summary":    {Type: "string"},
			"language":   {Type: "string"},
		},
		Required: []string{},
	}
}
