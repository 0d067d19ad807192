package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// PlanForTenant returns the tenant's plan, or nil when the tenant has no
// plan assigned. Nil means unlimited.
func (r *TenantRepository) PlanForTenant(ctx context.Context, tenantID string) (*domain.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT p.id, p.name, p.monthly_email_limit, p.monthly_llm_calls_limit
FROM tenants t
JOIN plans p ON p.id = t.plan_id
WHERE t.id = $1
`, tenantID)

	var plan domain.Plan
	var emailLimit, llmLimit sql.NullInt64
	err := row.Scan(&plan.ID, &plan.Name, &emailLimit, &llmLimit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	if emailLimit.Valid {
		v := int(emailLimit.Int64)
		plan.MonthlyEmailLimit = &v
	}
	if llmLimit.Valid {
		v := int(llmLimit.Int64)
		plan.MonthlyLLMLimit = &v
	}
	return &plan, nil
}

func (r *TenantRepository) GetOrCreateUsage(ctx context.Context, tenantID, period string) (domain.Usage, error) {
	usage := domain.Usage{TenantID: tenantID, Period: period}

	row := r.db.QueryRowContext(ctx, `
INSERT INTO tenant_usage (tenant_id, period, emails_processed, llm_calls)
VALUES ($1, $2, 0, 0)
ON CONFLICT (tenant_id, period) DO UPDATE SET tenant_id = EXCLUDED.tenant_id
RETURNING emails_processed, llm_calls
`, tenantID, period)

	if err := row.Scan(&usage.EmailsProcessed, &usage.LLMCalls); err != nil {
		return domain.Usage{}, fmt.Errorf("get or create usage: %w", err)
	}
	return usage, nil
}

func (r *TenantRepository) IncrementUsage(ctx context.Context, tenantID, period string, emails, llmCalls int) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tenant_usage (tenant_id, period, emails_processed, llm_calls)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tenant_id, period) DO UPDATE
SET emails_processed = tenant_usage.emails_processed + EXCLUDED.emails_processed,
    llm_calls = tenant_usage.llm_calls + EXCLUDED.llm_calls
`, tenantID, period, emails, llmCalls)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// routingDefinition is the JSONB shape stored in tenant_rules.definition.
type routingDefinition struct {
	DocType    string   `json:"doc_type"`
	Category   string   `json:"category"`
	Priority   string   `json:"priority"`
	Department string   `json:"department"`
	Emails     []string `json:"emails"`
	WebhookURL string   `json:"webhook_url"`
}

func (r *TenantRepository) ActiveRoutingRules(ctx context.Context, tenantID string) ([]domain.RoutingRule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, rule_name, definition, is_active
FROM tenant_rules
WHERE tenant_id = $1 AND is_active = TRUE
ORDER BY id
`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query routing rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.RoutingRule
	for rows.Next() {
		var rule domain.RoutingRule
		var raw []byte
		if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.Name, &raw, &rule.IsActive); err != nil {
			return nil, fmt.Errorf("scan routing rule: %w", err)
		}
		var def routingDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("decode rule %d definition: %w", rule.ID, err)
		}
		rule.DocType = def.DocType
		rule.Category = def.Category
		rule.Priority = def.Priority
		rule.Department = def.Department
		rule.Emails = def.Emails
		rule.WebhookURL = def.WebhookURL
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routing rules: %w", err)
	}
	return rules, nil
}

// ActiveSchema returns the tenant's custom schema for a document type, or
// nil when none exists so the caller falls back to the built-in set.
func (r *TenantRepository) ActiveSchema(ctx context.Context, tenantID string, docType domain.DocumentType) (*domain.Schema, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT schema
FROM extraction_schemas
WHERE tenant_id = $1 AND doc_type = $2 AND is_active = TRUE
ORDER BY created_at DESC
LIMIT 1
`, tenantID, string(docType))

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan extraction schema: %w", err)
	}

	var schema domain.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode extraction schema: %w", err)
	}
	return &schema, nil
}
