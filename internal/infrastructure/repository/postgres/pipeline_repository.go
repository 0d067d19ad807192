package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

// DeadLetterRepository appends terminal failure records.
type DeadLetterRepository struct {
	db *sql.DB
}

func NewDeadLetterRepository(db *sql.DB) *DeadLetterRepository {
	return &DeadLetterRepository{db: db}
}

func (r *DeadLetterRepository) Create(ctx context.Context, letter *domain.DeadLetter) error {
	payload, err := marshalPayload(letter.Payload)
	if err != nil {
		return fmt.Errorf("marshal dead letter payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO dead_letters (id, tenant_id, entity_type, entity_id, reason, payload, trace_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		letter.ID, letter.TenantID, letter.EntityType, letter.EntityID,
		letter.Reason, payload, letter.TraceID, letter.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	return nil
}

// AuditLogRepository appends pipeline audit events.
type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Log(ctx context.Context, event domain.AuditEvent) error {
	payload, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO audit_logs (id, tenant_id, trace_id, event_type, entity_type, entity_id, payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		event.ID, event.TenantID, event.TraceID, event.EventType,
		event.EntityType, event.EntityID, payload, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func marshalPayload(payload map[string]any) (any, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return data, nil
}
