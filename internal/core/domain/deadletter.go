package domain

import "time"

// DeadLetter records a terminal pipeline failure or a validation failure for
// an entity. DeadLetter rows drive the human review queue.
type DeadLetter struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Reason     string         `json:"reason"`
	Payload    map[string]any `json:"payload,omitempty"`
	TraceID    string         `json:"trace_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditEvent is an append-only trace of pipeline activity.
type AuditEvent struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	TraceID    string         `json:"trace_id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
