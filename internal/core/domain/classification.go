package domain

import (
	"strings"
	"time"
)

type ClassificationSource string

const (
	SourceRules    ClassificationSource = "rules"
	SourceLLM      ClassificationSource = "llm"
	SourceManual   ClassificationSource = "manual"
	SourceFallback ClassificationSource = "fallback"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// NormalizePriority folds textual synonyms so routing comparisons treat
// "normal" and "medium" as the same priority.
func NormalizePriority(priority string) string {
	p := strings.ToLower(strings.TrimSpace(priority))
	if p == "medium" {
		return PriorityNormal
	}
	return p
}

// Classification is an immutable decision record for a document. Multiple
// rows may exist per document; the most recent by creation time is
// authoritative.
type Classification struct {
	ID         string               `json:"id"`
	TenantID   string               `json:"tenant_id"`
	DocumentID string               `json:"document_id"`
	Category   string               `json:"category"`
	Department string               `json:"department"`
	Confidence float64              `json:"confidence"`
	Priority   string               `json:"priority"`
	Reason     string               `json:"reason"`
	Source     ClassificationSource `json:"source"`
	CreatedAt  time.Time            `json:"created_at"`
}

// ClassifierResult is the fixed-field outcome of either classifier path,
// before it is persisted as a Classification row.
type ClassifierResult struct {
	Category   string
	Department string
	Confidence float64
	Priority   string
	Reason     string
	Source     ClassificationSource
}

// FieldMap is an extracted field mapping. Keys come from the resolved
// schema; values keep the JSON-decoded shapes (string, float64, nil).
type FieldMap map[string]any

// Extraction is an immutable record of extracted fields for a document.
type Extraction struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	DocumentID string    `json:"document_id"`
	Data       FieldMap  `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
}
