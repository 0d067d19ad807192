package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

func TestLLMClassifierSuccess(t *testing.T) {
	provider := &llmFake{classifyPayloads: []map[string]any{{
		"category":   "fiscal",
		"department": "financeiro",
		"confidence": 0.9,
		"priority":   "high",
		"reason":     "llm",
	}}}
	classifier := NewLLMClassifier(provider)

	got, err := classifier.Classify(context.Background(), "assunto", "x@y.com", "conteudo")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Category != "fiscal" || got.Department != "financeiro" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", got.Confidence)
	}
	if got.Source != domain.SourceLLM {
		t.Fatalf("source = %s, want llm", got.Source)
	}
}

func TestLLMClassifierMissingKeys(t *testing.T) {
	provider := &llmFake{classifyPayloads: []map[string]any{{
		"category":   "fiscal",
		"confidence": 0.9,
	}}}
	classifier := NewLLMClassifier(provider)

	_, err := classifier.Classify(context.Background(), "a", "b", "c")
	if err == nil {
		t.Fatalf("expected error for missing keys")
	}
	if !domain.IsKind(err, domain.ErrLLMContract) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}

func TestLLMClassifierNonNumericConfidence(t *testing.T) {
	provider := &llmFake{classifyPayloads: []map[string]any{{
		"category":   "fiscal",
		"department": "financeiro",
		"confidence": "alta",
		"priority":   "high",
		"reason":     "llm",
	}}}
	classifier := NewLLMClassifier(provider)

	_, err := classifier.Classify(context.Background(), "a", "b", "c")
	if !domain.IsKind(err, domain.ErrLLMContract) {
		t.Fatalf("expected contract violation, got %v", err)
	}
}

func TestLLMClassifierStringConfidenceParses(t *testing.T) {
	provider := &llmFake{classifyPayloads: []map[string]any{{
		"category":   "geral",
		"department": "triage",
		"confidence": "0.75",
		"priority":   "normal",
		"reason":     "llm",
	}}}
	classifier := NewLLMClassifier(provider)

	got, err := classifier.Classify(context.Background(), "a", "b", "c")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Confidence != 0.75 {
		t.Fatalf("confidence = %v, want 0.75", got.Confidence)
	}
}

func TestLLMClassifierProviderError(t *testing.T) {
	provider := &llmFake{classifyErr: errors.New("upstream down")}
	classifier := NewLLMClassifier(provider)

	_, err := classifier.Classify(context.Background(), "a", "b", "c")
	if err == nil {
		t.Fatalf("expected provider error to propagate")
	}
}
