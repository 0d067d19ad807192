package usecase

import (
	"context"
	"testing"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

func TestReviewApprove(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", TenantID: "t1", TraceID: "trace-1", NeedsReview: true}
	docs := newDocRepoFake(doc)
	audit := &auditFake{}
	uc := NewReviewUseCase(docs, audit)

	decision := domain.ClassifierResult{Category: "fiscal", Department: "financeiro", Confidence: 1, Priority: "high", Reason: "aprovado"}
	if err := uc.Approve(context.Background(), "doc-1", decision); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if len(docs.classifications) != 1 {
		t.Fatalf("classifications = %d, want 1", len(docs.classifications))
	}
	if docs.classifications[0].Source != domain.SourceManual {
		t.Fatalf("source = %s, want manual", docs.classifications[0].Source)
	}
	if docs.statuses["doc-1"] != domain.StatusDone {
		t.Fatalf("status = %s, want DONE", docs.statuses["doc-1"])
	}
	if len(audit.events) != 1 || audit.events[0].EventType != "manual_review" {
		t.Fatalf("audit events = %v", audit.events)
	}
}

func TestReviewApproveBlankDecisionConfirmsLatestClassification(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", TenantID: "t1", TraceID: "trace-1", NeedsReview: true}
	docs := newDocRepoFake(doc)
	docs.classifications = append(docs.classifications, &domain.Classification{
		ID:         "cls-1",
		DocumentID: "doc-1",
		Category:   "fiscal",
		Department: "financeiro",
		Priority:   "high",
		Reason:     "nota fiscal detectada",
		Confidence: 0.6,
		Source:     domain.SourceLLM,
	})
	uc := NewReviewUseCase(docs, &auditFake{})

	if err := uc.Approve(context.Background(), "doc-1", domain.ClassifierResult{}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	manual := docs.classifications[len(docs.classifications)-1]
	if manual.Source != domain.SourceManual {
		t.Fatalf("source = %s, want manual", manual.Source)
	}
	if manual.Category != "fiscal" || manual.Department != "financeiro" || manual.Priority != "high" {
		t.Fatalf("blank decision must inherit the pending classification, got %+v", manual)
	}
	if manual.Confidence != 1 {
		t.Fatalf("confidence = %v, want 1 for a manual approval", manual.Confidence)
	}
}

func TestReviewApproveOverrideWins(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", TenantID: "t1", TraceID: "trace-1"}
	docs := newDocRepoFake(doc)
	docs.classifications = append(docs.classifications, &domain.Classification{
		ID:         "cls-1",
		DocumentID: "doc-1",
		Category:   "fiscal",
		Department: "financeiro",
		Priority:   "high",
		Source:     domain.SourceRules,
	})
	uc := NewReviewUseCase(docs, &auditFake{})

	decision := domain.ClassifierResult{Category: "treinamento", Department: "rh", Priority: "low", Reason: "reclassificado"}
	if err := uc.Approve(context.Background(), "doc-1", decision); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	manual := docs.classifications[len(docs.classifications)-1]
	if manual.Category != "treinamento" || manual.Department != "rh" || manual.Priority != "low" {
		t.Fatalf("explicit decision must win over the pending classification, got %+v", manual)
	}
}
