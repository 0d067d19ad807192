package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

// ReviewUseCase applies a manual review approval: the document goes
// straight to DONE and a manual-source classification is appended,
// bypassing the pipeline entirely. Blank decision fields confirm the
// latest machine classification instead of overriding it.
type ReviewUseCase struct {
	docs  ports.DocumentRepository
	audit ports.AuditLogger
}

func NewReviewUseCase(docs ports.DocumentRepository, audit ports.AuditLogger) *ReviewUseCase {
	return &ReviewUseCase{docs: docs, audit: audit}
}

func (uc *ReviewUseCase) Approve(ctx context.Context, documentID string, decision domain.ClassifierResult) error {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}

	latest, err := uc.docs.LatestClassification(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("fetch latest classification: %w", err)
	}
	if latest != nil {
		if decision.Category == "" {
			decision.Category = latest.Category
		}
		if decision.Department == "" {
			decision.Department = latest.Department
		}
		if decision.Priority == "" {
			decision.Priority = latest.Priority
		}
		if decision.Reason == "" {
			decision.Reason = latest.Reason
		}
	}
	if decision.Confidence == 0 {
		decision.Confidence = 1
	}

	classification := &domain.Classification{
		ID:         uuid.NewString(),
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Category:   decision.Category,
		Department: decision.Department,
		Confidence: decision.Confidence,
		Priority:   decision.Priority,
		Reason:     decision.Reason,
		Source:     domain.SourceManual,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.docs.SaveClassification(ctx, classification); err != nil {
		return fmt.Errorf("save manual classification: %w", err)
	}
	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusDone); err != nil {
		return fmt.Errorf("finalize document: %w", err)
	}

	return uc.audit.Log(ctx, domain.AuditEvent{
		ID:         uuid.NewString(),
		TenantID:   doc.TenantID,
		TraceID:    doc.TraceID,
		EventType:  "manual_review",
		EntityType: "document",
		EntityID:   doc.ID,
		Payload:    map[string]any{"category": decision.Category},
		CreatedAt:  time.Now().UTC(),
	})
}
