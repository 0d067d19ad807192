package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

// ProcessEmailUseCase fans an ingested email out into documents: one per
// attachment, or a single synthetic body-only document when the email has
// none. Each document is dispatched for independent processing.
type ProcessEmailUseCase struct {
	emails   ports.EmailRepository
	docs     ports.DocumentRepository
	tenants  ports.TenantRepository
	queue    ports.MessageQueue
	inferrer ports.TypeInferrer
}

func NewProcessEmailUseCase(
	emails ports.EmailRepository,
	docs ports.DocumentRepository,
	tenants ports.TenantRepository,
	queue ports.MessageQueue,
	inferrer ports.TypeInferrer,
) *ProcessEmailUseCase {
	return &ProcessEmailUseCase{
		emails:   emails,
		docs:     docs,
		tenants:  tenants,
		queue:    queue,
		inferrer: inferrer,
	}
}

func (uc *ProcessEmailUseCase) ProcessEmail(ctx context.Context, emailID string) error {
	email, err := uc.emails.GetByID(ctx, emailID)
	if err != nil {
		return fmt.Errorf("fetch email: %w", err)
	}

	plan, err := uc.tenants.PlanForTenant(ctx, email.TenantID)
	if err != nil {
		return fmt.Errorf("fetch plan: %w", err)
	}
	usage, err := uc.tenants.GetOrCreateUsage(ctx, email.TenantID, domain.UsagePeriod(time.Now()))
	if err != nil {
		return fmt.Errorf("fetch usage: %w", err)
	}
	if !domain.CanProcessEmail(plan, usage) {
		if err := uc.emails.UpdateStatus(ctx, email.ID, domain.EmailFailed); err != nil {
			return fmt.Errorf("mark email failed: %w", err)
		}
		return nil
	}

	attachments, err := uc.emails.ListAttachments(ctx, email.ID)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}

	for _, attachment := range attachments {
		doc := &domain.Document{
			ID:           uuid.NewString(),
			TenantID:     email.TenantID,
			EmailID:      email.ID,
			AttachmentID: attachment.ID,
			DocType:      uc.inferrer.Infer(attachment.Filename),
			Status:       domain.StatusProcessing,
			TraceID:      email.TraceID,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := uc.docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document for attachment %s: %w", attachment.ID, err)
		}
		if err := uc.queue.PublishDocumentQueued(ctx, doc.ID); err != nil {
			return fmt.Errorf("dispatch document %s: %w", doc.ID, err)
		}
	}

	// No attachments: process the body text alone as a generic document.
	if len(attachments) == 0 {
		doc := &domain.Document{
			ID:        uuid.NewString(),
			TenantID:  email.TenantID,
			EmailID:   email.ID,
			DocType:   domain.TypeGenericDocument,
			Status:    domain.StatusProcessing,
			TraceID:   email.TraceID,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := uc.docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("create body document: %w", err)
		}
		if err := uc.queue.PublishDocumentQueued(ctx, doc.ID); err != nil {
			return fmt.Errorf("dispatch body document %s: %w", doc.ID, err)
		}
	}

	if err := uc.emails.UpdateStatus(ctx, email.ID, domain.EmailProcessing); err != nil {
		return fmt.Errorf("mark email processing: %w", err)
	}
	return nil
}
