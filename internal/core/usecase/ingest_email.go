package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

// IngestEmailUseCase persists a fetched mailbox message: email row,
// attachment bytes in object storage, attachment rows, an ingestion audit
// event, and a dispatch onto the processing queue. Messages already seen
// for the tenant (same message_id) are skipped.
type IngestEmailUseCase struct {
	emails  ports.EmailRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	audit   ports.AuditLogger
}

func NewIngestEmailUseCase(
	emails ports.EmailRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	audit ports.AuditLogger,
) *IngestEmailUseCase {
	return &IngestEmailUseCase{emails: emails, storage: storage, queue: queue, audit: audit}
}

func (uc *IngestEmailUseCase) Ingest(ctx context.Context, fetched domain.FetchedEmail) (*domain.Email, error) {
	existing, err := uc.emails.FindByMessageID(ctx, fetched.TenantID, fetched.MessageID)
	if err != nil && !domain.IsKind(err, domain.ErrEmailNotFound) {
		return nil, fmt.Errorf("lookup message id: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	email := &domain.Email{
		ID:        uuid.NewString(),
		TenantID:  fetched.TenantID,
		AccountID: fetched.AccountID,
		MessageID: fetched.MessageID,
		Subject:   fetched.Subject,
		Sender:    fetched.Sender,
		BodyText:  fetched.BodyText,
		Status:    domain.EmailReceived,
		TraceID:   strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.emails.Create(ctx, email); err != nil {
		return nil, fmt.Errorf("create email: %w", err)
	}

	for _, att := range fetched.Attachments {
		filename := strings.TrimSpace(att.Filename)
		if filename == "" {
			filename = "attachment.bin"
		}
		path, digest, err := uc.storage.SaveAttachment(ctx, email.TenantID, email.ID, filename, att.Content)
		if err != nil {
			return nil, fmt.Errorf("store attachment %s: %w", filename, err)
		}
		record := &domain.EmailAttachment{
			ID:        uuid.NewString(),
			TenantID:  email.TenantID,
			EmailID:   email.ID,
			Filename:  filename,
			FilePath:  path,
			SHA256:    digest,
			MimeType:  att.MimeType,
			CreatedAt: time.Now().UTC(),
		}
		if err := uc.emails.CreateAttachment(ctx, record); err != nil {
			return nil, fmt.Errorf("create attachment row %s: %w", filename, err)
		}
	}

	if err := uc.audit.Log(ctx, domain.AuditEvent{
		ID:         uuid.NewString(),
		TenantID:   email.TenantID,
		TraceID:    email.TraceID,
		EventType:  "ingestao",
		EntityType: "email",
		EntityID:   email.ID,
		Payload:    map[string]any{"message_id": email.MessageID},
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		slog.Warn("audit_log_failed", "email_id", email.ID, "error", err)
	}

	if err := uc.queue.PublishEmailReceived(ctx, email.ID); err != nil {
		return nil, fmt.Errorf("dispatch email: %w", err)
	}
	return email, nil
}
