package ports

import (
	"context"
	"io"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

// DocumentRepository persists document state and the append-only
// classification/extraction history.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	MarkNeedsReview(ctx context.Context, id string) error
	SaveClassification(ctx context.Context, cls *domain.Classification) error
	SaveExtraction(ctx context.Context, ext *domain.Extraction) error
	LatestClassification(ctx context.Context, documentID string) (*domain.Classification, error)
}

// EmailRepository persists emails and their attachments.
type EmailRepository interface {
	Create(ctx context.Context, email *domain.Email) error
	GetByID(ctx context.Context, id string) (*domain.Email, error)
	FindByMessageID(ctx context.Context, tenantID, messageID string) (*domain.Email, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) error
	CreateAttachment(ctx context.Context, att *domain.EmailAttachment) error
	GetAttachment(ctx context.Context, id string) (*domain.EmailAttachment, error)
	ListAttachments(ctx context.Context, emailID string) ([]domain.EmailAttachment, error)
}

// TenantRepository reads tenant configuration and maintains usage counters.
type TenantRepository interface {
	PlanForTenant(ctx context.Context, tenantID string) (*domain.Plan, error)
	GetOrCreateUsage(ctx context.Context, tenantID, period string) (domain.Usage, error)
	IncrementUsage(ctx context.Context, tenantID, period string, emails, llmCalls int) error
	ActiveRoutingRules(ctx context.Context, tenantID string) ([]domain.RoutingRule, error)
	ActiveSchema(ctx context.Context, tenantID string, docType domain.DocumentType) (*domain.Schema, error)
}

// DeadLetterStore appends failure records that feed the review queue.
type DeadLetterStore interface {
	Create(ctx context.Context, letter *domain.DeadLetter) error
}

// AuditLogger appends pipeline audit events.
type AuditLogger interface {
	Log(ctx context.Context, event domain.AuditEvent) error
}

// LLMProvider is the opaque external model capability. Classify must return
// an object whose required keys are checked by the caller; Extract carries
// no key contract and is validated against the target schema instead.
type LLMProvider interface {
	Classify(ctx context.Context, prompt string) (map[string]any, error)
	Extract(ctx context.Context, prompt string) (map[string]any, error)
}

// SchemaValidator checks an extracted payload against a field schema.
type SchemaValidator interface {
	Validate(payload domain.FieldMap, schema domain.Schema) error
}

// TextExtractor produces plain text from attachment content. Unsupported
// formats yield an empty string, not an error.
type TextExtractor interface {
	Extract(ctx context.Context, filename, mimeType string, r io.Reader) (string, error)
	BodyText(raw string) string
}

// PipelineMetrics records pipeline outcome counters.
type PipelineMetrics interface {
	RecordLLMCall(operation string)
	RecordDeadLetter(entityType string)
	RecordReviewFlagged()
}

// TypeInferrer assigns a document type from a filename.
type TypeInferrer interface {
	Infer(filename string) domain.DocumentType
}

// EmailNotifier sends review/routing notifications. Fire-and-forget:
// failures are logged by callers, never propagated.
type EmailNotifier interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// WebhookNotifier posts a routing payload to a tenant-configured URL.
type WebhookNotifier interface {
	Post(ctx context.Context, url string, payload map[string]any) error
}

// QueueHandlers binds worker callbacks to the queue subjects.
type QueueHandlers struct {
	MailFetched    func(ctx context.Context, payload []byte) error
	EmailReceived  func(ctx context.Context, emailID string) error
	DocumentQueued func(ctx context.Context, documentID string) error
}

// MessageQueue publishes and consumes pipeline dispatch events.
type MessageQueue interface {
	PublishEmailReceived(ctx context.Context, emailID string) error
	PublishDocumentQueued(ctx context.Context, documentID string) error
	Subscribe(ctx context.Context, handlers QueueHandlers) error
}

// ObjectStorage stores attachment bytes and re-opens them for extraction.
type ObjectStorage interface {
	SaveAttachment(ctx context.Context, tenantID, emailID, filename string, data []byte) (path, sha256 string, err error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
