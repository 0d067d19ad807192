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

// Thresholds holds the two pipeline confidence cut-offs: at or above
// ShortCircuit the rule classifier's verdict is final and the LLM is never
// consulted; below Review the document is flagged for human review.
type Thresholds struct {
	ShortCircuit float64
	Review       float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{ShortCircuit: 0.85, Review: 0.75}
}

// ProcessDocumentUseCase runs the per-document pipeline: classify →
// extract → validate → review/dead-letter decision → notify → finalize.
// Every stage returns an explicit error; a stage failure marks the document
// FAILED and writes exactly one dead letter.
type ProcessDocumentUseCase struct {
	docs        ports.DocumentRepository
	emails      ports.EmailRepository
	tenants     ports.TenantRepository
	deadLetters ports.DeadLetterStore
	audit       ports.AuditLogger
	classifier  *LLMClassifier
	extractor   *FieldExtractor
	text        ports.TextExtractor
	storage     ports.ObjectStorage
	notifier    ports.EmailNotifier
	webhook     ports.WebhookNotifier
	metrics     ports.PipelineMetrics
	thresholds  Thresholds
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	emails ports.EmailRepository,
	tenants ports.TenantRepository,
	deadLetters ports.DeadLetterStore,
	audit ports.AuditLogger,
	classifier *LLMClassifier,
	extractor *FieldExtractor,
	text ports.TextExtractor,
	storage ports.ObjectStorage,
	notifier ports.EmailNotifier,
	webhook ports.WebhookNotifier,
	metrics ports.PipelineMetrics,
	thresholds Thresholds,
) *ProcessDocumentUseCase {
	if thresholds.ShortCircuit <= 0 {
		thresholds = DefaultThresholds()
	}
	return &ProcessDocumentUseCase{
		docs:        docs,
		emails:      emails,
		tenants:     tenants,
		deadLetters: deadLetters,
		audit:       audit,
		classifier:  classifier,
		extractor:   extractor,
		text:        text,
		storage:     storage,
		notifier:    notifier,
		webhook:     webhook,
		metrics:     metrics,
		thresholds:  thresholds,
	}
}

func (uc *ProcessDocumentUseCase) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}

	email, err := uc.emails.GetByID(ctx, doc.EmailID)
	if err != nil {
		return fmt.Errorf("fetch email for document %s: %w", doc.ID, err)
	}

	attachmentName, attachmentText, err := uc.attachmentContent(ctx, doc)
	if err != nil {
		return uc.fail(ctx, doc, err)
	}

	content := uc.analysisContent(email, attachmentText)

	plan, err := uc.tenants.PlanForTenant(ctx, doc.TenantID)
	if err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("fetch plan: %w", err))
	}
	period := domain.UsagePeriod(time.Now())
	usage, err := uc.tenants.GetOrCreateUsage(ctx, doc.TenantID, period)
	if err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("fetch usage: %w", err))
	}

	result, llmUsed, err := uc.classify(ctx, email, attachmentName, content, plan, usage)
	if err != nil {
		if domain.IsKind(err, domain.ErrLimitExceeded) {
			// Limit exhaustion is a configuration condition, not a data
			// defect: FAILED without a dead letter.
			if statusErr := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusFailed); statusErr != nil {
				return fmt.Errorf("%w; mark failed: %v", err, statusErr)
			}
			return nil
		}
		return uc.fail(ctx, doc, err)
	}

	classification := &domain.Classification{
		ID:         uuid.NewString(),
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Category:   result.Category,
		Department: result.Department,
		Confidence: result.Confidence,
		Priority:   result.Priority,
		Reason:     result.Reason,
		Source:     result.Source,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.docs.SaveClassification(ctx, classification); err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("save classification: %w", err))
	}

	fields, err := uc.extractor.Extract(ctx, doc.TenantID, doc.DocType, attachmentName, content)
	if err != nil {
		return uc.fail(ctx, doc, err)
	}
	uc.metrics.RecordLLMCall("extract")
	extraction := &domain.Extraction{
		ID:         uuid.NewString(),
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Data:       fields,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.docs.SaveExtraction(ctx, extraction); err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("save extraction: %w", err))
	}

	if err := uc.reviewDecision(ctx, doc, result.Confidence, fields); err != nil {
		return uc.fail(ctx, doc, err)
	}

	uc.notifyRoute(ctx, doc, classification)

	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusDone); err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("finalize document: %w", err))
	}
	if err := uc.emails.UpdateStatus(ctx, email.ID, domain.EmailDone); err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("finalize email: %w", err))
	}

	llmCalls := 0
	if llmUsed {
		llmCalls = 1
	}
	if err := uc.tenants.IncrementUsage(ctx, doc.TenantID, period, 1, llmCalls); err != nil {
		return uc.fail(ctx, doc, fmt.Errorf("increment usage: %w", err))
	}

	if err := uc.audit.Log(ctx, domain.AuditEvent{
		ID:         uuid.NewString(),
		TenantID:   doc.TenantID,
		TraceID:    doc.TraceID,
		EventType:  "pipeline_done",
		EntityType: "document",
		EntityID:   doc.ID,
		Payload:    map[string]any{"classification": classification.Category},
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		slog.Warn("audit_log_failed", "document_id", doc.ID, "error", err)
	}

	return nil
}

// classify runs the rules engine first and only falls through to the LLM
// when the rule confidence is below the short-circuit threshold. The LLM
// usage gate is checked only on the fall-through path.
func (uc *ProcessDocumentUseCase) classify(
	ctx context.Context,
	email *domain.Email,
	attachmentName, content string,
	plan *domain.Plan,
	usage domain.Usage,
) (domain.ClassifierResult, bool, error) {
	ruled := ClassifyByRules(email.Sender, email.Subject, attachmentName)
	if ruled.Confidence >= uc.thresholds.ShortCircuit {
		return ruled, false, nil
	}

	if !domain.CanCallLLM(plan, usage) {
		return domain.ClassifierResult{}, false, domain.WrapError(
			domain.ErrLimitExceeded,
			"classify",
			fmt.Errorf("monthly llm call limit reached for tenant %s", email.TenantID),
		)
	}

	result, err := uc.classifier.Classify(ctx, email.Subject, email.Sender, content)
	if err != nil {
		return domain.ClassifierResult{}, false, err
	}
	uc.metrics.RecordLLMCall("classify")
	return result, true, nil
}

// reviewDecision merges validation errors and low confidence into the
// needs_review flag. Only a validation failure produces a dead letter; low
// confidence alone just flags the document.
func (uc *ProcessDocumentUseCase) reviewDecision(ctx context.Context, doc *domain.Document, confidence float64, fields domain.FieldMap) error {
	valid, errCodes := ValidateFields(fields)
	lowConfidence := confidence < uc.thresholds.Review
	if lowConfidence && !contains(errCodes, "low_confidence") {
		errCodes = append(errCodes, "low_confidence")
	}

	if !valid {
		if err := uc.docs.MarkNeedsReview(ctx, doc.ID); err != nil {
			return fmt.Errorf("mark needs review: %w", err)
		}
		uc.metrics.RecordReviewFlagged()
		letter := &domain.DeadLetter{
			ID:         uuid.NewString(),
			TenantID:   doc.TenantID,
			EntityType: "document",
			EntityID:   doc.ID,
			Reason:     strings.Join(errCodes, ","),
			Payload:    map[string]any{"errors": errCodes},
			TraceID:    doc.TraceID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := uc.deadLetters.Create(ctx, letter); err != nil {
			return fmt.Errorf("write dead letter: %w", err)
		}
		uc.metrics.RecordDeadLetter(letter.EntityType)
		return nil
	}

	if lowConfidence {
		if err := uc.docs.MarkNeedsReview(ctx, doc.ID); err != nil {
			return fmt.Errorf("mark needs review: %w", err)
		}
		uc.metrics.RecordReviewFlagged()
	}
	return nil
}

// notifyRoute resolves the tenant route and dispatches notifications.
// Fire-and-forget: failures are logged, the pipeline still completes.
func (uc *ProcessDocumentUseCase) notifyRoute(ctx context.Context, doc *domain.Document, cls *domain.Classification) {
	rules, err := uc.tenants.ActiveRoutingRules(ctx, doc.TenantID)
	if err != nil {
		slog.Warn("routing_rules_lookup_failed", "document_id", doc.ID, "error", err)
		rules = nil
	}
	route := ResolveRoute(rules, doc.DocType, cls.Category, cls.Priority)

	subject := fmt.Sprintf("Novo documento %s", cls.Category)
	body := fmt.Sprintf("Documento %s prioridade %s", doc.ID, cls.Priority)
	if len(route.Emails) > 0 {
		if err := uc.notifier.Send(ctx, route.Emails, subject, body); err != nil {
			slog.Warn("notify_email_failed", "document_id", doc.ID, "error", err)
		}
	}
	if route.WebhookURL != "" {
		payload := map[string]any{
			"document_id": doc.ID,
			"category":    cls.Category,
			"department":  route.Department,
			"priority":    cls.Priority,
			"confidence":  cls.Confidence,
		}
		if err := uc.webhook.Post(ctx, route.WebhookURL, payload); err != nil {
			slog.Warn("notify_webhook_failed", "document_id", doc.ID, "error", err)
		}
	}
}

func (uc *ProcessDocumentUseCase) attachmentContent(ctx context.Context, doc *domain.Document) (string, string, error) {
	if doc.AttachmentID == "" {
		return "", "", nil
	}
	attachment, err := uc.emails.GetAttachment(ctx, doc.AttachmentID)
	if err != nil {
		return "", "", fmt.Errorf("fetch attachment: %w", err)
	}
	blob, err := uc.storage.Open(ctx, attachment.FilePath)
	if err != nil {
		// Text is best-effort; a missing blob only degrades classification.
		slog.Warn("attachment_open_failed", "attachment_id", attachment.ID, "error", err)
		return attachment.Filename, "", nil
	}
	defer blob.Close()
	text, err := uc.text.Extract(ctx, attachment.Filename, attachment.MimeType, blob)
	if err != nil {
		return "", "", fmt.Errorf("extract attachment text: %w", err)
	}
	return attachment.Filename, text, nil
}

// analysisContent concatenates the labeled subject/sender/body/attachment
// sections, omitting blank ones.
func (uc *ProcessDocumentUseCase) analysisContent(email *domain.Email, attachmentText string) string {
	sections := []struct {
		label string
		value string
	}{
		{"Assunto", email.Subject},
		{"Remetente", email.Sender},
		{"Corpo", uc.text.BodyText(email.BodyText)},
		{"Texto do anexo", attachmentText},
	}

	var chunks []string
	for _, section := range sections {
		if strings.TrimSpace(section.value) == "" {
			continue
		}
		chunks = append(chunks, fmt.Sprintf("%s: %s", section.label, section.value))
	}
	return strings.Join(chunks, "\n\n")
}

// fail is the single terminal failure path: document FAILED plus one dead
// letter carrying the stage error message.
func (uc *ProcessDocumentUseCase) fail(ctx context.Context, doc *domain.Document, stageErr error) error {
	if statusErr := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusFailed); statusErr != nil {
		return fmt.Errorf("%w; mark failed: %v", stageErr, statusErr)
	}
	letter := &domain.DeadLetter{
		ID:         uuid.NewString(),
		TenantID:   doc.TenantID,
		EntityType: "document",
		EntityID:   doc.ID,
		Reason:     stageErr.Error(),
		TraceID:    doc.TraceID,
		CreatedAt:  time.Now().UTC(),
	}
	if dlErr := uc.deadLetters.Create(ctx, letter); dlErr != nil {
		return fmt.Errorf("%w; write dead letter: %v", stageErr, dlErr)
	}
	uc.metrics.RecordDeadLetter(letter.EntityType)
	return stageErr
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}
