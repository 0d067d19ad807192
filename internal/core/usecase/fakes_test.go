package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

type docRepoFake struct {
	docs            map[string]*domain.Document
	statuses        map[string]domain.DocumentStatus
	needsReview     map[string]bool
	classifications []*domain.Classification
	extractions     []*domain.Extraction
	created         []*domain.Document

	createErr         error
	saveClsErr        error
	saveExtractionErr error
	updateStatusErr   error
}

func newDocRepoFake(docs ...*domain.Document) *docRepoFake {
	f := &docRepoFake{
		docs:        map[string]*domain.Document{},
		statuses:    map[string]domain.DocumentStatus{},
		needsReview: map[string]bool{},
	}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = append(f.created, &copyDoc)
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	return doc, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	f.statuses[id] = status
	return nil
}

func (f *docRepoFake) MarkNeedsReview(_ context.Context, id string) error {
	f.needsReview[id] = true
	return nil
}

func (f *docRepoFake) SaveClassification(_ context.Context, cls *domain.Classification) error {
	if f.saveClsErr != nil {
		return f.saveClsErr
	}
	copyCls := *cls
	f.classifications = append(f.classifications, &copyCls)
	return nil
}

func (f *docRepoFake) SaveExtraction(_ context.Context, ext *domain.Extraction) error {
	if f.saveExtractionErr != nil {
		return f.saveExtractionErr
	}
	copyExt := *ext
	f.extractions = append(f.extractions, &copyExt)
	return nil
}

func (f *docRepoFake) LatestClassification(_ context.Context, documentID string) (*domain.Classification, error) {
	for i := len(f.classifications) - 1; i >= 0; i-- {
		if f.classifications[i].DocumentID == documentID {
			return f.classifications[i], nil
		}
	}
	return nil, nil
}

type emailRepoFake struct {
	emails      map[string]*domain.Email
	byMessageID map[string]*domain.Email
	attachments map[string]*domain.EmailAttachment
	byEmail     map[string][]domain.EmailAttachment
	statuses    map[string]domain.EmailStatus
	created     []*domain.Email

	createErr error
}

func newEmailRepoFake(emails ...*domain.Email) *emailRepoFake {
	f := &emailRepoFake{
		emails:      map[string]*domain.Email{},
		byMessageID: map[string]*domain.Email{},
		attachments: map[string]*domain.EmailAttachment{},
		byEmail:     map[string][]domain.EmailAttachment{},
		statuses:    map[string]domain.EmailStatus{},
	}
	for _, email := range emails {
		f.emails[email.ID] = email
		f.byMessageID[email.TenantID+"/"+email.MessageID] = email
	}
	return f
}

func (f *emailRepoFake) Create(_ context.Context, email *domain.Email) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyEmail := *email
	f.created = append(f.created, &copyEmail)
	f.emails[email.ID] = &copyEmail
	f.byMessageID[email.TenantID+"/"+email.MessageID] = &copyEmail
	return nil
}

func (f *emailRepoFake) GetByID(_ context.Context, id string) (*domain.Email, error) {
	email, ok := f.emails[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrEmailNotFound, "get email", errors.New(id))
	}
	return email, nil
}

func (f *emailRepoFake) FindByMessageID(_ context.Context, tenantID, messageID string) (*domain.Email, error) {
	email, ok := f.byMessageID[tenantID+"/"+messageID]
	if !ok {
		return nil, domain.WrapError(domain.ErrEmailNotFound, "find email", errors.New(messageID))
	}
	return email, nil
}

func (f *emailRepoFake) UpdateStatus(_ context.Context, id string, status domain.EmailStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *emailRepoFake) CreateAttachment(_ context.Context, att *domain.EmailAttachment) error {
	copyAtt := *att
	f.attachments[att.ID] = &copyAtt
	f.byEmail[att.EmailID] = append(f.byEmail[att.EmailID], copyAtt)
	return nil
}

func (f *emailRepoFake) GetAttachment(_ context.Context, id string) (*domain.EmailAttachment, error) {
	att, ok := f.attachments[id]
	if !ok {
		return nil, errors.New("attachment not found: " + id)
	}
	return att, nil
}

func (f *emailRepoFake) ListAttachments(_ context.Context, emailID string) ([]domain.EmailAttachment, error) {
	return f.byEmail[emailID], nil
}

type tenantRepoFake struct {
	plan   *domain.Plan
	usage  domain.Usage
	rules  []domain.RoutingRule
	schema *domain.Schema

	incEmails   int
	incLLMCalls int

	schemaErr error
	rulesErr  error
}

func (f *tenantRepoFake) PlanForTenant(context.Context, string) (*domain.Plan, error) {
	return f.plan, nil
}

func (f *tenantRepoFake) GetOrCreateUsage(_ context.Context, tenantID, period string) (domain.Usage, error) {
	usage := f.usage
	usage.TenantID = tenantID
	usage.Period = period
	return usage, nil
}

func (f *tenantRepoFake) IncrementUsage(_ context.Context, _, _ string, emails, llmCalls int) error {
	f.incEmails += emails
	f.incLLMCalls += llmCalls
	return nil
}

func (f *tenantRepoFake) ActiveRoutingRules(context.Context, string) ([]domain.RoutingRule, error) {
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	return f.rules, nil
}

func (f *tenantRepoFake) ActiveSchema(context.Context, string, domain.DocumentType) (*domain.Schema, error) {
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schema, nil
}

type deadLetterFake struct {
	letters []*domain.DeadLetter
	err     error
}

func (f *deadLetterFake) Create(_ context.Context, letter *domain.DeadLetter) error {
	if f.err != nil {
		return f.err
	}
	copyLetter := *letter
	f.letters = append(f.letters, &copyLetter)
	return nil
}

type auditFake struct {
	events []domain.AuditEvent
	err    error
}

func (f *auditFake) Log(_ context.Context, event domain.AuditEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// llmFake returns queued payloads in order; the last entry repeats when the
// queue runs dry.
type llmFake struct {
	classifyPayloads []map[string]any
	extractPayloads  []map[string]any
	classifyErr      error
	extractErr       error
	classifyCalls    int
	extractCalls     int
}

func (f *llmFake) Classify(context.Context, string) (map[string]any, error) {
	f.classifyCalls++
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	return takePayload(f.classifyPayloads, f.classifyCalls), nil
}

func (f *llmFake) Extract(context.Context, string) (map[string]any, error) {
	f.extractCalls++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return takePayload(f.extractPayloads, f.extractCalls), nil
}

func takePayload(payloads []map[string]any, call int) map[string]any {
	if len(payloads) == 0 {
		return map[string]any{}
	}
	if call > len(payloads) {
		return payloads[len(payloads)-1]
	}
	return payloads[call-1]
}

// validatorFake fails the first failCount validations, then passes.
type validatorFake struct {
	failCount int
	calls     int
}

func (f *validatorFake) Validate(domain.FieldMap, domain.Schema) error {
	f.calls++
	if f.calls <= f.failCount {
		return domain.WrapError(domain.ErrSchemaInvalid, "validate", errors.New("required field missing"))
	}
	return nil
}

type textFake struct {
	fileText string
}

func (f *textFake) Extract(context.Context, string, string, io.Reader) (string, error) {
	return f.fileText, nil
}

func (f *textFake) BodyText(raw string) string {
	return raw
}

type metricsFake struct {
	llmCalls      map[string]int
	deadLetters   map[string]int
	reviewFlagged int
}

func (f *metricsFake) RecordLLMCall(operation string) {
	if f.llmCalls == nil {
		f.llmCalls = map[string]int{}
	}
	f.llmCalls[operation]++
}

func (f *metricsFake) RecordDeadLetter(entityType string) {
	if f.deadLetters == nil {
		f.deadLetters = map[string]int{}
	}
	f.deadLetters[entityType]++
}

func (f *metricsFake) RecordReviewFlagged() {
	f.reviewFlagged++
}

type inferrerFake struct {
	docType domain.DocumentType
}

func (f *inferrerFake) Infer(string) domain.DocumentType {
	if f.docType == "" {
		return domain.TypeGenericDocument
	}
	return f.docType
}

type notifierFake struct {
	recipients []string
	subject    string
	body       string
	calls      int
	err        error
}

func (f *notifierFake) Send(_ context.Context, recipients []string, subject, body string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.recipients = recipients
	f.subject = subject
	f.body = body
	return nil
}

type webhookFake struct {
	url     string
	payload map[string]any
	calls   int
	err     error
}

func (f *webhookFake) Post(_ context.Context, url string, payload map[string]any) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.url = url
	f.payload = payload
	return nil
}

type queueFake struct {
	emailIDs    []string
	documentIDs []string
	publishErr  error
}

func (f *queueFake) PublishEmailReceived(_ context.Context, emailID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.emailIDs = append(f.emailIDs, emailID)
	return nil
}

func (f *queueFake) PublishDocumentQueued(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.documentIDs = append(f.documentIDs, documentID)
	return nil
}

func (f *queueFake) Subscribe(context.Context, ports.QueueHandlers) error {
	return errors.New("not implemented")
}

type storageFake struct {
	saved  map[string][]byte
	opened []string
	err    error
}

func (f *storageFake) SaveAttachment(_ context.Context, tenantID, emailID, filename string, data []byte) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	path := tenantID + "/" + emailID + "/" + filename
	f.saved[path] = data
	return path, "digest", nil
}

func (f *storageFake) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f.opened = append(f.opened, path)
	if data, ok := f.saved[path]; ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return io.NopCloser(strings.NewReader("")), nil
}

func intPtr(v int) *int {
	return &v
}
