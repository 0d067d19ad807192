package domain

import "time"

type DocumentStatus string

const (
	StatusQueued     DocumentStatus = "QUEUED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusDone       DocumentStatus = "DONE"
	StatusFailed     DocumentStatus = "FAILED"
)

type DocumentType string

const (
	TypeInvoice              DocumentType = "invoice"
	TypeFiscalXML            DocumentType = "fiscal_xml"
	TypeTrainingCertificate  DocumentType = "training_certificate"
	TypeTrainingPresentation DocumentType = "training_presentation"
	TypeScannedDocument      DocumentType = "scanned_document"
	TypeSpreadsheet          DocumentType = "spreadsheet"
	TypeGenericDocument      DocumentType = "generic_document"
)

// Document is one inbound file (or a synthetic body-only record) moving
// through the pipeline. Processing history lives in related
// Classification/Extraction rows; the document row only tracks lifecycle
// status and the review flag.
type Document struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	EmailID      string         `json:"email_id,omitempty"`
	AttachmentID string         `json:"attachment_id,omitempty"`
	DocType      DocumentType   `json:"doc_type"`
	Status       DocumentStatus `json:"status"`
	NeedsReview  bool           `json:"needs_review"`
	TraceID      string         `json:"trace_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type EmailStatus string

const (
	EmailReceived   EmailStatus = "RECEIVED"
	EmailProcessing EmailStatus = "PROCESSING"
	EmailDone       EmailStatus = "DONE"
	EmailFailed     EmailStatus = "FAILED"
)

type Email struct {
	ID        string      `json:"id"`
	TenantID  string      `json:"tenant_id"`
	AccountID string      `json:"account_id"`
	MessageID string      `json:"message_id"`
	Subject   string      `json:"subject"`
	Sender    string      `json:"sender"`
	BodyText  string      `json:"body_text"`
	Status    EmailStatus `json:"status"`
	TraceID   string      `json:"trace_id"`
	CreatedAt time.Time   `json:"created_at"`
}

type EmailAttachment struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	EmailID   string    `json:"email_id"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"file_path"`
	SHA256    string    `json:"sha256"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
