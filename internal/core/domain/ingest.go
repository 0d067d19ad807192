package domain

// FetchedEmail is the payload handed over by the external mailbox
// collaborator once a message has been pulled and MIME-decoded. The pipeline
// owns everything after this point.
type FetchedEmail struct {
	TenantID    string              `json:"tenant_id"`
	AccountID   string              `json:"account_id"`
	MessageID   string              `json:"message_id"`
	Subject     string              `json:"subject"`
	Sender      string              `json:"sender"`
	BodyText    string              `json:"body_text"`
	Attachments []FetchedAttachment `json:"attachments,omitempty"`
}

type FetchedAttachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"content"`
}
