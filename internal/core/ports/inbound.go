package ports

import (
	"context"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

// EmailIngestor is the inbound contract for persisting a fetched mailbox
// message and queueing it for processing.
type EmailIngestor interface {
	Ingest(ctx context.Context, fetched domain.FetchedEmail) (*domain.Email, error)
}

// EmailProcessor fans an email out into per-attachment documents.
type EmailProcessor interface {
	ProcessEmail(ctx context.Context, emailID string) error
}

// DocumentProcessor runs the classification/extraction/validation pipeline
// for one document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, documentID string) error
}

// ReviewApprover applies a manual review decision, bypassing the pipeline.
type ReviewApprover interface {
	Approve(ctx context.Context, documentID string, decision domain.ClassifierResult) error
}
