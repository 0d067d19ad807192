package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, tenant_id, email_id, attachment_id, doc_type, status, needs_review, trace_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		doc.ID, doc.TenantID, nullable(doc.EmailID), nullable(doc.AttachmentID),
		string(doc.DocType), string(doc.Status), doc.NeedsReview, doc.TraceID,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, email_id, attachment_id, doc_type, status, needs_review, trace_id, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var emailID, attachmentID sql.NullString
	var docType, status string

	err := row.Scan(
		&doc.ID, &doc.TenantID, &emailID, &attachmentID, &docType,
		&status, &doc.NeedsReview, &doc.TraceID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.EmailID = emailID.String
	doc.AttachmentID = attachmentID.String
	doc.DocType = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "update document status", id)
}

func (r *DocumentRepository) MarkNeedsReview(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents SET needs_review = TRUE, updated_at = $2 WHERE id = $1
`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark needs review: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "mark needs review", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, cls *domain.Classification) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO classifications (id, tenant_id, document_id, category, department, confidence, priority, reason, source, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		cls.ID, cls.TenantID, cls.DocumentID, cls.Category, cls.Department,
		cls.Confidence, cls.Priority, cls.Reason, string(cls.Source), cls.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert classification: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, ext *domain.Extraction) error {
	data, err := json.Marshal(ext.Data)
	if err != nil {
		return fmt.Errorf("marshal extraction data: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO extractions (id, tenant_id, document_id, data, created_at)
VALUES ($1,$2,$3,$4,$5)
`, ext.ID, ext.TenantID, ext.DocumentID, data, ext.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert extraction: %w", err)
	}
	return nil
}

func (r *DocumentRepository) LatestClassification(ctx context.Context, documentID string) (*domain.Classification, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, document_id, category, department, confidence, priority, reason, source, created_at
FROM classifications
WHERE document_id = $1
ORDER BY created_at DESC
LIMIT 1
`, documentID)

	var cls domain.Classification
	var reason sql.NullString
	var source string
	err := row.Scan(
		&cls.ID, &cls.TenantID, &cls.DocumentID, &cls.Category, &cls.Department,
		&cls.Confidence, &cls.Priority, &reason, &source, &cls.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan classification: %w", err)
	}
	cls.Reason = reason.String
	cls.Source = domain.ClassificationSource(source)
	return &cls, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(result sql.Result, kind error, operation, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(kind, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
