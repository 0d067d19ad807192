package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

type EmailRepository struct {
	db *sql.DB
}

func NewEmailRepository(db *sql.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

func (r *EmailRepository) Create(ctx context.Context, email *domain.Email) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO emails (id, tenant_id, account_id, message_id, subject, sender, body_text, status, trace_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		email.ID, email.TenantID, email.AccountID, email.MessageID,
		email.Subject, email.Sender, email.BodyText, string(email.Status),
		email.TraceID, email.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

func (r *EmailRepository) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	return r.scanEmail(r.db.QueryRowContext(ctx, selectEmail+`WHERE id = $1`, id), id)
}

func (r *EmailRepository) FindByMessageID(ctx context.Context, tenantID, messageID string) (*domain.Email, error) {
	return r.scanEmail(
		r.db.QueryRowContext(ctx, selectEmail+`WHERE tenant_id = $1 AND message_id = $2`, tenantID, messageID),
		messageID,
	)
}

const selectEmail = `
SELECT id, tenant_id, account_id, message_id, subject, sender, body_text, status, trace_id, created_at
FROM emails
`

func (r *EmailRepository) scanEmail(row *sql.Row, ref string) (*domain.Email, error) {
	var email domain.Email
	var subject, sender, body sql.NullString
	var status string

	err := row.Scan(
		&email.ID, &email.TenantID, &email.AccountID, &email.MessageID,
		&subject, &sender, &body, &status, &email.TraceID, &email.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrEmailNotFound, "get email", fmt.Errorf("ref %s", ref))
		}
		return nil, fmt.Errorf("scan email: %w", err)
	}

	email.Subject = subject.String
	email.Sender = sender.String
	email.BodyText = body.String
	email.Status = domain.EmailStatus(status)
	return &email, nil
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE emails SET status = $2 WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update email status: %w", err)
	}
	return requireRow(result, domain.ErrEmailNotFound, "update email status", id)
}

func (r *EmailRepository) CreateAttachment(ctx context.Context, att *domain.EmailAttachment) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO email_attachments (id, tenant_id, email_id, filename, file_path, sha256, mime_type, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		att.ID, att.TenantID, att.EmailID, att.Filename, att.FilePath,
		att.SHA256, att.MimeType, att.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (r *EmailRepository) GetAttachment(ctx context.Context, id string) (*domain.EmailAttachment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, email_id, filename, file_path, sha256, mime_type, created_at
FROM email_attachments
WHERE id = $1
`, id)

	var att domain.EmailAttachment
	var mime sql.NullString
	err := row.Scan(
		&att.ID, &att.TenantID, &att.EmailID, &att.Filename, &att.FilePath,
		&att.SHA256, &mime, &att.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("attachment not found: %s", id)
		}
		return nil, fmt.Errorf("scan attachment: %w", err)
	}
	att.MimeType = mime.String
	return &att, nil
}

func (r *EmailRepository) ListAttachments(ctx context.Context, emailID string) ([]domain.EmailAttachment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, email_id, filename, file_path, sha256, mime_type, created_at
FROM email_attachments
WHERE email_id = $1
ORDER BY created_at
`, emailID)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	var attachments []domain.EmailAttachment
	for rows.Next() {
		var att domain.EmailAttachment
		var mime sql.NullString
		if err := rows.Scan(
			&att.ID, &att.TenantID, &att.EmailID, &att.Filename, &att.FilePath,
			&att.SHA256, &mime, &att.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attachment row: %w", err)
		}
		att.MimeType = mime.String
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return attachments, nil
}
