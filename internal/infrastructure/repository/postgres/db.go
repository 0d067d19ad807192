package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps the full table set. Safe to run from every worker
// start; an advisory lock serializes concurrent bootstraps.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS plans (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	monthly_email_limit INTEGER,
	monthly_llm_calls_limit INTEGER
);

CREATE TABLE IF NOT EXISTS tenants (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	plan_id BIGINT REFERENCES plans(id),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tenant_usage (
	id BIGSERIAL PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	period TEXT NOT NULL,
	emails_processed INTEGER NOT NULL DEFAULT 0,
	llm_calls INTEGER NOT NULL DEFAULT 0,
	UNIQUE (tenant_id, period)
);

CREATE TABLE IF NOT EXISTS tenant_rules (
	id BIGSERIAL PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	rule_name TEXT NOT NULL,
	definition JSONB NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tenant_rules_tenant ON tenant_rules(tenant_id);

CREATE TABLE IF NOT EXISTS extraction_schemas (
	id BIGSERIAL PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	doc_type TEXT NOT NULL,
	schema JSONB NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_extraction_schemas_tenant_type ON extraction_schemas(tenant_id, doc_type);

CREATE TABLE IF NOT EXISTS emails (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	message_id TEXT NOT NULL,
	subject TEXT,
	sender TEXT,
	body_text TEXT,
	status TEXT NOT NULL,
	trace_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (tenant_id, message_id)
);
CREATE INDEX IF NOT EXISTS idx_emails_tenant ON emails(tenant_id);

CREATE TABLE IF NOT EXISTS email_attachments (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	email_id TEXT NOT NULL REFERENCES emails(id),
	filename TEXT NOT NULL,
	file_path TEXT NOT NULL,
	sha256 TEXT NOT NULL,
	mime_type TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_email_attachments_email ON email_attachments(email_id);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	email_id TEXT REFERENCES emails(id),
	attachment_id TEXT REFERENCES email_attachments(id),
	doc_type TEXT,
	status TEXT NOT NULL,
	needs_review BOOLEAN NOT NULL DEFAULT FALSE,
	trace_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents(tenant_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

CREATE TABLE IF NOT EXISTS classifications (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id),
	category TEXT NOT NULL,
	department TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	priority TEXT NOT NULL,
	reason TEXT,
	source TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classifications_document ON classifications(document_id, created_at DESC);

CREATE TABLE IF NOT EXISTS extractions (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id),
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_document ON extractions(document_id, created_at DESC);

CREATE TABLE IF NOT EXISTS dead_letters (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	reason TEXT NOT NULL,
	payload JSONB,
	trace_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dead_letters_tenant ON dead_letters(tenant_id, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	trace_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	payload JSONB,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_trace ON audit_logs(trace_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
