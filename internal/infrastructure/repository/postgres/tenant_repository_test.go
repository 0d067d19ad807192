package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

func newTenantRepoWithMock(t *testing.T) (*TenantRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &TenantRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestPlanForTenantNilWhenAbsent(t *testing.T) {
	repo, mock, done := newTenantRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT p.id, p.name").
		WithArgs("t1").
		WillReturnError(sql.ErrNoRows)

	plan, err := repo.PlanForTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("PlanForTenant() error = %v", err)
	}
	if plan != nil {
		t.Fatalf("expected nil plan, got %+v", plan)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPlanForTenantNullLimitsMeanUnlimited(t *testing.T) {
	repo, mock, done := newTenantRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "name", "monthly_email_limit", "monthly_llm_calls_limit"}).
		AddRow(int64(1), "pro", 500, nil)
	mock.ExpectQuery("SELECT p.id, p.name").
		WithArgs("t1").
		WillReturnRows(rows)

	plan, err := repo.PlanForTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("PlanForTenant() error = %v", err)
	}
	if plan.MonthlyEmailLimit == nil || *plan.MonthlyEmailLimit != 500 {
		t.Fatalf("email limit = %v, want 500", plan.MonthlyEmailLimit)
	}
	if plan.MonthlyLLMLimit != nil {
		t.Fatalf("llm limit = %v, want nil (unlimited)", plan.MonthlyLLMLimit)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrCreateUsageReturnsCounters(t *testing.T) {
	repo, mock, done := newTenantRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"emails_processed", "llm_calls"}).AddRow(3, 7)
	mock.ExpectQuery("INSERT INTO tenant_usage").
		WithArgs("t1", "2026-08").
		WillReturnRows(rows)

	usage, err := repo.GetOrCreateUsage(context.Background(), "t1", "2026-08")
	if err != nil {
		t.Fatalf("GetOrCreateUsage() error = %v", err)
	}
	if usage.EmailsProcessed != 3 || usage.LLMCalls != 7 {
		t.Fatalf("usage = %+v", usage)
	}
	if usage.TenantID != "t1" || usage.Period != "2026-08" {
		t.Fatalf("usage keys = %+v", usage)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestActiveRoutingRulesDecodesDefinition(t *testing.T) {
	repo, mock, done := newTenantRepoWithMock(t)
	defer done()

	definition := []byte(`{"category":"fiscal","department":"financeiro","emails":["fiscal@acme.com"],"webhook_url":"https://hooks.acme.com"}`)
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "rule_name", "definition", "is_active"}).
		AddRow(int64(1), "t1", "fiscal-route", definition, true)
	mock.ExpectQuery("SELECT id, tenant_id, rule_name, definition").
		WithArgs("t1").
		WillReturnRows(rows)

	rules, err := repo.ActiveRoutingRules(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ActiveRoutingRules() error = %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(rules))
	}
	rule := rules[0]
	if rule.Category != "fiscal" || rule.Department != "financeiro" {
		t.Fatalf("rule = %+v", rule)
	}
	if len(rule.Emails) != 1 || rule.WebhookURL != "https://hooks.acme.com" {
		t.Fatalf("rule targets = %+v", rule)
	}
	if !rule.HasRoutingKey() {
		t.Fatalf("expected routing key")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestActiveSchemaNilWhenAbsent(t *testing.T) {
	repo, mock, done := newTenantRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT schema").
		WithArgs("t1", "invoice").
		WillReturnError(sql.ErrNoRows)

	schema, err := repo.ActiveSchema(context.Background(), "t1", domain.TypeInvoice)
	if err != nil {
		t.Fatalf("ActiveSchema() error = %v", err)
	}
	if schema != nil {
		t.Fatalf("expected nil schema, got %+v", schema)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestActiveSchemaDecodesJSON(t *testing.T) {
	repo, mock, done := newTenantRepoWithMock(t)
	defer done()

	raw := []byte(`{"properties":{"po_number":{"type":"string"}},"required":["po_number"]}`)
	rows := sqlmock.NewRows([]string{"schema"}).AddRow(raw)
	mock.ExpectQuery("SELECT schema").
		WithArgs("t1", "invoice").
		WillReturnRows(rows)

	schema, err := repo.ActiveSchema(context.Background(), "t1", domain.TypeInvoice)
	if err != nil {
		t.Fatalf("ActiveSchema() error = %v", err)
	}
	if schema == nil || len(schema.Required) != 1 || schema.Required[0] != "po_number" {
		t.Fatalf("schema = %+v", schema)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
