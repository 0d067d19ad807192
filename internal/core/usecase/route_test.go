package usecase

import (
	"testing"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

func TestResolveRouteFirstMatchWins(t *testing.T) {
	rules := []domain.RoutingRule{
		{Category: "fiscal", Department: "fiscal-team", Emails: []string{"fiscal@acme.com"}},
		{Category: "fiscal", Department: "backup-team"},
	}

	route := ResolveRoute(rules, domain.TypeInvoice, "fiscal", "high")
	if route.Department != "fiscal-team" {
		t.Fatalf("department = %s, want fiscal-team", route.Department)
	}
	if len(route.Emails) != 1 || route.Emails[0] != "fiscal@acme.com" {
		t.Fatalf("emails = %v", route.Emails)
	}
}

func TestResolveRouteSkipsRulesWithoutRoutingKeys(t *testing.T) {
	rules := []domain.RoutingRule{
		{Name: "plain-config", Department: "should-not-match"},
		{Category: "fiscal", Department: "fiscal-team"},
	}

	route := ResolveRoute(rules, domain.TypeInvoice, "fiscal", "high")
	if route.Department != "fiscal-team" {
		t.Fatalf("department = %s, want fiscal-team", route.Department)
	}
}

func TestResolveRoutePriorityNormalization(t *testing.T) {
	rules := []domain.RoutingRule{
		{Priority: "medium", Department: "ops"},
	}

	route := ResolveRoute(rules, domain.TypeInvoice, "fiscal", "normal")
	if route.Department != "ops" {
		t.Fatalf("expected medium rule to match normal priority, got %s", route.Department)
	}
}

func TestResolveRouteEmptyFieldsAreWildcards(t *testing.T) {
	rules := []domain.RoutingRule{
		{WebhookURL: "https://hooks.acme.com/docs"},
	}

	route := ResolveRoute(rules, domain.TypeSpreadsheet, "anything", "low")
	if route.WebhookURL != "https://hooks.acme.com/docs" {
		t.Fatalf("webhook = %s", route.WebhookURL)
	}
	if route.Department != "triage" {
		t.Fatalf("department = %s, want triage default", route.Department)
	}
}

func TestResolveRouteNoMatchFallsBackToDefault(t *testing.T) {
	rules := []domain.RoutingRule{
		{DocType: "invoice", Department: "fin"},
	}

	route := ResolveRoute(rules, domain.TypeGenericDocument, "geral", "normal")
	want := domain.DefaultRoute()
	if route.Department != want.Department {
		t.Fatalf("department = %s, want %s", route.Department, want.Department)
	}
	if len(route.Emails) != 0 {
		t.Fatalf("emails = %v, want empty", route.Emails)
	}
}

func TestResolveRouteDocTypeMismatch(t *testing.T) {
	rules := []domain.RoutingRule{
		{DocType: "invoice", Category: "fiscal", Department: "fin"},
	}

	route := ResolveRoute(rules, domain.TypeFiscalXML, "fiscal", "high")
	if route.Department != "triage" {
		t.Fatalf("expected default route on doc type mismatch, got %s", route.Department)
	}
}
