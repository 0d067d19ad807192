package usecase

import (
	"testing"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

func TestValidateFieldsValidInvoice(t *testing.T) {
	valid, errs := ValidateFields(domain.FieldMap{
		"document_number": "123",
		"cnpj":            "12.345.678/0001-95",
		"issue_date":      "2024-03-05",
		"total_amount":    1234.56,
	})
	if !valid {
		t.Fatalf("expected valid, got errors %v", errs)
	}
}

func TestValidateFieldsEmptyMap(t *testing.T) {
	valid, errs := ValidateFields(domain.FieldMap{})
	if valid {
		t.Fatalf("expected invalid for empty map")
	}
	if len(errs) != 1 || errs[0] != "missing_document_number" {
		t.Fatalf("errors = %v, want [missing_document_number]", errs)
	}
}

func TestValidateFieldsCertificateStillMissesDocumentNumber(t *testing.T) {
	// The certificate extractor never emits document_number, so every
	// certificate lands in review.
	valid, errs := ValidateFields(domain.FieldMap{
		"trainee_name": "Maria Souza",
		"course_name":  "NR-10 - Básico",
	})
	if valid {
		t.Fatalf("expected invalid")
	}
	if !containsString(errs, "missing_document_number") {
		t.Fatalf("errors = %v, want missing_document_number", errs)
	}
}

func TestValidateFieldsBadDate(t *testing.T) {
	_, errs := ValidateFields(domain.FieldMap{
		"document_number": "1",
		"issue_date":      "05/03/2024",
	})
	if !containsString(errs, "invalid_issue_date") {
		t.Fatalf("errors = %v, want invalid_issue_date", errs)
	}
}

func TestValidateFieldsDatetimeAccepted(t *testing.T) {
	valid, errs := ValidateFields(domain.FieldMap{
		"document_number": "1",
		"issue_date":      "2024-03-05T10:20:30Z",
	})
	if !valid {
		t.Fatalf("expected datetime accepted, got %v", errs)
	}
}

func TestValidateFieldsBadAmount(t *testing.T) {
	_, errs := ValidateFields(domain.FieldMap{
		"document_number": "1",
		"total_amount":    "mil reais",
	})
	if !containsString(errs, "invalid_total_amount") {
		t.Fatalf("errors = %v, want invalid_total_amount", errs)
	}
}

func TestValidateFieldsCNPJ(t *testing.T) {
	tests := []struct {
		name  string
		cnpj  any
		valid bool
	}{
		{"formatted", "12.345.678/0001-95", true},
		{"digits only", "12345678000195", true},
		{"too short", "123456", false},
		{"too long", "123456780001951234", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := ValidateFields(domain.FieldMap{
				"document_number": "1",
				"cnpj":            tc.cnpj,
			})
			got := !containsString(errs, "invalid_cnpj")
			if got != tc.valid {
				t.Fatalf("cnpj %v valid = %v, want %v (errors %v)", tc.cnpj, got, tc.valid, errs)
			}
		})
	}
}

func TestValidateFieldsAccessKeyLength(t *testing.T) {
	key44 := ""
	for i := 0; i < 44; i++ {
		key44 += "7"
	}
	valid, errs := ValidateFields(domain.FieldMap{
		"document_number": "1",
		"access_key_nfse": key44,
	})
	if !valid {
		t.Fatalf("expected 44-digit key accepted, got %v", errs)
	}

	_, errs = ValidateFields(domain.FieldMap{
		"document_number": "1",
		"access_key_nfse": "1234",
	})
	if !containsString(errs, "invalid_access_key_nfse") {
		t.Fatalf("errors = %v, want invalid_access_key_nfse", errs)
	}
}

func containsString(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}
