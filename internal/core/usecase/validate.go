package usecase

import (
	"fmt"
	"regexp"
	"time"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

var reDigitsOnly = regexp.MustCompile(`^\d+$`)

// ValidateFields runs the structural checks over an extracted field mapping,
// independent of any schema. It returns the error-code list instead of an
// error value: structural problems drive the review path, they do not abort
// the pipeline.
//
// document_number is required unconditionally, even for document types whose
// extractor deliberately omits it (training certificates). That mismatch is
// what routes every certificate into review today; keep it until the review
// flow is redesigned.
func ValidateFields(data domain.FieldMap) (bool, []string) {
	var errs []string

	if raw, ok := data["issue_date"]; ok {
		if !isISODate(asString(raw)) {
			errs = append(errs, "invalid_issue_date")
		}
	}

	for _, field := range []string{"total_amount", "iss_amount", "services_amount"} {
		raw, ok := data[field]
		if !ok {
			continue
		}
		if _, numeric := asFloat(raw); !numeric {
			errs = append(errs, "invalid_"+field)
		}
	}

	for _, field := range []string{"cnpj", "taker_cnpj"} {
		raw, ok := data[field]
		if !ok || raw == nil {
			continue
		}
		digits := reNonDigits.ReplaceAllString(asString(raw), "")
		if len(digits) != 14 || !reDigitsOnly.MatchString(digits) {
			errs = append(errs, "invalid_"+field)
		}
	}

	if raw, ok := data["access_key_nfse"]; ok && raw != nil {
		digits := reNonDigits.ReplaceAllString(asString(raw), "")
		if len(digits) < 44 || len(digits) > 60 {
			errs = append(errs, "invalid_access_key_nfse")
		}
	}

	for _, field := range []string{"document_number"} {
		if _, ok := data[field]; !ok {
			errs = append(errs, fmt.Sprintf("missing_%s", field))
		}
	}

	return len(errs) == 0, errs
}

// isISODate accepts ISO-8601 dates and datetimes, with a trailing "Z"
// treated as a UTC offset.
func isISODate(value string) bool {
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
