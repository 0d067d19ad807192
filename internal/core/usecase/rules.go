package usecase

import (
	"strings"

	"github.com/walterneylp/process-doc/internal/core/domain"
)

// ClassifyByRules runs the deterministic classifier: ordered checks over
// sender, subject and attachment filename, first match wins. Every input
// triple maps to exactly one of four outcomes.
func ClassifyByRules(sender, subject, attachmentName string) domain.ClassifierResult {
	senderL := strings.ToLower(sender)
	subjectL := strings.ToLower(subject)
	attachmentL := strings.ToLower(attachmentName)

	switch {
	case strings.Contains(subjectL, "nota fiscal") || strings.HasSuffix(attachmentL, ".xml"):
		return domain.ClassifierResult{
			Category:   "fiscal",
			Department: "financeiro",
			Confidence: 0.92,
			Priority:   domain.PriorityHigh,
			Reason:     "keyword_nota_fiscal",
			Source:     domain.SourceRules,
		}
	case strings.HasSuffix(senderL, "@banco.com"):
		return domain.ClassifierResult{
			Category:   "financeiro",
			Department: "financeiro",
			Confidence: 0.87,
			Priority:   domain.PriorityHigh,
			Reason:     "sender_domain",
			Source:     domain.SourceRules,
		}
	case strings.HasSuffix(attachmentL, ".pdf"):
		return domain.ClassifierResult{
			Category:   "documento_pdf",
			Department: "operacoes",
			Confidence: 0.78,
			Priority:   domain.PriorityNormal,
			Reason:     "attachment_pdf",
			Source:     domain.SourceRules,
		}
	default:
		return domain.ClassifierResult{
			Category:   "geral",
			Department: "triage",
			Confidence: 0.4,
			Priority:   domain.PriorityNormal,
			Reason:     "default",
			Source:     domain.SourceRules,
		}
	}
}
