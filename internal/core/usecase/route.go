package usecase

import (
	"github.com/walterneylp/process-doc/internal/core/domain"
)

// ResolveRoute matches a classification against the tenant's active rules,
// in list order, first match wins. A rule participates only if it carries at
// least one routing key; rows without any are plain tenant config and are
// skipped. Fields a rule leaves empty act as wildcards. Priority synonyms
// are normalized on both sides before comparison.
func ResolveRoute(rules []domain.RoutingRule, docType domain.DocumentType, category, priority string) domain.Route {
	normalized := domain.NormalizePriority(priority)

	for _, rule := range rules {
		if !rule.HasRoutingKey() {
			continue
		}
		if rule.DocType != "" && rule.DocType != string(docType) {
			continue
		}
		if rule.Category != "" && rule.Category != category {
			continue
		}
		if rule.Priority != "" && domain.NormalizePriority(rule.Priority) != normalized {
			continue
		}

		route := domain.Route{
			Department: rule.Department,
			Emails:     rule.Emails,
			WebhookURL: rule.WebhookURL,
		}
		if route.Department == "" {
			route.Department = domain.DefaultRoute().Department
		}
		if route.Emails == nil {
			route.Emails = []string{}
		}
		return route
	}

	return domain.DefaultRoute()
}
