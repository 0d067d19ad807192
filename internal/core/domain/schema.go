package domain

// Schema is a JSON-schema-like field contract: typed properties plus a
// required-field list. Tenant-defined schemas override built-ins per
// document type.
type Schema struct {
	Properties map[string]SchemaProperty `json:"properties" yaml:"properties"`
	Required   []string                  `json:"required" yaml:"required"`
}

type SchemaProperty struct {
	Type string `json:"type" yaml:"type"`
}

// RoutingRule is a tenant-defined rule. Only rules carrying at least one
// routing key (doc_type, category, priority, emails, webhook_url) take part
// in route resolution; other rows in the same table are plain tenant config
// and are skipped.
type RoutingRule struct {
	ID         int64    `json:"id"`
	TenantID   string   `json:"tenant_id"`
	Name       string   `json:"name"`
	DocType    string   `json:"doc_type,omitempty"`
	Category   string   `json:"category,omitempty"`
	Priority   string   `json:"priority,omitempty"`
	Department string   `json:"department,omitempty"`
	Emails     []string `json:"emails,omitempty"`
	WebhookURL string   `json:"webhook_url,omitempty"`
	IsActive   bool     `json:"is_active"`
}

// HasRoutingKey reports whether the rule constrains or targets routing at
// all. Rules without any routing key never match.
func (r RoutingRule) HasRoutingKey() bool {
	return r.DocType != "" || r.Category != "" || r.Priority != "" ||
		len(r.Emails) > 0 || r.WebhookURL != ""
}

// Route is the resolved notification target for a classification.
type Route struct {
	Department string   `json:"department"`
	Emails     []string `json:"emails"`
	WebhookURL string   `json:"webhook_url,omitempty"`
}

// DefaultRoute is returned when no tenant rule matches.
func DefaultRoute() Route {
	return Route{Department: "triage", Emails: []string{}}
}
