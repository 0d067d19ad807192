package domain

import "time"

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Plan carries monthly limits. A nil limit means unlimited.
type Plan struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	MonthlyEmailLimit *int   `json:"monthly_email_limit"`
	MonthlyLLMLimit   *int   `json:"monthly_llm_calls_limit"`
}

// Usage holds per-tenant counters for one monthly period ("2026-08").
type Usage struct {
	TenantID        string `json:"tenant_id"`
	Period          string `json:"period"`
	EmailsProcessed int    `json:"emails_processed"`
	LLMCalls        int    `json:"llm_calls"`
}

// CanProcessEmail reports whether the plan still allows processing another
// email in the usage period.
func CanProcessEmail(plan *Plan, usage Usage) bool {
	if plan == nil || plan.MonthlyEmailLimit == nil {
		return true
	}
	return usage.EmailsProcessed < *plan.MonthlyEmailLimit
}

// CanCallLLM reports whether the plan still allows another LLM call in the
// usage period.
func CanCallLLM(plan *Plan, usage Usage) bool {
	if plan == nil || plan.MonthlyLLMLimit == nil {
		return true
	}
	return usage.LLMCalls < *plan.MonthlyLLMLimit
}

// UsagePeriod formats the monthly period key for a point in time, in UTC.
func UsagePeriod(at time.Time) string {
	return at.UTC().Format("2006-01")
}
