package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/walterneylp/process-doc/internal/core/domain"
	"github.com/walterneylp/process-doc/internal/core/ports"
)

// classificationRequiredKeys is the contract the external capability must
// satisfy. A missing key is a hard failure for the document, never a
// silent default.
var classificationRequiredKeys = []string{"category", "department", "confidence", "priority", "reason"}

// LLMClassifier wraps the external classification capability with the
// structured prompt and the key-completeness contract.
type LLMClassifier struct {
	provider ports.LLMProvider
}

func NewLLMClassifier(provider ports.LLMProvider) *LLMClassifier {
	return &LLMClassifier{provider: provider}
}

func (c *LLMClassifier) Classify(ctx context.Context, subject, sender, body string) (domain.ClassifierResult, error) {
	payload, err := c.provider.Classify(ctx, buildClassificationPrompt(subject, sender, body))
	if err != nil {
		return domain.ClassifierResult{}, fmt.Errorf("llm classify: %w", err)
	}

	var missing []string
	for _, key := range classificationRequiredKeys {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return domain.ClassifierResult{}, domain.WrapError(
			domain.ErrLLMContract,
			"llm classify",
			fmt.Errorf("missing keys: %v", missing),
		)
	}

	confidence, ok := asFloat(payload["confidence"])
	if !ok {
		return domain.ClassifierResult{}, domain.WrapError(
			domain.ErrLLMContract,
			"llm classify",
			fmt.Errorf("confidence is not numeric: %v", payload["confidence"]),
		)
	}

	return domain.ClassifierResult{
		Category:   asString(payload["category"]),
		Department: asString(payload["department"]),
		Confidence: confidence,
		Priority:   asString(payload["priority"]),
		Reason:     asString(payload["reason"]),
		Source:     domain.SourceLLM,
	}, nil
}

func buildClassificationPrompt(subject, sender, body string) string {
	return "Classifique o documento e retorne JSON estrito com campos: " +
		"category, department, confidence, priority, reason. " +
		fmt.Sprintf("Assunto: %s\nRemetente: %s\nConteudo: %s", subject, sender, body)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
