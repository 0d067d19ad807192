// Package openai adapts the external LLM capability. Without an API key it
// degrades to a deterministic fallback so the pipeline stays operational;
// the fallback still satisfies the classification key contract.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/walterneylp/process-doc/internal/infrastructure/resilience"
)

type Provider struct {
	client   *openai.Client
	model    string
	limiter  *rate.Limiter
	executor *resilience.Executor
}

type Options struct {
	RequestsPerSecond  float64
	Burst              int
	ResilienceExecutor *resilience.Executor
}

func New(apiKey, model string) *Provider {
	return NewWithOptions(apiKey, model, Options{})
}

func NewWithOptions(apiKey, model string, options Options) *Provider {
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := options.Burst
	if burst <= 0 {
		burst = 4
	}

	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	return &Provider{
		client:   client,
		model:    model,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		executor: options.ResilienceExecutor,
	}
}

func (p *Provider) Classify(ctx context.Context, prompt string) (map[string]any, error) {
	if p.client == nil {
		return fallbackClassification(), nil
	}
	return p.completeJSON(ctx, "openai.classify", prompt)
}

func (p *Provider) Extract(ctx context.Context, prompt string) (map[string]any, error) {
	if p.client == nil {
		return map[string]any{}, nil
	}
	return p.completeJSON(ctx, "openai.extract", prompt)
}

func (p *Provider) completeJSON(ctx context.Context, operation, prompt string) (map[string]any, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm rate limit wait: %w", err)
	}

	var payload map[string]any
	call := func(callCtx context.Context) error {
		resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion: empty choices")
		}
		content := extractJSONObject(resp.Choices[0].Message.Content)
		if err := json.Unmarshal([]byte(content), &payload); err != nil {
			return fmt.Errorf("parse completion json: %w", err)
		}
		return nil
	}

	var err error
	if p.executor != nil {
		err = p.executor.Execute(ctx, operation, call, classifyOpenAIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func fallbackClassification() map[string]any {
	return map[string]any{
		"category":   "generic",
		"department": "triage",
		"confidence": 0.6,
		"priority":   "normal",
		"reason":     "fallback_no_api_key",
	}
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	msg := err.Error()
	// Malformed JSON is a model-output problem; retrying the same prompt
	// is the caller's decision, not the transport's.
	if strings.Contains(msg, "parse completion json") {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
