// Package openai provides the external analysis adapter for any
// OpenAI-compatible chat completion endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = domain.DefaultAnalysisBaseURL
	DefaultModel   = domain.DefaultAnalysisModel
	DefaultTimeout = domain.DefaultAnalysisTimeout

	maxTokens   = 2000
	temperature = 0.5

	// Context limits keep requests small.
	maxContextTopics    = 10
	maxContextHeadlines = 15
)

// ErrEmptyResponse indicates the model returned no usable content.
var ErrEmptyResponse = errors.New("openai: empty response")

// Config holds configuration for the analyzer.
type Config struct {
	// APIKey is the endpoint API key (required).
	APIKey string

	// BaseURL is the API base URL (default: DeepSeek).
	BaseURL string

	// Model is the chat model to use.
	Model string

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Analyzer asks a chat model for a structured recommendation.
type Analyzer struct {
	client      *openai.Client
	model       string
	promptStore driven.PromptStore
	log         *slog.Logger
}

// New creates an analyzer. promptStore may be nil, in which case the
// built-in prompts are used.
func New(cfg Config, promptStore driven.PromptStore) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrAnalyzerUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Analyzer{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		promptStore: promptStore,
		log:         logger.Component("analyzer"),
	}, nil
}

// Model returns the configured model name.
func (a *Analyzer) Model() string {
	return a.model
}

// Analyze sends the snapshot context and decodes the JSON answer.
func (a *Analyzer) Analyze(ctx context.Context, input domain.AnalysisInput) (*domain.AnalysisResult, error) {
	if input.Snapshot == nil {
		return nil, fmt.Errorf("analyze: %w: no snapshot", domain.ErrInvalidInput)
	}

	contextJSON, err := json.MarshalIndent(buildContext(input), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	system := a.loadPrompt(driven.PromptAnalysisSystem, defaultSystemPrompt)
	user := a.loadPrompt(driven.PromptAnalysisUser, defaultUserPrompt)
	if !strings.Contains(user, "%s") {
		a.log.Warn("analysis prompt has no placeholder, using default")
		user = defaultUserPrompt
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: strings.Replace(user, "%s", string(contextJSON), 1)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	a.log.Debug("analysis response",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return parseResult(resp.Choices[0].Message.Content)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (a *Analyzer) loadPrompt(name, fallback string) string {
	if a.promptStore == nil {
		return fallback
	}
	prompt, err := a.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// parseResult extracts the JSON object from a model answer. Code fences
// and surrounding prose are tolerated.
func parseResult(content string) (*domain.AnalysisResult, error) {
	text := strings.TrimSpace(content)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in answer", ErrEmptyResponse)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}

	// Some models answer on a 0-100 scale.
	if result.Confidence > 1 {
		result.Confidence /= 100
	}
	result.Confidence = min(max(result.Confidence, 0), 1)
	return &result, nil
}
