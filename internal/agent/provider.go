package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/carwise/llm-orchestrator/internal/observability"
	"github.com/carwise/llm-orchestrator/pkg/models"
)

const (
	// DefaultBaseURL is the DeepSeek OpenAI-compatible API endpoint.
	DefaultBaseURL = "https://api.deepseek.com"

	// DefaultModel is the model used when not configured otherwise.
	DefaultModel = "deepseek-chat"

	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

// Usage reports token consumption for a single completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is the provider's answer to one model call. When ToolCalls is
// non-empty the model is requesting tool execution and Content may be empty.
type Completion struct {
	Content   string
	ToolCalls []models.ToolCall
	Usage     Usage
}

// Provider produces chat completions for the orchestration loop.
type Provider interface {
	// Complete sends the full conversation and the available tools to the
	// model and returns its next turn. HTTP-level provider failures are
	// returned as *ProviderError so callers can map them to user-facing
	// messages; transport failures are returned as-is.
	Complete(ctx context.Context, turns []models.Turn, tools []Tool) (*Completion, error)

	// Name returns the configured model identifier, for logging and metrics.
	Name() string
}

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	// APIKey authenticates against the provider. An empty key is accepted
	// so the service can start without credentials; requests then fail with
	// an authentication error from the provider.
	APIKey string

	// Model is the model identifier. Default: deepseek-chat.
	Model string

	// BaseURL overrides the API endpoint. Default: https://api.deepseek.com.
	BaseURL string
}

// OpenAIProvider talks to any OpenAI-compatible chat completion API.
// Safe for concurrent use.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewOpenAIProvider creates a provider from the given configuration.
func NewOpenAIProvider(cfg OpenAIConfig, logger *observability.Logger, metrics *observability.Metrics) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKey == "" && logger != nil {
		logger.Warn(context.Background(), "provider API key is empty, model requests will fail",
			"model", cfg.Model)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		logger:  logger,
		metrics: metrics,
	}
}

// Name returns the configured model identifier.
func (p *OpenAIProvider) Name() string {
	return p.model
}

// Complete implements Provider with a single non-streaming completion call.
func (p *OpenAIProvider) Complete(ctx context.Context, turns []models.Turn, tools []Tool) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertTurns(turns),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		TopP:        1,
	}
	if len(tools) > 0 {
		req.Tools = convertTools(tools)
		req.ToolChoice = "auto"
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if p.metrics != nil {
		p.metrics.LLMRequestDuration.WithLabelValues(p.model).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		p.countRequest("error")
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			return nil, &ProviderError{StatusCode: apiErr.HTTPStatusCode, Err: err}
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	p.countRequest("success")

	if len(resp.Choices) == 0 {
		return nil, errors.New("provider returned no choices")
	}

	msg := resp.Choices[0].Message
	completion := &Completion{
		Content: msg.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, tc := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, models.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	if p.metrics != nil {
		p.metrics.LLMTokensUsed.WithLabelValues(p.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		p.metrics.LLMTokensUsed.WithLabelValues(p.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	return completion, nil
}

func (p *OpenAIProvider) countRequest(status string) {
	if p.metrics != nil {
		p.metrics.LLMRequestCounter.WithLabelValues(p.model, status).Inc()
	}
}

// convertTurns converts stored conversation turns to OpenAI chat messages.
func convertTurns(turns []models.Turn) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(turns))

	for _, turn := range turns {
		msg := openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}

		switch turn.Role {
		case models.RoleAssistant:
			if len(turn.ToolCalls) > 0 {
				msg.ToolCalls = make([]openai.ToolCall, len(turn.ToolCalls))
				for i, tc := range turn.ToolCalls {
					msg.ToolCalls[i] = openai.ToolCall{
						ID:   tc.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      tc.Name,
							Arguments: string(tc.Arguments),
						},
					}
				}
			}
		case models.RoleTool:
			msg.ToolCallID = turn.ToolCallID
		}

		result = append(result, msg)
	}

	return result
}

// convertTools converts registered tools to OpenAI function definitions.
func convertTools(tools []Tool) []openai.Tool {
	result := make([]openai.Tool, len(tools))

	for i, tool := range tools {
		var schemaMap map[string]any
		if err := json.Unmarshal(tool.Schema(), &schemaMap); err != nil {
			schemaMap = map[string]any{"type": "object", "properties": map[string]any{}}
		}

		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  schemaMap,
			},
		}
	}

	return result
}
