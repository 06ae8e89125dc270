package agent

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carwise/llm-orchestrator/internal/observability"
	"github.com/carwise/llm-orchestrator/pkg/models"
)

// MaxIterations bounds how many model round-trips a single user message may
// trigger. Hitting the cap returns an apology instead of looping forever.
const MaxIterations = 5

const (
	toolResultRecordLimit = 500
	toolResultDebugLimit  = 200
)

// ContextStore is the conversation history the loop reads and writes.
// *contextstore.Store satisfies it.
type ContextStore interface {
	GetHistory(ctx context.Context, sessionID string) []models.Turn
	AppendTurn(ctx context.Context, sessionID string, turn models.Turn)
	AppendTurns(ctx context.Context, sessionID string, turns []models.Turn)
	ClearHistory(ctx context.Context, sessionID string)
	TurnCount(ctx context.Context, sessionID string) int
}

// Request is one user message addressed to a session.
type Request struct {
	SessionID string
	UserID    string
	Message   string
}

// Response is the assistant's final answer for one request. ToolCalls records
// the tools executed along the way, with results truncated for transport.
type Response struct {
	Role      string                  `json:"role"`
	Content   string                  `json:"content"`
	ToolCalls []models.ToolCallRecord `json:"toolCalls,omitempty"`
}

// Orchestrator drives the bounded model/tool conversation loop for each
// incoming message. Safe for concurrent use.
type Orchestrator struct {
	provider Provider
	registry *Registry
	store    ContextStore
	logger   *observability.Logger
	metrics  *observability.Metrics
	tracer   *observability.Tracer

	systemPrompt  string
	maxIterations int
}

// NewOrchestrator wires the loop's collaborators. metrics and tracer may be
// nil; the loop then runs without instrumentation.
func NewOrchestrator(provider Provider, registry *Registry, store ContextStore, logger *observability.Logger, metrics *observability.Metrics, tracer *observability.Tracer) (*Orchestrator, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if store == nil {
		return nil, errors.New("context store is required")
	}

	return &Orchestrator{
		provider:      provider,
		registry:      registry,
		store:         store,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		systemPrompt:  SystemPrompt,
		maxIterations: MaxIterations,
	}, nil
}

// ProcessMessage runs the full conversation cycle for one user message:
// load history, seed the system prompt on a fresh session, persist the user
// turn, then alternate model calls and tool executions until the model
// produces a plain text answer or the iteration cap is reached.
//
// Anticipated provider API failures (HTTP status errors) are translated into
// fixed user-safe replies; anything else is returned as an error.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req Request) (*Response, error) {
	ctx = observability.WithSessionID(ctx, req.SessionID)
	if req.UserID != "" {
		ctx = observability.WithUserID(ctx, req.UserID)
	}
	var end func()
	ctx, end = o.startSpan(ctx, "agent.process_message",
		attribute.String("session.id", req.SessionID),
		attribute.String("llm.model", o.provider.Name()),
	)
	defer end()

	turns := o.store.GetHistory(ctx, req.SessionID)

	userTurn := models.UserTurn(req.Message)
	if len(turns) == 0 {
		systemTurn := models.SystemTurn(o.systemPrompt)
		turns = append(turns, systemTurn, userTurn)
		o.store.AppendTurns(ctx, req.SessionID, []models.Turn{systemTurn, userTurn})
	} else {
		turns = append(turns, userTurn)
		o.store.AppendTurn(ctx, req.SessionID, userTurn)
	}

	var executed []models.ToolCallRecord

	for iteration := 1; iteration <= o.maxIterations; iteration++ {
		o.logger.Info(ctx, "model iteration", "iteration", iteration)

		callCtx, endCall := o.startSpan(ctx, "agent.model_call",
			attribute.String("llm.model", o.provider.Name()),
			attribute.Int("llm.iteration", iteration),
		)
		completion, err := o.provider.Complete(callCtx, turns, o.registry.Tools())
		endCall()
		if err != nil {
			return o.handleProviderError(ctx, err)
		}

		assistantTurn := models.Turn{
			Role:      models.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		}
		turns = append(turns, assistantTurn)
		o.store.AppendTurn(ctx, req.SessionID, assistantTurn)

		o.logger.Info(ctx, "token usage",
			"prompt_tokens", completion.Usage.PromptTokens,
			"completion_tokens", completion.Usage.CompletionTokens,
			"total_tokens", completion.Usage.PromptTokens+completion.Usage.CompletionTokens)

		if len(completion.ToolCalls) == 0 {
			content := completion.Content
			if content == "" {
				content = msgNoResponse
			}
			return &Response{
				Role:      string(models.RoleAssistant),
				Content:   content,
				ToolCalls: executed,
			}, nil
		}

		o.logger.Info(ctx, "executing tool calls", "count", len(completion.ToolCalls))

		toolTurns := make([]models.Turn, 0, len(completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			o.logger.Info(ctx, "calling tool", "tool_name", call.Name, "arguments", string(call.Arguments))

			dispatchCtx, endDispatch := o.startSpan(ctx, "agent.tool_dispatch",
				attribute.String("tool.name", call.Name),
			)
			result := o.registry.Dispatch(dispatchCtx, call.Name, call.Arguments)
			endDispatch()

			o.logger.Debug(ctx, "tool result", "tool_name", call.Name, "result", truncate(result, toolResultDebugLimit))

			executed = append(executed, models.ToolCallRecord{
				Name:      call.Name,
				Arguments: call.Arguments,
				Result:    truncate(result, toolResultRecordLimit),
			})
			toolTurns = append(toolTurns, models.ToolTurn(call.ID, result))
		}

		turns = append(turns, toolTurns...)
		o.store.AppendTurns(ctx, req.SessionID, toolTurns)
	}

	o.logger.Warn(ctx, "iteration limit reached", "max_iterations", o.maxIterations)
	return &Response{
		Role:    string(models.RoleAssistant),
		Content: msgProcessingError,
	}, nil
}

// ClearContext wipes the session's stored history.
func (o *Orchestrator) ClearContext(ctx context.Context, sessionID string) {
	o.store.ClearHistory(ctx, sessionID)
}

// ContextLength reports how many turns the session currently holds.
func (o *Orchestrator) ContextLength(ctx context.Context, sessionID string) int {
	return o.store.TurnCount(ctx, sessionID)
}

// handleProviderError maps anticipated provider API failures to fixed
// user-safe replies. Transport and context errors propagate unchanged.
func (o *Orchestrator) handleProviderError(ctx context.Context, err error) (*Response, error) {
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		return nil, err
	}

	o.logger.Error(ctx, "provider request failed", "status", provErr.StatusCode, "error", provErr.Err)

	var content string
	switch {
	case provErr.StatusCode == 402:
		content = msgProviderNoBalance
	case provErr.StatusCode == 429:
		content = msgProviderRateLimit
	case provErr.StatusCode == 401:
		content = msgProviderAuth
	case provErr.StatusCode >= 400:
		content = msgProviderGeneric
	default:
		return nil, fmt.Errorf("unexpected provider status %d: %w", provErr.StatusCode, provErr.Err)
	}

	return &Response{Role: string(models.RoleAssistant), Content: content}, nil
}

// startSpan opens a span when tracing is configured; without a tracer it
// returns the context unchanged and a no-op end function.
func (o *Orchestrator) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func()) {
	if o.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := o.tracer.Start(ctx, name, attrs...)
	return ctx, func() { span.End() }
}

// truncate caps s at limit runes, so multi-byte text is never split
// mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
