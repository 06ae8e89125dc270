package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// Registry is the single source of truth mapping tool names to their schema
// and executor. The tool set is fixed at construction and immutable for the
// process lifetime.
type Registry struct {
	tools    map[string]Tool
	schemas  map[string]*jsonschema.Schema
	order    []string
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewRegistry builds a registry from the given tools, compiling each tool's
// parameter schema so model-supplied arguments can be validated before
// dispatch. Registration order is preserved when tools are listed for the
// model.
func NewRegistry(logger *observability.Logger, metrics *observability.Metrics, tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		schemas: make(map[string]*jsonschema.Schema, len(tools)),
		logger:  logger,
		metrics: metrics,
	}

	for _, tool := range tools {
		name := tool.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool: %s", name)
		}

		schema, err := jsonschema.CompileString(name+".json", string(tool.Schema()))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", name, err)
		}

		r.tools[name] = tool
		r.schemas[name] = schema
		r.order = append(r.order, name)
	}

	return r, nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Dispatch executes the named tool with the model-supplied raw arguments and
// always returns text. Unknown tools, malformed arguments, and executor
// failures all yield explanatory text rather than an error, so the loop can
// feed a tool-result turn back to the model and keep making progress.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) string {
	tool, ok := r.tools[name]
	if !ok {
		r.logger.Warn(ctx, "model requested unknown tool", "tool_name", name)
		return UnknownToolMessage(name)
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var parsed any
	if err := json.Unmarshal(args, &parsed); err != nil {
		r.toolResult(name, "error")
		return fmt.Sprintf("Некорректные аргументы для инструмента %s: не удалось разобрать JSON.", name)
	}
	if err := r.schemas[name].Validate(parsed); err != nil {
		r.logger.Warn(ctx, "tool arguments failed schema validation", "tool_name", name, "error", err)
		r.toolResult(name, "error")
		return fmt.Sprintf("Некорректные аргументы для инструмента %s. Проверь параметры и попробуй снова.", name)
	}

	start := time.Now()
	result, err := tool.Execute(ctx, args)
	if r.metrics != nil {
		r.metrics.ToolExecutionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		// Last resort only: executors handle their own failures as text.
		r.logger.Error(ctx, "tool executor failed", "tool_name", name, "error", err)
		r.toolResult(name, "error")
		return msgProcessingError
	}

	r.toolResult(name, "success")
	return result
}

func (r *Registry) toolResult(name, status string) {
	if r.metrics != nil {
		r.metrics.ToolExecutionCounter.WithLabelValues(name, status).Inc()
	}
}
