package cars

import (
	"context"
	"encoding/json"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

const compareModelsSchema = `{
  "type": "object",
  "properties": {
    "model_ids": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Массив ID моделей для сравнения (от 2 до 3 моделей)",
      "minItems": 2,
      "maxItems": 3
    }
  },
  "required": ["model_ids"]
}`

// CompareTool fetches full specs for 2-3 models and renders them side by side.
type CompareTool struct {
	search Searcher
	logger *observability.Logger
}

// NewCompareTool creates the compare_models tool.
func NewCompareTool(search Searcher, logger *observability.Logger) *CompareTool {
	return &CompareTool{search: search, logger: logger}
}

func (t *CompareTool) Name() string { return "compare_models" }

func (t *CompareTool) Description() string {
	return "Детальное сравнение выбранных моделей автомобилей. Используй после search_cars для топ-3 вариантов."
}

func (t *CompareTool) Schema() json.RawMessage {
	return json.RawMessage(compareModelsSchema)
}

type compareModelsArgs struct {
	ModelIDs []string `json:"model_ids"`
}

func (t *CompareTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed compareModelsArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return msgCompareError, nil
	}

	t.logger.Info(ctx, "executing compare_models", "model_ids", parsed.ModelIDs)

	models, err := t.search.CompareModels(ctx, parsed.ModelIDs)
	if err != nil {
		t.logger.Error(ctx, "compare_models failed", "error", err)
		return msgCompareError, nil
	}

	return formatComparison(models), nil
}
