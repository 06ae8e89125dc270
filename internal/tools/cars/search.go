package cars

import (
	"context"
	"encoding/json"

	"github.com/carwise/llm-orchestrator/internal/clients"
	"github.com/carwise/llm-orchestrator/internal/observability"
)

// Searcher is the slice of the search service the catalog tools need.
// *clients.SearchClient satisfies it.
type Searcher interface {
	SearchCars(ctx context.Context, filters clients.SearchFilters) (*clients.SearchResult, error)
	CompareModels(ctx context.Context, modelIDs []string) ([]clients.CarModel, error)
}

const searchCarsSchema = `{
  "type": "object",
  "properties": {
    "budget_min": {
      "type": "number",
      "description": "Минимальный бюджет в рублях"
    },
    "budget_max": {
      "type": "number",
      "description": "Максимальный бюджет в рублях"
    },
    "body_type": {
      "type": "string",
      "enum": ["sedan", "hatchback", "wagon", "suv", "crossover", "coupe", "convertible", "minivan", "pickup", "liftback"],
      "description": "Тип кузова автомобиля"
    },
    "fuel_type": {
      "type": "string",
      "enum": ["petrol", "diesel", "hybrid", "electric", "gas", "petrol_gas"],
      "description": "Тип топлива"
    },
    "brand": {
      "type": "string",
      "description": "Бренд автомобиля (например: Toyota, BMW, Volkswagen)"
    },
    "year_min": {
      "type": "number",
      "description": "Минимальный год выпуска"
    },
    "year_max": {
      "type": "number",
      "description": "Максимальный год выпуска"
    },
    "transmission": {
      "type": "string",
      "enum": ["automatic", "manual", "robot", "variator"],
      "description": "Тип коробки передач"
    },
    "drive_type": {
      "type": "string",
      "enum": ["fwd", "rwd", "awd", "4wd"],
      "description": "Тип привода (передний, задний, полный)"
    },
    "limit": {
      "type": "number",
      "description": "Максимальное количество результатов (по умолчанию 10)"
    }
  },
  "required": []
}`

// SearchTool finds catalog entries matching model-supplied filters.
type SearchTool struct {
	search Searcher
	logger *observability.Logger
}

// NewSearchTool creates the search_cars tool.
func NewSearchTool(search Searcher, logger *observability.Logger) *SearchTool {
	return &SearchTool{search: search, logger: logger}
}

func (t *SearchTool) Name() string { return "search_cars" }

func (t *SearchTool) Description() string {
	return "Поиск автомобилей по заданным критериям в каталоге. Возвращает список подходящих моделей с характеристиками."
}

func (t *SearchTool) Schema() json.RawMessage {
	return json.RawMessage(searchCarsSchema)
}

type searchCarsArgs struct {
	BudgetMin    float64 `json:"budget_min"`
	BudgetMax    float64 `json:"budget_max"`
	BodyType     string  `json:"body_type"`
	FuelType     string  `json:"fuel_type"`
	Brand        string  `json:"brand"`
	YearMin      int     `json:"year_min"`
	YearMax      int     `json:"year_max"`
	Transmission string  `json:"transmission"`
	DriveType    string  `json:"drive_type"`
	Limit        int     `json:"limit"`
}

func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed searchCarsArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return msgSearchError, nil
	}

	t.logger.Info(ctx, "executing search_cars", "args", string(args))

	result, err := t.search.SearchCars(ctx, clients.SearchFilters{
		BudgetMin:    parsed.BudgetMin,
		BudgetMax:    parsed.BudgetMax,
		BodyType:     parsed.BodyType,
		FuelType:     parsed.FuelType,
		Brand:        parsed.Brand,
		YearMin:      parsed.YearMin,
		YearMax:      parsed.YearMax,
		Transmission: parsed.Transmission,
		DriveType:    parsed.DriveType,
		Limit:        parsed.Limit,
	})
	if err != nil {
		t.logger.Error(ctx, "search_cars failed", "error", err)
		return msgSearchError, nil
	}

	return formatSearchResults(result), nil
}
