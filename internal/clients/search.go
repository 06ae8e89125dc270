package clients

import (
	"context"
	"time"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// SearchFilters narrows a catalog search. Zero-valued fields are omitted.
type SearchFilters struct {
	BudgetMin    float64
	BudgetMax    float64
	BodyType     string
	FuelType     string
	Brand        string
	YearMin      int
	YearMax      int
	Transmission string
	DriveType    string
	Limit        int
}

// CarModel is one catalog entry returned by the search service.
type CarModel struct {
	ID                        string  `json:"id"`
	Brand                     string  `json:"brand"`
	Model                     string  `json:"model"`
	Year                      int     `json:"year"`
	Price                     float64 `json:"price"`
	BodyType                  string  `json:"bodyType"`
	FuelType                  string  `json:"fuelType"`
	FuelConsumption           float64 `json:"fuelConsumption,omitempty"`
	EngineVolumeL             float64 `json:"engineVolumeL,omitempty"`
	Horsepower                int     `json:"horsepower,omitempty"`
	Transmission              string  `json:"transmission,omitempty"`
	DriveType                 string  `json:"driveType,omitempty"`
	InsuranceCostPerYearRub   float64 `json:"insuranceCostPerYearRub,omitempty"`
	AnnualTaxCostRub          float64 `json:"annualTaxCostRub,omitempty"`
	MaintenanceCostPerYearRub float64 `json:"maintenanceCostPerYearRub,omitempty"`
}

// SearchResult is the search service's answer to a filter query.
type SearchResult struct {
	Total  int        `json:"total"`
	Models []CarModel `json:"models"`
}

// SearchClient talks to the car search collaborator.
type SearchClient struct {
	base
}

// NewSearchClient creates a search service client.
func NewSearchClient(baseURL string, timeout time.Duration, logger *observability.Logger) *SearchClient {
	return &SearchClient{base: newBase(baseURL, timeout, logger)}
}

type searchCarsRequest struct {
	Filters searchCarsFilters `json:"filters"`
	Limit   int               `json:"limit"`
}

type searchCarsFilters struct {
	BudgetMin    float64 `json:"budget_min,omitempty"`
	BudgetMax    float64 `json:"budget_max,omitempty"`
	BodyType     string  `json:"body_type,omitempty"`
	FuelType     string  `json:"fuel_type,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	YearMin      int     `json:"year_min,omitempty"`
	YearMax      int     `json:"year_max,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	DriveType    string  `json:"drive_type,omitempty"`
}

// SearchCars queries the catalog. A missing limit defaults to 10.
func (c *SearchClient) SearchCars(ctx context.Context, filters SearchFilters) (*SearchResult, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}

	req := searchCarsRequest{
		Filters: searchCarsFilters{
			BudgetMin:    filters.BudgetMin,
			BudgetMax:    filters.BudgetMax,
			BodyType:     filters.BodyType,
			FuelType:     filters.FuelType,
			Brand:        filters.Brand,
			YearMin:      filters.YearMin,
			YearMax:      filters.YearMax,
			Transmission: filters.Transmission,
			DriveType:    filters.DriveType,
		},
		Limit: limit,
	}

	var result SearchResult
	if err := c.doJSON(ctx, "POST", "/api/search/cars", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type compareRequest struct {
	ModelIDs []string `json:"model_ids"`
}

// CompareModels fetches full entries for the given model ids.
func (c *SearchClient) CompareModels(ctx context.Context, modelIDs []string) ([]CarModel, error) {
	var models []CarModel
	if err := c.doJSON(ctx, "POST", "/api/search/compare", compareRequest{ModelIDs: modelIDs}, &models); err != nil {
		return nil, err
	}
	return models, nil
}
