package cars

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/carwise/llm-orchestrator/internal/clients"
	"github.com/carwise/llm-orchestrator/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{Output: io.Discard})
}

type stubSearcher struct {
	searchResult  *clients.SearchResult
	searchFilters clients.SearchFilters
	searchErr     error
	compareModels []clients.CarModel
	compareIDs    []string
	compareErr    error
}

func (s *stubSearcher) SearchCars(_ context.Context, filters clients.SearchFilters) (*clients.SearchResult, error) {
	s.searchFilters = filters
	return s.searchResult, s.searchErr
}

func (s *stubSearcher) CompareModels(_ context.Context, modelIDs []string) ([]clients.CarModel, error) {
	s.compareIDs = modelIDs
	return s.compareModels, s.compareErr
}

type stubProfileFetcher struct {
	profile *clients.UserProfile
	err     error
}

func (s *stubProfileFetcher) GetProfile(context.Context, string) (*clients.UserProfile, error) {
	return s.profile, s.err
}

type stubResultSaver struct {
	sessionID string
	payload   clients.SaveSearchResultPayload
	err       error
}

func (s *stubResultSaver) SaveSearchResult(_ context.Context, sessionID string, payload clients.SaveSearchResultPayload) error {
	s.sessionID = sessionID
	s.payload = payload
	return s.err
}

var camry = clients.CarModel{
	ID:                        "m1",
	Brand:                     "Toyota",
	Model:                     "Camry",
	Year:                      2022,
	Price:                     2500000,
	BodyType:                  "sedan",
	FuelType:                  "petrol",
	FuelConsumption:           7.5,
	EngineVolumeL:             2.5,
	Horsepower:                200,
	Transmission:              "automatic",
	DriveType:                 "fwd",
	InsuranceCostPerYearRub:   80000,
	AnnualTaxCostRub:          15000,
	MaintenanceCostPerYearRub: 45000,
}

func TestSearchTool_FiltersPassedThrough(t *testing.T) {
	searcher := &stubSearcher{searchResult: &clients.SearchResult{Total: 1, Models: []clients.CarModel{camry}}}
	tool := NewSearchTool(searcher, testLogger())

	args := json.RawMessage(`{"body_type":"sedan","budget_max":3000000,"brand":"Toyota","limit":5}`)
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if searcher.searchFilters.BodyType != "sedan" || searcher.searchFilters.Brand != "Toyota" {
		t.Errorf("filters = %+v", searcher.searchFilters)
	}
	if searcher.searchFilters.Limit != 5 {
		t.Errorf("limit = %d, want 5", searcher.searchFilters.Limit)
	}
	if !strings.Contains(result, "Найдено 1 автомобилей") {
		t.Errorf("result = %q", result)
	}
	if !strings.Contains(result, "Toyota Camry (2022)") {
		t.Errorf("result = %q", result)
	}
	// Ownership cost is the sum of insurance, tax, and maintenance.
	if !strings.Contains(result, "140 000 ₽") {
		t.Errorf("result should carry the summed ownership cost: %q", result)
	}
}

func TestSearchTool_EmptyResult(t *testing.T) {
	searcher := &stubSearcher{searchResult: &clients.SearchResult{Total: 0}}
	tool := NewSearchTool(searcher, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != msgNoCarsFound {
		t.Errorf("result = %q, want not-found message", result)
	}
}

func TestSearchTool_ServiceErrorYieldsText(t *testing.T) {
	searcher := &stubSearcher{searchErr: errors.New("service down")}
	tool := NewSearchTool(searcher, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute must not fail for service errors, got %v", err)
	}
	if result != msgSearchError {
		t.Errorf("result = %q, want search error message", result)
	}
}

func TestCompareTool(t *testing.T) {
	searcher := &stubSearcher{compareModels: []clients.CarModel{camry}}
	tool := NewCompareTool(searcher, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"model_ids":["m1","m2"]}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(searcher.compareIDs) != 2 {
		t.Errorf("compare ids = %v", searcher.compareIDs)
	}
	if !strings.Contains(result, "📊 Сравнение моделей") {
		t.Errorf("result = %q", result)
	}
	if !strings.Contains(result, "🚗 Toyota Camry (2022)") {
		t.Errorf("result = %q", result)
	}
	if !strings.Contains(result, "ИТОГО: 140 000 ₽/год") {
		t.Errorf("result should carry ownership total: %q", result)
	}
}

func TestCompareTool_EmptyResult(t *testing.T) {
	tool := NewCompareTool(&stubSearcher{}, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"model_ids":["x","y"]}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != msgNoModelsToCompare {
		t.Errorf("result = %q", result)
	}
}

func TestCompareTool_MissingSpecsRenderedAsNA(t *testing.T) {
	bare := clients.CarModel{ID: "m2", Brand: "Lada", Model: "Granta", Year: 2020, Price: 800000, BodyType: "sedan", FuelType: "petrol"}
	tool := NewCompareTool(&stubSearcher{compareModels: []clients.CarModel{bare}}, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"model_ids":["m2","m3"]}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(result, "н/д") {
		t.Errorf("missing specs should render as н/д: %q", result)
	}
}

func TestPreferencesTool(t *testing.T) {
	fetcher := &stubProfileFetcher{profile: &clients.UserProfile{
		ID:                    "u1",
		PreferredBudgetMinRub: 1000000,
		PreferredBudgetMaxRub: 2000000,
		PreferredBodyType:     "suv",
		City:                  "Москва",
	}}
	tool := NewPreferencesTool(fetcher, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"user_id":"u1"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(result, "Сохранённые предпочтения пользователя") {
		t.Errorf("result = %q", result)
	}
	if !strings.Contains(result, "Бюджет: 1 000 000 - 2 000 000 ₽") {
		t.Errorf("result = %q", result)
	}
	if !strings.Contains(result, "Город: Москва") {
		t.Errorf("result = %q", result)
	}
}

func TestPreferencesTool_NoProfile(t *testing.T) {
	tool := NewPreferencesTool(&stubProfileFetcher{}, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"user_id":"u1"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != msgNoPreferences {
		t.Errorf("result = %q, want no-preferences message", result)
	}
}

func TestPreferencesTool_EmptyProfile(t *testing.T) {
	tool := NewPreferencesTool(&stubProfileFetcher{profile: &clients.UserProfile{ID: "u1"}}, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"user_id":"u1"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != msgNoPreferences {
		t.Errorf("result = %q, want no-preferences message", result)
	}
}

func TestSaveTool(t *testing.T) {
	saver := &stubResultSaver{}
	tool := NewSaveTool(saver, testLogger())

	args := json.RawMessage(`{"session_id":"s1","summary":"Седан до 2 млн","selected_model_ids":["m1","m2"]}`)
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if saver.sessionID != "s1" || saver.payload.Summary != "Седан до 2 млн" {
		t.Errorf("saved = %q %+v", saver.sessionID, saver.payload)
	}
	if len(saver.payload.ModelIDs) != 2 {
		t.Errorf("model ids = %v", saver.payload.ModelIDs)
	}
	if result != msgResultSaved {
		t.Errorf("result = %q", result)
	}
}

func TestSaveTool_ServiceErrorYieldsText(t *testing.T) {
	tool := NewSaveTool(&stubResultSaver{err: errors.New("down")}, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"session_id":"s1","summary":"x","selected_model_ids":[]}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != msgSaveError {
		t.Errorf("result = %q, want save error message", result)
	}
}

func TestToolIdentities(t *testing.T) {
	logger := testLogger()
	tools := []interface {
		Name() string
		Description() string
		Schema() json.RawMessage
	}{
		NewSearchTool(&stubSearcher{}, logger),
		NewCompareTool(&stubSearcher{}, logger),
		NewPreferencesTool(&stubProfileFetcher{}, logger),
		NewSaveTool(&stubResultSaver{}, logger),
	}

	want := []string{"search_cars", "compare_models", "get_user_preferences", "save_search_result"}
	for i, tool := range tools {
		if tool.Name() != want[i] {
			t.Errorf("tool %d name = %q, want %q", i, tool.Name(), want[i])
		}
		if tool.Description() == "" {
			t.Errorf("tool %s has empty description", tool.Name())
		}
		var schema map[string]any
		if err := json.Unmarshal(tool.Schema(), &schema); err != nil {
			t.Errorf("tool %s schema is not valid JSON: %v", tool.Name(), err)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 ₽"},
		{999, "999 ₽"},
		{1500000, "1 500 000 ₽"},
		{2500000, "2 500 000 ₽"},
	}

	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
