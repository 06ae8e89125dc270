package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

type stubTool struct {
	name   string
	schema string
	result string
	err    error
	calls  int
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub" }
func (t *stubTool) Schema() json.RawMessage {
	if t.schema == "" {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return json.RawMessage(t.schema)
}
func (t *stubTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	t.calls++
	return t.result, t.err
}

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{Output: io.Discard})
}

// Collectors register against the default registry, so the package's tests
// share a single Metrics instance.
var testMetrics = observability.NewMetrics()

func TestRegistry_DispatchKnownTool(t *testing.T) {
	tool := &stubTool{name: "search_cars", result: "found"}
	registry, err := NewRegistry(testLogger(), nil, tool)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got := registry.Dispatch(context.Background(), "search_cars", json.RawMessage(`{}`))
	if got != "found" {
		t.Errorf("Dispatch = %q, want %q", got, "found")
	}
	if tool.calls != 1 {
		t.Errorf("tool calls = %d, want 1", tool.calls)
	}
}

func TestRegistry_DispatchUnknownTool(t *testing.T) {
	registry, err := NewRegistry(testLogger(), nil, &stubTool{name: "search_cars"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got := registry.Dispatch(context.Background(), "fly_to_moon", json.RawMessage(`{}`))
	want := "Неизвестный инструмент: fly_to_moon"
	if got != want {
		t.Errorf("Dispatch = %q, want %q", got, want)
	}
}

func TestRegistry_DispatchValidatesArguments(t *testing.T) {
	tool := &stubTool{
		name:   "compare_models",
		schema: `{"type":"object","properties":{"model_ids":{"type":"array","items":{"type":"string"},"minItems":2,"maxItems":3}},"required":["model_ids"]}`,
		result: "compared",
	}
	registry, err := NewRegistry(testLogger(), nil, tool)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	// Missing required field.
	got := registry.Dispatch(context.Background(), "compare_models", json.RawMessage(`{}`))
	if !strings.Contains(got, "Некорректные аргументы") {
		t.Errorf("Dispatch with missing args = %q", got)
	}
	if tool.calls != 0 {
		t.Errorf("tool executed despite invalid arguments")
	}

	// Too few entries.
	got = registry.Dispatch(context.Background(), "compare_models", json.RawMessage(`{"model_ids":["1"]}`))
	if !strings.Contains(got, "Некорректные аргументы") {
		t.Errorf("Dispatch with short array = %q", got)
	}

	// Valid arguments go through.
	got = registry.Dispatch(context.Background(), "compare_models", json.RawMessage(`{"model_ids":["1","2"]}`))
	if got != "compared" {
		t.Errorf("Dispatch with valid args = %q", got)
	}
}

func TestRegistry_DispatchMalformedJSON(t *testing.T) {
	tool := &stubTool{name: "search_cars"}
	registry, err := NewRegistry(testLogger(), nil, tool)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got := registry.Dispatch(context.Background(), "search_cars", json.RawMessage(`{broken`))
	if !strings.Contains(got, "Некорректные аргументы") {
		t.Errorf("Dispatch with malformed JSON = %q", got)
	}
	if tool.calls != 0 {
		t.Error("tool executed despite malformed arguments")
	}
}

func TestRegistry_DispatchEmptyArgumentsAsObject(t *testing.T) {
	tool := &stubTool{name: "search_cars", result: "ok"}
	registry, err := NewRegistry(testLogger(), nil, tool)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if got := registry.Dispatch(context.Background(), "search_cars", nil); got != "ok" {
		t.Errorf("Dispatch with nil args = %q, want ok", got)
	}
}

func TestRegistry_ExecutorErrorYieldsText(t *testing.T) {
	tool := &stubTool{name: "search_cars", err: errors.New("boom")}
	registry, err := NewRegistry(testLogger(), nil, tool)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got := registry.Dispatch(context.Background(), "search_cars", json.RawMessage(`{}`))
	if got != msgProcessingError {
		t.Errorf("Dispatch with failing executor = %q, want %q", got, msgProcessingError)
	}
}

func TestRegistry_ToolsPreservesOrder(t *testing.T) {
	registry, err := NewRegistry(testLogger(), nil,
		&stubTool{name: "b"},
		&stubTool{name: "a"},
		&stubTool{name: "c"},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	var names []string
	for _, tool := range registry.Tools() {
		names = append(names, tool.Name())
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Tools() order = %v, want %v", names, want)
		}
	}
}

func TestRegistry_RejectsDuplicateTools(t *testing.T) {
	_, err := NewRegistry(testLogger(), nil, &stubTool{name: "a"}, &stubTool{name: "a"})
	if err == nil {
		t.Error("NewRegistry should reject duplicate tool names")
	}
}

func TestRegistry_DispatchObservesExecutionDuration(t *testing.T) {
	tool := &stubTool{name: "save_search_result", result: "saved"}
	registry, err := NewRegistry(testLogger(), testMetrics, tool)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	before := testutil.CollectAndCount(testMetrics.ToolExecutionDuration)
	if got := registry.Dispatch(context.Background(), "save_search_result", json.RawMessage(`{}`)); got != "saved" {
		t.Fatalf("Dispatch = %q, want saved", got)
	}
	if after := testutil.CollectAndCount(testMetrics.ToolExecutionDuration); after != before+1 {
		t.Errorf("ToolExecutionDuration series = %d, want %d", after, before+1)
	}
	if got := testutil.ToFloat64(testMetrics.ToolExecutionCounter.WithLabelValues("save_search_result", "success")); got != 1 {
		t.Errorf("success executions = %v, want 1", got)
	}
}

func TestRegistry_RejectsInvalidSchema(t *testing.T) {
	_, err := NewRegistry(testLogger(), nil, &stubTool{name: "a", schema: `{"type":`})
	if err == nil {
		t.Error("NewRegistry should reject an uncompilable schema")
	}
}
