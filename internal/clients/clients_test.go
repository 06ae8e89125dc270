package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{Output: io.Discard})
}

func TestSearchClient_SearchCars(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search/cars" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"data":{"total":1,"models":[{"id":"m1","brand":"Toyota","model":"Camry","year":2022,"price":2500000,"bodyType":"sedan","fuelType":"petrol"}]}}`)
	}))
	defer srv.Close()

	client := NewSearchClient(srv.URL, time.Second, testLogger())
	result, err := client.SearchCars(context.Background(), SearchFilters{BodyType: "sedan", BudgetMax: 3000000})
	if err != nil {
		t.Fatalf("SearchCars: %v", err)
	}

	if result.Total != 1 || len(result.Models) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Models[0].Brand != "Toyota" || result.Models[0].BodyType != "sedan" {
		t.Errorf("model = %+v", result.Models[0])
	}

	filters, ok := gotBody["filters"].(map[string]any)
	if !ok {
		t.Fatalf("request body = %v", gotBody)
	}
	if filters["body_type"] != "sedan" {
		t.Errorf("wire body_type = %v", filters["body_type"])
	}
	if gotBody["limit"] != float64(10) {
		t.Errorf("wire limit = %v, want default 10", gotBody["limit"])
	}
}

func TestSearchClient_CompareModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/compare" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string][]string
		json.NewDecoder(r.Body).Decode(&body)
		if len(body["model_ids"]) != 2 {
			t.Errorf("model_ids = %v", body["model_ids"])
		}
		io.WriteString(w, `{"success":true,"data":[{"id":"m1","brand":"Toyota","model":"Camry","year":2022,"price":2500000,"bodyType":"sedan","fuelType":"petrol"}]}`)
	}))
	defer srv.Close()

	client := NewSearchClient(srv.URL, time.Second, testLogger())
	models, err := client.CompareModels(context.Background(), []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("CompareModels: %v", err)
	}
	if len(models) != 1 || models[0].ID != "m1" {
		t.Errorf("models = %+v", models)
	}
}

func TestUserClient_GetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/u1/profile" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"success":true,"data":{"id":"u1","email":"a@b.c","preferredBodyType":"suv","city":"Москва"}}`)
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, time.Second, testLogger())
	profile, err := client.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile == nil || profile.PreferredBodyType != "suv" || profile.City != "Москва" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestUserClient_GetProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success":false,"error":{"code":"NOT_FOUND","message":"no such user"}}`)
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, time.Second, testLogger())
	profile, err := client.GetProfile(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetProfile on 404 should not error, got %v", err)
	}
	if profile != nil {
		t.Errorf("profile = %+v, want nil", profile)
	}
}

func TestUserClient_GetProfileNullData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":null}`)
	}))
	defer srv.Close()

	client := NewUserClient(srv.URL, time.Second, testLogger())
	profile, err := client.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile != nil {
		t.Errorf("profile = %+v, want nil for null data", profile)
	}
}

func TestChatClient_SaveSearchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/sessions/s1/results" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["summary"] != "Седан до 2 млн" {
			t.Errorf("summary = %v", body["summary"])
		}
		if _, ok := body["modelIds"]; !ok {
			t.Error("modelIds missing from wire payload")
		}
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, time.Second, testLogger())
	err := client.SaveSearchResult(context.Background(), "s1", SaveSearchResultPayload{
		Summary:  "Седан до 2 млн",
		ModelIDs: []string{"m1"},
	})
	if err != nil {
		t.Fatalf("SaveSearchResult: %v", err)
	}
}

func TestChatClient_SaveSearchResultServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, time.Second, testLogger())
	err := client.SaveSearchResult(context.Background(), "s1", SaveSearchResultPayload{})
	if err == nil {
		t.Fatal("expected error on 500")
	}
	se, ok := err.(*StatusError)
	if !ok || se.Status != http.StatusInternalServerError {
		t.Errorf("err = %v, want StatusError 500", err)
	}
}
