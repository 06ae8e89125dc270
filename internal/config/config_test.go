package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Redis.URL != "redis://localhost:6379" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
	if cfg.LLM.Provider != "deepseek" || cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.BaseURL != "https://api.deepseek.com" {
		t.Errorf("base url = %q", cfg.LLM.BaseURL)
	}
	if cfg.Limits.RateLimitRequests != 10 || cfg.Limits.RateLimitWindow != time.Minute {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	if cfg.Limits.ClientTimeout != 10*time.Second {
		t.Errorf("client timeout = %v", cfg.Limits.ClientTimeout)
	}
	if cfg.Services.Search != "http://search-service:4002" {
		t.Errorf("search url = %q", cfg.Services.Search)
	}
}

func TestLoad_FileWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_ORCH_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
llm:
  api_key: ${TEST_ORCH_KEY}
  model: custom-model
limits:
  rate_limit_requests: 3
  rate_limit_window: 30s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "custom-model" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Limits.RateLimitRequests != 3 || cfg.Limits.RateLimitWindow != 30*time.Second {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	// Unset fields still get defaults.
	if cfg.Redis.URL != "redis://localhost:6379" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  model: file-model\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.Model != "env-model" {
		t.Errorf("model = %q, want env override", cfg.LLM.Model)
	}
	if cfg.Redis.URL != "redis://cache:6379" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}
