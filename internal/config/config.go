// Package config loads the orchestrator configuration from a YAML file with
// environment variable expansion, falling back to environment-only operation
// when no file is given.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for the orchestrator.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Services ServicesConfig `yaml:"services"`
	Limits   LimitsConfig   `yaml:"limits"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// ServicesConfig holds the base URLs of the collaborator services.
type ServicesConfig struct {
	Search string `yaml:"search"`
	User   string `yaml:"user"`
	Chat   string `yaml:"chat"`
}

type LimitsConfig struct {
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
	ClientTimeout     time.Duration `yaml:"client_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Insecure     bool    `yaml:"insecure"`
}

type CORSConfig struct {
	Origin string `yaml:"origin"`
}

// Load reads and parses the configuration file. An empty path yields the
// default configuration; environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables referenced in the file
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyEnv overrides file values with well-known environment variables so the
// service can run fully env-configured in containers.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("SEARCH_SERVICE_URL"); v != "" {
		cfg.Services.Search = v
	}
	if v := os.Getenv("USER_SERVICE_URL"); v != "" {
		cfg.Services.User = v
	}
	if v := os.Getenv("CHAT_SERVICE_URL"); v != "" {
		cfg.Services.Chat = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.CORS.Origin = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "deepseek"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek-chat"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Services.Search == "" {
		cfg.Services.Search = "http://search-service:4002"
	}
	if cfg.Services.User == "" {
		cfg.Services.User = "http://user-service:4001"
	}
	if cfg.Services.Chat == "" {
		cfg.Services.Chat = "http://chat-service:4003"
	}
	if cfg.Limits.RateLimitRequests == 0 {
		cfg.Limits.RateLimitRequests = 10
	}
	if cfg.Limits.RateLimitWindow == 0 {
		cfg.Limits.RateLimitWindow = time.Minute
	}
	if cfg.Limits.ClientTimeout == 0 {
		cfg.Limits.ClientTimeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Tracing.SamplingRate == 0 {
		cfg.Tracing.SamplingRate = 1.0
	}
	if cfg.CORS.Origin == "" {
		cfg.CORS.Origin = "http://localhost:3000"
	}
}
