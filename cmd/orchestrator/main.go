// Package main is the CLI entry point for the car-advisor LLM orchestrator.
//
// The orchestrator sits between the chat frontend and an OpenAI-compatible
// model provider, keeping conversation context in Redis and executing
// car-catalog tools on the model's behalf.
//
// Start the server:
//
//	orchestrator serve --config orchestrator.yaml
//
// Configuration can also be provided entirely via environment variables:
//
//   - REDIS_URL: Redis connection string (default: redis://localhost:6379)
//   - LLM_API_KEY: model provider API key
//   - LLM_MODEL, LLM_BASE_URL, LLM_PROVIDER: provider selection
//   - SEARCH_SERVICE_URL, USER_SERVICE_URL, CHAT_SERVICE_URL: collaborators
//   - FRONTEND_URL: allowed CORS origin
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/carwise/llm-orchestrator/internal/agent"
	"github.com/carwise/llm-orchestrator/internal/clients"
	"github.com/carwise/llm-orchestrator/internal/config"
	"github.com/carwise/llm-orchestrator/internal/contextstore"
	"github.com/carwise/llm-orchestrator/internal/observability"
	"github.com/carwise/llm-orchestrator/internal/ratelimit"
	"github.com/carwise/llm-orchestrator/internal/sanitize"
	"github.com/carwise/llm-orchestrator/internal/tools/cars"
	"github.com/carwise/llm-orchestrator/internal/web"
)

// Build information, populated by ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "orchestrator",
		Short:        "Car-advisor LLM orchestrator",
		Long:         "Orchestrates conversations between the chat frontend, an OpenAI-compatible model provider, and the car catalog services.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(buildServeCmd())

	return rootCmd
}

func buildServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the orchestrator HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("ORCHESTRATOR_CONFIG"), "Path to configuration file")

	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	metrics := observability.NewMetrics()

	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName:    "llm-orchestrator",
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		EnableInsecure: cfg.Tracing.Insecure,
	})

	ctx := context.Background()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "redis unreachable at startup, continuing", "error", err)
	} else {
		logger.Info(ctx, "redis connection established")
	}

	store := contextstore.New(rdb, logger)
	limiter := ratelimit.NewLimiter(rdb, logger, ratelimit.Config{
		Requests: cfg.Limits.RateLimitRequests,
		Window:   cfg.Limits.RateLimitWindow,
	})
	guard := sanitize.NewGuard(logger)

	searchClient := clients.NewSearchClient(cfg.Services.Search, cfg.Limits.ClientTimeout, logger)
	userClient := clients.NewUserClient(cfg.Services.User, cfg.Limits.ClientTimeout, logger)
	chatClient := clients.NewChatClient(cfg.Services.Chat, cfg.Limits.ClientTimeout, logger)

	provider := agent.NewOpenAIProvider(agent.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	}, logger, metrics)

	registry, err := agent.NewRegistry(logger, metrics,
		cars.NewSearchTool(searchClient, logger),
		cars.NewCompareTool(searchClient, logger),
		cars.NewPreferencesTool(userClient, logger),
		cars.NewSaveTool(chatClient, logger),
	)
	if err != nil {
		return err
	}

	orchestrator, err := agent.NewOrchestrator(provider, registry, store, logger, metrics, tracer)
	if err != nil {
		return err
	}

	server := web.NewServer(web.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		CORSOrigin:      cfg.CORS.Origin,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ProviderName:    cfg.LLM.Provider,
		ModelName:       cfg.LLM.Model,
		APIKeySet:       cfg.LLM.APIKey != "",
	}, orchestrator, limiter, guard, rdb, logger, metrics)

	logger.Info(ctx, "starting orchestrator",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"base_url", cfg.LLM.BaseURL,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error(ctx, "server shutdown failed", "error", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		logger.Error(ctx, "tracer shutdown failed", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error(ctx, "redis close failed", "error", err)
	}

	return <-errCh
}
