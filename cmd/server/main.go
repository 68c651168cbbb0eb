// Command server runs the LeetScope HTTP API: a synchronizing
// store-and-query service for LeetCode contest history.
//
// The binary wires the full stack: PostgreSQL for contest history and
// the past-contest listing, Redis for short-lived ranking summaries
// (optional, the service degrades to upstream-only when absent), and
// the LeetCode GraphQL client behind a rate limiter and circuit
// breaker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leetscope/leetscope/config"
	"github.com/leetscope/leetscope/internal/application/command"
	"github.com/leetscope/leetscope/internal/application/query"
	"github.com/leetscope/leetscope/internal/domain/contest"
	"github.com/leetscope/leetscope/internal/infrastructure/external/leetcode"
	"github.com/leetscope/leetscope/internal/infrastructure/persistence/postgres"
	"github.com/leetscope/leetscope/internal/infrastructure/persistence/redis"
	httpapi "github.com/leetscope/leetscope/internal/interface/http"
	"github.com/leetscope/leetscope/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────
	// 2. Logger
	// ─────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting leetscope server",
		logger.String("version", cfg.App.Version),
		logger.String("environment", string(cfg.App.Environment)),
	)

	// ─────────────────────────────────────────────────────────────────
	// 3. PostgreSQL
	// ─────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbConn.Close()

	if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database ready")

	// ─────────────────────────────────────────────────────────────────
	// 4. Redis (optional)
	// ─────────────────────────────────────────────────────────────────
	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// Ranking summaries fall back to upstream-only; everything
			// else is unaffected.
			log.Warn("failed to connect to Redis, ranking cache disabled", logger.Err(err))
			cache = nil
		} else {
			defer cache.Close()
			log.Info("redis ready")
		}
	}

	var rankingCache contest.RankingCache
	var invalidator command.RankingInvalidator
	if cache != nil {
		rc := redis.NewRankingCache(cache, cfg.Redis.RankingTTL)
		rankingCache = rc
		invalidator = rc
	}

	// ─────────────────────────────────────────────────────────────────
	// 5. LeetCode client
	// ─────────────────────────────────────────────────────────────────
	clientCfg := leetcode.DefaultClientConfig(cfg.LeetCode.BaseURL)
	clientCfg.Timeout = cfg.LeetCode.RequestTimeout
	clientCfg.MaxRetries = cfg.LeetCode.MaxRetries
	clientCfg.RetryBaseDelay = cfg.LeetCode.RetryBaseDelay
	clientCfg.RetryMaxDelay = cfg.LeetCode.RetryMaxDelay
	clientCfg.CircuitBreakerThreshold = cfg.LeetCode.CircuitBreakerThreshold
	clientCfg.CircuitBreakerTimeout = cfg.LeetCode.CircuitBreakerTimeout
	clientCfg.CircuitBreakerHalfOpenMax = cfg.LeetCode.CircuitBreakerHalfOpenMax
	if cfg.LeetCode.ConservativeRL {
		clientCfg.RateLimiterConfig = leetcode.ConservativeRateLimiterConfig()
	} else {
		clientCfg.RateLimiterConfig.RequestsPerSecond = float64(cfg.LeetCode.RateLimit)
		clientCfg.RateLimiterConfig.BurstSize = cfg.LeetCode.RateLimitBurst
	}
	clientCfg.Logger = log
	clientCfg.Debug = cfg.App.Debug

	client := leetcode.NewClient(clientCfg)
	provider := leetcode.NewProvider(client, cfg.LeetCode.ContestPageSize)

	// ─────────────────────────────────────────────────────────────────
	// 6. Repositories and handlers
	// ─────────────────────────────────────────────────────────────────
	historyRepo := postgres.NewHistoryRepository(dbConn)
	contestRepo := postgres.NewContestRepository(dbConn)

	syncHandler := command.NewSyncHistoryHandler(historyRepo, provider, invalidator, log)
	evictHandler := command.NewEvictHistoryHandler(historyRepo, invalidator, log)
	refreshHandler := command.NewRefreshContestsHandler(contestRepo, provider, log)

	deps := httpapi.Dependencies{
		GetHistoryHandler:         query.NewGetHistoryHandler(historyRepo, syncHandler),
		GetFilteredHistoryHandler: query.NewGetFilteredHistoryHandler(historyRepo, syncHandler),
		GetRatingJumpHandler:      query.NewGetRatingJumpHandler(historyRepo, syncHandler),
		GetBestRankingHandler:     query.NewGetBestRankingHandler(historyRepo, syncHandler),
		GetContestRankingHandler:  query.NewGetContestRankingHandler(rankingCache, provider, log),
		ListPastContestsHandler:   query.NewListPastContestsHandler(contestRepo),

		EvictHistoryHandler:    evictHandler,
		RefreshContestsHandler: refreshHandler,

		Logger:        log,
		HealthChecker: &healthChecker{db: dbConn, cache: cache, client: client},
	}

	// ─────────────────────────────────────────────────────────────────
	// 7. HTTP server
	// ─────────────────────────────────────────────────────────────────
	srv := httpapi.NewServer(httpapi.Config{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		MaxHeaderBytes:     cfg.Server.MaxHeaderBytes,
		EnableCORS:         cfg.Server.EnableCORS,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		EnableMetrics:      cfg.Observability.MetricsEnabled,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, deps)

	errCh := srv.StartAsync()

	// ─────────────────────────────────────────────────────────────────
	// 8. Wait for shutdown signal
	// ─────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("server stopped cleanly", logger.Duration("uptime", srv.Uptime()))
	return nil
}

// setupLogger builds the process logger from observability settings.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// healthChecker aggregates dependency health for the probe endpoints.
// The database is the only hard dependency: Redis and the upstream API
// degrade the service but do not make it unready.
type healthChecker struct {
	db     *postgres.Connection
	cache  *redis.Cache
	client *leetcode.Client
}

func (h *healthChecker) Check(ctx context.Context) httpapi.HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := httpapi.HealthStatus{
		Healthy:    true,
		Ready:      true,
		Components: make(map[string]string),
	}

	if err := h.db.Ping(checkCtx); err != nil {
		status.Healthy = false
		status.Ready = false
		status.Message = "database unreachable"
		status.Components["postgres"] = "down"
	} else {
		status.Components["postgres"] = "up"
	}

	if h.cache == nil {
		status.Components["redis"] = "disabled"
	} else if err := h.cache.Ping(checkCtx); err != nil {
		status.Components["redis"] = "down"
	} else {
		status.Components["redis"] = "up"
	}

	if h.client.IsHealthy(checkCtx) {
		status.Components["leetcode"] = "up"
	} else {
		status.Components["leetcode"] = "degraded"
	}

	return status
}
