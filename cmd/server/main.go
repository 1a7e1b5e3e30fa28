package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/slooze/inventory-console/internal/api"
	"github.com/slooze/inventory-console/internal/api/handler"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/core/service"
	"github.com/slooze/inventory-console/internal/infrastructure/db/memory"
	"github.com/slooze/inventory-console/internal/infrastructure/db/redis"
	"github.com/slooze/inventory-console/internal/infrastructure/graphql"
	"github.com/slooze/inventory-console/internal/pkg/config"
	"github.com/slooze/inventory-console/pkg/logger"
)

const (
	serviceName     = "inventory-console"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log := logger.Component("main")
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Component("main")

	var (
		creds    ports.CredentialStore
		profiles ports.ProfileCache
		checks   = map[string]handler.Check{}
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()

		creds = redis.NewCredentialStore(rdb, cfg.Session.TokenTTL)
		profiles = redis.NewProfileCache(rdb, cfg.Session.TokenTTL)
		checks["redis"] = pingRedis(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis credential store")
	} else {
		creds = memory.NewCredentialStore(cfg.Session.MaxBrowsers, cfg.Session.TokenTTL)
		profiles = memory.NewProfileCache(cfg.Session.MaxBrowsers, cfg.Session.TokenTTL)
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
	}

	client := graphql.NewClient(graphql.Config{
		URL:     cfg.GraphQL.URL,
		Timeout: cfg.GraphQL.Timeout,
	}, nil, logger.Component("graphql"))
	checks["graphql"] = client.Ping

	hub := service.NewHub(service.HubConfig{
		MaxBrowsers: cfg.Session.MaxBrowsers,
		IdleTTL:     cfg.Session.TTL,
	}, creds, profiles, client, logger.Component("hub"))

	e, err := api.NewRouter(api.Deps{
		Config: cfg,
		Hub:    hub,
		Auth:   service.NewAuthService(logger.Component("auth")),
		Checks: checks,
		Log:    logger.Get(),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("graphql_url", cfg.GraphQL.URL).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func pingRedis(rdb *goredis.Client) handler.Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
