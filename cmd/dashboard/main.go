package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminconsole/dashboard/internal/api"
	"github.com/adminconsole/dashboard/internal/api/handler"
	"github.com/adminconsole/dashboard/internal/api/middleware"
	"github.com/adminconsole/dashboard/internal/core/permission"
	"github.com/adminconsole/dashboard/internal/core/ports"
	"github.com/adminconsole/dashboard/internal/core/service"
	"github.com/adminconsole/dashboard/internal/infrastructure/apiclient"
	mongodb "github.com/adminconsole/dashboard/internal/infrastructure/db/mongo"
	redisdb "github.com/adminconsole/dashboard/internal/infrastructure/db/redis"
	"github.com/adminconsole/dashboard/internal/infrastructure/queue"
	"github.com/adminconsole/dashboard/internal/infrastructure/sessions"
	"github.com/adminconsole/dashboard/internal/infrastructure/tokenstore"
	"github.com/adminconsole/dashboard/internal/pkg/config"
	"github.com/adminconsole/dashboard/pkg/logger"
)

const (
	permissionCacheSize = 4096
	shutdownTimeout     = 10 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("dashboard stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handler.Check{}
	httpClient := &http.Client{Timeout: cfg.API.RequestTimeout}
	checks["upstream"] = handler.UpstreamCheck(httpClient, cfg.API.BaseURL)

	// --- Token persistence ---
	var tokens ports.TokenStores
	switch cfg.Session.TokenStore {
	case config.TokenStoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		tokens = redisdb.NewTokenStore(rdb, cfg.Redis.KeyPrefix, cfg.Redis.TokenTTL)
		checks["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token store: redis")
	default:
		tokens = tokenstore.NewBoundedMemory(cfg.Session.Max, cfg.Redis.TokenTTL)
		log.Warn().Msg("token store: memory, sessions do not survive a restart")
	}

	// --- Audit trail ---
	var repo ports.AuditRepository
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		audits := mongodb.NewAuditRepository(db)
		if err := audits.EnsureIndexes(ctx); err != nil {
			return err
		}
		repo = audits
		checks["mongo"] = handler.MongoCheck(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("audit trail: mongo")
	} else {
		log.Info().Msg("audit trail: log only")
	}

	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(repo, logger.Component("audit")), logger.Component("audit"))
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	// --- Sessions ---
	perms, err := permission.NewEvaluator(permissionCacheSize)
	if err != nil {
		return err
	}
	registry := sessions.NewRegistry(cfg.Session.Max, cfg.Session.IdleTTL, sessions.Deps{
		API: apiclient.Config{
			BaseURL:    cfg.API.BaseURL,
			Timeout:    cfg.API.RequestTimeout,
			HTTPClient: httpClient,
		},
		Tokens: tokens,
		Perms:  perms,
		Audit:  dispatcher,
		Log:    logger.Component("session"),
	})
	defer registry.Close()

	e := api.NewRouter(api.Deps{
		Sessions: registry,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.Cookie,
			Secure: cfg.Session.SecureCookie,
			MaxAge: cfg.Redis.TokenTTL,
		},
		Perms:  perms,
		Audit:  dispatcher,
		Health: handler.NewHealthDependenciesHandler(checks),
		Log:    logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.API.BaseURL).Msg("dashboard listening")
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
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
