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
	"golang.org/x/crypto/bcrypt"

	"github.com/adminconsole/dashboard/internal/devapi"
	"github.com/adminconsole/dashboard/internal/infrastructure/config"
	"github.com/adminconsole/dashboard/pkg/logger"
)

func main() {
	cfg := config.Load(zerolog.New(os.Stderr).With().Timestamp().Logger())
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env != "production",
		Service: "devapi",
	})

	store := devapi.NewStore(bcrypt.DefaultCost)
	admin, err := devapi.Seed(store, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed directory")
	}
	log.Info().Str("username", admin.Username).Msg("seeded administrator")

	auth := devapi.NewAuthService(store, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	e := devapi.NewRouter(store, auth, logger.Component("devapi"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("dev admin API listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
