package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/domain/admin"
	"portfolio/internal/domain/health"
	"portfolio/internal/domain/lead"
	"portfolio/internal/domain/notification"
	"portfolio/internal/pkg/jwt"
	"portfolio/internal/pkg/logger"
	"portfolio/internal/pkg/ratelimit"
	"portfolio/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	lg := logger.Setup(cfg.AppEnv, cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	repo := lead.NewRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("lead migration failed")
	}

	// a nil interface, not a typed nil, when Resend is not configured
	var sender notification.Sender
	if s, err := notification.NewResendSender(cfg.ResendAPIKey, cfg.NotifyTimeout); err == nil {
		sender = s
	}
	if !cfg.MailEnabled() {
		lg.Warn().Msg("mail settings incomplete, admin notifications will fail")
	}

	dispatcher := notification.NewDispatcher(sender, notification.Config{
		AdminEmail: cfg.AdminEmail,
		FromEmail:  cfg.FromEmail,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.NotifyTimeout,
	}, lg)

	deps := server.Deps{
		Config:  cfg,
		Logger:  lg,
		Leads:   lead.NewService(repo, dispatcher),
		Health:  health.NewDBHandler(db),
		Limiter: ratelimit.New(),
	}

	if cfg.AdminEnabled() {
		deps.JWT = jwt.New(cfg.AdminJWTSecret, cfg.AdminJWTTTL)
		deps.Admin = admin.NewService(cfg.AdminPasswordHash, deps.JWT)
		lg.Info().Msg("admin routes enabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("lead API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Wait(ctx); err != nil {
		lg.Warn().Err(err).Msg("pending notifications abandoned")
	}
	if err := database.Close(db); err != nil {
		lg.Error().Err(err).Msg("database close")
	}
}
