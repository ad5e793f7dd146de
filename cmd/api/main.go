package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/housify/agent-platform/internal/api"
	"github.com/housify/agent-platform/internal/core/ports"
	"github.com/housify/agent-platform/internal/infrastructure/config"
	mongodb "github.com/housify/agent-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/housify/agent-platform/internal/infrastructure/db/redis"
	"github.com/housify/agent-platform/internal/infrastructure/mail"
	"github.com/housify/agent-platform/internal/infrastructure/storage"
	"github.com/housify/agent-platform/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	for name, idx := range map[string]interface{ EnsureIndexes(context.Context) error }{
		"admins": mongodb.NewAdminRepository(db),
		"agents": mongodb.NewAgentRepository(db),
		"users":  mongodb.NewUserRepository(db),
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			lg.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		// The throttle fails open, so a missing Redis degrades rather than aborts.
		lg.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		rdb = nil
	}

	docs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		lg.Fatal().Err(err).Msg("document store initialisation failed")
	}

	var mailer ports.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		lg.Warn().Msg("SMTP not configured, notification mail disabled")
	}

	e := api.NewRouter(cfg, db, rdb, docs, mailer, lg)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			lg.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	lg.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting agent platform API")
	if err := e.Start(":" + cfg.Port); err != nil {
		lg.Info().Err(err).Msg("server stopped")
	}
}
