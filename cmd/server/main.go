package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
	"github.com/duncan19760605/GenAI-Kid/internal/emotion"
	"github.com/duncan19760605/GenAI-Kid/internal/httpapi"
	"github.com/duncan19760605/GenAI-Kid/internal/providers"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
	"github.com/duncan19760605/GenAI-Kid/internal/safety"
	"github.com/duncan19760605/GenAI-Kid/internal/server"
	"github.com/duncan19760605/GenAI-Kid/internal/service"
	"github.com/duncan19760605/GenAI-Kid/internal/session"
	"github.com/duncan19760605/GenAI-Kid/internal/storage"
	"github.com/duncan19760605/GenAI-Kid/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()

	db, err := storage.NewSQLite(cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.RunMigrations(ctx, db); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	userSessionRepo := repository.NewUserSessionRepository(db)
	childRepo := repository.NewChildRepository(db)
	providerRepo := repository.NewProviderConfigRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	authService := service.NewAuthService(userRepo, userSessionRepo, childRepo)
	childService := service.NewChildService(childRepo)
	providerService := service.NewProviderService(providerRepo, cfg.Security.EncryptionKey)
	usageService := service.NewUsageService(usageRepo)

	resolver := providers.NewResolver(providerService, cfg.Providers)

	sessions := &session.Factory{
		Conversations: conversationRepo,
		Usage:         usageService,
		Resolver:      resolver,
		Filter:        safety.NewFilter(),
		Emotions:      emotion.NewClassifier(),
		Logger:        logger,
	}
	voice := ws.NewHandler(authService, childRepo, sessions, logger)

	handler := httpapi.NewRouter(authService, childService, providerService, usageService, conversationRepo, resolver, voice, logger)
	srv := server.New(cfg, handler, voice.Drain, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}
