package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/JovanneSousa/health-chat-sync/internal/changefeed"
	"github.com/JovanneSousa/health-chat-sync/internal/client/centrifugo"
	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/dashboard"
	"github.com/JovanneSousa/health-chat-sync/internal/infra"
	"github.com/JovanneSousa/health-chat-sync/internal/metrics"
	"github.com/JovanneSousa/health-chat-sync/internal/pkg/jwt"
	"github.com/JovanneSousa/health-chat-sync/internal/pkg/validator"
	"github.com/JovanneSousa/health-chat-sync/internal/projector"
	db "github.com/JovanneSousa/health-chat-sync/internal/repository/postgres"
	"github.com/JovanneSousa/health-chat-sync/internal/rest"
	"github.com/JovanneSousa/health-chat-sync/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	logger := logger_lib.New(cfg.Logger.Host, cfg.Logger.Port, cfg.Service.Name, cfg.Platform.Env)

	dbRepo := db.New(cfg)
	defer dbRepo.Close()

	hub := changefeed.NewHub()
	feedListener, err := changefeed.NewListener(cfg, hub, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to start change feed: %v", err))
		return
	}
	defer feedListener.Close()

	identityCache, err := session.NewRedisCache(cfg)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to start identity cache: %v", err))
		return
	}
	defer identityCache.Close()

	centrifugeClient := centrifugo.New(cfg)
	defer centrifugeClient.Close()

	sessionTokens := jwt.New(cfg.Auth.JWTSecret)
	realtimeTokens := jwt.New(cfg.Centrifuge.JWTSecret)

	sessions := session.New(dbRepo, sessionTokens, identityCache, cfg.Auth.SessionTTL, logger)

	registry := dashboard.New(dbRepo, projector.New(dbRepo, logger), hub, centrifugeClient, logger)
	defer registry.Close()
	unsubscribe := sessions.Subscribe(registry.HandleSessionEvent)
	defer unsubscribe()

	handler := rest.New(sessions, registry, metrics.New(dbRepo), validator.New(), realtimeTokens)
	router := chi.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return infra.AuthInterceptorHTTP(next, sessions)
	})
	router.Use(func(next http.Handler) http.Handler {
		return infra.LoggerHTTP(next, logger)
	})

	handler.Routes(router)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Service.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := feedListener.Run(gCtx); err != nil {
			return fmt.Errorf("change feed error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("server error: %v", err))
	}
}
