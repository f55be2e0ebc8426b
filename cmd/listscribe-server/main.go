package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listscribe"
	"listscribe/auth"
	"listscribe/httpapi"
	"listscribe/model"
	"listscribe/slack"
	"listscribe/storage"
	"listscribe/transcribe"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("SETUP: Could not load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var modelConfig listscribe.ModelConfig
	if err := listscribe.DecodeEnv(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var serverConfig listscribe.ServerConfig
	if err := listscribe.DecodeEnv(&serverConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var authConfig listscribe.AuthConfig
	if err := listscribe.DecodeEnv(&authConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var storeConfig listscribe.SessionStoreConfig
	if err := listscribe.DecodeEnv(&storeConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	mc, err := model.NewClient(ctx, modelConfig, http.DefaultClient)
	if err != nil {
		slog.Error("SETUP: Failed to create model client", "error", err)
		os.Exit(1)
	}

	var logs listscribe.SessionLogger = listscribe.SharedSessionLogger{}
	if serverConfig.TranscriptionLogDir != "" {
		logs = listscribe.DirSessionLogger{Dir: serverConfig.TranscriptionLogDir, Model: modelConfig.ModelID}
	}

	var notifier transcribe.Notifier
	if serverConfig.SlackWebhookURL != "" {
		client := slack.NewClient(serverConfig.SlackWebhookURL, &http.Client{Timeout: 10 * time.Second})
		notifier = slack.NewNotifier(client, serverConfig.SlackChannel)
		slog.Info("SETUP: Slack notifications enabled", "channel", serverConfig.SlackChannel)
	}

	base := transcribe.NewTranscriber(mc, logs, notifier)

	var transcriber listscribe.Transcriber = base

	if serverConfig.OtelEnabled {
		tracerProvider, meterProvider, otelShutdown, err := listscribe.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		transcriber, err = transcribe.NewInstrumentedTranscriber(
			transcriber,
			tracerProvider.Tracer(listscribe.TracerNameTranscriber),
			meterProvider.Meter(listscribe.TracerNameTranscriber),
		)
		if err != nil {
			slog.Error("SETUP: Failed to create instruments", "error", err)
			os.Exit(1)
		}
	}

	sessions, closeSessions, err := newSessionStore(ctx, authConfig, storeConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create session store", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	verifier, err := auth.NewVerifier(auth.Options{
		Strategy:      authConfig.Strategy,
		JWTSecret:     authConfig.JWTSecret,
		TokenTTL:      authConfig.TokenTTL,
		SessionSecret: authConfig.SessionSecret,
		SessionTTL:    authConfig.SessionTTL,
		SessionStore:  sessions,
		SecureCookie:  os.Getenv("GIN_MODE") == gin.ReleaseMode,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create verifier", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(httpapi.Config{
		Transcriber:    transcriber,
		Verifier:       verifier,
		Accounts:       gin.Accounts{authConfig.BasicUsername: authConfig.BasicPassword},
		StaticDir:      serverConfig.StaticDir,
		AllowedOrigins: serverConfig.Origins(),
		MaxBodyBytes:   serverConfig.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              serverConfig.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("SERVER: Shutdown failed", "error", err)
		}
	}()

	slog.Info("SERVER: Listening", "addr", serverConfig.Addr, "auth_strategy", authConfig.Strategy, "backend", modelConfig.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("SERVER: Stopped", "error", err)
		os.Exit(1)
	}
	base.Wait()
	slog.Info("SERVER: Stopped")
}

// newSessionStore returns nil when the JWT strategy is in use.
func newSessionStore(ctx context.Context, authConfig listscribe.AuthConfig, cfg listscribe.SessionStoreConfig) (auth.SessionStore, func(), error) {
	noop := func() {}
	if authConfig.Strategy != auth.StrategySession {
		return nil, noop, nil
	}

	switch cfg.Backend {
	case "", "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close() // nolint: errcheck
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("SETUP: Sessions stored in Redis", "addr", cfg.RedisAddr)
		return auth.NewRedisSessionStore(rdb, cfg.KeyPrefix), func() { rdb.Close() }, nil // nolint: errcheck

	case "sqlite":
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("SETUP: Sessions stored in SQLite", "path", cfg.SQLitePath)
		return auth.NewKVSessionStore(db, cfg.KeyPrefix), func() { db.Close() }, nil // nolint: errcheck

	default:
		return nil, noop, fmt.Errorf("unknown session store %q", cfg.Backend)
	}
}
