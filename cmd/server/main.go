// Command server runs the alert relay: it accepts TradingView webhook alerts
// over HTTP and forwards them to Telegram chats, while discovering chats via
// long polling and the Telegram webhook.
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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alertline/go-alert-relay/internal/config"
	httpapi "github.com/alertline/go-alert-relay/internal/http"
	"github.com/alertline/go-alert-relay/internal/keepalive"
	"github.com/alertline/go-alert-relay/internal/observability"
	"github.com/alertline/go-alert-relay/internal/obslog"
	"github.com/alertline/go-alert-relay/internal/poller"
	"github.com/alertline/go-alert-relay/internal/registry"
	"github.com/alertline/go-alert-relay/internal/services"
	"github.com/alertline/go-alert-relay/internal/store"
	"github.com/alertline/go-alert-relay/internal/sysutil"
	"github.com/alertline/go-alert-relay/internal/telegram"
)

// version is injected at build time via -ldflags.
var version = "dev"

const eventRingCapacity = 200

func main() {
	// Optional .env for local development; real deployments use the process env.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("mode", cfg.Relay.Mode).Msg("starting alert relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	// Snapshot store
	var snap store.SnapshotStore
	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendSQLite:
		s, err := store.OpenSQLite(cfg.Snapshot.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Snapshot.DBPath).Msg("open sqlite snapshot failed")
		}
		snap = s
	default:
		s, err := store.NewFileStoreMkdir(cfg.Snapshot.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Snapshot.Path).Msg("open file snapshot failed")
		}
		snap = s
	}

	// Core dependencies
	reg := registry.New(snap, cfg.Relay.DefaultChatID, log.Logger)
	tg := telegram.NewClient(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.PollTimeout)
	relaySvc := services.NewRelayService(reg, tg, cfg.Relay, log.Logger)
	ingestSvc := services.NewIngestService(reg, tg, log.Logger)
	events := obslog.NewRing(eventRingCapacity)

	// Background producers
	go poller.New(tg, ingestSvc, cfg.Telegram.PollTimeout, cfg.Telegram.RetryDelay, log.Logger).Run(ctx)
	if cfg.Keepalive.ExternalURL != "" {
		go keepalive.New(cfg.Keepalive.ExternalURL, cfg.Keepalive.Interval, log.Logger).Run(ctx)
	}

	// HTTP transport
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{
		Registry: reg,
		Relay:    relaySvc,
		Ingest:   ingestSvc,
		Events:   events,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("alert relay stopped")
}
