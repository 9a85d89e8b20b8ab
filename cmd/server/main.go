package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dialdesk/acd/internal/api"
	"github.com/dialdesk/acd/internal/config"
	"github.com/dialdesk/acd/internal/drain"
	"github.com/dialdesk/acd/internal/metrics"
	"github.com/dialdesk/acd/internal/provider"
	"github.com/dialdesk/acd/internal/registry"
	"github.com/dialdesk/acd/internal/routing"
	"github.com/dialdesk/acd/internal/storage"
	"github.com/dialdesk/acd/internal/token"
	"github.com/dialdesk/acd/internal/websocket"
	"github.com/dialdesk/acd/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("queue", cfg.QueueName).
		Dur("poll_interval", cfg.PollInterval).
		Str("log_level", cfg.LogLevel).
		Msg("starting ACD coordination server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Provider client; the wait queue must exist before anything polls it
	tel := provider.NewClient("", cfg.AccountSid, cfg.AuthToken, cfg.ProviderTimeout, log.Logger)
	if _, err := tel.EnsureQueue(ctx, cfg.QueueName); err != nil {
		log.Fatal().Err(err).Str("queue", cfg.QueueName).Msg("failed to ensure wait queue")
	}

	// Diagnostics store for call records
	var store storage.Store = storage.NewNoopStore()
	dynCfg := storage.LoadDynamoConfig()
	if dynCfg.Mode != storage.DynamoModeNone {
		dynStore, err := storage.NewDynamoDBStore(ctx, dynCfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize DynamoDB store")
		}
		store = dynStore
	}

	// Presence registry and routing
	reg := registry.New()
	calls := routing.NewCallLog()
	router := routing.NewRouter(reg, calls, routing.Config{
		QueueName:       cfg.QueueName,
		RouteDeQueuing:  cfg.RouteDeQueuing,
		DefaultCallerID: cfg.CallerID,
		AnyCallerID:     cfg.AnyCallerID,
	}, log.Logger)
	router.SetStore(store)

	// Notification bus
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Queue-drain loop
	loop := drain.NewLoop(reg, tel, hub, cfg.DequeueURL, cfg.PollInterval, cfg.ErrorBackoff, log.Logger)
	go loop.Start(ctx)

	// Handlers
	wsHandler := websocket.NewHandler(hub, reg, cfg, log.Logger)
	voiceHandler := api.NewVoiceHandler(router, cfg.QueueName, log.Logger)
	presenceHandler := api.NewPresenceHandler(reg, cfg.CallerID, log.Logger)
	holdHandler := api.NewHoldHandler(tel, log.Logger)
	tokenHandler := api.NewTokenHandler(token.NewGenerator(cfg.AccountSid, cfg.AuthToken, cfg.AppSid), log.Logger)
	callsHandler := api.NewCallsHandler(store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Provider webhooks
	r.Post("/voice", voiceHandler.Voice)
	r.Post("/handledialcallstatus", voiceHandler.DialCallStatus)
	r.Post("/dial", voiceHandler.Dial)

	// Console endpoints
	r.Post("/track", presenceHandler.Track)
	r.Get("/status", presenceHandler.Status)
	r.Post("/setcallerid", presenceHandler.SetCallerID)
	r.Get("/getcallerid", presenceHandler.GetCallerID)
	r.Get("/token", tokenHandler.Token)
	r.Get("/websocket", wsHandler.ServeHTTP)

	// Hold flow
	r.Post("/request_hold", holdHandler.RequestHold)
	r.Post("/hold", holdHandler.Hold)
	r.Post("/request_unhold", holdHandler.RequestUnhold)
	r.Post("/send_to_agent", holdHandler.SendToAgent)

	// Diagnostics
	r.Get("/api/calls", callsHandler.List)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the drain loop
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"acd-server"}`)
}
