package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/lorrc/workload-dashboard/internal/adapters/primary/http"
	mw "github.com/lorrc/workload-dashboard/internal/adapters/primary/http/middleware"
	"github.com/lorrc/workload-dashboard/internal/adapters/primary/websocket"
	"github.com/lorrc/workload-dashboard/internal/adapters/secondary/jira"
	"github.com/lorrc/workload-dashboard/internal/config"
	"github.com/lorrc/workload-dashboard/internal/core/services"
	"github.com/lorrc/workload-dashboard/internal/infrastructure/logging"
	"github.com/lorrc/workload-dashboard/web"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// 3. Initialize Jira Client
	tracker, err := jira.NewClient(jira.Config{
		BaseURL:           cfg.Jira.URL,
		Email:             cfg.Jira.Email,
		APIToken:          cfg.Jira.APIToken,
		GroupPageSize:     cfg.Jira.GroupPageSize,
		SearchPageSize:    cfg.Jira.SearchPageSize,
		MaxSearchPages:    cfg.Jira.MaxSearchPages,
		Timeout:           cfg.Jira.RequestTimeout,
		RequestsPerSecond: cfg.Jira.RPS,
		Burst:             cfg.Jira.Burst,
	}, logger)
	if err != nil {
		logger.Error("failed to create jira client", "error", err)
		os.Exit(1)
	}

	// The dashboard still starts when Jira is unreachable; /health/ready
	// reports it and every request surfaces the tracker error.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := tracker.Ping(pingCtx); err != nil {
		logger.Warn("jira ping failed", "error", err, "url", cfg.Jira.URL)
	} else {
		logger.Info("jira connection established", "url", cfg.Jira.URL)
	}
	cancelPing()

	if len(cfg.Directory.GroupNames) == 0 {
		logger.Warn("no groups configured, the person list will be empty", "env", "JIRA_GROUP_NAMES")
	}

	// 4. Views
	views, err := web.NewViews()
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Dependency Injection (Wiring the Hexagon)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
			OnLimited:         errorHandler.Handle,
		})
		defer rateLimiter.Stop()
	}

	// Services (Core)
	resolver := services.NewUserResolver(tracker, services.UserResolverConfig{
		DomainFilter: cfg.DomainFilter(),
	}, logger)
	workloadService := services.NewWorkloadService(tracker, resolver, cfg.Directory.GroupNames, logger)
	projectService := services.NewProjectService(tracker, resolver)

	// Real-time
	hub := websocket.NewHub(logger)

	// Handlers (Primary Adapters)
	dashboardHandler := httpAdapter.NewDashboardHandler(workloadService, resolver, views, errorHandler, "Team Workload", logger)
	workloadHandler := httpAdapter.NewWorkloadHandler(workloadService, projectService, resolver, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, workloadService, httpAdapter.WebSocketConfig{
		AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		IsDevelopment:   cfg.IsDevelopment(),
		Session: websocket.SessionConfig{
			PongWait:       cfg.WebSocket.PongWait,
			PingInterval:   cfg.WebSocket.PingInterval,
			MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		},
	}, logger)
	healthHandler := httpAdapter.NewHealthHandler(tracker, hub, cfg.App.Version)

	// 6. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	// Health check endpoints (outside the rate limiter)
	r.Route("/health", healthHandler.RegisterRoutes)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	r.Group(func(r chi.Router) {
		if rateLimiter != nil {
			r.Use(rateLimiter.Middleware)
		}

		dashboardHandler.RegisterRoutes(r)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: cfg.CORS.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
				ExposedHeaders: []string{mw.RequestIDHeader},
				MaxAge:         cfg.CORS.MaxAge,
			}))

			workloadHandler.RegisterRoutes(r)
			r.Get("/ws", wsHandler.ServeHTTP)
		})
	})

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by the server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Error("websocket shutdown error", "error", err)
	}

	logger.Info("server shutdown complete", "sessions", hub.SessionCount())
}
