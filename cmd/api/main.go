package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BradenHooton/admintable/internal/background"
	"github.com/BradenHooton/admintable/internal/config"
	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/handlers"
	middlewareCustom "github.com/BradenHooton/admintable/internal/middleware"
	"github.com/BradenHooton/admintable/internal/repositories"
	"github.com/BradenHooton/admintable/internal/routes"
	"github.com/BradenHooton/admintable/internal/services"
	pkghttp "github.com/BradenHooton/admintable/pkg/http"
	pkglogger "github.com/BradenHooton/admintable/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger, logCloser := pkglogger.New(pkglogger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("graphql_url", cfg.GraphQL.URL),
	)

	ipResolver, err := pkghttp.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Remote API
	gqlClient := graphql.NewClient(cfg.GraphQL.URL, cfg.GraphQL.Timeout, logger)

	// Initialize repositories
	postRepo := repositories.NewPostRepository(gqlClient)

	// Initialize services
	auditLogger := pkglogger.NewAuditLogger(logger)
	postService := services.NewPostService(postRepo, logger, auditLogger, cfg.Table.MaxTitleLength)
	sessionService := services.NewSessionService(gqlClient, postService, services.SessionConfig{
		SearchDebounce: cfg.Table.SearchDebounce,
		UsersPageSize:  cfg.Table.UsersPageSize,
		PostsPageSize:  cfg.Table.PostsPageSize,
		LoadTimeout:    cfg.Session.LoadTimeout,
	}, cfg.Session.IdleTTL, logger)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(sessionService, logger, cfg.Session.CleanupInterval)

	// Initialize handlers
	h := routes.Handlers{
		Sessions: handlers.NewSessionHandler(sessionService, logger),
		Posts:    handlers.NewPostHandler(sessionService, ipResolver, logger),
		Export:   handlers.NewExportHandler(sessionService, logger),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecureLogger(logger, ipResolver))
	router.Use(middlewareCustom.Metrics)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	rateLimit := middlewareCustom.RateLimitByIP(middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Server.RateLimitPerMinute,
	}, ipResolver)

	// Register routes
	routes.RegisterRoutes(router, h, rateLimit)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", slog.Any("error", err))
		exitCode = 1
	}

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		exitCode = 1
	}

	// Cancels in-flight table loads and debounced searches
	sessionService.CloseAll()

	if exitCode == 0 {
		logger.Info("server stopped gracefully")
	}
	logCloser.Close()
	os.Exit(exitCode)
}
