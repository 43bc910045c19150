package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pastebin-lite/pastebin-lite/config"
	"github.com/pastebin-lite/pastebin-lite/handlers"
	"github.com/pastebin-lite/pastebin-lite/internal/clock"
	"github.com/pastebin-lite/pastebin-lite/internal/services"
	"github.com/pastebin-lite/pastebin-lite/storage"
)

// Version/build info (set via -ldflags at build time)
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "none"
)

// isLambdaEnvironment detects if running in AWS Lambda.
func isLambdaEnvironment() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func main() {
	cfg := config.LoadConfig()
	cfg.Version = Version
	cfg.BuildTime = BuildTime
	cfg.CommitHash = CommitHash

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting pastebin-lite",
		"version", Version,
		"build_time", BuildTime,
		"commit", CommitHash,
		"backend", cfg.Backend)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("error closing storage", "error", err)
		}
	}()

	clk := clock.System{}
	service := services.NewPasteService(store, cfg, clk, logger)
	router := setupRouter(service, store, cfg)

	if isLambdaEnvironment() {
		logger.Info("starting in AWS Lambda mode")
		adapter := ginadapter.NewV2(router)
		lambda.StartWithOptions(adapter.ProxyWithContext, lambda.WithContext(ctx))
		return
	}

	janitor := services.NewJanitor(store, cfg.CleanupInterval, clk, logger)
	go janitor.Run(ctx)

	runHTTPServer(ctx, router, cfg, logger)
}

// setupRouter creates and configures the gin router.
func setupRouter(service *services.PasteService, store storage.PasteStore, cfg *config.Config) *gin.Engine {
	pasteHandler := handlers.NewPasteHandler(service, cfg)
	systemHandler := handlers.NewSystemHandler(store, cfg.Version)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.POST("/api/pastes", pasteHandler.Create)
	router.GET("/api/pastes/:id", pasteHandler.View)
	router.DELETE("/api/pastes/:id", pasteHandler.Delete)
	router.GET("/p/:id", pasteHandler.ViewRaw)

	router.GET("/api/healthz", systemHandler.Healthz)
	router.GET("/api/version", systemHandler.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	})

	return router
}

// runHTTPServer serves until the context is cancelled, then shuts down
// gracefully.
func runHTTPServer(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	} else {
		logger.Info("shutdown complete")
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
