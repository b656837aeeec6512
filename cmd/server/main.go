// SmartHealth - Server Entry Point
//
// Loads configuration, builds the analysis, storage and lookup services and
// serves the HTTP API until interrupted.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/smarthealth/internal/app"
	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/handler"
	"github.com/smarthealth/internal/logger"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	isDev := os.Getenv("GIN_MODE") != "release"

	zapLogger, err := logger.New(logger.Options{Development: isDev, Service: "smarthealth"})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.Model.Model),
		zap.Bool("mock_mode", cfg.Model.MockMode),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	services, err := app.New(context.Background(), cfg, m, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize services", zap.Error(err))
	}
	defer func() {
		if err := services.Close(); err != nil {
			zapLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.Handlers{
		Analyze:  handler.NewAnalyzeHandler(services.Analyzer, cfg.Server.MaxUploadBytes, zapLogger),
		OCR:      handler.NewOCRHandler(services.OCRScript, services.OCRService, cfg.Server.MaxUploadBytes, zapLogger),
		Predict:  handler.NewPredictHandler(services.Predictor, zapLogger),
		Facility: handler.NewFacilityHandler(services.Finder, zapLogger),
		LabRef:   handler.NewLabRefHandler(services.LabRef),
		Records:  handler.NewRecordsHandler(services.Store, zapLogger),
		Health:   handler.NewHealthHandler(zapLogger),
		Ready:    handler.NewReadyHandler(services.Store, services.OCRService, zapLogger),
	}, handler.RouterOptions{
		AllowOrigins:   cfg.Server.AllowOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
	}, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")

	// Give in-flight requests 10 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
