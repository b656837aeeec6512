// Package app wires configuration into the services shared by the server
// and the command-line tool.
package app

import (
	"context"
	"fmt"

	"github.com/smarthealth/internal/ai"
	"github.com/smarthealth/internal/classifier"
	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/facility"
	"github.com/smarthealth/internal/labref"
	"github.com/smarthealth/internal/metrics"
	"github.com/smarthealth/internal/ocr"
	"github.com/smarthealth/internal/predictor"
	"github.com/smarthealth/internal/service"
	"github.com/smarthealth/internal/store"
	"github.com/smarthealth/internal/subprocess"
	"github.com/smarthealth/pkg/sanitizer"
	"go.uber.org/zap"
)

// App holds the constructed services.
type App struct {
	Config     *config.Config
	Metrics    *metrics.Metrics
	Client     ai.Client
	Classifier *classifier.Classifier
	Analyzer   *service.Analyzer
	Store      *store.Store
	Predictor  *predictor.Predictor
	OCRScript  *ocr.ScriptRunner
	OCRService *ocr.ServiceClient
	Finder     *facility.Finder
	LabRef     *labref.Table
}

// New builds every service from cfg. m may be nil. The caller owns Close.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*App, error) {
	backend, err := store.OpenBackend(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	st := store.New(backend, store.Options{
		Quota:   cfg.Store.SlotQuotaBytes,
		Logger:  logger,
		Metrics: m,
	})

	if cfg.Store.Seed {
		seeded, err := st.Seed(ctx)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("seed store: %w", err)
		}
		if seeded {
			logger.Info("store seeded with sample data")
		}
	}

	table, err := labref.Default()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load lab reference: %w", err)
	}

	prompts, err := ai.NewDefaultPromptBuilder()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build prompts: %w", err)
	}

	var client ai.Client
	if cfg.Model.MockMode {
		logger.Warn("running in mock mode - model responses are simulated")
		client = ai.NewMockClient(logger)
	} else {
		client = ai.NewOllamaClient(&cfg.Model, m, logger)
	}

	cls := classifier.New(logger)
	analyzer := service.NewAnalyzer(
		client,
		prompts,
		ai.NewDefaultValidator(),
		cls,
		sanitizer.New(cfg.Processing.MaxLogTextSize),
		st,
		service.AnalyzerConfig{
			MaxSymptoms:      cfg.Processing.MaxSymptoms,
			MaxSymptomLength: cfg.Processing.MaxSymptomLength,
			RecordAnalyses:   cfg.Store.RecordAnalyses,
		},
		m,
		logger,
	)

	predictRunner := subprocess.NewRunner(metrics.TargetPredictor, cfg.Predictor.Timeout, m, logger)
	ocrRunner := subprocess.NewRunner(metrics.TargetOCR, cfg.OCR.Timeout, m, logger)

	return &App{
		Config:     cfg,
		Metrics:    m,
		Client:     client,
		Classifier: cls,
		Analyzer:   analyzer,
		Store:      st,
		Predictor:  predictor.New(&cfg.Predictor, predictRunner, logger),
		OCRScript:  ocr.NewScriptRunner(&cfg.OCR, ocrRunner, logger),
		OCRService: ocr.NewServiceClient(&cfg.OCR, m, logger),
		Finder:     facility.NewFinder(&cfg.Facility, m, logger),
		LabRef:     table,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
