// Package service contains the business logic layer.
package service

import (
	"context"
	"math"
	"time"

	"github.com/smarthealth/internal/ai"
	"github.com/smarthealth/internal/classifier"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/metrics"
	"github.com/smarthealth/pkg/sanitizer"
	"go.uber.org/zap"
)

// User-facing failure messages.
const (
	MsgTimeout         = "Analysis timed out. Please try again."
	MsgModelFailed     = "Model processing failed. Please ensure Ollama is running with the llava model."
	MsgImageFailed     = "Image analysis failed. Please ensure Ollama is running with the llava model installed."
	MsgModelWorking    = "Ollama is working correctly!"
	MsgModelCheckFails = "Please ensure Ollama is running with the llava model installed. Run: ollama run llava"
)

// Result sources.
const (
	SourceModel      = "model"
	SourceClassifier = "classifier"
	SourceFallback   = "fallback"
)

// Endpoint labels used for metrics.
const (
	endpointSymptoms      = "symptoms"
	endpointQuickSymptoms = "symptoms_simple"
	endpointImage         = "image"
	endpointReport        = "test_report"
	endpointFastReport    = "test_report_fast"
)

// Recorder persists completed analyses.
type Recorder interface {
	AddAnalysis(ctx context.Context, rec domain.HealthAnalysisRecord) domain.HealthAnalysisRecord
}

// AnalyzerConfig contains configuration for the Analyzer.
type AnalyzerConfig struct {
	MaxSymptoms      int
	MaxSymptomLength int

	// RecordAnalyses stores successful symptom and image analyses through the Recorder.
	RecordAnalyses bool
}

// Analyzer orchestrates the analysis pipeline: prompt, model call, parse or
// classify, envelope, record.
type Analyzer struct {
	client     ai.Client
	prompts    ai.PromptBuilder
	validator  ai.ResponseValidator
	classifier *classifier.Classifier
	sanitizer  *sanitizer.Sanitizer
	recorder   Recorder
	config     AnalyzerConfig
	metrics    *metrics.Metrics
	now        func() time.Time
	logger     *zap.Logger
}

// NewAnalyzer creates a new Analyzer with all dependencies. recorder may be nil.
func NewAnalyzer(
	client ai.Client,
	prompts ai.PromptBuilder,
	validator ai.ResponseValidator,
	cls *classifier.Classifier,
	san *sanitizer.Sanitizer,
	recorder Recorder,
	config AnalyzerConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Analyzer {
	return &Analyzer{
		client:     client,
		prompts:    prompts,
		validator:  validator,
		classifier: cls,
		sanitizer:  san,
		recorder:   recorder,
		config:     config,
		metrics:    m,
		now:        time.Now,
		logger:     logger.Named("analyzer"),
	}
}

// AnalyzeSymptoms asks the model for a JSON analysis. When the reply cannot
// be parsed or validated the raw text goes through the classifier instead.
// Model failures produce an unsuccessful envelope, not an error; the only
// error returned is ErrNoSymptoms.
func (a *Analyzer) AnalyzeSymptoms(ctx context.Context, symptoms []string) (*domain.AnalysisEnvelope, error) {
	cleaned, err := a.cleanSymptoms(symptoms)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	a.logger.Debug("starting symptom analysis", zap.Strings("symptoms", a.sanitizer.MaskList(cleaned)))

	resp, err := a.client.Generate(ctx, ai.Request{
		Kind:   ai.KindSymptoms,
		Prompt: a.prompts.SymptomPrompt(cleaned),
	})
	if err != nil {
		return a.failed(endpointSymptoms, err, MsgModelFailed, startTime), nil
	}

	result, source := a.parseOrClassify(resp.Text, cleaned)

	a.logger.Info("symptom analysis completed",
		zap.String("condition", result.Condition),
		zap.String("severity", string(result.Severity)),
		zap.String("source", source),
		zap.Duration("duration", time.Since(startTime)),
	)

	a.record(ctx, domain.AnalysisSymptom, result)
	a.metrics.ObserveAnalysis(endpointSymptoms, source, true)
	return &domain.AnalysisEnvelope{Success: true, Analysis: result, Source: source}, nil
}

// AnalyzeSymptomsQuick asks for free text and always classifies it.
func (a *Analyzer) AnalyzeSymptomsQuick(ctx context.Context, symptoms []string) (*domain.AnalysisEnvelope, error) {
	cleaned, err := a.cleanSymptoms(symptoms)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	resp, err := a.client.Generate(ctx, ai.Request{
		Kind:   ai.KindQuickSymptoms,
		Prompt: a.prompts.QuickSymptomPrompt(cleaned),
	})
	if err != nil {
		return a.failed(endpointQuickSymptoms, err, MsgModelFailed, startTime), nil
	}

	result := a.classifier.Classify(resp.Text, cleaned)

	a.logger.Info("quick symptom analysis completed",
		zap.String("condition", result.Condition),
		zap.Duration("duration", time.Since(startTime)),
	)

	a.record(ctx, domain.AnalysisSymptom, result)
	a.metrics.ObserveAnalysis(endpointQuickSymptoms, SourceClassifier, true)
	return &domain.AnalysisEnvelope{Success: true, Analysis: result, Source: SourceClassifier}, nil
}

// CheckModel sends the ping prompt and reports what the model answered.
func (a *Analyzer) CheckModel(ctx context.Context) *domain.ModelStatus {
	resp, err := a.client.Generate(ctx, ai.Request{Kind: ai.KindPing, Prompt: ai.PingPrompt})
	if err != nil {
		a.logger.Warn("model check failed", zap.Error(err))
		return &domain.ModelStatus{
			Success: false,
			Message: MsgModelCheckFails,
			Error:   err.Error(),
		}
	}
	return &domain.ModelStatus{
		Success:  true,
		Message:  MsgModelWorking,
		Response: resp.Text,
		Model:    resp.Model,
	}
}

func (a *Analyzer) cleanSymptoms(symptoms []string) ([]string, error) {
	cleaned := sanitizer.Symptoms(symptoms, a.config.MaxSymptoms, a.config.MaxSymptomLength)
	if sanitizer.IsEmpty(cleaned) {
		return nil, domain.WrapError("validate_symptoms", domain.ErrNoSymptoms, domain.KindInput)
	}
	if len(cleaned) < len(symptoms) {
		a.logger.Debug("symptom list trimmed", zap.Int("received", len(symptoms)), zap.Int("kept", len(cleaned)))
	}
	return cleaned, nil
}

// parseOrClassify prefers the model's JSON and falls back to the classifier.
func (a *Analyzer) parseOrClassify(text string, symptoms []string) (*domain.AnalysisResult, string) {
	result, err := ai.ParseAnalysis(text)
	if err == nil {
		err = a.validator.Validate(result)
	}
	if err != nil {
		a.logger.Debug("model reply not usable as JSON, classifying text",
			zap.Error(err),
			zap.String("response", a.sanitizer.Mask(text)),
		)
		return a.classifier.Classify(text, symptoms), SourceClassifier
	}
	return ai.Normalize(result, symptoms), SourceModel
}

// failed builds the unsuccessful envelope for a model error.
func (a *Analyzer) failed(endpoint string, err error, msg string, startTime time.Time) *domain.AnalysisEnvelope {
	if domain.IsTimeout(err) {
		msg = MsgTimeout
	}
	a.logger.Error("model call failed",
		zap.String("endpoint", endpoint),
		zap.Error(err),
		zap.Duration("duration", time.Since(startTime)),
	)
	a.metrics.ObserveAnalysis(endpoint, "", false)
	return &domain.AnalysisEnvelope{Success: false, Error: msg}
}

func (a *Analyzer) record(ctx context.Context, kind domain.AnalysisType, result *domain.AnalysisResult) {
	if a.recorder == nil || !a.config.RecordAnalyses {
		return
	}
	rec := a.recorder.AddAnalysis(ctx, domain.HealthAnalysisRecord{
		Type:            kind,
		Date:            a.now().Format(domain.DateLayout),
		Result:          result.Condition,
		Confidence:      int(math.Round(float64(result.Probability.Clamp()))),
		Severity:        result.Severity.RecordSeverity(),
		Symptoms:        result.Symptoms,
		Description:     result.Description,
		Recommendations: result.Recommendations,
	})
	a.logger.Debug("analysis recorded", zap.String("id", rec.ID))
}
