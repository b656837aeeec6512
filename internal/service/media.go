package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smarthealth/internal/ai"
	"github.com/smarthealth/internal/domain"
	"go.uber.org/zap"
)

// Fast report messages.
const (
	MsgFastTimeout     = "Fast analysis timed out. Please try again."
	MsgFastModelFailed = "Fast model processing failed. Please ensure Ollama is running with the llava model."
)

// Image result limits and fallback.
const (
	ImageFallbackCondition   = "Image Analysis"
	ImageFallbackProbability = 75
	MaxImageDescriptionLen   = 500
	MaxImageRecommendations  = 3
)

// ImageFallbackRecommendations replace an unusable or empty list in image results.
var ImageFallbackRecommendations = []string{
	"Consult with a healthcare provider for proper diagnosis",
	"Monitor any changes in the condition",
	"Keep the area clean and protected",
}

// AnalyzeImage sends the image with the prompt for kind and returns a single
// result. A reply without usable JSON yields the generic image result.
func (a *Analyzer) AnalyzeImage(ctx context.Context, kind domain.ImageAnalysisType, image []byte) *domain.AnalysisEnvelope {
	startTime := time.Now()
	a.logger.Debug("starting image analysis", zap.String("analysis_type", string(kind)), zap.Int("image_bytes", len(image)))

	resp, err := a.client.Generate(ctx, ai.Request{
		Kind:   ai.KindImage,
		Prompt: a.prompts.ImagePrompt(kind),
		Images: [][]byte{image},
	})
	if err != nil {
		return a.failed(endpointImage, err, MsgImageFailed, startTime)
	}

	result, source := a.imageResult(resp.Text)

	a.logger.Info("image analysis completed",
		zap.String("analysis_type", string(kind)),
		zap.String("condition", result.Condition),
		zap.String("source", source),
		zap.Duration("duration", time.Since(startTime)),
	)

	a.record(ctx, domain.AnalysisImage, result)
	a.metrics.ObserveAnalysis(endpointImage, source, true)
	return &domain.AnalysisEnvelope{Success: true, Analysis: result, Source: source}
}

func (a *Analyzer) imageResult(text string) (*domain.AnalysisResult, string) {
	result, err := ai.ParseAnalysis(text)
	if err == nil {
		err = a.validator.Validate(result)
	}

	source := SourceModel
	if err != nil {
		a.logger.Debug("image reply not usable as JSON", zap.Error(err), zap.String("response", a.sanitizer.Mask(text)))
		description := text
		if strings.TrimSpace(description) == "" {
			description = "AI analysis completed"
		}
		result = &domain.AnalysisResult{
			Condition:   ImageFallbackCondition,
			Probability: ImageFallbackProbability,
			Severity:    domain.SeverityModerate,
			Description: description,
		}
		source = SourceFallback
	}

	if len(result.Recommendations) == 0 {
		result.Recommendations = append([]string(nil), ImageFallbackRecommendations...)
	}
	result = ai.Normalize(result, nil)

	if len(result.Recommendations) > MaxImageRecommendations {
		result.Recommendations = result.Recommendations[:MaxImageRecommendations]
	}
	if strings.TrimSpace(result.Description) == "" {
		result.Description = "Analysis completed"
	}
	if utf8.RuneCountInString(result.Description) > MaxImageDescriptionLen {
		result.Description = string([]rune(result.Description)[:MaxImageDescriptionLen])
	}
	if result.Symptoms == nil {
		result.Symptoms = []string{}
	}
	return result, source
}

// AnalyzeTestReport sends a report image and returns the reply as summary
// text. fast selects the shorter profile.
func (a *Analyzer) AnalyzeTestReport(ctx context.Context, report []byte, fast bool) *domain.TestReportEnvelope {
	kind, endpoint := ai.KindReport, endpointReport
	timeoutMsg, failMsg := MsgTimeout, MsgModelFailed
	if fast {
		kind, endpoint = ai.KindFastReport, endpointFastReport
		timeoutMsg, failMsg = MsgFastTimeout, MsgFastModelFailed
	}

	startTime := time.Now()
	resp, err := a.client.Generate(ctx, ai.Request{
		Kind:   kind,
		Prompt: a.prompts.ReportPrompt(),
		Images: [][]byte{report},
	})
	if err != nil {
		msg := failMsg
		if domain.IsTimeout(err) {
			msg = timeoutMsg
		}
		a.logger.Error("test report analysis failed",
			zap.Bool("fast", fast),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)),
		)
		a.metrics.ObserveAnalysis(endpoint, "", false)
		return &domain.TestReportEnvelope{Success: false, Error: msg}
	}

	a.logger.Info("test report analysis completed",
		zap.Bool("fast", fast),
		zap.Int("response_length", len(resp.Text)),
		zap.Duration("duration", time.Since(startTime)),
	)
	a.metrics.ObserveAnalysis(endpoint, SourceModel, true)

	return &domain.TestReportEnvelope{
		Success: true,
		Analysis: &domain.TestReportResult{
			TestParameters:  []domain.TestParameter{},
			Summary:         resp.Text,
			Analysis:        resp.Text,
			Abnormalities:   []string{},
			Recommendations: []string{},
		},
	}
}
