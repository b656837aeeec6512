// Package ai provides the model-server client interface and implementations.
package ai

import (
	"context"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
)

// CallKind identifies the type of model call. Each kind has its own
// deadline and sampling options.
type CallKind string

const (
	KindSymptoms      CallKind = "symptoms"
	KindQuickSymptoms CallKind = "quick_symptoms"
	KindReport        CallKind = "report"
	KindFastReport    CallKind = "fast_report"
	KindImage         CallKind = "image"
	KindPing          CallKind = "ping"
)

// Options are the sampling parameters sent to the model server.
type Options struct {
	Temperature   float64 `json:"temperature"`
	NumPredict    int     `json:"num_predict"`
	TopK          int     `json:"top_k"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

// Profile is the deadline and options used for one call kind.
// A nil Options leaves sampling to the server defaults.
type Profile struct {
	Timeout time.Duration
	Options *Options
}

// Request is a single generation request.
type Request struct {
	Kind   CallKind
	Prompt string
	Images [][]byte
}

// Response is the model reply.
type Response struct {
	Model string
	Text  string
}

// Client defines the interface for model server interactions.
type Client interface {
	// Generate sends a prompt (and optional images) and returns the reply text.
	// The deadline is taken from the profile of the request kind.
	Generate(ctx context.Context, req Request) (*Response, error)
}

// PromptBuilder defines the interface for constructing model prompts.
type PromptBuilder interface {
	// SymptomPrompt asks for a JSON analysis of the symptoms.
	SymptomPrompt(symptoms []string) string

	// QuickSymptomPrompt asks for a free-text analysis of the symptoms.
	QuickSymptomPrompt(symptoms []string) string

	// ImagePrompt asks for a JSON analysis of a medical image.
	ImagePrompt(kind domain.ImageAnalysisType) string

	// ReportPrompt asks for a plain-text summary of a test report image.
	ReportPrompt() string
}

// ResponseValidator defines the interface for validating parsed model output.
type ResponseValidator interface {
	Validate(result *domain.AnalysisResult) error
}

var (
	symptomOptions = &Options{Temperature: 0.1, NumPredict: 150, TopK: 5, TopP: 0.8, RepeatPenalty: 1.0}
	reportOptions  = &Options{Temperature: 0.1, NumPredict: 150, TopK: 10, TopP: 0.9, RepeatPenalty: 1.1}
	fastOptions    = &Options{Temperature: 0.1, NumPredict: 100, TopK: 5, TopP: 0.8, RepeatPenalty: 1.0}
)

// ProfilesFromConfig builds the per-kind profiles from model configuration.
func ProfilesFromConfig(cfg *config.ModelConfig) map[CallKind]Profile {
	return map[CallKind]Profile{
		KindSymptoms:      {Timeout: cfg.SymptomTimeout, Options: symptomOptions},
		KindQuickSymptoms: {Timeout: cfg.QuickSymptomTimeout, Options: symptomOptions},
		KindReport:        {Timeout: cfg.ReportTimeout, Options: reportOptions},
		KindFastReport:    {Timeout: cfg.FastReportTimeout, Options: fastOptions},
		KindImage:         {Timeout: cfg.ImageTimeout},
		KindPing:          {Timeout: cfg.PingTimeout},
	}
}
