// Package domain contains the core domain models and types.
// These models represent the request, result and record contracts and are
// independent of any infrastructure concerns.
package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Severity is the coarse severity of an analysis result.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// IsValid checks if the severity value is one of the allowed values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

// ParseSeverity normalises free-form severity text, defaulting to moderate.
func ParseSeverity(s string) Severity {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.IsValid() {
		return sev
	}
	return SeverityModerate
}

// RecordSeverity converts an analysis severity into the persisted scale.
func (s Severity) RecordSeverity() RecordSeverity {
	switch s {
	case SeverityMild:
		return RecordSeverityLow
	case SeveritySevere:
		return RecordSeverityHigh
	default:
		return RecordSeverityMedium
	}
}

// Percent is a 0-100 value that also decodes from strings such as "75%".
type Percent float64

// UnmarshalJSON accepts numbers and numeric strings.
func (p *Percent) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Percent(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Percent(f)
	return nil
}

// Clamp bounds the value to 0-100.
func (p Percent) Clamp() Percent {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// SymptomRequest is the body of the symptom analysis endpoints.
type SymptomRequest struct {
	Symptoms []string `json:"symptoms"`
}

// AnalysisResult is the fixed-shape result of a symptom or image analysis.
type AnalysisResult struct {
	Condition       string   `json:"condition"`
	Probability     Percent  `json:"probability"`
	Severity        Severity `json:"severity"`
	Description     string   `json:"description"`
	Symptoms        []string `json:"symptoms"`
	Recommendations []string `json:"recommendations"`
	WhenToSeekCare  string   `json:"whenToSeekCare"`
}

// AnalysisEnvelope wraps an analysis result or an error message.
// Exactly one of Analysis and Error is set.
type AnalysisEnvelope struct {
	Success  bool            `json:"success"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`

	// Source tells whether the result came from the model's JSON or the classifier.
	Source string `json:"source,omitempty"`
}

// ImageAnalysisType selects the image prompt.
type ImageAnalysisType string

const (
	ImageXRay         ImageAnalysisType = "xray"
	ImageBoneFracture ImageAnalysisType = "bone_fracture"
	ImageBrainTumor   ImageAnalysisType = "brain_tumor"
)

// ParseImageAnalysisType maps unknown values to xray.
func ParseImageAnalysisType(s string) ImageAnalysisType {
	switch t := ImageAnalysisType(strings.ToLower(strings.TrimSpace(s))); t {
	case ImageXRay, ImageBoneFracture, ImageBrainTumor:
		return t
	default:
		return ImageXRay
	}
}

// TestParameter is a single measured value in a test report.
type TestParameter struct {
	Parameter      string `json:"parameter"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	Status         string `json:"status"`
	ReferenceRange string `json:"reference_range,omitempty"`
}

// TestReportResult is the looser-shaped result of a test report analysis.
type TestReportResult struct {
	TestParameters  []TestParameter `json:"test_parameters"`
	Summary         string          `json:"summary,omitempty"`
	Analysis        string          `json:"analysis,omitempty"`
	Abnormalities   []string        `json:"abnormalities"`
	Recommendations []string        `json:"recommendations"`
}

// TestReportEnvelope wraps a test report result or an error message.
type TestReportEnvelope struct {
	Success  bool              `json:"success"`
	Analysis *TestReportResult `json:"analysis,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// PredictionEnvelope wraps the output of the prediction subprocess.
type PredictionEnvelope struct {
	Success     bool             `json:"success"`
	Predictions []AnalysisResult `json:"predictions,omitempty"`
	Error       string           `json:"error,omitempty"`
	Details     string           `json:"details,omitempty"`
}

// OCRTestResult is one extracted lab value reported by the OCR service.
type OCRTestResult struct {
	TestName    string   `json:"test_name"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit,omitempty"`
	NormalRange string   `json:"normal_range,omitempty"`
	Status      string   `json:"status,omitempty"`
	Category    string   `json:"category,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// OCRReport is the structured reply of the OCR service.
type OCRReport struct {
	Success              bool            `json:"success"`
	Filename             string          `json:"filename,omitempty"`
	FileType             string          `json:"file_type,omitempty"`
	TotalTestsExtracted  int             `json:"total_tests_extracted"`
	AbnormalTests        int             `json:"abnormal_tests"`
	Severity             string          `json:"severity,omitempty"`
	Confidence           float64         `json:"confidence"`
	Analysis             string          `json:"analysis,omitempty"`
	Recommendations      []string        `json:"recommendations"`
	TestResults          []OCRTestResult `json:"test_results"`
	ExtractedTextPreview string          `json:"extracted_text_preview,omitempty"`
	Error                string          `json:"error,omitempty"`
}

// OCRTextResult is the reply of the OCR script path.
type OCRTextResult struct {
	CleanedText string `json:"cleaned_text"`
	Error       string `json:"error,omitempty"`
}

// ModelStatus is the reply of the model-server ping.
type ModelStatus struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response string `json:"response,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}
