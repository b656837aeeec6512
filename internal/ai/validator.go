package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smarthealth/internal/domain"
)

// MaxRecommendations caps the recommendations kept from a model reply.
const MaxRecommendations = 5

// FallbackRecommendations replace an empty recommendation list.
var FallbackRecommendations = []string{
	"Consult with a healthcare provider for proper diagnosis",
	"Monitor symptoms for any changes",
	"Keep track of symptom severity",
}

// DefaultCareGuidance replaces an empty whenToSeekCare.
const DefaultCareGuidance = "If symptoms worsen or persist, seek medical attention"

// DefaultValidator implements ResponseValidator.
type DefaultValidator struct{}

// NewDefaultValidator creates a new response validator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// Validate requires a parsed result with a condition. Everything else is
// repaired by Normalize.
func (v *DefaultValidator) Validate(result *domain.AnalysisResult) error {
	if result == nil {
		return domain.WrapError("validate", fmt.Errorf("%w: result is nil", domain.ErrInvalidModelResponse), domain.KindDependency)
	}

	if strings.TrimSpace(result.Condition) == "" {
		return domain.WrapError("validate_condition",
			fmt.Errorf("%w: condition is required", domain.ErrInvalidModelResponse), domain.KindDependency)
	}

	return nil
}

// modelAnalysis accepts the field spellings models use for the same value.
type modelAnalysis struct {
	domain.AnalysisResult
	Confidence *domain.Percent `json:"confidence"`
}

// ParseAnalysis extracts the first JSON object from model text and decodes it.
// Both "probability" and "confidence" are accepted.
func ParseAnalysis(text string) (*domain.AnalysisResult, error) {
	jsonContent := extractJSON(text)
	if jsonContent == "" {
		return nil, domain.WrapError("extract_json", domain.ErrInvalidModelResponse, domain.KindDependency)
	}

	var parsed modelAnalysis
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, domain.WrapError("unmarshal_result",
			fmt.Errorf("%w: %v", domain.ErrInvalidModelResponse, err), domain.KindDependency)
	}

	result := parsed.AnalysisResult
	if result.Probability == 0 && parsed.Confidence != nil {
		result.Probability = *parsed.Confidence
	}

	return &result, nil
}

// Normalize clamps probability, repairs severity, trims and caps
// recommendations and fills empty fields. symptoms replaces an empty symptom list.
func Normalize(result *domain.AnalysisResult, symptoms []string) *domain.AnalysisResult {
	result.Condition = strings.TrimSpace(result.Condition)
	result.Probability = result.Probability.Clamp()
	result.Severity = domain.ParseSeverity(string(result.Severity))

	recs := make([]string, 0, len(result.Recommendations))
	for _, r := range result.Recommendations {
		if r = strings.TrimSpace(r); r != "" {
			recs = append(recs, r)
		}
	}
	if len(recs) == 0 {
		recs = append(recs, FallbackRecommendations...)
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	result.Recommendations = recs

	if len(result.Symptoms) == 0 {
		result.Symptoms = append([]string(nil), symptoms...)
	}
	if strings.TrimSpace(result.WhenToSeekCare) == "" {
		result.WhenToSeekCare = DefaultCareGuidance
	}

	return result
}

// extractJSON returns the first balanced {...} object in content,
// skipping braces inside strings. Markdown fences are tolerated.
func extractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed
	}

	start := strings.IndexByte(content, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				extracted := content[start : i+1]
				if json.Valid([]byte(extracted)) {
					return extracted
				}
				return ""
			}
		}
	}

	return ""
}

// truncate shortens a string to maxLen bytes for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
