package ai

import (
	"strings"
	"testing"

	"github.com/smarthealth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidator_Validate(t *testing.T) {
	v := NewDefaultValidator()

	tests := []struct {
		name    string
		result  *domain.AnalysisResult
		wantErr bool
	}{
		{
			name:   "valid result",
			result: &domain.AnalysisResult{Condition: "Influenza", Severity: domain.SeverityMild},
		},
		{
			name:    "nil result",
			result:  nil,
			wantErr: true,
		},
		{
			name:    "blank condition",
			result:  &domain.AnalysisResult{Condition: "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.result)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidModelResponse)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantErr       bool
		wantCondition string
		wantProb      domain.Percent
	}{
		{
			name:          "pure JSON",
			content:       `{"condition":"Influenza","probability":80,"severity":"mild"}`,
			wantCondition: "Influenza",
			wantProb:      80,
		},
		{
			name:          "JSON in markdown with prose",
			content:       "Here is the analysis:\n```json\n{\"condition\":\"Migraine\",\"probability\":\"65%\"}\n```\nStay safe.",
			wantCondition: "Migraine",
			wantProb:      65,
		},
		{
			name:          "confidence instead of probability",
			content:       `{"condition":"Fracture","confidence":90}`,
			wantCondition: "Fracture",
			wantProb:      90,
		},
		{
			name:          "braces inside strings",
			content:       `Result: {"condition":"Rash {contact}","probability":50} trailing }`,
			wantCondition: "Rash {contact}",
			wantProb:      50,
		},
		{
			name:    "no JSON",
			content: "This is plain text without any JSON",
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			content: "{condition: flu}",
			wantErr: true,
		},
		{
			name:    "unterminated object",
			content: `{"condition":"Flu"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAnalysis(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidModelResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCondition, result.Condition)
			assert.Equal(t, tt.wantProb, result.Probability)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("missing recommendations get the fallback list", func(t *testing.T) {
		result := Normalize(&domain.AnalysisResult{Condition: "Flu", Severity: "MILD"}, []string{"cough"})

		assert.Equal(t, FallbackRecommendations, result.Recommendations)
		assert.Equal(t, domain.SeverityMild, result.Severity)
		assert.Equal(t, []string{"cough"}, result.Symptoms)
		assert.Equal(t, DefaultCareGuidance, result.WhenToSeekCare)
	})

	t.Run("more than five recommendations are capped", func(t *testing.T) {
		recs := strings.Split("a,b,c,d,e,f,g", ",")
		result := Normalize(&domain.AnalysisResult{Condition: "Flu", Recommendations: recs}, nil)
		assert.Equal(t, recs[:MaxRecommendations], result.Recommendations)
	})

	t.Run("probability and severity are repaired", func(t *testing.T) {
		result := Normalize(&domain.AnalysisResult{Condition: " Flu ", Probability: 140, Severity: "critical"}, nil)
		assert.Equal(t, "Flu", result.Condition)
		assert.Equal(t, domain.Percent(100), result.Probability)
		assert.Equal(t, domain.SeverityModerate, result.Severity)
	})

	t.Run("blank recommendations are dropped", func(t *testing.T) {
		result := Normalize(&domain.AnalysisResult{Condition: "Flu", Recommendations: []string{" ", "Rest"}}, nil)
		assert.Equal(t, []string{"Rest"}, result.Recommendations)
	})
}

func TestPromptBuilder(t *testing.T) {
	p, err := NewDefaultPromptBuilder()
	require.NoError(t, err)

	assert.Contains(t, p.SymptomPrompt([]string{"cough", "fever"}), "Analyze these symptoms: cough, fever")
	assert.Contains(t, p.SymptomPrompt([]string{"cough"}), `"whenToSeekCare"`)
	assert.Contains(t, p.QuickSymptomPrompt([]string{"cough"}), "Give practical, actionable advice.")
	assert.Contains(t, p.ImagePrompt(domain.ImageBrainTumor), "brain scan")
	assert.Contains(t, p.ImagePrompt("unknown"), "X-ray image for bone structure")
	assert.Contains(t, p.ReportPrompt(), "medical test report")
}
