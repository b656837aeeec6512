package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/smarthealth/internal/domain"
	"go.uber.org/zap"
)

// Limits applied to extracted recommendations.
const (
	MaxRecommendations    = 5
	maxSentenceRecs       = 3
	minRecommendationLen  = 10
	maxRecommendationLen  = 200
	minSentenceLen        = 20
	classifierProbability = 75
)

// EmptyDescription is used when the model text is blank.
const EmptyDescription = "AI analysis completed. Please consult with a healthcare provider for proper diagnosis."

// Classifier applies ordered rule lists to free text.
type Classifier struct {
	conditions []*Rule
	severities []*Rule
	care       []*Rule
	logger     *zap.Logger
}

// New creates a classifier with the default rule lists.
func New(logger *zap.Logger) *Classifier {
	return NewWithRules(DefaultConditionRules(), DefaultSeverityRules(), DefaultCareRules(), logger)
}

// NewWithRules creates a classifier with custom rule lists.
func NewWithRules(conditions, severities, care []*Rule, logger *zap.Logger) *Classifier {
	return &Classifier{
		conditions: conditions,
		severities: severities,
		care:       care,
		logger:     logger.Named("classifier"),
	}
}

// Classify builds an analysis result from model text and the submitted symptoms.
// Probability is a constant; it is not derived from the text.
func (c *Classifier) Classify(text string, symptoms []string) *domain.AnalysisResult {
	description := text
	if strings.TrimSpace(description) == "" {
		description = EmptyDescription
	}

	result := &domain.AnalysisResult{
		Condition:       c.Condition(text),
		Probability:     classifierProbability,
		Severity:        c.Severity(text),
		Description:     description,
		Symptoms:        append([]string(nil), symptoms...),
		Recommendations: Recommendations(text),
		WhenToSeekCare:  c.CareGuidance(text),
	}

	c.logger.Debug("text classified",
		zap.String("condition", result.Condition),
		zap.String("severity", string(result.Severity)),
		zap.Int("recommendations", len(result.Recommendations)),
	)

	return result
}

// Condition returns the label of the first matching condition rule.
func (c *Classifier) Condition(text string) string {
	return firstMatch(c.conditions, text, DefaultCondition)
}

// Severity returns severe, mild or the moderate default.
func (c *Classifier) Severity(text string) domain.Severity {
	return domain.ParseSeverity(firstMatch(c.severities, text, string(domain.SeverityModerate)))
}

// CareGuidance returns the care-seeking phrase for the text.
func (c *Classifier) CareGuidance(text string) string {
	return firstMatch(c.care, text, CareDefault)
}

// Recommendations extracts up to five recommendation lines. When no line
// qualifies it falls back to up to three advisory sentences, then to the
// fixed fallback list. The result is never empty.
func Recommendations(text string) []string {
	recs := recommendationLines(text)
	if len(recs) == 0 {
		recs = recommendationSentences(text)
	}
	if len(recs) == 0 {
		recs = append([]string(nil), FallbackRecommendations...)
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}

func recommendationLines(text string) []string {
	var recs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !containsAny(strings.ToLower(line), recommendationKeywords) {
			continue
		}

		rec := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		rec = numberedPrefix.ReplaceAllString(rec, "")

		n := utf8.RuneCountInString(rec)
		if n > minRecommendationLen && n < maxRecommendationLen {
			recs = append(recs, rec)
		}
	}
	return recs
}

func recommendationSentences(text string) []string {
	var recs []string
	for _, sentence := range sentenceBoundary.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if utf8.RuneCountInString(sentence) <= minSentenceLen {
			continue
		}
		if containsAny(strings.ToLower(sentence), sentenceKeywords) {
			recs = append(recs, sentence)
			if len(recs) >= maxSentenceRecs {
				break
			}
		}
	}
	return recs
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
