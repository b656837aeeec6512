// Package classifier turns unstructured model text into a fixed-shape
// analysis result by keyword matching.
//
// The classifier is a best-effort heuristic. Rule lists are evaluated in
// order and the first match wins; there is no scoring and no accuracy
// guarantee.
package classifier

import (
	"regexp"
	"strings"
)

// Rule maps keywords or patterns in text to a label.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Label is the value produced when the rule matches.
	Label string

	// Keywords are substring matches against lowercased text.
	Keywords []string

	// Patterns are matched against lowercased text.
	Patterns []*regexp.Regexp
}

// Match checks if the text matches this rule.
func (r *Rule) Match(text string) bool {
	lower := strings.ToLower(text)

	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	for _, pattern := range r.Patterns {
		if pattern.MatchString(lower) {
			return true
		}
	}

	return false
}

// firstMatch returns the label of the first matching rule, or fallback.
func firstMatch(rules []*Rule, text, fallback string) string {
	for _, r := range rules {
		if r.Match(text) {
			return r.Label
		}
	}
	return fallback
}

// DefaultCondition is the label used when no condition rule matches.
const DefaultCondition = "Symptom Analysis"

// DefaultConditionRules returns the condition rules in priority order.
func DefaultConditionRules() []*Rule {
	return []*Rule{
		{ID: "cardiovascular", Label: "Cardiovascular Issue", Keywords: []string{"cardiovascular", "heart"}},
		{ID: "cancer", Label: "Possible Cancer", Keywords: []string{"cancer", "tumor"}},
		{ID: "infection", Label: "Infection", Keywords: []string{"infection"}},
		{ID: "cold_flu", Label: "Common Cold or Flu", Keywords: []string{"cold", "flu"}},
		{ID: "allergy", Label: "Allergic Reaction", Keywords: []string{"allergy"}},
		{ID: "pain", Label: "Pain or Discomfort", Keywords: []string{"pain"}},
		{ID: "fever", Label: "Fever", Keywords: []string{"fever"}},
		{ID: "covid", Label: "Possible COVID-19", Keywords: []string{"covid"}},
		{ID: "headache", Label: "Headache or Migraine", Keywords: []string{"headache"}},
		{ID: "digestive", Label: "Digestive Issue", Keywords: []string{"stomach", "digestive"}},
	}
}

// DefaultSeverityRules returns severity rules; moderate applies when none match.
func DefaultSeverityRules() []*Rule {
	return []*Rule{
		{ID: "severe", Label: "severe", Keywords: []string{"severe", "emergency", "immediate"}},
		{ID: "mild", Label: "mild", Keywords: []string{"mild", "minor"}},
	}
}

// Care guidance phrases.
const (
	CareImmediate = "Seek immediate medical attention"
	CareUrgent    = "Seek urgent medical care"
	CareWithinDay = "Seek medical attention within 24 hours"
	CareDefault   = "If symptoms worsen or persist, seek medical attention"
)

// DefaultCareRules returns care-seeking rules in priority order.
func DefaultCareRules() []*Rule {
	return []*Rule{
		{ID: "care_immediate", Label: CareImmediate, Keywords: []string{"immediate", "emergency"}},
		{ID: "care_urgent", Label: CareUrgent, Keywords: []string{"urgent", "asap"}},
		{ID: "care_24h", Label: CareWithinDay, Keywords: []string{"within 24 hours"}},
	}
}

// recommendationKeywords select recommendation-like lines.
var recommendationKeywords = []string{
	"recommend", "should", "advise", "suggest", "consult",
	"see a doctor", "medical attention", "treatment", "medication",
	"test", "monitor",
}

// sentenceKeywords select recommendation-like sentences when no line qualifies.
var sentenceKeywords = []string{"should", "recommend", "advise", "consult"}

// FallbackRecommendations is substituted when nothing can be extracted.
var FallbackRecommendations = []string{
	"Consult with a healthcare provider for proper diagnosis",
	"Monitor symptoms for any changes",
	"Keep track of symptom severity",
}

var (
	bulletPrefix     = regexp.MustCompile(`^[-•*]\s*`)
	numberedPrefix   = regexp.MustCompile(`^\d+\.\s*`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
)
