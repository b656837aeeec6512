// Package sanitizer normalises user-supplied symptom lists and masks
// personal data in free text before it is logged.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sanitizer masks personal data and enforces a size limit on free text.
type Sanitizer struct {
	patterns []*regexp.Regexp
	maxSize  int
}

// Pattern definitions for personal data that shows up in health text.
var defaultPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),

	// US social security numbers
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),

	// Phone numbers: +1-555-0123, (555) 123-4567, 555.123.4567
	regexp.MustCompile(`\+?\d{0,3}[\s.-]?\(?\d{3}\)?[\s.-]\d{3}[\s.-]?\d{0,4}\b`),

	// Medical record and patient identifiers
	regexp.MustCompile(`(?i)\b(mrn|patient[\s_-]?id|record[\s_-]?(no|number))\s*[:#=]?\s*[a-z0-9-]{4,}`),

	// Dates of birth
	regexp.MustCompile(`(?i)\b(dob|date of birth)\s*[:=]?\s*\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}`),
}

// New creates a new Sanitizer with default patterns.
func New(maxSize int) *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns,
		maxSize:  maxSize,
	}
}

// NewWithPatterns creates a Sanitizer with custom patterns.
func NewWithPatterns(maxSize int, patterns []*regexp.Regexp) *Sanitizer {
	return &Sanitizer{
		patterns: patterns,
		maxSize:  maxSize,
	}
}

// Mask trims text, truncates it to the size limit and redacts personal data.
func (s *Sanitizer) Mask(text string) string {
	text = strings.TrimSpace(text)

	if s.maxSize > 0 && len(text) > s.maxSize {
		text = truncateRunes(text, s.maxSize) + "..."
	}

	for _, pattern := range s.patterns {
		text = pattern.ReplaceAllStringFunc(text, maskValue)
	}

	return text
}

// maskValue keeps a label prefix ("MRN:") and redacts the value.
func maskValue(match string) string {
	if idx := strings.IndexAny(match, ":#="); idx != -1 {
		return match[:idx+1] + "[REDACTED]"
	}
	return "[REDACTED]"
}

// MaskList masks every entry of a list.
func (s *Sanitizer) MaskList(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = s.Mask(item)
	}
	return out
}

// Symptoms trims entries, drops blanks, caps each entry at maxLen runes and
// the list at maxCount entries. Order is preserved.
func Symptoms(symptoms []string, maxCount, maxLen int) []string {
	out := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		sym = strings.Join(strings.Fields(sym), " ")
		if sym == "" {
			continue
		}
		if maxLen > 0 {
			sym = truncateRunes(sym, maxLen)
		}
		out = append(out, sym)
		if maxCount > 0 && len(out) == maxCount {
			break
		}
	}
	return out
}

// IsEmpty checks if the list has no usable entry.
func IsEmpty(symptoms []string) bool {
	for _, sym := range symptoms {
		if strings.TrimSpace(sym) != "" {
			return false
		}
	}
	return true
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
