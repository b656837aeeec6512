// Package sanitizer provides unit tests for text masking.
package sanitizer

import (
	"strings"
	"testing"
)

func TestSanitizer_Mask(t *testing.T) {
	s := New(10000)

	tests := []struct {
		name             string
		input            string
		shouldContain    []string
		shouldNotContain []string
	}{
		{
			name:             "mask email",
			input:            "Contact sarah.johnson@example.com about results",
			shouldContain:    []string{"Contact", "[REDACTED]"},
			shouldNotContain: []string{"sarah.johnson@example.com"},
		},
		{
			name:             "mask phone",
			input:            "Emergency contact phone +1-555-0123 (primary care)",
			shouldNotContain: []string{"555-0123"},
		},
		{
			name:             "mask ssn",
			input:            "SSN 123-45-6789 on file",
			shouldNotContain: []string{"123-45-6789"},
		},
		{
			name:             "mask medical record number keeps label",
			input:            "MRN: A12345678 admitted",
			shouldContain:    []string{"MRN:[REDACTED]"},
			shouldNotContain: []string{"A12345678"},
		},
		{
			name:             "mask date of birth",
			input:            "DOB: 04/12/1990",
			shouldNotContain: []string{"04/12/1990"},
		},
		{
			name:          "preserve clinical text",
			input:         "Patient reports mild fever and headache for 3 days",
			shouldContain: []string{"mild fever", "headache", "3 days"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Mask(tt.input)

			for _, want := range tt.shouldContain {
				if !strings.Contains(result, want) {
					t.Errorf("result should contain %q, got: %s", want, result)
				}
			}
			for _, notWant := range tt.shouldNotContain {
				if strings.Contains(result, notWant) {
					t.Errorf("result should not contain %q, got: %s", notWant, result)
				}
			}
		})
	}
}

func TestSanitizer_MaskTruncates(t *testing.T) {
	s := New(20)

	result := s.Mask(strings.Repeat("a", 100))
	if len(result) != 23 {
		t.Errorf("expected 20 chars plus ellipsis, got %d", len(result))
	}
}

func TestSymptoms(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		maxCount int
		maxLen   int
		want     []string
	}{
		{
			name:     "trims and drops blanks",
			input:    []string{"  cough ", "", "   ", "fever"},
			maxCount: 10,
			maxLen:   50,
			want:     []string{"cough", "fever"},
		},
		{
			name:     "collapses inner whitespace",
			input:    []string{"sore \t  throat"},
			maxCount: 10,
			maxLen:   50,
			want:     []string{"sore throat"},
		},
		{
			name:     "caps count",
			input:    []string{"a", "b", "c"},
			maxCount: 2,
			maxLen:   50,
			want:     []string{"a", "b"},
		},
		{
			name:     "caps length",
			input:    []string{"abcdefgh"},
			maxCount: 5,
			maxLen:   3,
			want:     []string{"abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Symptoms(tt.input, tt.maxCount, tt.maxLen)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Symptoms() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(nil) {
		t.Error("nil list should be empty")
	}
	if !IsEmpty([]string{" ", ""}) {
		t.Error("blank entries should be empty")
	}
	if IsEmpty([]string{"", "cough"}) {
		t.Error("list with a symptom should not be empty")
	}
}
