// Package labref holds laboratory test reference ranges and evaluates
// measured values against them.
package labref

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/smarthealth/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

// Value statuses.
const (
	StatusLow    = "low"
	StatusNormal = "normal"
	StatusHigh   = "high"
)

// similarityThreshold is the minimum name similarity for an inexact match.
const similarityThreshold = 0.8

// Test is one reference entry.
type Test struct {
	Key            string            `yaml:"-" json:"key"`
	Name           string            `yaml:"name" json:"name"`
	Category       string            `yaml:"category" json:"category"`
	Unit           string            `yaml:"unit" json:"unit"`
	NormalRange    string            `yaml:"normal_range" json:"normal_range"`
	CriticalLow    string            `yaml:"critical_low,omitempty" json:"critical_low,omitempty"`
	CriticalHigh   string            `yaml:"critical_high,omitempty" json:"critical_high,omitempty"`
	GenderSpecific map[string]string `yaml:"gender_specific,omitempty" json:"gender_specific,omitempty"`
	Bands          map[string]string `yaml:"bands,omitempty" json:"bands,omitempty"`
	Aliases        []string          `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Evaluation is the result of comparing a value with its reference range.
type Evaluation struct {
	TestName    string   `json:"test_name" yaml:"test_name"`
	Key         string   `json:"key" yaml:"key"`
	Value       float64  `json:"value" yaml:"value"`
	Unit        string   `json:"unit" yaml:"unit"`
	NormalRange string   `json:"normal_range" yaml:"normal_range"`
	Status      string   `json:"status" yaml:"status"`
	Category    string   `json:"category" yaml:"category"`
	Critical    bool     `json:"critical" yaml:"critical"`
	Bands       []string `json:"bands,omitempty" yaml:"bands,omitempty"`
}

type document struct {
	Tests map[string]*Test `yaml:"tests"`
}

// Table is an immutable set of reference entries.
type Table struct {
	tests   map[string]*Test
	aliases map[string]string
	keys    []string
}

// Parse decodes a YAML reference table.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode reference table: %w", err)
	}

	t := &Table{
		tests:   make(map[string]*Test, len(doc.Tests)),
		aliases: make(map[string]string),
	}
	for key, test := range doc.Tests {
		if test == nil {
			continue
		}
		if _, _, _, err := parseRange(test.NormalRange); err != nil {
			return nil, fmt.Errorf("test %s: %w", key, err)
		}
		test.Key = key
		t.tests[key] = test
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)

	// Aliases never shadow a key; the first entry in key order wins.
	for _, key := range t.keys {
		for _, alias := range t.tests[key].Aliases {
			a := Normalize(alias)
			if _, isKey := t.tests[a]; isKey {
				continue
			}
			if _, taken := t.aliases[a]; !taken {
				t.aliases[a] = key
			}
		}
	}
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded reference table.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(referenceYAML)
	})
	return defaultTable, defaultErr
}

// Normalize lowercases a test name and replaces spaces and hyphens with underscores.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, " ", "_")
	return strings.ReplaceAll(n, "-", "_")
}

// Lookup finds a test by key, then alias, then by the closest key name.
func (t *Table) Lookup(name string) (*Test, bool) {
	n := Normalize(name)
	if n == "" {
		return nil, false
	}
	if test, ok := t.tests[n]; ok {
		return test, true
	}
	if key, ok := t.aliases[n]; ok {
		return t.tests[key], true
	}

	best, bestScore := "", 0.0
	for _, key := range t.keys {
		if s := similarity(n, key); s > bestScore {
			best, bestScore = key, s
		}
	}
	if bestScore >= similarityThreshold {
		return t.tests[best], true
	}
	return nil, false
}

// Names returns all test keys in sorted order.
func (t *Table) Names() []string {
	return append([]string(nil), t.keys...)
}

// ByCategory returns the tests of a category, matched case-insensitively.
func (t *Table) ByCategory(category string) []*Test {
	var out []*Test
	for _, key := range t.keys {
		if strings.EqualFold(t.tests[key].Category, category) {
			out = append(out, t.tests[key])
		}
	}
	return out
}

// Evaluate compares a value with the reference range of the named test.
// gender selects a gender-specific range when one exists.
func (t *Table) Evaluate(name string, value float64, gender string) (*Evaluation, error) {
	test, ok := t.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: test %q", domain.ErrNotFound, name)
	}

	normal := test.NormalRange
	if r, ok := test.GenderSpecific[strings.ToLower(strings.TrimSpace(gender))]; ok {
		normal = r
	}

	status, err := statusFor(normal, value)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		TestName:    test.Name,
		Key:         test.Key,
		Value:       value,
		Unit:        test.Unit,
		NormalRange: normal,
		Status:      status,
		Category:    test.Category,
		Critical:    within(test.CriticalLow, value) || within(test.CriticalHigh, value),
	}

	for band, r := range test.Bands {
		if within(r, value) {
			ev.Bands = append(ev.Bands, band)
		}
	}
	sort.Strings(ev.Bands)

	return ev, nil
}

// Range operators.
const (
	opLess      = "<"
	opLessEq    = "≤"
	opGreater   = ">"
	opGreaterEq = "≥"
	opBetween   = "-"
)

// parseRange splits "<x", "≤x", ">x", "≥x" or "a-b" into an operator and bounds.
func parseRange(r string) (op string, lo, hi float64, err error) {
	r = strings.TrimSpace(r)
	for _, prefix := range []string{opLessEq, opGreaterEq, opLess, opGreater} {
		if strings.HasPrefix(r, prefix) {
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(r, prefix)), 64)
			if err != nil {
				return "", 0, 0, fmt.Errorf("range %q: %w", r, err)
			}
			return prefix, v, v, nil
		}
	}

	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return "", 0, 0, fmt.Errorf("range %q: unrecognised format", r)
	}
	lo, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("range %q: %w", r, err)
	}
	hi, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("range %q: %w", r, err)
	}
	return opBetween, lo, hi, nil
}

func statusFor(normal string, v float64) (string, error) {
	op, lo, hi, err := parseRange(normal)
	if err != nil {
		return "", err
	}

	switch op {
	case opLess:
		return pick(v < lo, StatusNormal, StatusHigh), nil
	case opLessEq:
		return pick(v <= lo, StatusNormal, StatusHigh), nil
	case opGreater:
		return pick(v > lo, StatusNormal, StatusLow), nil
	case opGreaterEq:
		return pick(v >= lo, StatusNormal, StatusLow), nil
	default:
		switch {
		case v < lo:
			return StatusLow, nil
		case v > hi:
			return StatusHigh, nil
		default:
			return StatusNormal, nil
		}
	}
}

// within reports whether v falls inside range r. An empty or invalid range contains nothing.
func within(r string, v float64) bool {
	if r == "" {
		return false
	}
	op, lo, hi, err := parseRange(r)
	if err != nil {
		return false
	}
	switch op {
	case opLess:
		return v < lo
	case opLessEq:
		return v <= lo
	case opGreater:
		return v > lo
	case opGreaterEq:
		return v >= lo
	default:
		return v >= lo && v <= hi
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// similarity is 1 minus the normalised edit distance of a and b.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
