package labref

import (
	"testing"

	"github.com/smarthealth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTable(t *testing.T) *Table {
	t.Helper()
	table, err := Default()
	require.NoError(t, err)
	return table
}

func TestLookup(t *testing.T) {
	table := loadTable(t)

	tests := []struct {
		name     string
		input    string
		wantKey  string
		wantName string
	}{
		{name: "exact key", input: "hemoglobin", wantKey: "hemoglobin", wantName: "Hemoglobin"},
		{name: "abbreviation has its own entry", input: "HGB", wantKey: "hgb", wantName: "Hemoglobin"},
		{name: "spaces and case", input: "Total Cholesterol", wantKey: "total_cholesterol", wantName: "Total Cholesterol"},
		{name: "hyphen", input: "free-t4", wantKey: "free_t4", wantName: "Free T4"},
		{name: "glucose alias", input: "Blood Sugar", wantKey: "glucose", wantName: "Glucose"},
		{name: "leukocytes alias", input: "leukocytes", wantKey: "white_blood_cells", wantName: "White Blood Cells"},
		{name: "misspelling", input: "hemoglobn", wantKey: "hemoglobin", wantName: "Hemoglobin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, ok := table.Lookup(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.wantKey, test.Key)
			assert.Equal(t, tt.wantName, test.Name)
		})
	}

	_, ok := table.Lookup("unobtainium")
	assert.False(t, ok)
	_, ok = table.Lookup("  ")
	assert.False(t, ok)
}

func TestEvaluate(t *testing.T) {
	table := loadTable(t)

	tests := []struct {
		name         string
		test         string
		value        float64
		gender       string
		wantStatus   string
		wantCritical bool
		wantBands    []string
	}{
		{name: "hemoglobin low", test: "hemoglobin", value: 10.0, wantStatus: StatusLow},
		{name: "hemoglobin normal", test: "hemoglobin", value: 13.0, wantStatus: StatusNormal},
		{name: "hemoglobin male range", test: "hemoglobin", value: 13.0, gender: "Male", wantStatus: StatusLow},
		{name: "hemoglobin critical", test: "hemoglobin", value: 6.5, wantStatus: StatusLow, wantCritical: true},
		{name: "upper bound only", test: "total_cholesterol", value: 250, wantStatus: StatusHigh, wantBands: []string{"high"}},
		{name: "lower bound only", test: "hdl", value: 35, wantStatus: StatusLow, wantBands: []string{"low"}},
		{name: "greater or equal", test: "egfr", value: 95, wantStatus: StatusNormal, wantBands: []string{"stage_1"}},
		{name: "glucose bands", test: "glucose", value: 130, wantStatus: StatusHigh, wantBands: []string{"diabetes"}},
		{name: "range edge is normal", test: "glucose", value: 70, wantStatus: StatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := table.Evaluate(tt.test, tt.value, tt.gender)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, ev.Status)
			assert.Equal(t, tt.wantCritical, ev.Critical)
			assert.Equal(t, tt.wantBands, ev.Bands)
		})
	}

	_, err := table.Evaluate("unobtainium", 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNamesAndCategories(t *testing.T) {
	table := loadTable(t)

	names := table.Names()
	assert.Contains(t, names, "troponin")
	assert.IsIncreasing(t, names)

	thyroid := table.ByCategory("thyroid")
	require.NotEmpty(t, thyroid)
	for _, test := range thyroid {
		assert.Equal(t, "Thyroid", test.Category)
	}
}

func TestParse_RejectsBadRange(t *testing.T) {
	_, err := Parse([]byte(`tests:
  broken:
    name: "Broken"
    normal_range: "about ten"
`))
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in     string
		wantOp string
		lo, hi float64
	}{
		{in: "12.0-15.5", wantOp: opBetween, lo: 12, hi: 15.5},
		{in: "<200", wantOp: opLess, lo: 200, hi: 200},
		{in: "> 40", wantOp: opGreater, lo: 40, hi: 40},
		{in: "≥90", wantOp: opGreaterEq, lo: 90, hi: 90},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			op, lo, hi, err := parseRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}
