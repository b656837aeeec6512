package classifier

import (
	"strings"
	"testing"

	"github.com/smarthealth/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClassifier_Severity(t *testing.T) {
	c := New(zap.NewNop())

	tests := []struct {
		name string
		text string
		want domain.Severity
	}{
		{name: "severe keyword", text: "This looks SEVERE.", want: domain.SeveritySevere},
		{name: "emergency keyword", text: "Go to the emergency room", want: domain.SeveritySevere},
		{name: "severe wins over mild", text: "mild now but could become severe", want: domain.SeveritySevere},
		{name: "mild keyword", text: "A mild cold", want: domain.SeverityMild},
		{name: "minor keyword", text: "Only a minor irritation", want: domain.SeverityMild},
		{name: "default moderate", text: "Rest and hydrate", want: domain.SeverityModerate},
		{name: "empty text", text: "", want: domain.SeverityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Severity(tt.text))
		})
	}
}

func TestClassifier_ConditionPriority(t *testing.T) {
	c := New(zap.NewNop())

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "heart beats everything", text: "fever, flu and heart palpitations", want: "Cardiovascular Issue"},
		{name: "tumor", text: "a tumor may cause pain", want: "Possible Cancer"},
		{name: "infection before flu", text: "viral infection similar to flu", want: "Infection"},
		{name: "flu before fever", text: "likely the flu given the fever", want: "Common Cold or Flu"},
		{name: "allergy", text: "seasonal allergy", want: "Allergic Reaction"},
		{name: "pain before headache", text: "pain from a headache", want: "Pain or Discomfort"},
		{name: "fever alone", text: "high fever", want: "Fever"},
		{name: "covid", text: "possible covid exposure", want: "Possible COVID-19"},
		{name: "headache", text: "tension headache", want: "Headache or Migraine"},
		{name: "stomach", text: "upset stomach", want: "Digestive Issue"},
		{name: "no keyword", text: "nothing recognisable here", want: DefaultCondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Condition(tt.text))
		})
	}
}

func TestClassifier_FluResponse(t *testing.T) {
	c := New(zap.NewNop())
	symptoms := []string{"cough", "fever", "fatigue"}

	result := c.Classify("These symptoms are consistent with the flu. You should rest.", symptoms)

	assert.Equal(t, "Common Cold or Flu", result.Condition)
	assert.Equal(t, symptoms, result.Symptoms)
	assert.Equal(t, domain.Percent(75), result.Probability)
}

func TestClassifier_CareGuidance(t *testing.T) {
	c := New(zap.NewNop())

	tests := []struct {
		text string
		want string
	}{
		{text: "Seek immediate help", want: CareImmediate},
		{text: "this is urgent", want: CareUrgent},
		{text: "see someone asap", want: CareUrgent},
		{text: "book a visit within 24 hours", want: CareWithinDay},
		{text: "rest at home", want: CareDefault},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CareGuidance(tt.text))
		})
	}
}

func TestRecommendations(t *testing.T) {
	t.Run("bulleted lines are cleaned", func(t *testing.T) {
		text := "Assessment:\n- You should drink plenty of fluids\n2. Consult a doctor if it gets worse\n* monitor"
		recs := Recommendations(text)
		assert.Equal(t, []string{
			"You should drink plenty of fluids",
			"Consult a doctor if it gets worse",
		}, recs)
	})

	t.Run("capped at five", func(t *testing.T) {
		var lines []string
		for i := 0; i < 8; i++ {
			lines = append(lines, "You should take rest and fluids")
		}
		recs := Recommendations(strings.Join(lines, "\n"))
		assert.Len(t, recs, MaxRecommendations)
	})

	t.Run("sentence fallback for overlong line", func(t *testing.T) {
		text := "I advise you to rest for two days. " + strings.Repeat("Drink water and sleep well. ", 8)
		recs := Recommendations(text)
		assert.Equal(t, []string{"I advise you to rest for two days"}, recs)
	})

	t.Run("fallback triple", func(t *testing.T) {
		recs := Recommendations("Nothing actionable.")
		assert.Equal(t, FallbackRecommendations, recs)
	})
}

func TestClassify_BoundsAndDescription(t *testing.T) {
	c := New(zap.NewNop())

	inputs := []string{
		"",
		"short",
		"You should see a doctor.\nYou should test your blood.\nYou should monitor closely.",
		strings.Repeat("You should rest today.\n", 20),
	}

	for _, in := range inputs {
		result := c.Classify(in, nil)
		assert.GreaterOrEqual(t, len(result.Recommendations), 1)
		assert.LessOrEqual(t, len(result.Recommendations), MaxRecommendations)
		assert.NotEmpty(t, result.Description)
	}

	assert.Equal(t, EmptyDescription, c.Classify("   ", nil).Description)
}
