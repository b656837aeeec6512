package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smarthealth/internal/ai"
	"github.com/smarthealth/internal/classifier"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/pkg/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []domain.HealthAnalysisRecord
}

func (f *fakeRecorder) AddAnalysis(_ context.Context, rec domain.HealthAnalysisRecord) domain.HealthAnalysisRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = "1"
	f.records = append(f.records, rec)
	return rec
}

func newTestAnalyzer(t *testing.T, client ai.Client, rec Recorder) *Analyzer {
	t.Helper()
	prompts, err := ai.NewDefaultPromptBuilder()
	require.NoError(t, err)

	a := NewAnalyzer(
		client,
		prompts,
		ai.NewDefaultValidator(),
		classifier.New(zap.NewNop()),
		sanitizer.New(2000),
		rec,
		AnalyzerConfig{MaxSymptoms: 50, MaxSymptomLength: 200, RecordAnalyses: true},
		nil,
		zap.NewNop(),
	)
	a.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzer_AnalyzeSymptoms(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	rec := &fakeRecorder{}
	a := newTestAnalyzer(t, client, rec)

	env, err := a.AnalyzeSymptoms(context.Background(), []string{" cough ", "", "fever"})
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, SourceModel, env.Source)
	assert.Equal(t, "Common Cold or Flu", env.Analysis.Condition)
	assert.Equal(t, domain.Percent(70), env.Analysis.Probability)
	assert.Equal(t, []string{"cough", "fever"}, env.Analysis.Symptoms)
	assert.Len(t, env.Analysis.Recommendations, 3)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, ai.KindSymptoms, reqs[0].Kind)
	assert.Contains(t, reqs[0].Prompt, "cough, fever")

	require.Len(t, rec.records, 1)
	assert.Equal(t, domain.HealthAnalysisRecord{
		ID:              "1",
		Type:            domain.AnalysisSymptom,
		Date:            "2024-03-10",
		Result:          "Common Cold or Flu",
		Confidence:      70,
		Severity:        domain.RecordSeverityLow,
		Symptoms:        []string{"cough", "fever"},
		Description:     env.Analysis.Description,
		Recommendations: env.Analysis.Recommendations,
	}, rec.records[0])
}

func TestAnalyzer_AnalyzeSymptoms_ClassifiesFreeText(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	client.Text = "You may have the flu. Rest and drink plenty of fluids for a few days."
	a := newTestAnalyzer(t, client, nil)

	env, err := a.AnalyzeSymptoms(context.Background(), []string{"fever"})
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, SourceClassifier, env.Source)
	assert.Equal(t, "Common Cold or Flu", env.Analysis.Condition)
	assert.Equal(t, domain.SeverityModerate, env.Analysis.Severity)
	assert.Equal(t, client.Text, env.Analysis.Description)
}

func TestAnalyzer_AnalyzeSymptoms_MissingRecommendations(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	client.Text = `{"condition":"Migraine","probability":"65%","severity":"MILD"}`
	a := newTestAnalyzer(t, client, nil)

	env, err := a.AnalyzeSymptoms(context.Background(), []string{"headache"})
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackRecommendations, env.Analysis.Recommendations)
	assert.Equal(t, domain.SeverityMild, env.Analysis.Severity)
	assert.Equal(t, domain.Percent(65), env.Analysis.Probability)
}

func TestAnalyzer_AnalyzeSymptoms_NoSymptoms(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	a := newTestAnalyzer(t, client, nil)

	for _, symptoms := range [][]string{nil, {}, {"  ", ""}} {
		env, err := a.AnalyzeSymptoms(context.Background(), symptoms)
		assert.Nil(t, env)
		assert.ErrorIs(t, err, domain.ErrNoSymptoms)
		assert.Equal(t, domain.KindInput, domain.KindOf(err))
	}
	assert.Empty(t, client.Requests())
}

func TestAnalyzer_ModelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "timeout",
			err:     domain.WrapError("model_timeout", domain.ErrModelTimeout, domain.KindTimeout),
			wantMsg: MsgTimeout,
		},
		{
			name:    "unavailable",
			err:     domain.WrapError("model_status", domain.ErrModelUnavailable, domain.KindDependency),
			wantMsg: MsgModelFailed,
		},
		{
			name:    "empty reply",
			err:     domain.WrapError("empty_response", domain.ErrEmptyModelResponse, domain.KindDependency),
			wantMsg: MsgModelFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := ai.NewMockClient(zap.NewNop())
			client.Err = tt.err
			rec := &fakeRecorder{}
			a := newTestAnalyzer(t, client, rec)

			env, err := a.AnalyzeSymptoms(context.Background(), []string{"cough"})
			require.NoError(t, err)
			assert.False(t, env.Success)
			assert.Nil(t, env.Analysis)
			assert.Equal(t, tt.wantMsg, env.Error)

			quick, err := a.AnalyzeSymptomsQuick(context.Background(), []string{"cough"})
			require.NoError(t, err)
			assert.False(t, quick.Success)
			assert.Equal(t, tt.wantMsg, quick.Error)

			assert.Empty(t, rec.records)
		})
	}
}

func TestAnalyzer_AnalyzeSymptomsQuick(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	client.Text = "This looks like a severe infection.\n- Seek emergency care immediately\n- Stay hydrated and rest"
	a := newTestAnalyzer(t, client, nil)

	env, err := a.AnalyzeSymptomsQuick(context.Background(), []string{"fever", "chills"})
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, SourceClassifier, env.Source)
	assert.Equal(t, "Infection", env.Analysis.Condition)
	assert.Equal(t, domain.SeveritySevere, env.Analysis.Severity)
	assert.Equal(t, domain.Percent(75), env.Analysis.Probability)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, ai.KindQuickSymptoms, reqs[0].Kind)
}

func TestAnalyzer_AnalyzeImage(t *testing.T) {
	t.Run("model JSON", func(t *testing.T) {
		client := ai.NewMockClient(zap.NewNop())
		client.Text = `Here is the result: {"condition":"Hairline fracture","confidence":"85%","severity":"moderate",` +
			`"description":"` + strings.Repeat("a", 700) + `","recommendations":["one","two","three","four","five"]}`
		rec := &fakeRecorder{}
		a := newTestAnalyzer(t, client, rec)

		env := a.AnalyzeImage(context.Background(), domain.ImageBoneFracture, []byte{0x89, 0x50})
		require.True(t, env.Success)
		assert.Equal(t, SourceModel, env.Source)
		assert.Equal(t, "Hairline fracture", env.Analysis.Condition)
		assert.Equal(t, domain.Percent(85), env.Analysis.Probability)
		assert.Len(t, env.Analysis.Description, MaxImageDescriptionLen)
		assert.Equal(t, []string{"one", "two", "three"}, env.Analysis.Recommendations)
		assert.NotNil(t, env.Analysis.Symptoms)

		reqs := client.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, ai.KindImage, reqs[0].Kind)
		assert.Equal(t, [][]byte{{0x89, 0x50}}, reqs[0].Images)

		require.Len(t, rec.records, 1)
		assert.Equal(t, domain.AnalysisImage, rec.records[0].Type)
		assert.Equal(t, 85, rec.records[0].Confidence)
		assert.Equal(t, domain.RecordSeverityMedium, rec.records[0].Severity)
	})

	t.Run("free text falls back", func(t *testing.T) {
		client := ai.NewMockClient(zap.NewNop())
		client.Text = "The bones look aligned."
		a := newTestAnalyzer(t, client, nil)

		env := a.AnalyzeImage(context.Background(), domain.ImageXRay, []byte("img"))
		require.True(t, env.Success)
		assert.Equal(t, SourceFallback, env.Source)
		assert.Equal(t, ImageFallbackCondition, env.Analysis.Condition)
		assert.Equal(t, domain.Percent(ImageFallbackProbability), env.Analysis.Probability)
		assert.Equal(t, domain.SeverityModerate, env.Analysis.Severity)
		assert.Equal(t, "The bones look aligned.", env.Analysis.Description)
		assert.Equal(t, ImageFallbackRecommendations, env.Analysis.Recommendations)
		assert.Equal(t, ai.DefaultCareGuidance, env.Analysis.WhenToSeekCare)
	})

	t.Run("model failure", func(t *testing.T) {
		client := ai.NewMockClient(zap.NewNop())
		client.Err = domain.WrapError("model_status", domain.ErrModelUnavailable, domain.KindDependency)
		a := newTestAnalyzer(t, client, nil)

		env := a.AnalyzeImage(context.Background(), domain.ImageXRay, []byte("img"))
		assert.False(t, env.Success)
		assert.Equal(t, MsgImageFailed, env.Error)
	})
}

func TestAnalyzer_AnalyzeTestReport(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	client.Text = "Hemoglobin is slightly low."
	a := newTestAnalyzer(t, client, nil)

	env := a.AnalyzeTestReport(context.Background(), []byte("pdf"), false)
	require.True(t, env.Success)
	assert.Equal(t, client.Text, env.Analysis.Summary)
	assert.Equal(t, client.Text, env.Analysis.Analysis)
	assert.Empty(t, env.Analysis.TestParameters)
	assert.NotNil(t, env.Analysis.Abnormalities)
	assert.NotNil(t, env.Analysis.Recommendations)

	a.AnalyzeTestReport(context.Background(), []byte("pdf"), true)
	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, ai.KindReport, reqs[0].Kind)
	assert.Equal(t, ai.KindFastReport, reqs[1].Kind)

	client.Err = domain.WrapError("model_timeout", domain.ErrModelTimeout, domain.KindTimeout)
	assert.Equal(t, MsgTimeout, a.AnalyzeTestReport(context.Background(), nil, false).Error)
	assert.Equal(t, MsgFastTimeout, a.AnalyzeTestReport(context.Background(), nil, true).Error)
}

func TestAnalyzer_CheckModel(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	client.Text = "Ollama is working correctly!"
	a := newTestAnalyzer(t, client, nil)

	status := a.CheckModel(context.Background())
	assert.True(t, status.Success)
	assert.Equal(t, "mock", status.Model)
	assert.Equal(t, client.Text, status.Response)
	assert.Equal(t, ai.KindPing, client.Requests()[0].Kind)

	client.Err = errors.New("connection refused")
	status = a.CheckModel(context.Background())
	assert.False(t, status.Success)
	assert.Equal(t, MsgModelCheckFails, status.Message)
	assert.Equal(t, "connection refused", status.Error)
}
