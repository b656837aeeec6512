package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/smarthealth/internal/ai"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/labref"
	"github.com/smarthealth/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "I have a bad infection and it is severe", "-s", "fever", "-o", "json")
	require.NoError(t, err)

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Infection", result.Condition)
	assert.Equal(t, domain.SeveritySevere, result.Severity)
	assert.Equal(t, []string{"fever"}, result.Symptoms)

	out, err = run(t, "classify", "mild headache")
	require.NoError(t, err)
	assert.Contains(t, out, "Headache or Migraine")
}

func TestLab(t *testing.T) {
	out, err := run(t, "lab", "eval", "hgb", "10", "-o", "yaml")
	require.NoError(t, err)
	var ev labref.Evaluation
	require.NoError(t, yaml.Unmarshal([]byte(out), &ev))
	assert.Equal(t, labref.StatusLow, ev.Status)
	assert.Equal(t, "hgb", ev.Key)

	out, err = run(t, "lab", "get", "hemoglobin")
	require.NoError(t, err)
	assert.Contains(t, out, "12.0-15.5")

	out, err = run(t, "lab", "list", "--category", "CBC")
	require.NoError(t, err)
	assert.Contains(t, out, "hemoglobin")

	_, err = run(t, "lab", "get", "unobtainium")
	assert.Error(t, err)

	_, err = run(t, "lab", "eval", "hgb", "ten")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "classify", "cough", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestSeedAndStats(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "smarthealth.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"store_driver: sqlite\nstore_data_dir: "+dir+"\nmodel_mock_mode: true\n"), 0o600))

	out, err := run(t, "seed", "-c", cfgPath, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"seeded":true}`, out)

	out, err = run(t, "seed", "-c", cfgPath, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"seeded":false}`, out)

	out, err = run(t, "stats", "-c", cfgPath, "--days", "3", "-o", "json")
	require.NoError(t, err)
	var report statsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Stats.TotalAnalyses)
	assert.Len(t, report.Trends, 3)
}

func TestCheckModel(t *testing.T) {
	client := ai.NewMockClient(zap.NewNop())
	status, err := checkModel(context.Background(), client)
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Equal(t, service.MsgModelWorking, status.Message)

	client.Err = domain.WrapError("http_request", domain.ErrModelUnavailable, domain.KindDependency)
	status, err = checkModel(context.Background(), client)
	require.NoError(t, err)
	assert.False(t, status.Success)
}

func TestModelCheckCmd_MockMode(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "smarthealth.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model_mock_mode: true\n"), 0o600))

	out, err := run(t, "model-check", "-c", cfgPath, "-o", "json")
	require.NoError(t, err)
	var status domain.ModelStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Success)
}
