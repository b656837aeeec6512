package predictor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/subprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeScript creates a shell script standing in for predict.py.
func writeScript(t *testing.T, body string) *config.PredictorConfig {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "predict.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return &config.PredictorConfig{Python: "/bin/sh", Script: path, WorkDir: dir, Timeout: 5 * time.Second}
}

func newPredictor(cfg *config.PredictorConfig) *Predictor {
	logger := zap.NewNop()
	return New(cfg, subprocess.NewRunner("predictor", cfg.Timeout, nil, logger), logger)
}

func TestPredictor_Predict(t *testing.T) {
	t.Run("valid array decodes", func(t *testing.T) {
		cfg := writeScript(t, `read input
echo '[{"condition":"Common Cold","probability":62.5,"severity":"moderate","recommendations":["Rest"]}]'`)

		env, err := newPredictor(cfg).Predict(context.Background(), []string{"cough"})
		require.NoError(t, err)
		require.True(t, env.Success)
		require.Len(t, env.Predictions, 1)
		assert.Equal(t, "Common Cold", env.Predictions[0].Condition)
		assert.Equal(t, domain.Percent(62.5), env.Predictions[0].Probability)
	})

	t.Run("symptoms arrive on stdin", func(t *testing.T) {
		cfg := writeScript(t, `input=$(cat)
printf '[{"condition":"%s"}]' "$(echo "$input" | tr -d '[]"')"`)

		env, err := newPredictor(cfg).Predict(context.Background(), []string{"itching"})
		require.NoError(t, err)
		require.Len(t, env.Predictions, 1)
		assert.Equal(t, "itching", env.Predictions[0].Condition)
	})

	t.Run("non-zero exit surfaces stderr", func(t *testing.T) {
		cfg := writeScript(t, `echo "Model files not found" >&2
exit 1`)

		env, err := newPredictor(cfg).Predict(context.Background(), []string{"cough"})
		require.NoError(t, err)
		assert.False(t, env.Success)
		assert.Equal(t, MsgFailed, env.Error)
		assert.Equal(t, "Model files not found\n", env.Details)
	})

	t.Run("undecodable stdout", func(t *testing.T) {
		cfg := writeScript(t, `echo "not json"`)

		env, err := newPredictor(cfg).Predict(context.Background(), []string{"cough"})
		require.NoError(t, err)
		assert.False(t, env.Success)
		assert.Equal(t, MsgParseFailed, env.Error)
		assert.Equal(t, "not json\n", env.Details)
	})

	t.Run("timeout", func(t *testing.T) {
		cfg := writeScript(t, `sleep 5`)
		cfg.Timeout = 100 * time.Millisecond

		env, err := newPredictor(cfg).Predict(context.Background(), []string{"cough"})
		require.NoError(t, err)
		assert.False(t, env.Success)
		assert.Equal(t, MsgTimeout, env.Error)
	})
}
