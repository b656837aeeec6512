package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smarthealth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SMARTHEALTH_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:11434", cfg.Model.BaseURL)
	assert.Equal(t, "llava", cfg.Model.Model)
	assert.Equal(t, 30*time.Second, cfg.Model.SymptomTimeout)
	assert.Equal(t, 20*time.Second, cfg.Model.QuickSymptomTimeout)
	assert.Equal(t, 120*time.Second, cfg.Model.ReportTimeout)
	assert.Equal(t, 60*time.Second, cfg.Model.FastReportTimeout)
	assert.Equal(t, "http://localhost:8000", cfg.OCR.BaseURL)
	assert.Equal(t, StoreDriverBadger, cfg.Store.Driver)
	assert.Equal(t, 5<<20, cfg.Store.SlotQuotaBytes)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.True(t, cfg.Store.Seed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MODEL_SYMPTOM_TIMEOUT", "45")
	t.Setenv("MODEL_REPORT_TIMEOUT", "2m")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("MODEL_MOCK_MODE", "true")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Model.SymptomTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Model.ReportTimeout)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.True(t, cfg.Model.MockMode)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smarthealth.yaml")
	content := []byte("port: \"9090\"\nmodel_name: llava:13b\npredict_timeout: 90s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "llava:13b", cfg.Model.Model)
	assert.Equal(t, 90*time.Second, cfg.Predictor.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown store driver", key: "STORE_DRIVER", val: "postgres"},
		{name: "sub-second timeout", key: "MODEL_IMAGE_TIMEOUT", val: "500ms"},
		{name: "tiny quota", key: "STORE_SLOT_QUOTA_BYTES", val: "10"},
		{name: "radius ordering", key: "FACILITY_MAX_RADIUS_KM", val: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadFile("")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
