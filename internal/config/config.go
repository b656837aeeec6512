// Package config handles application configuration from defaults, an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smarthealth/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Model server configuration
	Model ModelConfig

	// OCR service and script configuration
	OCR OCRConfig

	// Prediction subprocess configuration
	Predictor PredictorConfig

	// Map-data facility lookup configuration
	Facility FacilityConfig

	// Local data store configuration
	Store StoreConfig

	// Input processing limits
	Processing ProcessingConfig

	// Metrics exposition
	Metrics MetricsConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// It must outlast the longest model call.
	WriteTimeout time.Duration

	// MaxUploadBytes bounds multipart uploads.
	MaxUploadBytes int64

	// AllowOrigins is the CORS origin allow-list.
	AllowOrigins []string
}

// ModelConfig contains model server settings. Each call type has its own deadline.
type ModelConfig struct {
	BaseURL  string
	Model    string
	MockMode bool

	SymptomTimeout      time.Duration
	QuickSymptomTimeout time.Duration
	ReportTimeout       time.Duration
	FastReportTimeout   time.Duration
	ImageTimeout        time.Duration
	PingTimeout         time.Duration
}

// OCRConfig contains settings for the OCR service and the OCR script.
type OCRConfig struct {
	// BaseURL is the OCR service address.
	BaseURL string

	// Timeout bounds both the service call and the script run.
	Timeout time.Duration

	// Python is the interpreter used for the script path.
	Python string

	// ModuleDir is added to the script's import path.
	ModuleDir string

	// TempDir receives uploads handed to the script.
	TempDir string
}

// PredictorConfig contains settings for the prediction subprocess.
type PredictorConfig struct {
	Python  string
	Script  string
	WorkDir string
	Timeout time.Duration
}

// FacilityConfig contains settings for the map-data interpreter.
type FacilityConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	DefaultRadiusKm   float64
	MaxRadiusKm       float64
}

// Store drivers.
const (
	StoreDriverBadger = "badger"
	StoreDriverSQLite = "sqlite"
)

// StoreConfig contains local data store settings.
type StoreConfig struct {
	// Driver selects the slot backend (badger, sqlite).
	Driver string

	// DataDir holds the backend files. Empty means in-memory.
	DataDir string

	// SlotQuotaBytes is the largest value a single slot may hold.
	SlotQuotaBytes int

	// Seed bootstraps sample data on first start.
	Seed bool

	// RecordAnalyses persists completed analyses automatically.
	RecordAnalyses bool
}

// ProcessingConfig contains input limits.
type ProcessingConfig struct {
	// MaxSymptoms caps the number of symptoms forwarded to the model.
	MaxSymptoms int

	// MaxSymptomLength caps each symptom string.
	MaxSymptomLength int

	// MaxLogTextSize caps free text written to logs.
	MaxLogTextSize int
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration using SMARTHEALTH_CONFIG as the optional file path.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("SMARTHEALTH_CONFIG"))
}

// LoadFile reads configuration from defaults, the YAML file at path (if any)
// and environment variables, in increasing priority.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidConfig, path, err)
		}
	}

	// Keys are flat, so MODEL_BASE_URL overrides model_base_url.
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("port"),
			ReadTimeout:    getDuration(v, "server_read_timeout"),
			WriteTimeout:   getDuration(v, "server_write_timeout"),
			MaxUploadBytes: v.GetInt64("max_upload_bytes"),
			AllowOrigins:   getList(v, "cors_allow_origins"),
		},
		Model: ModelConfig{
			BaseURL:             v.GetString("model_base_url"),
			Model:               v.GetString("model_name"),
			MockMode:            v.GetBool("model_mock_mode"),
			SymptomTimeout:      getDuration(v, "model_symptom_timeout"),
			QuickSymptomTimeout: getDuration(v, "model_quick_symptom_timeout"),
			ReportTimeout:       getDuration(v, "model_report_timeout"),
			FastReportTimeout:   getDuration(v, "model_fast_report_timeout"),
			ImageTimeout:        getDuration(v, "model_image_timeout"),
			PingTimeout:         getDuration(v, "model_ping_timeout"),
		},
		OCR: OCRConfig{
			BaseURL:   v.GetString("ocr_base_url"),
			Timeout:   getDuration(v, "ocr_timeout"),
			Python:    v.GetString("ocr_python"),
			ModuleDir: v.GetString("ocr_module_dir"),
			TempDir:   v.GetString("ocr_temp_dir"),
		},
		Predictor: PredictorConfig{
			Python:  v.GetString("predict_python"),
			Script:  v.GetString("predict_script"),
			WorkDir: v.GetString("predict_workdir"),
			Timeout: getDuration(v, "predict_timeout"),
		},
		Facility: FacilityConfig{
			BaseURL:           v.GetString("facility_base_url"),
			Timeout:           getDuration(v, "facility_timeout"),
			RequestsPerSecond: v.GetFloat64("facility_requests_per_second"),
			Burst:             v.GetInt("facility_burst"),
			DefaultRadiusKm:   v.GetFloat64("facility_default_radius_km"),
			MaxRadiusKm:       v.GetFloat64("facility_max_radius_km"),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(v.GetString("store_driver")),
			DataDir:        v.GetString("store_data_dir"),
			SlotQuotaBytes: v.GetInt("store_slot_quota_bytes"),
			Seed:           v.GetBool("store_seed"),
			RecordAnalyses: v.GetBool("store_record_analyses"),
		},
		Processing: ProcessingConfig{
			MaxSymptoms:      v.GetInt("max_symptoms"),
			MaxSymptomLength: v.GetInt("max_symptom_length"),
			MaxLogTextSize:   v.GetInt("max_log_text_size"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics_enabled"),
			Path:    v.GetString("metrics_path"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server_read_timeout", 30*time.Second)
	v.SetDefault("server_write_timeout", 150*time.Second)
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("cors_allow_origins", "*")

	v.SetDefault("model_base_url", "http://localhost:11434")
	v.SetDefault("model_name", "llava")
	v.SetDefault("model_mock_mode", false)
	v.SetDefault("model_symptom_timeout", 30*time.Second)
	v.SetDefault("model_quick_symptom_timeout", 20*time.Second)
	v.SetDefault("model_report_timeout", 120*time.Second)
	v.SetDefault("model_fast_report_timeout", 60*time.Second)
	v.SetDefault("model_image_timeout", 120*time.Second)
	v.SetDefault("model_ping_timeout", 15*time.Second)

	v.SetDefault("ocr_base_url", "http://localhost:8000")
	v.SetDefault("ocr_timeout", 120*time.Second)
	v.SetDefault("ocr_python", "python")
	v.SetDefault("ocr_module_dir", "lib")
	v.SetDefault("ocr_temp_dir", os.TempDir())

	v.SetDefault("predict_python", "python")
	v.SetDefault("predict_script", "predict.py")
	v.SetDefault("predict_workdir", ".")
	v.SetDefault("predict_timeout", 60*time.Second)

	v.SetDefault("facility_base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("facility_timeout", 35*time.Second)
	v.SetDefault("facility_requests_per_second", 1.0)
	v.SetDefault("facility_burst", 2)
	v.SetDefault("facility_default_radius_km", 5.0)
	v.SetDefault("facility_max_radius_km", 50.0)

	v.SetDefault("store_driver", StoreDriverBadger)
	v.SetDefault("store_data_dir", "./data")
	v.SetDefault("store_slot_quota_bytes", 5<<20)
	v.SetDefault("store_seed", true)
	v.SetDefault("store_record_analyses", true)

	v.SetDefault("max_symptoms", 50)
	v.SetDefault("max_symptom_length", 200)
	v.SetDefault("max_log_text_size", 2000)

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_path", "/metrics")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: PORT is required", domain.ErrInvalidConfig)
	}

	if c.Server.MaxUploadBytes < 1024 {
		return fmt.Errorf("%w: MAX_UPLOAD_BYTES must be at least 1024", domain.ErrInvalidConfig)
	}

	timeouts := map[string]time.Duration{
		"MODEL_SYMPTOM_TIMEOUT":       c.Model.SymptomTimeout,
		"MODEL_QUICK_SYMPTOM_TIMEOUT": c.Model.QuickSymptomTimeout,
		"MODEL_REPORT_TIMEOUT":        c.Model.ReportTimeout,
		"MODEL_FAST_REPORT_TIMEOUT":   c.Model.FastReportTimeout,
		"MODEL_IMAGE_TIMEOUT":         c.Model.ImageTimeout,
		"MODEL_PING_TIMEOUT":          c.Model.PingTimeout,
		"OCR_TIMEOUT":                 c.OCR.Timeout,
		"PREDICT_TIMEOUT":             c.Predictor.Timeout,
		"FACILITY_TIMEOUT":            c.Facility.Timeout,
	}
	for name, d := range timeouts {
		if d < time.Second {
			return fmt.Errorf("%w: %s must be at least 1 second", domain.ErrInvalidConfig, name)
		}
	}

	if c.Model.BaseURL == "" && !c.Model.MockMode {
		return fmt.Errorf("%w: MODEL_BASE_URL is required when not in mock mode", domain.ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case StoreDriverBadger, StoreDriverSQLite:
	default:
		return fmt.Errorf("%w: STORE_DRIVER must be badger or sqlite, got %q", domain.ErrInvalidConfig, c.Store.Driver)
	}

	if c.Store.SlotQuotaBytes < 1024 {
		return fmt.Errorf("%w: STORE_SLOT_QUOTA_BYTES must be at least 1024", domain.ErrInvalidConfig)
	}

	if c.Facility.RequestsPerSecond <= 0 || c.Facility.Burst < 1 {
		return fmt.Errorf("%w: facility rate limit must be positive", domain.ErrInvalidConfig)
	}

	if c.Facility.DefaultRadiusKm <= 0 || c.Facility.MaxRadiusKm < c.Facility.DefaultRadiusKm {
		return fmt.Errorf("%w: FACILITY_MAX_RADIUS_KM must be >= FACILITY_DEFAULT_RADIUS_KM > 0", domain.ErrInvalidConfig)
	}

	if c.Processing.MaxSymptoms < 1 || c.Processing.MaxSymptomLength < 1 {
		return fmt.Errorf("%w: symptom limits must be positive", domain.ErrInvalidConfig)
	}

	return nil
}

// getDuration accepts either a bare number of seconds ("15") or a duration string ("15s", "1m").
func getDuration(v *viper.Viper, key string) time.Duration {
	val := strings.TrimSpace(v.GetString(key))
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return v.GetDuration(key)
}

// getList splits comma-separated values.
func getList(v *viper.Viper, key string) []string {
	var out []string
	for _, s := range v.GetStringSlice(key) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
