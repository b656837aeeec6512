package ocr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
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

func TestServiceClient_AnalyzeReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze-report", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "cbc.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "PNGDATA", string(data))

		w.Write([]byte(`{"success":true,"filename":"cbc.png","file_type":"image","total_tests_extracted":2,
			"abnormal_tests":1,"severity":"moderate","confidence":0.8,"analysis":"Hemoglobin is low",
			"recommendations":["Repeat CBC"],"test_results":[{"test_name":"hemoglobin","value":10.1,"status":"low"}],
			"extracted_text_preview":"Hemoglobin 10.1"}`))
	}))
	defer server.Close()

	client := NewServiceClient(&config.OCRConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, zap.NewNop())
	report, err := client.AnalyzeReport(context.Background(), Upload{
		Filename:    "cbc.png",
		ContentType: "image/png",
		Data:        []byte("PNGDATA"),
	})

	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.TotalTestsExtracted)
	assert.Equal(t, 1, report.AbnormalTests)
	require.Len(t, report.TestResults, 1)
	assert.Equal(t, "hemoglobin", report.TestResults[0].TestName)
}

func TestServiceClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "service error detail", status: http.StatusInternalServerError, body: `{"detail":"OCR processor not available"}`, wantErr: domain.ErrOCRUnavailable},
		{name: "unsupported type", status: http.StatusBadRequest, body: `{"detail":"Unsupported file type"}`, wantErr: domain.ErrOCRUnavailable},
		{name: "garbage body", status: http.StatusOK, body: `<html>`, wantErr: domain.ErrUnparseableOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewServiceClient(&config.OCRConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, zap.NewNop())
			_, err := client.AnalyzeReport(context.Background(), Upload{Filename: "a.pdf", ContentType: "application/pdf"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestServiceClient_SupportedTestsAndHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/supported-tests":
			w.Write([]byte(`{"supported_tests":["hemoglobin","glucose"],"total_tests":2}`))
		case "/health":
			w.Write([]byte(`{"status":"healthy","ocr_available":true,"supported_tests_count":2,"version":"1.0.0"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewServiceClient(&config.OCRConfig{BaseURL: server.URL + "/", Timeout: 5 * time.Second}, nil, zap.NewNop())

	tests, err := client.SupportedTests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hemoglobin", "glucose"}, tests.SupportedTests)
	assert.Equal(t, 2, tests.TotalTests)

	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestUpload_FileKind(t *testing.T) {
	assert.Equal(t, "pdf", Upload{ContentType: "application/pdf"}.FileKind())
	assert.Equal(t, "pdf", Upload{Filename: "Report.PDF"}.FileKind())
	assert.Equal(t, "image", Upload{Filename: "scan.png", ContentType: "image/png"}.FileKind())
}

func scriptRunner(t *testing.T, body string) (*ScriptRunner, string) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "ocr.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	tempDir := filepath.Join(dir, "temp")
	logger := zap.NewNop()
	runner := subprocess.NewRunner("ocr", 5*time.Second, nil, logger)
	return NewCommandScriptRunner(script, tempDir, runner, logger), tempDir
}

func TestScriptRunner_Extract(t *testing.T) {
	t.Run("prints cleaned text and removes temp file", func(t *testing.T) {
		s, tempDir := scriptRunner(t, `echo "  kind=$2"; cat "$1"; echo`)

		result := s.Extract(context.Background(), Upload{Filename: "lab.pdf", ContentType: "application/pdf", Data: []byte("Glucose 95")})

		assert.Empty(t, result.Error)
		assert.Equal(t, "kind=pdf\nGlucose 95", result.CleanedText)

		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("failure yields the OCR error", func(t *testing.T) {
		s, _ := scriptRunner(t, `echo "tesseract not found" >&2; exit 2`)

		result := s.Extract(context.Background(), Upload{Filename: "scan.png", ContentType: "image/png", Data: []byte{1}})

		assert.Equal(t, "", result.CleanedText)
		assert.Equal(t, MsgOCRFailed, result.Error)
	})
}
