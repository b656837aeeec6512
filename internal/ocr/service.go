// Package ocr talks to the OCR analyzer service and runs the OCR
// processor script.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FileKind returns "pdf" for PDF uploads and "image" otherwise.
func (u Upload) FileKind() string {
	if u.ContentType == "application/pdf" || strings.HasSuffix(strings.ToLower(u.Filename), ".pdf") {
		return "pdf"
	}
	return "image"
}

// SupportedTests is the reply of GET /supported-tests.
type SupportedTests struct {
	SupportedTests []string `json:"supported_tests"`
	TotalTests     int      `json:"total_tests"`
	Error          string   `json:"error,omitempty"`
}

// ServiceHealth is the reply of GET /health.
type ServiceHealth struct {
	Status              string `json:"status"`
	OCRAvailable        bool   `json:"ocr_available"`
	SupportedTestsCount int    `json:"supported_tests_count"`
	Version             string `json:"version"`
}

// ServiceClient calls the OCR analyzer HTTP service.
type ServiceClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewServiceClient creates a client for the OCR service.
func NewServiceClient(cfg *config.OCRConfig, m *metrics.Metrics, logger *zap.Logger) *ServiceClient {
	return &ServiceClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		metrics:    m,
		logger:     logger.Named("ocr_service"),
	}
}

// AnalyzeReport posts the upload as multipart field "file" to /analyze-report.
func (c *ServiceClient) AnalyzeReport(ctx context.Context, upload Upload) (*domain.OCRReport, error) {
	body, contentType, err := multipartBody(upload)
	if err != nil {
		return nil, domain.WrapError("build_multipart", err, domain.KindInternal)
	}

	var report domain.OCRReport
	if err := c.do(ctx, "analyze_report", http.MethodPost, "/analyze-report", body, contentType, &report); err != nil {
		return nil, err
	}

	c.logger.Debug("report analyzed",
		zap.String("filename", upload.Filename),
		zap.Int("tests", report.TotalTestsExtracted),
		zap.Int("abnormal", report.AbnormalTests),
	)
	return &report, nil
}

// SupportedTests lists the tests the service recognises.
func (c *ServiceClient) SupportedTests(ctx context.Context) (*SupportedTests, error) {
	var out SupportedTests
	if err := c.do(ctx, "supported_tests", http.MethodGet, "/supported-tests", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck verifies the service reports itself healthy.
func (c *ServiceClient) HealthCheck(ctx context.Context) error {
	var out ServiceHealth
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, "", &out); err != nil {
		return err
	}
	if out.Status != "healthy" {
		return domain.WrapError("health", fmt.Errorf("%w: status %q", domain.ErrOCRUnavailable, out.Status), domain.KindDependency)
	}
	return nil
}

// serviceError is the error shape returned by the service.
type serviceError struct {
	Detail string `json:"detail"`
}

func (c *ServiceClient) do(ctx context.Context, kind, method, path string, body io.Reader, contentType string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.execute(ctx, method, path, body, contentType, out)
	c.metrics.ObserveCall(metrics.TargetOCR, kind, metrics.Outcome(err, domain.IsTimeout(err)), time.Since(start))

	if err != nil {
		c.logger.Warn("OCR service call failed", zap.String("kind", kind), zap.Error(err))
	}
	return err
}

func (c *ServiceClient) execute(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return domain.WrapError("create_request", err, domain.KindInternal)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.WrapError("ocr_timeout", domain.ErrProcessTimeout, domain.KindTimeout)
		}
		return domain.WrapError("http_request", fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err), domain.KindDependency)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.WrapError("read_response", err, domain.KindDependency)
	}

	if resp.StatusCode != http.StatusOK {
		var se serviceError
		if json.Unmarshal(data, &se) == nil && se.Detail != "" {
			return domain.WrapError("ocr_status",
				fmt.Errorf("%w: status %d: %s", domain.ErrOCRUnavailable, resp.StatusCode, se.Detail), domain.KindDependency)
		}
		return domain.WrapError("ocr_status",
			fmt.Errorf("%w: status %d", domain.ErrOCRUnavailable, resp.StatusCode), domain.KindDependency)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return domain.WrapError("parse_response", fmt.Errorf("%w: %v", domain.ErrUnparseableOutput, err), domain.KindDependency)
	}
	return nil
}

// multipartBody encodes the upload as a single "file" part, keeping its media type.
func multipartBody(upload Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
	ct := upload.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
