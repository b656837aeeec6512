package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/ocr"
	"go.uber.org/zap"
)

const msgOCRUnavailable = "OCR service is unavailable. Please try again later."

// OCRHandler handles the OCR script and OCR service endpoints.
type OCRHandler struct {
	script    *ocr.ScriptRunner
	service   *ocr.ServiceClient
	maxUpload int64
	logger    *zap.Logger
}

// NewOCRHandler creates a new OCRHandler.
func NewOCRHandler(script *ocr.ScriptRunner, service *ocr.ServiceClient, maxUpload int64, logger *zap.Logger) *OCRHandler {
	return &OCRHandler{
		script:    script,
		service:   service,
		maxUpload: maxUpload,
		logger:    logger.Named("ocr_handler"),
	}
}

// Extract processes POST /api/ocr-analyze-test-report. Processor failures
// are reported in the body with status 200.
func (h *OCRHandler) Extract(c *gin.Context) {
	logger := requestLogger(c, h.logger)

	upload, err := readUpload(c, "file", reportTypes, h.maxUpload)
	if err != nil {
		rejectUpload(c, logger, err, msgNoFile, msgInvalidFileType)
		return
	}

	result := h.script.Extract(c.Request.Context(), upload)
	if result.Error != "" {
		logger.Warn("ocr extraction failed", zap.String("filename", upload.Filename))
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeReport processes POST /api/ocr/analyze-report.
func (h *OCRHandler) AnalyzeReport(c *gin.Context) {
	logger := requestLogger(c, h.logger)

	upload, err := readUpload(c, "file", reportTypes, h.maxUpload)
	if err != nil {
		rejectUpload(c, logger, err, msgNoFile, msgInvalidFileType)
		return
	}

	report, err := h.service.AnalyzeReport(c.Request.Context(), upload)
	if err != nil {
		logger.Error("ocr service call failed", zap.Error(err))
		abortWithError(c, err, msgOCRUnavailable)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SupportedTests processes GET /api/ocr/supported-tests.
func (h *OCRHandler) SupportedTests(c *gin.Context) {
	tests, err := h.service.SupportedTests(c.Request.Context())
	if err != nil {
		requestLogger(c, h.logger).Error("ocr service call failed", zap.Error(err))
		abortWithError(c, err, msgOCRUnavailable)
		return
	}
	c.JSON(http.StatusOK, tests)
}
