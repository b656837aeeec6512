package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/service"
	"go.uber.org/zap"
)

// testSymptoms is the fixed list used by the model smoke test.
var testSymptoms = []string{"cough", "fever", "fatigue"}

// AnalyzeHandler handles the model-backed analysis endpoints.
type AnalyzeHandler struct {
	analyzer  *service.Analyzer
	maxUpload int64
	logger    *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzer *service.Analyzer, maxUpload int64, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:  analyzer,
		maxUpload: maxUpload,
		logger:    logger.Named("analyze_handler"),
	}
}

// Symptoms processes POST /api/analyze-symptoms.
func (h *AnalyzeHandler) Symptoms(c *gin.Context) {
	h.symptoms(c, h.analyzer.AnalyzeSymptoms)
}

// SymptomsSimple processes POST /api/analyze-symptoms-simple.
func (h *AnalyzeHandler) SymptomsSimple(c *gin.Context) {
	h.symptoms(c, h.analyzer.AnalyzeSymptomsQuick)
}

type analyzeFunc func(ctx context.Context, symptoms []string) (*domain.AnalysisEnvelope, error)

// symptoms answers 200 for every analysis outcome, successful or not.
func (h *AnalyzeHandler) symptoms(c *gin.Context, analyze analyzeFunc) {
	startTime := time.Now()
	logger := requestLogger(c, h.logger)

	var req domain.SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.AnalysisEnvelope{Success: false, Error: msgNoSymptoms})
		return
	}

	envelope, err := analyze(c.Request.Context(), req.Symptoms)
	if err != nil {
		if errors.Is(err, domain.ErrNoSymptoms) {
			c.JSON(http.StatusBadRequest, domain.AnalysisEnvelope{Success: false, Error: msgNoSymptoms})
			return
		}
		logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, domain.AnalysisEnvelope{Success: false, Error: "Failed to analyze symptoms"})
		return
	}

	logger.Info("analysis completed",
		zap.Bool("success", envelope.Success),
		zap.String("source", envelope.Source),
		zap.Duration("duration", time.Since(startTime)),
	)
	c.JSON(http.StatusOK, envelope)
}

// TestSymptoms processes GET /api/test-symptoms.
func (h *AnalyzeHandler) TestSymptoms(c *gin.Context) {
	envelope, err := h.analyzer.AnalyzeSymptomsQuick(c.Request.Context(), testSymptoms)
	if err != nil {
		abortWithError(c, err, "")
		return
	}

	status := http.StatusOK
	if !envelope.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, testSymptomsResponse{AnalysisEnvelope: envelope, TestSymptoms: testSymptoms})
}

// testSymptomsResponse is the envelope plus the fixed symptom list.
type testSymptomsResponse struct {
	*domain.AnalysisEnvelope
	TestSymptoms []string `json:"testSymptoms"`
}

// TestModel processes GET /api/test-ollama.
func (h *AnalyzeHandler) TestModel(c *gin.Context) {
	status := h.analyzer.CheckModel(c.Request.Context())
	if !status.Success {
		c.JSON(http.StatusInternalServerError, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Image processes POST /api/analyze-image. Unlike the symptom endpoints a
// failed analysis answers 500.
func (h *AnalyzeHandler) Image(c *gin.Context) {
	logger := requestLogger(c, h.logger)

	upload, err := readUpload(c, "image", imageTypes, h.maxUpload)
	if err != nil {
		rejectUpload(c, logger, err, msgNoImage, msgInvalidImage)
		return
	}

	kind := domain.ParseImageAnalysisType(c.PostForm("analysisType"))
	envelope := h.analyzer.AnalyzeImage(c.Request.Context(), kind, upload.Data)
	if !envelope.Success {
		c.JSON(http.StatusInternalServerError, envelope)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// TestReport processes POST /api/analyze-test-report.
func (h *AnalyzeHandler) TestReport(c *gin.Context) {
	h.testReport(c, false)
}

// TestReportFast processes POST /api/analyze-test-report-fast.
func (h *AnalyzeHandler) TestReportFast(c *gin.Context) {
	h.testReport(c, true)
}

func (h *AnalyzeHandler) testReport(c *gin.Context, fast bool) {
	logger := requestLogger(c, h.logger)

	upload, err := readUpload(c, "file", reportTypes, h.maxUpload)
	if err != nil {
		rejectUpload(c, logger, err, msgNoFile, msgInvalidFileType)
		return
	}

	c.JSON(http.StatusOK, h.analyzer.AnalyzeTestReport(c.Request.Context(), upload.Data, fast))
}
