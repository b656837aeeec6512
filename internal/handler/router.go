package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Analyze  *AnalyzeHandler
	OCR      *OCRHandler
	Predict  *PredictHandler
	Facility *FacilityHandler
	LabRef   *LabRefHandler
	Records  *RecordsHandler
	Health   *HealthHandler
	Ready    *ReadyHandler
}

// RouterOptions configures middleware and the metrics endpoint.
type RouterOptions struct {
	AllowOrigins   []string
	MaxUploadBytes int64
	Metrics        *metrics.Metrics
	MetricsPath    string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h Handlers, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware(opts.AllowOrigins))
	router.Use(BodyLimitMiddleware(opts.MaxUploadBytes))

	router.GET("/health", h.Health.Handle)
	router.GET("/ready", h.Ready.Handle)
	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/analyze-symptoms", h.Analyze.Symptoms)
		api.POST("/analyze-symptoms-simple", h.Analyze.SymptomsSimple)
		api.GET("/test-symptoms", h.Analyze.TestSymptoms)
		api.GET("/test-ollama", h.Analyze.TestModel)
		api.POST("/analyze-image", h.Analyze.Image)
		api.POST("/analyze-test-report", h.Analyze.TestReport)
		api.POST("/analyze-test-report-fast", h.Analyze.TestReportFast)

		api.POST("/ocr-analyze-test-report", h.OCR.Extract)
		api.POST("/ocr/analyze-report", h.OCR.AnalyzeReport)
		api.GET("/ocr/supported-tests", h.OCR.SupportedTests)

		api.POST("/predict", h.Predict.Predict)
		api.GET("/facilities", h.Facility.Find)

		api.GET("/lab-reference", h.LabRef.List)
		api.POST("/lab-reference/evaluate", h.LabRef.Evaluate)
		api.GET("/lab-reference/:name", h.LabRef.Get)
	}

	data := api.Group("/health-data")
	{
		data.GET("/analyses", h.Records.ListAnalyses)
		data.POST("/analyses", h.Records.AddAnalysis)
		data.GET("/analyses/:id", h.Records.GetAnalysis)

		data.GET("/reminders", h.Records.ListReminders)
		data.POST("/reminders", h.Records.AddReminder)
		data.PATCH("/reminders/:id", h.Records.UpdateReminder)
		data.DELETE("/reminders/:id", h.Records.DeleteReminder)

		data.GET("/profile", h.Records.GetProfile)
		data.PATCH("/profile", h.Records.UpdateProfile)

		data.GET("/insights", h.Records.ListInsights)
		data.POST("/insights", h.Records.AddInsight)

		data.GET("/stats", h.Records.Stats)
		data.GET("/trends", h.Records.Trends)
		data.GET("/dashboard", h.Records.Dashboard)
	}

	return router
}
