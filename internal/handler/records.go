package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/store"
	"go.uber.org/zap"
)

// RecordsHandler serves the /api/health-data routes. Resources are
// returned as plain JSON; failures use the shared error body.
type RecordsHandler struct {
	store  *store.Store
	now    func() time.Time
	logger *zap.Logger
}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler(s *store.Store, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{store: s, now: time.Now, logger: logger.Named("records_handler")}
}

func (h *RecordsHandler) fail(c *gin.Context, op string, err error) {
	requestLogger(c, h.logger).Error("health data request failed", zap.String("op", op), zap.Error(err))
	abortWithError(c, err, "")
}

// ListAnalyses processes GET /api/health-data/analyses, newest first.
func (h *RecordsHandler) ListAnalyses(c *gin.Context) {
	list, err := h.store.ListAnalyses(c.Request.Context())
	if err != nil {
		h.fail(c, "list_analyses", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAnalysis processes GET /api/health-data/analyses/:id.
func (h *RecordsHandler) GetAnalysis(c *gin.Context) {
	rec, err := h.store.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get_analysis", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AddAnalysis processes POST /api/health-data/analyses. The record is
// echoed with its id even when persistence degraded.
func (h *RecordsHandler) AddAnalysis(c *gin.Context) {
	var rec domain.HealthAnalysisRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody))
		return
	}
	c.JSON(http.StatusCreated, h.store.AddAnalysis(c.Request.Context(), rec))
}

// ListReminders processes GET /api/health-data/reminders.
func (h *RecordsHandler) ListReminders(c *gin.Context) {
	list, err := h.store.ListReminders(c.Request.Context())
	if err != nil {
		h.fail(c, "list_reminders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddReminder processes POST /api/health-data/reminders.
func (h *RecordsHandler) AddReminder(c *gin.Context) {
	var r domain.HealthReminder
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody))
		return
	}
	saved, err := h.store.AddReminder(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "add_reminder", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// UpdateReminder processes PATCH /api/health-data/reminders/:id.
func (h *RecordsHandler) UpdateReminder(c *gin.Context) {
	var patch domain.ReminderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody))
		return
	}
	updated, err := h.store.UpdateReminder(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update_reminder", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteReminder processes DELETE /api/health-data/reminders/:id.
func (h *RecordsHandler) DeleteReminder(c *gin.Context) {
	deleted, err := h.store.DeleteReminder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "delete_reminder", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, errorBody(msgNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile processes GET /api/health-data/profile.
func (h *RecordsHandler) GetProfile(c *gin.Context) {
	p, err := h.store.GetProfile(c.Request.Context())
	if err != nil {
		h.fail(c, "get_profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile processes PATCH /api/health-data/profile.
func (h *RecordsHandler) UpdateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody))
		return
	}
	p, err := h.store.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		h.fail(c, "update_profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListInsights processes GET /api/health-data/insights.
func (h *RecordsHandler) ListInsights(c *gin.Context) {
	list, err := h.store.ListInsights(c.Request.Context())
	if err != nil {
		h.fail(c, "list_insights", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddInsight processes POST /api/health-data/insights.
func (h *RecordsHandler) AddInsight(c *gin.Context) {
	var in domain.HealthInsight
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody))
		return
	}
	saved, err := h.store.AddInsight(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "add_insight", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Stats processes GET /api/health-data/stats.
func (h *RecordsHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), h.now())
	if err != nil {
		h.fail(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Trends processes GET /api/health-data/trends?days=N. A missing value
// uses the store default.
func (h *RecordsHandler) Trends(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorBody("days must be a non-negative integer"))
			return
		}
		days = n
	}

	trends, err := h.store.Trends(c.Request.Context(), h.now(), days)
	if err != nil {
		h.fail(c, "trends", err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// Dashboard processes GET /api/health-data/dashboard.
func (h *RecordsHandler) Dashboard(c *gin.Context) {
	data, err := h.store.Dashboard(c.Request.Context(), h.now())
	if err != nil {
		h.fail(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, data)
}
