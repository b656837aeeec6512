package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/predictor"
	"github.com/smarthealth/pkg/sanitizer"
	"go.uber.org/zap"
)

// PredictHandler handles POST /api/predict.
type PredictHandler struct {
	predictor *predictor.Predictor
	logger    *zap.Logger
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(p *predictor.Predictor, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{predictor: p, logger: logger.Named("predict_handler")}
}

// Predict runs the prediction script on the posted symptoms. An empty
// symptom list is rejected before the script starts.
func (h *PredictHandler) Predict(c *gin.Context) {
	logger := requestLogger(c, h.logger)

	var req domain.SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil || sanitizer.IsEmpty(req.Symptoms) {
		c.JSON(http.StatusBadRequest, errorBody(msgSymptomsArray))
		return
	}

	envelope, err := h.predictor.Predict(c.Request.Context(), req.Symptoms)
	if err != nil {
		logger.Error("prediction failed", zap.Error(err))
		abortWithError(c, err, "")
		return
	}
	if !envelope.Success {
		logger.Warn("prediction script failed", zap.String("error", envelope.Error))
		c.JSON(http.StatusInternalServerError, envelope)
		return
	}
	c.JSON(http.StatusOK, envelope)
}
