package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
)

// Client-facing messages.
const (
	msgInternal        = "Internal server error"
	msgInvalidBody     = "Invalid request body"
	msgNoSymptoms      = "No symptoms provided"
	msgSymptomsArray   = "Symptoms array is required"
	msgNoFile          = "No file uploaded"
	msgNoImage         = "No image file provided"
	msgInvalidFileType = "Invalid file type. Please upload a PDF or image file."
	msgInvalidImage    = "Invalid file type. Please upload a JPEG or PNG image."
	msgFileTooLarge    = "File too large"
	msgReportFailed    = "Failed to process test report"
	msgNotFound        = "Not found"
	msgStorage         = "Health data is temporarily unavailable"
)

func errorBody(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}

// abortWithError writes an error body with the status implied by the error kind.
func abortWithError(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if msg == "" {
		msg = defaultMessage(status)
	}
	c.AbortWithStatusJSON(status, errorBody(msg))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	}
	switch domain.KindOf(err) {
	case domain.KindInput:
		return http.StatusBadRequest
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindDependency:
		return http.StatusBadGateway
	case domain.KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusServiceUnavailable, http.StatusInsufficientStorage:
		return msgStorage
	default:
		return msgInternal
	}
}
