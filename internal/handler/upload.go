package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/ocr"
	"go.uber.org/zap"
)

var errTooLarge = errors.New("upload exceeds size limit")

var (
	imageTypes  = []string{"image/jpeg", "image/png", "image/jpg"}
	reportTypes = []string{"image/jpeg", "image/png", "image/jpg", "application/pdf"}
)

// readUpload reads the multipart file in field, checking its declared
// content type against allowed and its size against maxBytes.
func readUpload(c *gin.Context, field string, allowed []string, maxBytes int64) (ocr.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ocr.Upload{}, errTooLarge
		}
		return ocr.Upload{}, domain.WrapError("read_upload", domain.ErrNoFile, domain.KindInput)
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !contains(allowed, contentType) {
		return ocr.Upload{}, domain.WrapError("read_upload", domain.ErrInvalidFileType, domain.KindInput)
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return ocr.Upload{}, errTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return ocr.Upload{}, domain.WrapError("open_upload", err, domain.KindInternal)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ocr.Upload{}, domain.WrapError("read_upload", err, domain.KindInternal)
	}

	return ocr.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// rejectUpload maps readUpload errors to responses.
func rejectUpload(c *gin.Context, logger *zap.Logger, err error, missingMsg, typeMsg string) {
	logger.Warn("upload rejected", zap.Error(err))
	switch {
	case errors.Is(err, domain.ErrNoFile):
		c.JSON(http.StatusBadRequest, errorBody(missingMsg))
	case errors.Is(err, domain.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, errorBody(typeMsg))
	case errors.Is(err, errTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, errorBody(msgFileTooLarge))
	default:
		c.JSON(http.StatusInternalServerError, errorBody(msgReportFailed))
	}
}
