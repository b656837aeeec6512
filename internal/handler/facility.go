package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/facility"
	"go.uber.org/zap"
)

const (
	msgInvalidCoordinates = "Valid lat and lng query parameters are required"
	msgInvalidRadius      = "radius must be a positive number of kilometres"
	msgInvalidFacility    = "Unknown facility type"
	msgFacilityFailed     = "Failed to fetch nearby facilities. Please try again later."
)

// FacilityHandler handles GET /api/facilities.
type FacilityHandler struct {
	finder *facility.Finder
	logger *zap.Logger
}

// NewFacilityHandler creates a new FacilityHandler.
func NewFacilityHandler(finder *facility.Finder, logger *zap.Logger) *FacilityHandler {
	return &FacilityHandler{finder: finder, logger: logger.Named("facility_handler")}
}

// Find searches for facilities around lat/lng.
func (h *FacilityHandler) Find(c *gin.Context) {
	q, msg := parseFacilityQuery(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, domain.FacilityResponse{Success: false, Facilities: []domain.Facility{}, Error: msg})
		return
	}

	resp, err := h.finder.Find(c.Request.Context(), q)
	if err != nil {
		requestLogger(c, h.logger).Error("facility search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, domain.FacilityResponse{Success: false, Facilities: []domain.Facility{}, Error: msgFacilityFailed})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseFacilityQuery returns the query or a client message.
func parseFacilityQuery(c *gin.Context) (domain.FacilityQuery, string) {
	var q domain.FacilityQuery

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return q, msgInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return q, msgInvalidCoordinates
	}
	q.Center = domain.Coordinates{Lat: lat, Lng: lng}

	if raw := c.Query("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return q, msgInvalidRadius
		}
		q.RadiusKm = radius
	}

	t, ok := facility.ParseType(c.Query("type"))
	if !ok {
		return q, msgInvalidFacility
	}
	q.Type = t

	if raw := c.Query("emergency"); raw != "" {
		emergency, err := strconv.ParseBool(raw)
		if err != nil {
			return q, "emergency must be true or false"
		}
		q.EmergencyOnly = emergency
	}
	return q, ""
}
