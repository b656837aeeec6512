package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/labref"
)

// LabRefHandler serves the laboratory reference table.
type LabRefHandler struct {
	table *labref.Table
}

// NewLabRefHandler creates a new LabRefHandler.
func NewLabRefHandler(table *labref.Table) *LabRefHandler {
	return &LabRefHandler{table: table}
}

type evaluateRequest struct {
	Test   string   `json:"test" binding:"required"`
	Value  *float64 `json:"value" binding:"required"`
	Gender string   `json:"gender"`
}

// List returns every reference entry, or those of ?category.
func (h *LabRefHandler) List(c *gin.Context) {
	var tests []*labref.Test
	if category := c.Query("category"); category != "" {
		tests = h.table.ByCategory(category)
	} else {
		for _, name := range h.table.Names() {
			if t, ok := h.table.Lookup(name); ok {
				tests = append(tests, t)
			}
		}
	}
	if tests == nil {
		tests = []*labref.Test{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tests": tests, "count": len(tests)})
}

// Get returns one entry by name or alias.
func (h *LabRefHandler) Get(c *gin.Context) {
	test, ok := h.table.Lookup(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("Unknown test"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "test": test})
}

// Evaluate compares a posted value with its reference range.
func (h *LabRefHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody))
		return
	}

	ev, err := h.table.Evaluate(req.Test, *req.Value, req.Gender)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("Unknown test"))
			return
		}
		c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "evaluation": ev})
}
