package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/service"
)

type ProgressHandler struct {
	progress service.ProgressService
}

func NewProgressHandler(progress service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type WeightRequest struct {
	Date   time.Time `json:"date" binding:"required"`
	Weight float64   `json:"weight" binding:"required,gt=0"`
}

type PersonalRecordRequest struct {
	Date     time.Time `json:"date" binding:"required"`
	Exercise string    `json:"exercise" binding:"required"`
	Value    string    `json:"value" binding:"required"`
}

func principalEmail(c *gin.Context) string {
	p, _ := principalFromContext(c)
	return p.Email
}

// Get returns the caller's progress logs.
// GET /api/v1/progress
func (h *ProgressHandler) Get(c *gin.Context) {
	p, err := h.progress.Get(c.Request.Context(), principalEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AddWeight logs a weigh-in.
// POST /api/v1/progress/weights
func (h *ProgressHandler) AddWeight(c *gin.Context) {
	var req WeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	p, err := h.progress.AddWeight(c.Request.Context(), principalEmail(c), req.Date, req.Weight)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// RemoveWeight deletes the weigh-ins logged at the given RFC 3339 date.
// DELETE /api/v1/progress/weights/:date
func (h *ProgressHandler) RemoveWeight(c *gin.Context) {
	date, err := time.Parse(time.RFC3339, c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be RFC 3339")
		return
	}
	p, err := h.progress.RemoveWeight(c.Request.Context(), principalEmail(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AddRecord logs a personal record.
// POST /api/v1/progress/records
func (h *ProgressHandler) AddRecord(c *gin.Context) {
	var req PersonalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	p, err := h.progress.AddPersonalRecord(c.Request.Context(), principalEmail(c), req.Exercise, req.Value, req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// RemoveRecord deletes a personal record.
// DELETE /api/v1/progress/records/:id
func (h *ProgressHandler) RemoveRecord(c *gin.Context) {
	p, err := h.progress.RemovePersonalRecord(c.Request.Context(), principalEmail(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
