package api

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/survey"
)

// GlobalPicker draws coaching lines from the goroutine-safe top-level generator.
type GlobalPicker struct{}

func (GlobalPicker) IntN(n int) int { return rand.IntN(n) }

type SurveyHandler struct {
	engine *survey.Engine
	picker survey.Picker
}

func NewSurveyHandler(engine *survey.Engine, picker survey.Picker) *SurveyHandler {
	return &SurveyHandler{engine: engine, picker: picker}
}

type StepRequest struct {
	Answers survey.Answers `json:"answers"`
	Step    *int           `json:"step" binding:"required"`
}

type StepResponse struct {
	Next     int    `json:"next"`
	Complete bool   `json:"complete"`
	Dialogue string `json:"dialogue,omitempty"`
}

// Steps returns the questionnaire.
// GET /api/v1/survey/steps
func (h *SurveyHandler) Steps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"steps": h.engine.Steps()})
}

// Advance validates the current answer and moves forward.
// POST /api/v1/survey/advance
func (h *SurveyHandler) Advance(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	res, err := h.engine.Advance(req.Answers, *req.Step)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.response(res, req.Answers))
}

// Skip moves past an optional step.
// POST /api/v1/survey/skip
func (h *SurveyHandler) Skip(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	res, err := h.engine.Skip(req.Answers, *req.Step)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.response(res, req.Answers))
}

// Retreat goes back one step without validating.
// POST /api/v1/survey/retreat
func (h *SurveyHandler) Retreat(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	prev := h.engine.Retreat(*req.Step)
	c.JSON(http.StatusOK, h.response(survey.Result{Next: prev}, req.Answers))
}

func (h *SurveyHandler) response(res survey.Result, answers survey.Answers) StepResponse {
	out := StepResponse{Next: res.Next, Complete: res.Complete}
	if res.Complete {
		return out
	}
	name, _ := answers["name"].(string)
	if line, err := h.engine.Dialogue(h.picker, res.Next, strings.TrimSpace(name)); err == nil {
		out.Dialogue = line
	}
	return out
}
