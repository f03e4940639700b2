package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/service"
	"alcyxob/ifit-coach/internal/survey"
)

type AssessmentHandler struct {
	assessments service.AssessmentService
}

func NewAssessmentHandler(assessments service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

type SubmitAssessmentRequest struct {
	Answers survey.Answers `json:"answers" binding:"required"`
}

type ChatRequest struct {
	History []domain.ChatMessage `json:"history" binding:"required,min=1,dive"`
}

// Submit generates the report for a finished questionnaire.
// POST /api/v1/assessments
func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	a, err := h.assessments.Submit(c.Request.Context(), identityFromContext(c), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Latest returns the caller's most recent assessment.
// GET /api/v1/assessments/latest
func (h *AssessmentHandler) Latest(c *gin.Context) {
	a, err := h.assessments.Latest(c.Request.Context(), identityFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Clear forgets the caller's latest assessment.
// DELETE /api/v1/assessments/latest
func (h *AssessmentHandler) Clear(c *gin.Context) {
	if err := h.assessments.Clear(c.Request.Context(), identityFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CalorieChat answers nutrition questions.
// POST /api/v1/chat/calories
func (h *AssessmentHandler) CalorieChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	reply, err := h.assessments.CalorieChat(c.Request.Context(), req.History)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
