package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/service"
)

// TrainerHandler serves the trainer review dashboard.
type TrainerHandler struct {
	reviews service.ReviewService
	exports service.ExportService
}

func NewTrainerHandler(reviews service.ReviewService, exports service.ExportService) *TrainerHandler {
	return &TrainerHandler{reviews: reviews, exports: exports}
}

type DecisionRequest struct {
	Decision domain.PlanStatus `json:"decision" binding:"required,oneof=approved rejected"`
	Notes    string            `json:"notes"`
}

// ListPlans returns the trainer's assigned plans.
// GET /api/v1/trainer/plans?view=pending|reviewed
func (h *TrainerHandler) ListPlans(c *gin.Context) {
	p, _ := principalFromContext(c)

	var (
		plans []domain.PendingWorkoutPlan
		err   error
	)
	switch view := c.DefaultQuery("view", "pending"); view {
	case "pending":
		plans, err = h.reviews.ListPending(c.Request.Context(), p)
	case "reviewed":
		plans, err = h.reviews.ListReviewed(c.Request.Context(), p)
	default:
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("unknown view %q", view))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Decide approves or rejects a pending plan.
// POST /api/v1/trainer/plans/:id/decision
func (h *TrainerHandler) Decide(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	p, _ := principalFromContext(c)

	plan, err := h.reviews.SubmitDecision(c.Request.Context(), p, c.Param("id"), req.Decision, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Chat asks the review assistant about a plan.
// POST /api/v1/trainer/plans/:id/chat
func (h *TrainerHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	p, _ := principalFromContext(c)

	reply, err := h.reviews.Chat(c.Request.Context(), p, c.Param("id"), req.History)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// Publish uploads the approved plan PDF and returns a download link.
// POST /api/v1/trainer/plans/:id/publish
func (h *TrainerHandler) Publish(c *gin.Context) {
	p, _ := principalFromContext(c)
	url, err := h.exports.Publish(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
