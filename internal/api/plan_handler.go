package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/export"
	"alcyxob/ifit-coach/internal/service"
)

type PlanHandler struct {
	plans       service.PlanService
	assessments service.AssessmentService
	exports     service.ExportService
}

func NewPlanHandler(plans service.PlanService, assessments service.AssessmentService, exports service.ExportService) *PlanHandler {
	return &PlanHandler{plans: plans, assessments: assessments, exports: exports}
}

type CreatePlanRequest struct {
	ReportImage string `json:"reportImage" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Name        string `json:"name"`
}

// owner resolves the plan owner: a signed-in client's claims win over body or query values.
func owner(c *gin.Context, email, name string) (string, string) {
	if p, ok := principalFromContext(c); ok && p.Role == domain.RoleClient && p.Email != "" {
		if p.Name != "" {
			name = p.Name
		}
		return p.Email, name
	}
	return email, name
}

// Create generates a plan from the uploaded report and queues it for review. The latest
// assessment, when there is one, gives the model extra context.
// POST /api/v1/plans
func (h *PlanHandler) Create(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	ctx := c.Request.Context()
	email, name := owner(c, req.Email, req.Name)

	var answers *domain.AnswerRecord
	latest, err := h.assessments.Latest(ctx, identityFromContext(c))
	switch {
	case err == nil:
		answers = &latest.Answers
		if name == "" {
			name = latest.Answers.Name
		}
		if email == "" {
			email = latest.Answers.Email
		}
	case errors.Is(err, service.ErrNoAssessment), errors.Is(err, service.ErrNoIdentity):
	default:
		respondError(c, err)
		return
	}

	plan, err := h.plans.Generate(ctx, email, name, req.ReportImage, answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// List returns the owner's plans, newest first.
// GET /api/v1/plans?email=
func (h *PlanHandler) List(c *gin.Context) {
	email, _ := owner(c, c.Query("email"), "")
	plans, err := h.plans.ListByOwner(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Export downloads an approved plan as a PDF or PNG.
// GET /api/v1/plans/:id/export?format=pdf|image&email=
func (h *PlanHandler) Export(c *gin.Context) {
	email, _ := owner(c, c.Query("email"), "")
	format := export.Format(c.DefaultQuery("format", string(export.FormatPDF)))

	doc, err := h.exports.ExportForOwner(c.Request.Context(), c.Param("id"), email, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
