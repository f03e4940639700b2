package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/export"
	"alcyxob/ifit-coach/internal/gateway"
	"alcyxob/ifit-coach/internal/service"
	"alcyxob/ifit-coach/internal/survey"
)

// respondError maps a service error to a status code and aborts. Unexpected errors are
// attached to the context so the request logger records them.
func respondError(c *gin.Context, err error) {
	var verr *survey.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  verr.Message,
			"stepId": verr.StepID,
			"step":   verr.Index,
		})
		return
	}

	var failure *gateway.Failure
	if errors.As(err, &failure) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":     failure.Message,
			"kind":      failure.Kind,
			"retryable": failure.Retryable(),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrNoIdentity):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotAssignedTrainer):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrNoAssessment),
		errors.Is(err, service.ErrEntryNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanNotPending),
		errors.Is(err, service.ErrPlanNotApproved),
		errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrInvalidProgress),
		errors.Is(err, service.ErrPlanOwnerMissing),
		errors.Is(err, service.ErrInvalidRegistration),
		errors.Is(err, gateway.ErrReportImageRequired),
		errors.Is(err, gateway.ErrEmptyConversation),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, survey.ErrStepOutOfRange),
		errors.Is(err, survey.ErrStepNotSkippable):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPublishingDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
