package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/service"
	"alcyxob/ifit-coach/internal/survey"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Assessments service.AssessmentService
	Plans       service.PlanService
	Reviews     service.ReviewService
	Exports     service.ExportService
	Progress    service.ProgressService
	Survey      *survey.Engine
	Picker      survey.Picker
	Metrics     *metrics.Metrics
}

func SetupRoutes(router *gin.Engine, jwtSecret string, s Services) {
	authHandler := NewAuthHandler(s.Auth)
	surveyHandler := NewSurveyHandler(s.Survey, s.Picker)
	assessmentHandler := NewAssessmentHandler(s.Assessments)
	planHandler := NewPlanHandler(s.Plans, s.Assessments, s.Exports)
	trainerHandler := NewTrainerHandler(s.Reviews, s.Exports)
	progressHandler := NewProgressHandler(s.Progress)

	authMiddleware := AuthMiddleware(jwtSecret)
	optionalAuth := OptionalAuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if s.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
		apiV1.POST("/trainer/login", authHandler.TrainerLogin)

		surveyGroup := apiV1.Group("/survey")
		{
			surveyGroup.GET("/steps", surveyHandler.Steps)
			surveyGroup.POST("/advance", surveyHandler.Advance)
			surveyGroup.POST("/retreat", surveyHandler.Retreat)
			surveyGroup.POST("/skip", surveyHandler.Skip)
		}
	}

	// Guests and signed-in clients share these routes.
	open := apiV1.Group("")
	open.Use(optionalAuth)
	{
		open.POST("/assessments", assessmentHandler.Submit)
		open.GET("/assessments/latest", assessmentHandler.Latest)
		open.DELETE("/assessments/latest", assessmentHandler.Clear)

		open.POST("/plans", planHandler.Create)
		open.GET("/plans", planHandler.List)
		open.GET("/plans/:id/export", planHandler.Export)

		open.POST("/chat/calories", assessmentHandler.CalorieChat)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		progressGroup := protected.Group("/progress")
		progressGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			progressGroup.GET("", progressHandler.Get)
			progressGroup.POST("/weights", progressHandler.AddWeight)
			progressGroup.DELETE("/weights/:date", progressHandler.RemoveWeight)
			progressGroup.POST("/records", progressHandler.AddRecord)
			progressGroup.DELETE("/records/:id", progressHandler.RemoveRecord)
		}

		// The review service re-checks roster membership and assignment on every call.
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.GET("/plans", trainerHandler.ListPlans)
			trainerGroup.POST("/plans/:id/decision", trainerHandler.Decide)
			trainerGroup.POST("/plans/:id/chat", trainerHandler.Chat)
			trainerGroup.POST("/plans/:id/publish", trainerHandler.Publish)
		}
	}
}
