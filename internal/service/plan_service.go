package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/gateway"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
)

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanOwnerMissing = errors.New("plan owner email and name are required")
)

const maxIDAttempts = 3

// PlanGenerator produces a validated draft for a report image.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, reportImage, ownerName string, answers *domain.AnswerRecord) (*gateway.PlanDraft, error)
}

type PlanService interface {
	// Generate runs plan generation and stores the result as pending. Nothing is stored
	// when generation fails.
	Generate(ctx context.Context, ownerEmail, ownerName, reportImage string, answers *domain.AnswerRecord) (*domain.PendingWorkoutPlan, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]domain.PendingWorkoutPlan, error)
}

type planService struct {
	plans     repository.PlanRepository
	generator PlanGenerator
	newID     func() (uuid.UUID, error)
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewPlanService(plans repository.PlanRepository, generator PlanGenerator, logger *zap.Logger, m *metrics.Metrics) PlanService {
	return &planService{
		plans:     plans,
		generator: generator,
		newID:     uuid.NewV7,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}
}

func (s *planService) Generate(ctx context.Context, ownerEmail, ownerName, reportImage string, answers *domain.AnswerRecord) (*domain.PendingWorkoutPlan, error) {
	ownerEmail = strings.TrimSpace(ownerEmail)
	ownerName = strings.TrimSpace(ownerName)
	if ownerEmail == "" || ownerName == "" {
		return nil, ErrPlanOwnerMissing
	}

	draft, err := s.generator.GeneratePlan(ctx, reportImage, ownerName, answers)
	if err != nil {
		return nil, err
	}

	plan := &domain.PendingWorkoutPlan{
		UserEmail:           ownerEmail,
		UserName:            ownerName,
		AssignedTrainerName: draft.Trainer.Name,
		Status:              domain.PlanStatusPending,
		GeneratedAt:         s.now().UTC(),
		PlanData:            draft.PlanData,
		QuizData:            answers.Clone(),
	}

	for attempt := 1; ; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("generate plan id: %w", err)
		}
		plan.ID = id.String()

		err = s.plans.Create(ctx, plan)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateID) || attempt == maxIDAttempts {
			return nil, fmt.Errorf("store plan: %w", err)
		}
		s.logger.Warn("plan id collision, reassigning", zap.String("plan_id", plan.ID))
	}

	s.metrics.PlanCreated()
	s.logger.Info("plan created",
		zap.String("plan_id", plan.ID),
		zap.String("trainer", plan.AssignedTrainerName),
	)
	return plan, nil
}

func (s *planService) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.PendingWorkoutPlan, error) {
	if strings.TrimSpace(ownerEmail) == "" {
		return nil, ErrPlanOwnerMissing
	}
	return s.plans.ListByOwner(ctx, ownerEmail)
}
