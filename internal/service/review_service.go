package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
)

var (
	ErrNotAssignedTrainer = errors.New("only the assigned trainer may act on this plan")
	ErrPlanNotPending     = errors.New("plan was already decided")
	ErrInvalidDecision    = errors.New("decision must be approved or rejected")
)

// ReviewAssistant answers trainer questions about a plan.
type ReviewAssistant interface {
	ReviewChat(ctx context.Context, plan *domain.PendingWorkoutPlan, history []domain.ChatMessage) (string, error)
}

// ReviewService is the only writer of plan status. Every method re-checks that the
// principal is a roster trainer assigned to the plan.
type ReviewService interface {
	ListPending(ctx context.Context, principal domain.Principal) ([]domain.PendingWorkoutPlan, error)
	ListReviewed(ctx context.Context, principal domain.Principal) ([]domain.PendingWorkoutPlan, error)
	SubmitDecision(ctx context.Context, principal domain.Principal, planID string, decision domain.PlanStatus, notes string) (*domain.PendingWorkoutPlan, error)
	Chat(ctx context.Context, principal domain.Principal, planID string, history []domain.ChatMessage) (string, error)
	// AssignedPlan loads a plan the principal is assigned to.
	AssignedPlan(ctx context.Context, principal domain.Principal, planID string) (*domain.PendingWorkoutPlan, error)
}

type reviewService struct {
	plans     repository.PlanRepository
	roster    TrainerRoster
	assistant ReviewAssistant
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewReviewService(plans repository.PlanRepository, roster TrainerRoster, assistant ReviewAssistant, logger *zap.Logger, m *metrics.Metrics) ReviewService {
	return &reviewService{
		plans:     plans,
		roster:    roster,
		assistant: assistant,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}
}

func (s *reviewService) trainer(p domain.Principal) (domain.Trainer, error) {
	if !p.IsTrainer() {
		return domain.Trainer{}, ErrNotAssignedTrainer
	}
	t, ok := s.roster.Lookup(p.Subject)
	if !ok {
		return domain.Trainer{}, ErrNotAssignedTrainer
	}
	return t, nil
}

func (s *reviewService) ListPending(ctx context.Context, principal domain.Principal) ([]domain.PendingWorkoutPlan, error) {
	t, err := s.trainer(principal)
	if err != nil {
		return nil, err
	}
	return s.plans.ListByTrainer(ctx, t.Name, domain.PlanStatusPending)
}

func (s *reviewService) ListReviewed(ctx context.Context, principal domain.Principal) ([]domain.PendingWorkoutPlan, error) {
	t, err := s.trainer(principal)
	if err != nil {
		return nil, err
	}
	return s.plans.ListByTrainer(ctx, t.Name, domain.PlanStatusApproved, domain.PlanStatusRejected)
}

func (s *reviewService) AssignedPlan(ctx context.Context, principal domain.Principal, planID string) (*domain.PendingWorkoutPlan, error) {
	t, err := s.trainer(principal)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !t.Is(plan.AssignedTrainerName) {
		return nil, ErrNotAssignedTrainer
	}
	return plan, nil
}

// SubmitDecision moves a pending plan to approved or rejected. The write is conditional on
// the stored status still being pending, so of two racing decisions only the first sticks.
func (s *reviewService) SubmitDecision(ctx context.Context, principal domain.Principal, planID string, decision domain.PlanStatus, notes string) (*domain.PendingWorkoutPlan, error) {
	if !decision.IsDecision() {
		return nil, ErrInvalidDecision
	}
	plan, err := s.AssignedPlan(ctx, principal, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Status.CanTransitionTo(decision) {
		s.metrics.ReviewDecision("conflict")
		return nil, ErrPlanNotPending
	}

	expect := domain.PlanStatusPending
	update := domain.PlanUpdate{ExpectStatus: &expect, Status: &decision}
	if notes = strings.TrimSpace(notes); notes != "" {
		update.TrainerNotes = &notes
	}
	if decision == domain.PlanStatusApproved {
		now := s.now().UTC()
		update.ApprovedAt = &now
	}

	updated, err := s.plans.Update(ctx, planID, update)
	switch {
	case errors.Is(err, repository.ErrConflict):
		s.metrics.ReviewDecision("conflict")
		return nil, ErrPlanNotPending
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrPlanNotFound
	case err != nil:
		return nil, fmt.Errorf("update plan status: %w", err)
	}

	s.metrics.ReviewDecision(string(decision))
	s.logger.Info("plan decided",
		zap.String("plan_id", planID),
		zap.String("trainer", principal.Subject),
		zap.String("decision", string(decision)),
	)
	return updated, nil
}

func (s *reviewService) Chat(ctx context.Context, principal domain.Principal, planID string, history []domain.ChatMessage) (string, error) {
	plan, err := s.AssignedPlan(ctx, principal, planID)
	if err != nil {
		return "", err
	}
	return s.assistant.ReviewChat(ctx, plan, history)
}
