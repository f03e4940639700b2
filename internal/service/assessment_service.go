package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/repository"
	"alcyxob/ifit-coach/internal/survey"
)

var (
	ErrNoIdentity   = errors.New("sign in or provide a guest session")
	ErrNoAssessment = errors.New("no completed assessment")
)

// ReportGenerator is the assessment side of the gateway.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, answers *domain.AnswerRecord) (*domain.ReportArtifact, error)
	CalorieChat(ctx context.Context, history []domain.ChatMessage) (string, error)
}

// Identity is who an assessment belongs to: a signed-in client or a guest session.
type Identity struct {
	Principal    *domain.Principal
	GuestSession string
}

type AssessmentService interface {
	// Submit validates the answers, generates the report, and keeps both as the latest
	// assessment. The stored assessment is left untouched when generation fails.
	Submit(ctx context.Context, id Identity, answers survey.Answers) (*domain.Assessment, error)
	Latest(ctx context.Context, id Identity) (*domain.Assessment, error)
	Clear(ctx context.Context, id Identity) error
	CalorieChat(ctx context.Context, history []domain.ChatMessage) (string, error)
}

type assessmentService struct {
	engine    *survey.Engine
	generator ReportGenerator
	accounts  repository.AssessmentStore
	guests    repository.AssessmentStore
	now       func() time.Time
	logger    *zap.Logger
}

// NewAssessmentService picks accounts for signed-in clients and guests for guest sessions.
func NewAssessmentService(engine *survey.Engine, generator ReportGenerator, accounts, guests repository.AssessmentStore, logger *zap.Logger) AssessmentService {
	return &assessmentService{
		engine:    engine,
		generator: generator,
		accounts:  accounts,
		guests:    guests,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *assessmentService) backend(id Identity) (repository.AssessmentStore, string, error) {
	if id.Principal != nil && id.Principal.Role == domain.RoleClient && id.Principal.Subject != "" {
		return s.accounts, id.Principal.Subject, nil
	}
	if id.GuestSession != "" {
		return s.guests, id.GuestSession, nil
	}
	return nil, "", ErrNoIdentity
}

func (s *assessmentService) Submit(ctx context.Context, id Identity, answers survey.Answers) (*domain.Assessment, error) {
	store, owner, err := s.backend(id)
	if err != nil {
		return nil, err
	}
	record, err := s.engine.BuildRecord(answers)
	if err != nil {
		return nil, err
	}

	report, err := s.generator.GenerateReport(ctx, record)
	if err != nil {
		return nil, err
	}

	a := &domain.Assessment{Answers: *record, Report: report, CompletedAt: s.now().UTC()}
	if err := store.SetLatest(ctx, owner, a); err != nil {
		// The report is still returned so the client does not lose it.
		s.logger.Error("failed to save latest assessment", zap.String("owner", owner), zap.Error(err))
	}
	return a, nil
}

func (s *assessmentService) Latest(ctx context.Context, id Identity) (*domain.Assessment, error) {
	store, owner, err := s.backend(id)
	if err != nil {
		return nil, err
	}
	a, err := store.GetLatest(ctx, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoAssessment
	}
	return a, err
}

func (s *assessmentService) Clear(ctx context.Context, id Identity) error {
	store, owner, err := s.backend(id)
	if err != nil {
		return err
	}
	return store.ClearLatest(ctx, owner)
}

func (s *assessmentService) CalorieChat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	return s.generator.CalorieChat(ctx, history)
}
