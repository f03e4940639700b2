package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/repository"
)

var (
	ErrInvalidProgress = errors.New("invalid progress entry")
	ErrEntryNotFound   = errors.New("progress entry not found")
)

type ProgressService interface {
	Get(ctx context.Context, email string) (*domain.UserProgress, error)
	AddWeight(ctx context.Context, email string, date time.Time, weight float64) (*domain.UserProgress, error)
	RemoveWeight(ctx context.Context, email string, date time.Time) (*domain.UserProgress, error)
	AddPersonalRecord(ctx context.Context, email, exercise, value string, date time.Time) (*domain.UserProgress, error)
	RemovePersonalRecord(ctx context.Context, email, id string) (*domain.UserProgress, error)
}

type progressService struct {
	repo   repository.ProgressRepository
	logger *zap.Logger
	mu     sync.Mutex // serializes read-modify-write per process
}

func NewProgressService(repo repository.ProgressRepository, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, logger: logger}
}

func (s *progressService) Get(ctx context.Context, email string) (*domain.UserProgress, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidProgress
	}
	return s.repo.Get(ctx, email)
}

func (s *progressService) modify(ctx context.Context, op, email string, fn func(p *domain.UserProgress) error) (*domain.UserProgress, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidProgress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.Get(ctx, email)
	if err != nil {
		s.logger.Error("failed to load progress", zap.String("operation", op), zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if err := fn(p); err != nil {
		s.logger.Debug("progress change rejected", zap.String("operation", op), zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to save progress", zap.String("operation", op), zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.logger.Info("progress updated",
		zap.String("operation", op),
		zap.String("email", p.Email),
		zap.Int("weight_entries", len(p.WeightLog)),
		zap.Int("personal_records", len(p.PersonalRecords)),
	)
	return p, nil
}

func (s *progressService) AddWeight(ctx context.Context, email string, date time.Time, weight float64) (*domain.UserProgress, error) {
	if date.IsZero() || weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return nil, ErrInvalidProgress
	}
	return s.modify(ctx, "add_weight", email, func(p *domain.UserProgress) error {
		p.AddWeight(domain.WeightEntry{Date: date.UTC(), Weight: weight})
		return nil
	})
}

func (s *progressService) RemoveWeight(ctx context.Context, email string, date time.Time) (*domain.UserProgress, error) {
	return s.modify(ctx, "remove_weight", email, func(p *domain.UserProgress) error {
		if !p.RemoveWeight(date.UTC()) {
			return ErrEntryNotFound
		}
		return nil
	})
}

func (s *progressService) AddPersonalRecord(ctx context.Context, email, exercise, value string, date time.Time) (*domain.UserProgress, error) {
	exercise, value = strings.TrimSpace(exercise), strings.TrimSpace(value)
	if exercise == "" || value == "" || date.IsZero() {
		return nil, ErrInvalidProgress
	}
	return s.modify(ctx, "add_record", email, func(p *domain.UserProgress) error {
		p.AddPersonalRecord(domain.PersonalRecordEntry{
			ID:       uuid.NewString(),
			Date:     date.UTC(),
			Exercise: exercise,
			Value:    value,
		})
		return nil
	})
}

func (s *progressService) RemovePersonalRecord(ctx context.Context, email, id string) (*domain.UserProgress, error) {
	return s.modify(ctx, "remove_record", email, func(p *domain.UserProgress) error {
		if !p.RemovePersonalRecord(id) {
			return ErrEntryNotFound
		}
		return nil
	})
}
