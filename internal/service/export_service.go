package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/export"
	"alcyxob/ifit-coach/internal/repository"
	"alcyxob/ifit-coach/internal/storage"
)

var (
	ErrPlanNotApproved    = errors.New("plan needs further trainer review before it can be downloaded")
	ErrPublishingDisabled = errors.New("document publishing is not configured")
)

type ExportService interface {
	// ExportForOwner renders an approved plan for its owner. A plan owned by someone else is
	// reported as not found.
	ExportForOwner(ctx context.Context, planID, ownerEmail string, format export.Format) (*export.Document, error)
	// Publish uploads the approved plan PDF and returns a temporary download URL.
	Publish(ctx context.Context, principal domain.Principal, planID string) (string, error)
}

type exportService struct {
	plans    repository.PlanRepository
	reviews  ReviewService
	exporter *export.Exporter
	files    storage.FileStorage // nil disables publishing
	logger   *zap.Logger
}

func NewExportService(plans repository.PlanRepository, reviews ReviewService, exporter *export.Exporter, files storage.FileStorage, logger *zap.Logger) ExportService {
	return &exportService{plans: plans, reviews: reviews, exporter: exporter, files: files, logger: logger}
}

func (s *exportService) ExportForOwner(ctx context.Context, planID, ownerEmail string, format export.Format) (*export.Document, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if domain.NormalizeEmail(plan.UserEmail) != domain.NormalizeEmail(ownerEmail) {
		return nil, ErrPlanNotFound
	}
	return s.render(plan, format)
}

func (s *exportService) render(plan *domain.PendingWorkoutPlan, format export.Format) (*export.Document, error) {
	if !plan.Exportable() {
		return nil, ErrPlanNotApproved
	}
	doc, err := s.exporter.Export(plan, format)
	if errors.Is(err, export.ErrNotApproved) {
		return nil, ErrPlanNotApproved
	}
	return doc, err
}

func (s *exportService) Publish(ctx context.Context, principal domain.Principal, planID string) (string, error) {
	if s.files == nil {
		return "", ErrPublishingDisabled
	}
	plan, err := s.reviews.AssignedPlan(ctx, principal, planID)
	if err != nil {
		return "", err
	}
	doc, err := s.render(plan, export.FormatPDF)
	if err != nil {
		return "", err
	}

	key := "exports/" + plan.ID + "/" + doc.Filename
	if err := s.files.PutObject(ctx, key, doc.ContentType, doc.Data); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	s.logger.Info("published plan document", zap.String("plan_id", plan.ID), zap.String("key", key))
	return url, nil
}
