package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/ifit-coach/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound       = RepositoryError("not found")
	ErrConflict       = RepositoryError("conflict: record changed since it was read")
	ErrDuplicateID    = RepositoryError("duplicate id")
	ErrDuplicateEmail = RepositoryError("email already registered")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores client accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// PlanRepository is the plan store. Plans are never deleted.
type PlanRepository interface {
	// Create rejects an id that already exists with ErrDuplicateID.
	Create(ctx context.Context, plan *domain.PendingWorkoutPlan) error
	GetByID(ctx context.Context, id string) (*domain.PendingWorkoutPlan, error)
	// ListByOwner matches the owner email case-insensitively, newest generatedAt first.
	ListByOwner(ctx context.Context, email string) ([]domain.PendingWorkoutPlan, error)
	// ListByTrainer returns plans assigned to trainer, newest first, optionally filtered by status.
	ListByTrainer(ctx context.Context, trainer string, statuses ...domain.PlanStatus) ([]domain.PendingWorkoutPlan, error)
	// Update merges u into the stored plan and returns the result. An unknown id is
	// ErrNotFound. When u.ExpectStatus is set and the stored status differs, nothing is
	// written and ErrConflict is returned.
	Update(ctx context.Context, id string, u domain.PlanUpdate) (*domain.PendingWorkoutPlan, error)
}

// ProgressRepository stores per-owner progress logs keyed by lowercased email.
type ProgressRepository interface {
	// Get returns an empty record when the owner has none yet.
	Get(ctx context.Context, email string) (*domain.UserProgress, error)
	Save(ctx context.Context, progress *domain.UserProgress) error
}

// AssessmentStore keeps the latest completed assessment per identity. The owner key is the
// user id for accounts and the guest session id for guests.
type AssessmentStore interface {
	GetLatest(ctx context.Context, owner string) (*domain.Assessment, error)
	SetLatest(ctx context.Context, owner string, a *domain.Assessment) error
	ClearLatest(ctx context.Context, owner string) error
}
