package local

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
)

// PlanStore keeps every plan in one JSON array under KeyPendingPlans. A mutex serializes
// read-modify-write so conditional updates are atomic within the process.
type PlanStore struct {
	store
	mu sync.Mutex
}

func NewPlanStore(kv KeyValue, logger *zap.Logger, m *metrics.Metrics) *PlanStore {
	return &PlanStore{store: store{kv: kv, logger: logger, metrics: m}}
}

var _ repository.PlanRepository = (*PlanStore)(nil)

func (s *PlanStore) all() ([]domain.PendingWorkoutPlan, error) {
	return load[[]domain.PendingWorkoutPlan](&s.store, KeyPendingPlans)
}

func (s *PlanStore) Create(ctx context.Context, plan *domain.PendingWorkoutPlan) error {
	if plan.ID == "" || plan.UserEmail == "" {
		return errors.New("plan requires id and userEmail")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.all()
	if err != nil {
		return err
	}
	for _, p := range plans {
		if p.ID == plan.ID {
			return repository.ErrDuplicateID
		}
	}
	plan.UserEmailKey = domain.NormalizeEmail(plan.UserEmail)
	return save(&s.store, KeyPendingPlans, append(plans, *plan))
}

func (s *PlanStore) GetByID(ctx context.Context, id string) (*domain.PendingWorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.all()
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *PlanStore) ListByOwner(ctx context.Context, email string) ([]domain.PendingWorkoutPlan, error) {
	key := domain.NormalizeEmail(email)
	return s.filter(func(p *domain.PendingWorkoutPlan) bool {
		return domain.NormalizeEmail(p.UserEmail) == key
	})
}

func (s *PlanStore) ListByTrainer(ctx context.Context, trainer string, statuses ...domain.PlanStatus) ([]domain.PendingWorkoutPlan, error) {
	key := domain.TrainerKey(trainer)
	return s.filter(func(p *domain.PendingWorkoutPlan) bool {
		if domain.TrainerKey(p.AssignedTrainerName) != key {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, st := range statuses {
			if p.Status == st {
				return true
			}
		}
		return false
	})
}

func (s *PlanStore) filter(keep func(p *domain.PendingWorkoutPlan) bool) ([]domain.PendingWorkoutPlan, error) {
	s.mu.Lock()
	plans, err := s.all()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := []domain.PendingWorkoutPlan{}
	for i := range plans {
		if keep(&plans[i]) {
			out = append(out, plans[i])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *PlanStore) Update(ctx context.Context, id string, u domain.PlanUpdate) (*domain.PendingWorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.all()
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID != id {
			continue
		}
		if u.ExpectStatus != nil && plans[i].Status != *u.ExpectStatus {
			return nil, repository.ErrConflict
		}
		u.Apply(&plans[i])
		if err := save(&s.store, KeyPendingPlans, plans); err != nil {
			return nil, err
		}
		updated := plans[i]
		return &updated, nil
	}
	return nil, repository.ErrNotFound
}

// sortNewestFirst orders by generatedAt descending with the time-ordered id as tiebreak.
func sortNewestFirst(plans []domain.PendingWorkoutPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		if !plans[i].GeneratedAt.Equal(plans[j].GeneratedAt) {
			return plans[i].GeneratedAt.After(plans[j].GeneratedAt)
		}
		return plans[i].ID > plans[j].ID
	})
}
