package local

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
)

// ProgressStore keeps all owners' progress in one map under KeyUserProgress.
type ProgressStore struct {
	store
	mu sync.Mutex
}

func NewProgressStore(kv KeyValue, logger *zap.Logger, m *metrics.Metrics) *ProgressStore {
	return &ProgressStore{store: store{kv: kv, logger: logger, metrics: m}}
}

var _ repository.ProgressRepository = (*ProgressStore)(nil)

func (s *ProgressStore) Get(ctx context.Context, email string) (*domain.UserProgress, error) {
	key := domain.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := load[map[string]*domain.UserProgress](&s.store, KeyUserProgress)
	if err != nil {
		return nil, err
	}
	p, ok := all[key]
	if !ok || p == nil {
		return domain.NewUserProgress(key), nil
	}
	if p.WeightLog == nil {
		p.WeightLog = []domain.WeightEntry{}
	}
	if p.PersonalRecords == nil {
		p.PersonalRecords = []domain.PersonalRecordEntry{}
	}
	p.Email = key
	return p, nil
}

func (s *ProgressStore) Save(ctx context.Context, progress *domain.UserProgress) error {
	progress.Email = domain.NormalizeEmail(progress.Email)
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := load[map[string]*domain.UserProgress](&s.store, KeyUserProgress)
	if err != nil {
		return err
	}
	if all == nil {
		all = make(map[string]*domain.UserProgress)
	}
	all[progress.Email] = progress
	return save(&s.store, KeyUserProgress, all)
}
