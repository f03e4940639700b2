package local

import (
	"context"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
)

// AssessmentScope separates account and guest owners sharing one KV, so a guest session
// id can never address an account record.
type AssessmentScope string

const (
	ScopeAccount AssessmentScope = KeyAccountLatestNS
	ScopeGuest   AssessmentScope = KeyGuestLatestNS
)

// AssessmentStore keeps one latest assessment per owner under its own key.
type AssessmentStore struct {
	store
	ns string
}

func NewAssessmentStore(kv KeyValue, scope AssessmentScope, logger *zap.Logger, m *metrics.Metrics) *AssessmentStore {
	return &AssessmentStore{store: store{kv: kv, logger: logger, metrics: m}, ns: string(scope)}
}

var _ repository.AssessmentStore = (*AssessmentStore)(nil)

func (s *AssessmentStore) GetLatest(ctx context.Context, owner string) (*domain.Assessment, error) {
	a, err := load[*domain.Assessment](&s.store, s.ns+owner)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (s *AssessmentStore) SetLatest(ctx context.Context, owner string, a *domain.Assessment) error {
	return save(&s.store, s.ns+owner, a)
}

func (s *AssessmentStore) ClearLatest(ctx context.Context, owner string) error {
	return s.kv.Delete(s.ns + owner)
}
