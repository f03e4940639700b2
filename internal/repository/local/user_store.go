package local

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
)

// localUser carries the password hash that domain.User hides from JSON.
type localUser struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

// UserStore keeps accounts in one map under KeyUsers, keyed by lowercased email.
type UserStore struct {
	store
	mu sync.Mutex
}

func NewUserStore(kv KeyValue, logger *zap.Logger, m *metrics.Metrics) *UserStore {
	return &UserStore{store: store{kv: kv, logger: logger, metrics: m}}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[map[string]localUser](&s.store, KeyUsers)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if users == nil {
		users = make(map[string]localUser)
	}
	key := domain.NormalizeEmail(user.Email)
	if _, exists := users[key]; exists {
		return primitive.NilObjectID, repository.ErrDuplicateEmail
	}

	user.ID = primitive.NewObjectID()
	user.Email = key
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	users[key] = localUser{User: *user, PasswordHash: user.PasswordHash}
	if err := save(&s.store, KeyUsers, users); err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := domain.NormalizeEmail(email)
	return s.find(func(u *domain.User) bool { return u.Email == key })
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.ID == id })
}

func (s *UserStore) find(match func(u *domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	users, err := load[map[string]localUser](&s.store, KeyUsers)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, lu := range users {
		u := lu.User
		if match(&u) {
			u.PasswordHash = lu.PasswordHash
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
