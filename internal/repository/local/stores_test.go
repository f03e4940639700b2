package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/repository"
)

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	_, ok, err := kv.Get("ifit_latest_assessment:guest/1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("ifit_latest_assessment:guest/1", []byte(`{"a":1}`)))
	v, ok, err := kv.Get("ifit_latest_assessment:guest/1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))

	require.NoError(t, kv.Delete("ifit_latest_assessment:guest/1"))
	require.NoError(t, kv.Delete("ifit_latest_assessment:guest/1"))
	_, ok, _ = kv.Get("ifit_latest_assessment:guest/1")
	assert.False(t, ok)
}

func TestProgressStore(t *testing.T) {
	ctx := context.Background()
	s := NewProgressStore(NewMemoryKV(), zap.NewNop(), nil)

	p, err := s.Get(ctx, "Alex@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", p.Email)
	assert.Empty(t, p.WeightLog)

	p.AddWeight(domain.WeightEntry{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Weight: 80})
	p.AddWeight(domain.WeightEntry{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Weight: 82})
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Get(ctx, "ALEX@example.com")
	require.NoError(t, err)
	require.Len(t, got.WeightLog, 2)
	assert.Equal(t, 82.0, got.WeightLog[0].Weight)
}

func TestProgressStore_CorruptedResets(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyUserProgress, []byte(`[1,2`)))
	s := NewProgressStore(kv, zap.NewNop(), nil)

	p, err := s.Get(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, p.WeightLog)
	_, ok, _ := kv.Get(KeyUserProgress)
	assert.False(t, ok)
}

func TestAssessmentStore(t *testing.T) {
	ctx := context.Background()
	s := NewAssessmentStore(NewMemoryKV(), ScopeGuest, zap.NewNop(), nil)

	_, err := s.GetLatest(ctx, "guest-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	a := &domain.Assessment{Answers: domain.AnswerRecord{Name: "Alex"}, CompletedAt: time.Now().UTC()}
	require.NoError(t, s.SetLatest(ctx, "guest-1", a))
	got, err := s.GetLatest(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Answers.Name)

	require.NoError(t, s.ClearLatest(ctx, "guest-1"))
	_, err = s.GetLatest(ctx, "guest-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssessmentStore_GuestCannotReachAccount(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	accounts := NewAssessmentStore(kv, ScopeAccount, zap.NewNop(), nil)
	guests := NewAssessmentStore(kv, ScopeGuest, zap.NewNop(), nil)

	userID := "665f1c2a9b1e8a3d4c5b6789"
	a := &domain.Assessment{Answers: domain.AnswerRecord{Name: "Alice", Email: "alice@x.com"}, CompletedAt: time.Now().UTC()}
	require.NoError(t, accounts.SetLatest(ctx, userID, a))

	_, err := guests.GetLatest(ctx, userID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, guests.ClearLatest(ctx, userID))
	got, err := accounts.GetLatest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Answers.Name)

	_, ok, err := kv.Get(KeyAccountLatestNS + userID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore(NewMemoryKV(), zap.NewNop(), nil)

	u := &domain.User{Name: "Alex", Email: "Alex@Example.com", PasswordHash: "hash", Role: domain.RoleClient}
	id, err := s.Create(ctx, u)
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	_, err = s.Create(ctx, &domain.User{Name: "Dup", Email: "alex@example.com", PasswordHash: "x", Role: domain.RoleClient})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	byEmail, err := s.GetByEmail(ctx, "ALEX@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", byID.Email)

	_, err = s.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
