package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/export"
	"alcyxob/ifit-coach/internal/repository/local"
)

type mockStorage struct{ mock.Mock }

func (m *mockStorage) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, expires)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type exportFixture struct {
	plans   *local.PlanStore
	review  ReviewService
	files   *mockStorage
	service ExportService
}

func newExportFixture(t *testing.T, withStorage bool) *exportFixture {
	t.Helper()
	f := &exportFixture{plans: newPlanStore(), files: new(mockStorage)}
	f.review = newReview(t, f.plans, nil)
	exporter := export.NewExporter(1, zap.NewNop(), nil)
	if withStorage {
		f.service = NewExportService(f.plans, f.review, exporter, f.files, zap.NewNop())
	} else {
		f.service = NewExportService(f.plans, f.review, exporter, nil, zap.NewNop())
	}

	draft := testDraft("Athul")
	require.NoError(t, f.plans.Create(context.Background(), &domain.PendingWorkoutPlan{
		ID:                  "p1",
		UserEmail:           "Sam@x.com",
		UserName:            "Sam",
		AssignedTrainerName: "Athul",
		Status:              domain.PlanStatusPending,
		GeneratedAt:         time.Now().UTC(),
		PlanData:            draft.PlanData,
	}))
	return f
}

// Export of a pending plan is refused before anything is rendered.
func TestExportService_PendingPlanRefused(t *testing.T) {
	f := newExportFixture(t, false)

	for _, format := range []export.Format{export.FormatPDF, export.FormatImage} {
		doc, err := f.service.ExportForOwner(context.Background(), "p1", "sam@x.com", format)
		assert.ErrorIs(t, err, ErrPlanNotApproved)
		assert.Nil(t, doc)
	}
}

func TestExportService_ApprovedPlan(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t, false)
	_, err := f.review.SubmitDecision(ctx, trainerPrincipal("Athul"), "p1", domain.PlanStatusApproved, "Great job")
	require.NoError(t, err)

	doc, err := f.service.ExportForOwner(ctx, "p1", "SAM@X.COM", export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc.Data[:4]))

	_, err = f.service.ExportForOwner(ctx, "p1", "someone@else.com", export.FormatPDF)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = f.service.ExportForOwner(ctx, "missing", "sam@x.com", export.FormatPDF)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestExportService_RejectedPlanRefused(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t, false)
	_, err := f.review.SubmitDecision(ctx, trainerPrincipal("Athul"), "p1", domain.PlanStatusRejected, "")
	require.NoError(t, err)

	_, err = f.service.ExportForOwner(ctx, "p1", "sam@x.com", export.FormatImage)
	assert.ErrorIs(t, err, ErrPlanNotApproved)
}

func TestExportService_Publish(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t, true)
	athul := trainerPrincipal("Athul")

	_, err := f.service.Publish(ctx, athul, "p1")
	assert.ErrorIs(t, err, ErrPlanNotApproved)

	_, err = f.review.SubmitDecision(ctx, athul, "p1", domain.PlanStatusApproved, "")
	require.NoError(t, err)

	key := "exports/p1/workout-plan-p1.pdf"
	f.files.On("PutObject", mock.Anything, key, "application/pdf", mock.Anything).Return(nil).Once()
	f.files.On("GeneratePresignedDownloadURL", mock.Anything, key, mock.Anything).Return("https://files/p1.pdf", nil).Once()

	url, err := f.service.Publish(ctx, athul, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://files/p1.pdf", url)

	_, err = f.service.Publish(ctx, trainerPrincipal("Saieel"), "p1")
	assert.ErrorIs(t, err, ErrNotAssignedTrainer)
	f.files.AssertExpectations(t)
}

func TestExportService_PublishFailures(t *testing.T) {
	ctx := context.Background()
	athul := trainerPrincipal("Athul")

	disabled := newExportFixture(t, false)
	_, err := disabled.service.Publish(ctx, athul, "p1")
	assert.ErrorIs(t, err, ErrPublishingDisabled)

	f := newExportFixture(t, true)
	_, err = f.review.SubmitDecision(ctx, athul, "p1", domain.PlanStatusApproved, "")
	require.NoError(t, err)
	f.files.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("s3 down")).Once()
	_, err = f.service.Publish(ctx, athul, "p1")
	assert.ErrorContains(t, err, "s3 down")
}
