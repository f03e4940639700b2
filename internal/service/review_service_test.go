package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/repository/local"
)

func seedPlan(t *testing.T, plans *local.PlanStore, id, trainer string) {
	t.Helper()
	require.NoError(t, plans.Create(context.Background(), &domain.PendingWorkoutPlan{
		ID:                  id,
		UserEmail:           "sam@x.com",
		UserName:            "Sam",
		AssignedTrainerName: trainer,
		Status:              domain.PlanStatusPending,
		GeneratedAt:         time.Now().UTC(),
	}))
}

func newReview(t *testing.T, plans *local.PlanStore, gw *mockGateway) *reviewService {
	t.Helper()
	svc := NewReviewService(plans, testRoster(t), gw, zap.NewNop(), nil).(*reviewService)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// Approve with notes, then a late rejection fails and changes nothing.
func TestReviewService_ApproveThenRejectFails(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "Athul")
	svc := newReview(t, plans, nil)
	athul := trainerPrincipal("Athul")

	approved, err := svc.SubmitDecision(ctx, athul, "p1", domain.PlanStatusApproved, "Great job")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusApproved, approved.Status)
	assert.Equal(t, "Great job", approved.TrainerNotes)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, svc.now(), *approved.ApprovedAt)

	_, err = svc.SubmitDecision(ctx, athul, "p1", domain.PlanStatusRejected, "")
	assert.ErrorIs(t, err, ErrPlanNotPending)

	stored, err := plans.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusApproved, stored.Status)
	assert.Equal(t, "Great job", stored.TrainerNotes)
}

func TestReviewService_RejectLeavesApprovedAtUnset(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "Saieel")
	svc := newReview(t, plans, nil)

	rejected, err := svc.SubmitDecision(ctx, trainerPrincipal("saieel"), "p1", domain.PlanStatusRejected, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedAt)
	assert.False(t, rejected.Exportable())
}

func TestReviewService_Capability(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "Athul")
	svc := newReview(t, plans, nil)

	tests := []struct {
		name      string
		principal domain.Principal
		planID    string
		decision  domain.PlanStatus
		want      error
	}{
		{"other trainer", trainerPrincipal("Saieel"), "p1", domain.PlanStatusApproved, ErrNotAssignedTrainer},
		{"unknown trainer", trainerPrincipal("Mallory"), "p1", domain.PlanStatusApproved, ErrNotAssignedTrainer},
		{"client", domain.Principal{Subject: "abc", Role: domain.RoleClient}, "p1", domain.PlanStatusApproved, ErrNotAssignedTrainer},
		{"anonymous", domain.Principal{}, "p1", domain.PlanStatusApproved, ErrNotAssignedTrainer},
		{"missing plan", trainerPrincipal("Athul"), "nope", domain.PlanStatusApproved, ErrPlanNotFound},
		{"pending is not a decision", trainerPrincipal("Athul"), "p1", domain.PlanStatusPending, ErrInvalidDecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitDecision(ctx, tt.principal, tt.planID, tt.decision, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := plans.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusPending, stored.Status)
}

func TestReviewService_Lists(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "Athul")
	seedPlan(t, plans, "p2", "Athul")
	seedPlan(t, plans, "p3", "Saieel")
	svc := newReview(t, plans, nil)
	athul := trainerPrincipal("Athul")

	_, err := svc.SubmitDecision(ctx, athul, "p2", domain.PlanStatusApproved, "")
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx, athul)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].ID)

	reviewed, err := svc.ListReviewed(ctx, athul)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)
	assert.Equal(t, "p2", reviewed[0].ID)

	_, err = svc.ListPending(ctx, domain.Principal{Subject: "x", Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrNotAssignedTrainer)
}

// Listing and single-plan access agree on how trainer names compare.
func TestReviewService_TrainerNameCase(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "athul")
	svc := newReview(t, plans, nil)
	athul := trainerPrincipal("ATHUL")

	pending, err := svc.ListPending(ctx, athul)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	plan, err := svc.AssignedPlan(ctx, athul, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", plan.ID)
}

func TestReviewService_RacingDecisions(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "Athul")
	svc := newReview(t, plans, nil)
	athul := trainerPrincipal("Athul")

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := domain.PlanStatusApproved
			if i%2 == 0 {
				d = domain.PlanStatusRejected
			}
			_, err := svc.SubmitDecision(ctx, athul, "p1", d, "")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrPlanNotPending)
	}
	assert.Equal(t, 1, wins)
}

func TestReviewService_Chat(t *testing.T) {
	ctx := context.Background()
	plans := newPlanStore()
	seedPlan(t, plans, "p1", "Athul")
	gw := new(mockGateway)
	svc := newReview(t, plans, gw)

	history := []domain.ChatMessage{{Role: domain.ChatRoleUser, Text: "Is day A too hard?"}}
	gw.On("ReviewChat", mock.Anything, mock.MatchedBy(func(p *domain.PendingWorkoutPlan) bool { return p.ID == "p1" }), history).
		Return("It looks fine for a beginner.", nil).Once()

	reply, err := svc.Chat(ctx, trainerPrincipal("Athul"), "p1", history)
	require.NoError(t, err)
	assert.Equal(t, "It looks fine for a beginner.", reply)

	_, err = svc.Chat(ctx, trainerPrincipal("Saieel"), "p1", history)
	assert.ErrorIs(t, err, ErrNotAssignedTrainer)
	gw.AssertExpectations(t)
}

// After any sequence of decisions the first one sticks, and approvedAt is set exactly when
// the plan is approved.
func TestReviewService_DecisionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("first decision wins and stamps follow status", prop.ForAll(
		func(approve []bool) bool {
			decisions := make([]domain.PlanStatus, len(approve))
			for i, a := range approve {
				decisions[i] = domain.PlanStatusRejected
				if a {
					decisions[i] = domain.PlanStatusApproved
				}
			}
			ctx := context.Background()
			plans := newPlanStore()
			seedPlan(t, plans, "p1", "Athul")
			svc := newReview(t, plans, nil)
			athul := trainerPrincipal("Athul")

			for i, d := range decisions {
				_, err := svc.SubmitDecision(ctx, athul, "p1", d, "")
				if (i == 0) != (err == nil) {
					return false
				}
			}

			stored, err := plans.GetByID(ctx, "p1")
			if err != nil {
				return false
			}
			want := domain.PlanStatusPending
			if len(decisions) > 0 {
				want = decisions[0]
			}
			if stored.Status != want {
				return false
			}
			return (stored.ApprovedAt != nil) == (stored.Status == domain.PlanStatusApproved)
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
