package service

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/gateway"
	"alcyxob/ifit-coach/internal/repository/local"
	"alcyxob/ifit-coach/internal/survey"
)

// mockGateway stands in for the generative gateway.
type mockGateway struct{ mock.Mock }

func (m *mockGateway) GeneratePlan(ctx context.Context, reportImage, ownerName string, answers *domain.AnswerRecord) (*gateway.PlanDraft, error) {
	args := m.Called(ctx, reportImage, ownerName, answers)
	d, _ := args.Get(0).(*gateway.PlanDraft)
	return d, args.Error(1)
}

func (m *mockGateway) GenerateReport(ctx context.Context, answers *domain.AnswerRecord) (*domain.ReportArtifact, error) {
	args := m.Called(ctx, answers)
	r, _ := args.Get(0).(*domain.ReportArtifact)
	return r, args.Error(1)
}

func (m *mockGateway) CalorieChat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, history)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) ReviewChat(ctx context.Context, plan *domain.PendingWorkoutPlan, history []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, plan, history)
	return args.String(0), args.Error(1)
}

func testRoster(t *testing.T) *gateway.Assigner {
	t.Helper()
	a, err := gateway.NewAssigner([]domain.Trainer{
		{Name: "Athul", Specialties: []domain.Specialty{domain.SpecialtyWeightLoss}},
		{Name: "Athithiya", Specialties: []domain.Specialty{domain.SpecialtyBodybuilding}},
		{Name: "Saieel", Specialties: []domain.Specialty{domain.SpecialtyLeanBody}},
	}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	return a
}

func newPlanStore() *local.PlanStore {
	return local.NewPlanStore(local.NewMemoryKV(), zap.NewNop(), nil)
}

func trainerPrincipal(name string) domain.Principal {
	return domain.Principal{Subject: name, Name: name, Role: domain.RoleTrainer}
}

func testDraft(trainer string) *gateway.PlanDraft {
	return &gateway.PlanDraft{
		Trainer: domain.Trainer{Name: trainer},
		PlanData: domain.PlanData{
			PresentationMarkdown: "# Plan",
			TrainerChecklist:     []string{"Check form cues"},
			WorkoutGuideDraft: domain.WorkoutGuideDraft{
				ProgramWeeks:  4,
				WeeklyDays:    1,
				EquipmentTier: domain.EquipmentBodyweight,
				Phases:        []domain.WorkoutPhase{{Name: domain.PhaseFoundation, Weeks: [2]int{1, 4}}},
				Days:          []domain.WorkoutDay{{DayName: "Day A", Conditioning: domain.ConditioningBlock{Style: "steady"}}},
			},
		},
	}
}

func validSurveyAnswers() survey.Answers {
	return survey.Answers{
		"name":              "Sam",
		"email":             "sam@x.com",
		"gender":            "male",
		"age":               30.0,
		"currentWeight":     90.0,
		"height":            175.0,
		"goal":              "lose_weight",
		"targetWeight":      80.0,
		"targetPeriodWeeks": 12.0,
		"dailyActivity":     "sedentary",
		"fitnessLevel":      "beginner",
		"gymDaysPerWeek":    2.0,
		"workoutLocation":   "home",
		"sleepHours":        "7_to_8",
		"waterIntakeLiters": 2.5,
		"dietType":          "balanced",
		"motivation":        "To feel more energetic",
	}
}
