package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/export"
	"alcyxob/ifit-coach/internal/gateway"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository/local"
	"alcyxob/ifit-coach/internal/service"
	"alcyxob/ifit-coach/internal/survey"
)

const testSecret = "api-test-secret"

// fakeGateway returns canned results; planErr forces a generation failure.
type fakeGateway struct {
	roster  *gateway.Assigner
	planErr error
}

func (f *fakeGateway) GenerateReport(ctx context.Context, answers *domain.AnswerRecord) (*domain.ReportArtifact, error) {
	return &domain.ReportArtifact{ReportMarkdown: "# Report for " + answers.Name}, nil
}

func (f *fakeGateway) CalorieChat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	return "About 105 kcal.", nil
}

func (f *fakeGateway) ReviewChat(ctx context.Context, plan *domain.PendingWorkoutPlan, history []domain.ChatMessage) (string, error) {
	return "Looks balanced.", nil
}

func (f *fakeGateway) GeneratePlan(ctx context.Context, reportImage, ownerName string, answers *domain.AnswerRecord) (*gateway.PlanDraft, error) {
	if f.planErr != nil {
		return nil, f.planErr
	}
	goal := domain.Goal("")
	if answers != nil {
		goal = answers.Goal
	}
	return &gateway.PlanDraft{
		Trainer: f.roster.Assign(goal),
		PlanData: domain.PlanData{
			PresentationMarkdown: "# Plan for " + ownerName,
			WorkoutGuideDraft: domain.WorkoutGuideDraft{
				ProgramWeeks:  4,
				WeeklyDays:    1,
				EquipmentTier: domain.EquipmentBodyweight,
				Phases:        []domain.WorkoutPhase{{Name: domain.PhaseFoundation, Weeks: [2]int{1, 4}}},
				Days:          []domain.WorkoutDay{{DayName: "Day A", Conditioning: domain.ConditioningBlock{Style: "steady"}}},
			},
		},
	}, nil
}

type testServer struct {
	router *gin.Engine
	gw     *fakeGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	m := metrics.New()

	hash, err := bcrypt.GenerateFromPassword([]byte("coach-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	// A single-trainer roster keeps assignment deterministic.
	roster, err := gateway.NewAssigner([]domain.Trainer{
		{Name: "Athul", Specialties: []domain.Specialty{domain.SpecialtyWeightLoss}, PasswordHash: string(hash)},
	}, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)

	steps, err := survey.DefaultSteps()
	require.NoError(t, err)
	engine, err := survey.NewEngine(steps)
	require.NoError(t, err)

	kv := local.NewMemoryKV()
	plans := local.NewPlanStore(kv, logger, m)
	gw := &fakeGateway{roster: roster}
	reviews := service.NewReviewService(plans, roster, gw, logger, m)

	router := gin.New()
	router.Use(Recovery(logger), RequestLogger(logger))
	SetupRoutes(router, testSecret, Services{
		Auth:        service.NewAuthService(local.NewUserStore(kv, logger, m), roster, testSecret, 0, logger),
		Assessments: service.NewAssessmentService(engine, gw, local.NewAssessmentStore(kv, local.ScopeAccount, logger, m), local.NewAssessmentStore(kv, local.ScopeGuest, logger, m), logger),
		Plans:       service.NewPlanService(plans, gw, logger, m),
		Reviews:     reviews,
		Exports:     service.NewExportService(plans, reviews, export.NewExporter(1, logger, m), nil, logger),
		Progress:    service.NewProgressService(local.NewProgressStore(kv, logger, m), logger),
		Survey:      engine,
		Picker:      rand.New(rand.NewPCG(1, 2)),
		Metrics:     m,
	})
	return &testServer{router: router, gw: gw}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func validAnswers() map[string]any {
	return map[string]any{
		"name": "Sam", "email": "sam@x.com", "gender": "male", "age": 30, "currentWeight": 90,
		"height": 175, "goal": "lose_weight", "targetWeight": 80, "targetPeriodWeeks": 12,
		"dailyActivity": "sedentary", "fitnessLevel": "beginner", "gymDaysPerWeek": 2,
		"workoutLocation": "home", "sleepHours": "7_to_8", "waterIntakeLiters": 2.5,
		"dietType": "balanced", "motivation": "To feel more energetic",
	}
}

func TestPingAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSurveyRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/survey/steps", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["steps"], 18)

	rec = s.do(t, http.MethodPost, "/api/v1/survey/advance", map[string]any{"answers": map[string]any{"name": "Sam"}, "step": 0}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["next"])
	assert.Equal(t, false, body["complete"])
	assert.NotEmpty(t, body["dialogue"])

	rec = s.do(t, http.MethodPost, "/api/v1/survey/advance", map[string]any{"answers": map[string]any{"email": "nope"}, "step": 1}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decode(t, rec)["stepId"])

	rec = s.do(t, http.MethodPost, "/api/v1/survey/skip", map[string]any{"answers": map[string]any{}, "step": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/survey/retreat", map[string]any{"step": 0}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["next"])

	rec = s.do(t, http.MethodPost, "/api/v1/survey/advance", map[string]any{"answers": validAnswers(), "step": 17}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["complete"])
}

func TestGuestFlowThroughReview(t *testing.T) {
	s := newTestServer(t)
	guest := map[string]string{GuestSessionHeader: "guest-42"}

	rec := s.do(t, http.MethodPost, "/api/v1/assessments", map[string]any{"answers": validAnswers()}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/assessments", map[string]any{"answers": validAnswers()}, guest)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/assessments/latest", nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/plans", map[string]any{"reportImage": "data:image/png;base64,AAAA"}, guest)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	plan := decode(t, rec)
	planID := plan["id"].(string)
	assert.Equal(t, "pending", plan["status"])
	assert.Equal(t, "sam@x.com", plan["userEmail"])
	assert.Equal(t, "Athul", plan["assignedTrainerName"])

	rec = s.do(t, http.MethodGet, "/api/v1/plans?email=SAM@x.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["plans"], 1)

	rec = s.do(t, http.MethodGet, "/api/v1/plans/"+planID+"/export?format=pdf&email=sam@x.com", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/login", map[string]any{"name": "Athul", "password": "coach-pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trainer := bearer(decode(t, rec)["token"].(string))

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/plans?view=pending", nil, trainer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["plans"], 1)

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/plans/"+planID+"/chat",
		map[string]any{"history": []map[string]string{{"role": "user", "text": "Thoughts?"}}}, trainer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Looks balanced.", decode(t, rec)["reply"])

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/plans/"+planID+"/decision", map[string]any{"decision": "approved", "notes": "Great job"}, trainer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decided := decode(t, rec)
	assert.Equal(t, "approved", decided["status"])
	assert.NotEmpty(t, decided["approvedAt"])

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/plans/"+planID+"/decision", map[string]any{"decision": "rejected"}, trainer)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/plans/"+planID+"/export?format=pdf&email=sam@x.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".pdf")

	rec = s.do(t, http.MethodGet, "/api/v1/plans/"+planID+"/export?format=image&email=other@x.com", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/plans/"+planID+"/publish", nil, trainer)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGatewayFailureIsRetryable(t *testing.T) {
	s := newTestServer(t)
	s.gw.planErr = &gateway.Failure{Kind: gateway.MalformedResponse, Message: "The plan could not be read. Please try again."}

	rec := s.do(t, http.MethodPost, "/api/v1/plans", map[string]any{"reportImage": "data:image/png;base64,AAAA", "email": "sam@x.com", "name": "Sam"}, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, "malformed_response", body["kind"])

	rec = s.do(t, http.MethodGet, "/api/v1/plans?email=sam@x.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["plans"])
}

func TestClientAccountAndProgress(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"name": "Sam", "email": "sam@x.com", "password": "hunter222"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{"name": "Sam", "email": "SAM@x.com", "password": "hunter222"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "sam@x.com", "password": "hunter222"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	client := bearer(decode(t, rec)["token"].(string))

	rec = s.do(t, http.MethodPost, "/api/v1/progress/weights", map[string]any{"date": "2025-02-01T00:00:00Z", "weight": 88}, client)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/v1/progress/weights", map[string]any{"date": "2025-01-01T00:00:00Z", "weight": 90}, client)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/progress", nil, client)
	require.Equal(t, http.StatusOK, rec.Code)
	log := decode(t, rec)["weightLog"].([]any)
	require.Len(t, log, 2)
	assert.Equal(t, float64(90), log[0].(map[string]any)["weight"])

	rec = s.do(t, http.MethodDelete, "/api/v1/progress/weights/2025-01-01T00:00:00Z", nil, client)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/plans", nil, client)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/progress", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/progress", nil, bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrainerLoginRejected(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/trainer/login", map[string]any{"name": "Athul", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
