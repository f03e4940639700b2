package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/ai"
	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
)

const (
	opReport      = "report"
	opPlan        = "plan"
	opReviewChat  = "review_chat"
	opCalorieChat = "calorie_chat"
)

var (
	ErrReportImageRequired = errors.New("gateway: a report image data URL is required")
	ErrEmptyConversation   = errors.New("gateway: conversation must end with a user message")
)

// PlanDraft is a validated plan generation result, ready to be stored as pending.
type PlanDraft struct {
	Trainer  domain.Trainer
	PlanData domain.PlanData
}

// Gateway is the single entry point to the generative model.
type Gateway struct {
	client   ai.Client
	assigner *Assigner
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New bounds every call with timeout; an expired call surfaces as a TransportError.
func New(client ai.Client, assigner *Assigner, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Gateway {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Gateway{client: client, assigner: assigner, timeout: timeout, logger: logger, metrics: m}
}

func (g *Gateway) Assigner() *Assigner { return g.assigner }

// GenerateReport turns an answer record into a validated ReportArtifact.
func (g *Gateway) GenerateReport(ctx context.Context, answers *domain.AnswerRecord) (*domain.ReportArtifact, error) {
	start := time.Now()
	if answers == nil {
		return nil, errors.New("gateway: answers are required")
	}

	payload, err := json.Marshal(reportPromptData(answers))
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	req := ai.Request{
		Task:   opReport,
		System: reportSystemPrompt,
		Prompt: "USER DATA:\n" + string(payload),
	}
	if answers.BodyImage != "" {
		req.Images = []string{answers.BodyImage}
	}

	content, f := g.call(ctx, req)
	if f != nil {
		return nil, g.fail(opReport, start, f)
	}

	var wire reportWire
	if err := decodeObject(content, &wire); err != nil {
		return nil, g.fail(opReport, start, malformed(err))
	}
	if wire.ReportMarkdown != nil && strings.Contains(*wire.ReportMarkdown, DegradedMarker) {
		return nil, g.fail(opReport, start, degraded(errors.New("model flagged the report as an error")))
	}
	report, err := wire.toDomain()
	if err != nil {
		return nil, g.fail(opReport, start, malformed(err))
	}

	g.metrics.ObserveGateway(opReport, "ok", time.Since(start))
	return report, nil
}

// GeneratePlan assigns a trainer first, then asks the model for a draft from the report
// image and any answer context. answers may be nil.
func (g *Gateway) GeneratePlan(ctx context.Context, reportImage, ownerName string, answers *domain.AnswerRecord) (*PlanDraft, error) {
	start := time.Now()
	if !strings.HasPrefix(reportImage, "data:image/") {
		return nil, ErrReportImageRequired
	}

	var goal domain.Goal
	if answers != nil {
		goal = answers.Goal
	}
	trainer := g.assigner.Assign(goal)
	g.logger.Info("trainer assigned",
		zap.String("trainer", trainer.Name),
		zap.String("goal", string(goal)),
	)

	userContext := map[string]any{
		"has_report_upload": true,
		"report_file_type":  imageSubtype(reportImage),
		"user_context": map[string]any{
			"display_name": ownerName,
			"date_iso":     time.Now().UTC().Format(time.RFC3339),
		},
	}
	if answers != nil {
		userContext["assessment_answers"] = reportPromptData(answers)
	}
	payload, err := json.Marshal(userContext)
	if err != nil {
		return nil, fmt.Errorf("encode plan context: %w", err)
	}

	content, f := g.call(ctx, ai.Request{
		Task:   opPlan,
		System: planSystemPrompt,
		Prompt: string(payload),
		Images: []string{reportImage},
	})
	if f != nil {
		return nil, g.fail(opPlan, start, f)
	}

	var wire planWire
	if err := decodeObject(content, &wire); err != nil {
		return nil, g.fail(opPlan, start, malformed(err))
	}
	if wire.NeedsAssessment != nil && *wire.NeedsAssessment {
		return nil, g.fail(opPlan, start, degraded(errors.New("model could not read the uploaded report")))
	}
	if wire.WorkoutGuideDraft == nil {
		return nil, g.fail(opPlan, start, malformed(errors.New("missing required fields: workout_guide_draft")))
	}
	if wire.PresentationMarkdown == nil {
		return nil, g.fail(opPlan, start, malformed(errors.New("missing required fields: presentation_markdown")))
	}
	draft, err := wire.WorkoutGuideDraft.toDomain()
	if err != nil {
		return nil, g.fail(opPlan, start, malformed(err))
	}

	data := domain.PlanData{
		ExtractedFromReport:  wire.ExtractedFromReport,
		WorkoutGuideDraft:    draft,
		PresentationMarkdown: *wire.PresentationMarkdown + fmt.Sprintf(reviewNotice, trainer.Name),
		TrainerChecklist:     wire.TrainerChecklist,
	}
	if wire.SignatureLine != nil {
		data.SignatureLine = *wire.SignatureLine
	}

	g.metrics.ObserveGateway(opPlan, "ok", time.Since(start))
	return &PlanDraft{Trainer: trainer, PlanData: data}, nil
}

// ReviewChat answers a trainer question about a draft under review.
func (g *Gateway) ReviewChat(ctx context.Context, plan *domain.PendingWorkoutPlan, history []domain.ChatMessage) (string, error) {
	draft, err := json.MarshalIndent(plan.PlanData.WorkoutGuideDraft, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}
	return g.chat(ctx, opReviewChat, fmt.Sprintf(reviewChatSystemPrompt, plan.UserName, draft), history)
}

// CalorieChat answers a food calorie question.
func (g *Gateway) CalorieChat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	return g.chat(ctx, opCalorieChat, calorieChatSystemPrompt, history)
}

func (g *Gateway) chat(ctx context.Context, op, system string, history []domain.ChatMessage) (string, error) {
	start := time.Now()
	if len(history) == 0 || history[len(history)-1].Role != domain.ChatRoleUser {
		return "", ErrEmptyConversation
	}
	content, f := g.call(ctx, ai.Request{Task: op, System: system, History: history})
	if f != nil {
		return "", g.fail(op, start, f)
	}
	reply := strings.TrimSpace(content)
	if reply == "" {
		return "", g.fail(op, start, malformed(errors.New("empty chat reply")))
	}
	g.metrics.ObserveGateway(op, "ok", time.Since(start))
	return reply, nil
}

// call runs one bounded model exchange. Any client error is a transport failure.
func (g *Gateway) call(ctx context.Context, req ai.Request) (string, *Failure) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content, err := g.client.Complete(ctx, req)
	if err != nil {
		return "", transport(err)
	}
	return content, nil
}

func (g *Gateway) fail(op string, start time.Time, f *Failure) error {
	g.metrics.ObserveGateway(op, string(f.Kind), time.Since(start))
	g.logger.Warn("gateway call failed",
		zap.String("operation", op),
		zap.String("kind", string(f.Kind)),
		zap.Error(f.Err),
	)
	return f
}

// reportPromptData renames answer fields to the names the calculation rules use and
// leaves the image out; it travels as an attachment.
func reportPromptData(a *domain.AnswerRecord) map[string]any {
	data := map[string]any{
		"name":              a.Name,
		"sex":               a.Gender,
		"age":               a.Age,
		"heightCm":          a.Height,
		"weightKg":          a.CurrentWeight,
		"goal":              a.Goal,
		"targetWeightKg":    a.TargetWeight,
		"targetPeriodWeeks": a.TargetPeriodWeeks,
		"dailyActivity":     a.DailyActivity,
		"fitnessLevel":      a.FitnessLevel,
		"gymDaysPerWeek":    a.GymDaysPerWeek,
		"workoutLocation":   a.WorkoutLocation,
		"sleepHours":        a.SleepHours,
		"waterLitersPerDay": a.WaterIntakeLiters,
		"dietType":          a.DietType,
	}
	optional := map[string]*float64{
		"waistCm":            a.WaistCm,
		"avgStepsPerDay":     a.AvgStepsPerDay,
		"sittingHoursPerDay": a.SittingHoursPerDay,
		"minutesPerSession":  a.MinutesPerSession,
		"junkMealsPerWeek":   a.JunkMealsPerWeek,
		"sugaryDrinksPerDay": a.SugaryDrinksPerDay,
	}
	for k, v := range optional {
		if v != nil {
			data[k] = *v
		}
	}
	if a.EveningHunger != "" {
		data["eveningHunger"] = a.EveningHunger
	}
	if a.StressLevel != "" {
		data["stressLevel"] = a.StressLevel
	}
	return data
}

func imageSubtype(dataURL string) string {
	meta, _, _ := strings.Cut(dataURL, ",")
	meta = strings.TrimPrefix(meta, "data:image/")
	subtype, _, _ := strings.Cut(meta, ";")
	if subtype == "" {
		return "jpeg"
	}
	return subtype
}
