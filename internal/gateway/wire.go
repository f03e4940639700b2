package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"alcyxob/ifit-coach/internal/ai"
	"alcyxob/ifit-coach/internal/domain"
)

// Wire shapes mirror the model schema with pointer fields so a missing key is detectable
// instead of decoding to a zero value.

type reportWire struct {
	Numbers *struct {
		CurrentIntakeKcal *float64 `json:"current_intake_kcal"`
		CurrentBurnKcal   *float64 `json:"current_burn_kcal"`
		CalorieGapKcal    *float64 `json:"calorie_gap_kcal"`
	} `json:"numbers"`
	NutritionTargets *struct {
		RecommendedCaloriesKcal *float64   `json:"recommended_calories_kcal"`
		ProteinG                *float64   `json:"protein_g"`
		WaterL                  *float64   `json:"water_l"`
		CarbsGRange             *[]float64 `json:"carbs_g_range"`
		FatsGRange              *[]float64 `json:"fats_g_range"`
	} `json:"nutrition_targets"`
	BodyComp *struct {
		EstimatedBFPercent  *float64           `json:"estimated_bf_percent"`
		BFIdealBand         *[]float64         `json:"bf_ideal_band"`
		BFStatus            *domain.BandStatus `json:"bf_status"`
		EstimatedTBWPercent *float64           `json:"estimated_tbw_percent"`
		TBWTypicalBand      *[]float64         `json:"tbw_typical_band"`
		TBWStatus           *domain.BandStatus `json:"tbw_status"`
	} `json:"body_comp"`
	Flags *[]struct {
		Issue    *string          `json:"issue"`
		Severity *domain.Severity `json:"severity"`
		Why      *string          `json:"why"`
	} `json:"flags"`
	Methodology    *[]string `json:"methodology"`
	ReportMarkdown *string   `json:"report_markdown"`
}

type planWire struct {
	NeedsAssessment      *bool                   `json:"needs_assessment"`
	ExtractedFromReport  *domain.ExtractedReport `json:"extracted_from_report"`
	WorkoutGuideDraft    *draftWire              `json:"workout_guide_draft"`
	PresentationMarkdown *string                 `json:"presentation_markdown"`
	TrainerChecklist     []string                `json:"trainer_checklist"`
	SignatureLine        *string                 `json:"signature_line"`
}

type draftWire struct {
	ProgramWeeks  *float64              `json:"program_weeks"`
	WeeklyDays    *float64              `json:"weekly_days"`
	Phases        *[]phaseWire          `json:"phases"`
	EquipmentTier *domain.EquipmentTier `json:"equipment_tier"`
	Days          *[]dayWire            `json:"days"`
	Progression   *string               `json:"progression_notes"`
	Safety        *string               `json:"safety_notes"`
}

type phaseWire struct {
	Name  *domain.PhaseName `json:"name"`
	Weeks *[]float64        `json:"weeks"`
	Focus *string           `json:"focus"`
}

type dayWire struct {
	DayName      *string                   `json:"day_name"`
	Warmup       *domain.TimedBlock        `json:"warmup"`
	Strength     *[]exerciseWire           `json:"strength"`
	Conditioning *domain.ConditioningBlock `json:"conditioning"`
	Cooldown     *domain.TimedBlock        `json:"cooldown"`
}

type exerciseWire struct {
	Movement      *string  `json:"movement"`
	Sets          *float64 `json:"sets"`
	Reps          *string  `json:"reps"`
	RPEOrTempo    *string  `json:"rpe_or_tempo"`
	AltBodyweight *string  `json:"alt_bodyweight"`
	AltMinimal    *string  `json:"alt_minimal"`
}

// fields collects missing required paths while copying values out of the wire structs.
type fields struct {
	missing []string
	bad     []string
}

func need[T any](f *fields, path string, v *T) T {
	if v == nil {
		f.missing = append(f.missing, path)
		var zero T
		return zero
	}
	return *v
}

func (f *fields) whole(path string, v *float64) int {
	x := need(f, path, v)
	if v != nil && (x != math.Trunc(x) || math.IsInf(x, 0) || math.Abs(x) > math.MaxInt32) {
		f.bad = append(f.bad, path+" is not a whole number")
		return 0
	}
	return int(x)
}

// band converts an optional two element array. A missing band stays nil.
func (f *fields) band(path string, v *[]float64) *domain.Range {
	if v == nil {
		return nil
	}
	if len(*v) != 2 {
		f.bad = append(f.bad, path+" must have exactly two entries")
		return nil
	}
	return &domain.Range{(*v)[0], (*v)[1]}
}

func (f *fields) requiredBand(path string, v *[]float64) domain.Range {
	if v == nil {
		f.missing = append(f.missing, path)
		return domain.Range{}
	}
	if r := f.band(path, v); r != nil {
		return *r
	}
	return domain.Range{}
}

func (f *fields) err() error {
	var errs []error
	if len(f.missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required fields: %s", strings.Join(f.missing, ", ")))
	}
	for _, b := range f.bad {
		errs = append(errs, errors.New(b))
	}
	return errors.Join(errs...)
}

func decodeObject(content string, into any) error {
	raw := ai.ExtractJSON(content)
	if raw == "" {
		return errors.New("reply contains no JSON object")
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

func (w *reportWire) toDomain() (*domain.ReportArtifact, error) {
	f := &fields{}
	r := &domain.ReportArtifact{}

	if n := w.Numbers; n == nil {
		f.missing = append(f.missing, "numbers")
	} else {
		r.Numbers = domain.ReportNumbers{
			CurrentIntakeKcal: need(f, "numbers.current_intake_kcal", n.CurrentIntakeKcal),
			CurrentBurnKcal:   need(f, "numbers.current_burn_kcal", n.CurrentBurnKcal),
			CalorieGapKcal:    need(f, "numbers.calorie_gap_kcal", n.CalorieGapKcal),
		}
	}
	if n := w.NutritionTargets; n == nil {
		f.missing = append(f.missing, "nutrition_targets")
	} else {
		r.NutritionTargets = domain.NutritionTargets{
			RecommendedCaloriesKcal: need(f, "nutrition_targets.recommended_calories_kcal", n.RecommendedCaloriesKcal),
			ProteinG:                need(f, "nutrition_targets.protein_g", n.ProteinG),
			WaterL:                  need(f, "nutrition_targets.water_l", n.WaterL),
			CarbsGRange:             f.band("nutrition_targets.carbs_g_range", n.CarbsGRange),
			FatsGRange:              f.band("nutrition_targets.fats_g_range", n.FatsGRange),
		}
	}
	if b := w.BodyComp; b == nil {
		f.missing = append(f.missing, "body_comp")
	} else {
		r.BodyComp = domain.BodyComposition{
			EstimatedBFPercent:  need(f, "body_comp.estimated_bf_percent", b.EstimatedBFPercent),
			BFIdealBand:         f.requiredBand("body_comp.bf_ideal_band", b.BFIdealBand),
			BFStatus:            need(f, "body_comp.bf_status", b.BFStatus),
			EstimatedTBWPercent: need(f, "body_comp.estimated_tbw_percent", b.EstimatedTBWPercent),
			TBWTypicalBand:      f.requiredBand("body_comp.tbw_typical_band", b.TBWTypicalBand),
			TBWStatus:           need(f, "body_comp.tbw_status", b.TBWStatus),
		}
	}
	if w.Flags == nil {
		f.missing = append(f.missing, "flags")
	} else {
		r.Flags = make([]domain.Flag, 0, len(*w.Flags))
		for i, fl := range *w.Flags {
			p := fmt.Sprintf("flags[%d]", i)
			r.Flags = append(r.Flags, domain.Flag{
				Issue:    need(f, p+".issue", fl.Issue),
				Severity: need(f, p+".severity", fl.Severity),
				Why:      need(f, p+".why", fl.Why),
			})
		}
	}
	r.Methodology = need(f, "methodology", w.Methodology)
	r.ReportMarkdown = need(f, "report_markdown", w.ReportMarkdown)

	if err := f.err(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (w *draftWire) toDomain() (domain.WorkoutGuideDraft, error) {
	f := &fields{}
	d := domain.WorkoutGuideDraft{
		ProgramWeeks:     f.whole("workout_guide_draft.program_weeks", w.ProgramWeeks),
		WeeklyDays:       f.whole("workout_guide_draft.weekly_days", w.WeeklyDays),
		EquipmentTier:    need(f, "workout_guide_draft.equipment_tier", w.EquipmentTier),
		ProgressionNotes: need(f, "workout_guide_draft.progression_notes", w.Progression),
		SafetyNotes:      need(f, "workout_guide_draft.safety_notes", w.Safety),
	}

	for i, p := range need(f, "workout_guide_draft.phases", w.Phases) {
		path := fmt.Sprintf("workout_guide_draft.phases[%d]", i)
		phase := domain.WorkoutPhase{
			Name:  need(f, path+".name", p.Name),
			Focus: need(f, path+".focus", p.Focus),
		}
		weeks := need(f, path+".weeks", p.Weeks)
		if p.Weeks != nil && len(weeks) != 2 {
			f.bad = append(f.bad, path+".weeks must have exactly two entries")
		} else if p.Weeks != nil {
			phase.Weeks = [2]int{f.whole(path+".weeks[0]", &weeks[0]), f.whole(path+".weeks[1]", &weeks[1])}
		}
		d.Phases = append(d.Phases, phase)
	}

	for i, dw := range need(f, "workout_guide_draft.days", w.Days) {
		path := fmt.Sprintf("workout_guide_draft.days[%d]", i)
		day := domain.WorkoutDay{
			DayName:      need(f, path+".day_name", dw.DayName),
			Warmup:       need(f, path+".warmup", dw.Warmup),
			Conditioning: need(f, path+".conditioning", dw.Conditioning),
			Cooldown:     need(f, path+".cooldown", dw.Cooldown),
		}
		for j, ex := range need(f, path+".strength", dw.Strength) {
			ep := fmt.Sprintf("%s.strength[%d]", path, j)
			day.Strength = append(day.Strength, domain.StrengthExercise{
				Movement:      need(f, ep+".movement", ex.Movement),
				Sets:          f.whole(ep+".sets", ex.Sets),
				Reps:          need(f, ep+".reps", ex.Reps),
				RPEOrTempo:    need(f, ep+".rpe_or_tempo", ex.RPEOrTempo),
				AltBodyweight: ex.AltBodyweight,
				AltMinimal:    ex.AltMinimal,
			})
		}
		d.Days = append(d.Days, day)
	}

	if err := f.err(); err != nil {
		return domain.WorkoutGuideDraft{}, err
	}
	if err := d.Validate(); err != nil {
		return domain.WorkoutGuideDraft{}, err
	}
	return d, nil
}
