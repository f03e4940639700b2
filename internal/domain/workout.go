package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PhaseName is one of the three program phases.
type PhaseName string

const (
	PhaseFoundation PhaseName = "Foundation"
	PhaseBuild      PhaseName = "Build"
	PhasePeak       PhaseName = "Peak"
)

// EquipmentTier selects how much kit the program assumes.
type EquipmentTier string

const (
	EquipmentBodyweight EquipmentTier = "bodyweight"
	EquipmentMinimal    EquipmentTier = "minimal"
	EquipmentFull       EquipmentTier = "full"
)

// WorkoutGuideDraft is the trainer-reviewable draft program.
type WorkoutGuideDraft struct {
	ProgramWeeks     int            `bson:"programWeeks" json:"program_weeks"`
	WeeklyDays       int            `bson:"weeklyDays" json:"weekly_days"`
	Phases           []WorkoutPhase `bson:"phases" json:"phases"`
	EquipmentTier    EquipmentTier  `bson:"equipmentTier" json:"equipment_tier"`
	Days             []WorkoutDay   `bson:"days" json:"days"`
	ProgressionNotes string         `bson:"progressionNotes" json:"progression_notes"`
	SafetyNotes      string         `bson:"safetyNotes" json:"safety_notes"`
}

// WorkoutPhase covers the inclusive week range Weeks[0]..Weeks[1].
type WorkoutPhase struct {
	Name  PhaseName `bson:"name" json:"name"`
	Weeks [2]int    `bson:"weeks" json:"weeks"`
	Focus string    `bson:"focus" json:"focus"`
}

type WorkoutDay struct {
	DayName      string             `bson:"dayName" json:"day_name"`
	Warmup       TimedBlock         `bson:"warmup" json:"warmup"`
	Strength     []StrengthExercise `bson:"strength" json:"strength"`
	Conditioning ConditioningBlock  `bson:"conditioning" json:"conditioning"`
	Cooldown     TimedBlock         `bson:"cooldown" json:"cooldown"`
}

type TimedBlock struct {
	DurationMin float64 `bson:"durationMin" json:"duration_min"`
	Notes       string  `bson:"notes" json:"notes"`
}

type ConditioningBlock struct {
	Style       string  `bson:"style" json:"style"` // steady | interval
	DurationMin float64 `bson:"durationMin" json:"duration_min"`
	Notes       string  `bson:"notes" json:"notes"`
}

// StrengthExercise alternatives stay nil when the model offers none.
type StrengthExercise struct {
	Movement      string  `bson:"movement" json:"movement"`
	Sets          int     `bson:"sets" json:"sets"`
	Reps          string  `bson:"reps" json:"reps"`
	RPEOrTempo    string  `bson:"rpeOrTempo" json:"rpe_or_tempo"`
	AltBodyweight *string `bson:"altBodyweight" json:"alt_bodyweight"`
	AltMinimal    *string `bson:"altMinimal" json:"alt_minimal"`
}

// Validate enforces the draft invariants: phases partition 1..ProgramWeeks without gaps
// or overlap, and WeeklyDays matches the number of distinct day templates.
func (d *WorkoutGuideDraft) Validate() error {
	var errs []error
	if d.ProgramWeeks <= 0 {
		errs = append(errs, fmt.Errorf("program_weeks must be positive, got %d", d.ProgramWeeks))
	}
	switch d.EquipmentTier {
	case EquipmentBodyweight, EquipmentMinimal, EquipmentFull:
	default:
		errs = append(errs, fmt.Errorf("equipment_tier %q is not one of bodyweight/minimal/full", d.EquipmentTier))
	}
	if err := d.validatePhases(); err != nil {
		errs = append(errs, err)
	}

	distinct := make(map[string]struct{}, len(d.Days))
	for i, day := range d.Days {
		name := strings.ToLower(strings.TrimSpace(day.DayName))
		if name == "" {
			errs = append(errs, fmt.Errorf("days[%d].day_name is empty", i))
			continue
		}
		distinct[name] = struct{}{}
		if s := day.Conditioning.Style; s != "steady" && s != "interval" {
			errs = append(errs, fmt.Errorf("days[%d].conditioning.style %q is not steady/interval", i, s))
		}
		for j, ex := range day.Strength {
			if strings.TrimSpace(ex.Movement) == "" || ex.Sets <= 0 {
				errs = append(errs, fmt.Errorf("days[%d].strength[%d] needs a movement and positive sets", i, j))
			}
		}
	}
	if d.WeeklyDays <= 0 || d.WeeklyDays != len(distinct) {
		errs = append(errs, fmt.Errorf("weekly_days %d does not match %d distinct day templates", d.WeeklyDays, len(distinct)))
	}
	return errors.Join(errs...)
}

func (d *WorkoutGuideDraft) validatePhases() error {
	if len(d.Phases) == 0 {
		return errors.New("phases is empty")
	}
	phases := make([]WorkoutPhase, len(d.Phases))
	copy(phases, d.Phases)
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Weeks[0] < phases[j].Weeks[0] })

	next := 1
	for _, p := range phases {
		switch p.Name {
		case PhaseFoundation, PhaseBuild, PhasePeak:
		default:
			return fmt.Errorf("phase name %q is not Foundation/Build/Peak", p.Name)
		}
		if p.Weeks[0] != next {
			return fmt.Errorf("phase %s starts at week %d, expected %d", p.Name, p.Weeks[0], next)
		}
		if p.Weeks[1] < p.Weeks[0] {
			return fmt.Errorf("phase %s ends before it starts", p.Name)
		}
		next = p.Weeks[1] + 1
	}
	if next-1 != d.ProgramWeeks {
		return fmt.Errorf("phases cover weeks 1..%d but program_weeks is %d", next-1, d.ProgramWeeks)
	}
	return nil
}

// ExtractedReport holds the metrics read back from an uploaded report image.
type ExtractedReport struct {
	RecommendedCaloriesKcal *float64 `bson:"recommendedCaloriesKcal" json:"recommended_calories_kcal"`
	CurrentBurnKcal         *float64 `bson:"currentBurnKcal" json:"current_burn_kcal"`
	CurrentIntakeKcal       *float64 `bson:"currentIntakeKcal" json:"current_intake_kcal"`
	CalorieGapKcal          *float64 `bson:"calorieGapKcal" json:"calorie_gap_kcal"`
	ProteinTargetG          *float64 `bson:"proteinTargetG" json:"protein_target_g"`
	WaterTargetL            *float64 `bson:"waterTargetL" json:"water_target_l"`
	PredictedLossKgPerWeek  *float64 `bson:"predictedLossKgPerWeek" json:"predicted_loss_kg_per_week"`
	WeeksToLose10Kg         *float64 `bson:"weeksToLose10Kg" json:"weeks_to_lose_10kg"`
	ParseNotes              string   `bson:"parseNotes" json:"parse_notes"`
}

// PlanData is the reviewable payload embedded in a pending plan.
type PlanData struct {
	ExtractedFromReport  *ExtractedReport  `bson:"extractedFromReport,omitempty" json:"extracted_from_report"`
	WorkoutGuideDraft    WorkoutGuideDraft `bson:"workoutGuideDraft" json:"workout_guide_draft"`
	PresentationMarkdown string            `bson:"presentationMarkdown" json:"presentation_markdown"`
	TrainerChecklist     []string          `bson:"trainerChecklist" json:"trainer_checklist"`
	SignatureLine        string            `bson:"signatureLine,omitempty" json:"signature_line,omitempty"`
}
