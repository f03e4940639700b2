package domain

import (
	"errors"
	"fmt"
	"math"
)

// BandStatus classifies an estimate against a reference band.
type BandStatus string

const (
	BandBelow  BandStatus = "below"
	BandWithin BandStatus = "within"
	BandAbove  BandStatus = "above"
)

func (s BandStatus) Valid() bool {
	return s == BandBelow || s == BandWithin || s == BandAbove
}

// Severity of a report flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Range is a closed numeric band, serialized as a two element array.
type Range [2]float64

// ReportArtifact is the structured assessment produced by one successful generation call.
type ReportArtifact struct {
	Numbers          ReportNumbers    `bson:"numbers" json:"numbers"`
	NutritionTargets NutritionTargets `bson:"nutritionTargets" json:"nutrition_targets"`
	BodyComp         BodyComposition  `bson:"bodyComp" json:"body_comp"`
	Flags            []Flag           `bson:"flags" json:"flags"`
	Methodology      []string         `bson:"methodology" json:"methodology"`
	ReportMarkdown   string           `bson:"reportMarkdown" json:"report_markdown"`
}

type ReportNumbers struct {
	CurrentIntakeKcal float64 `bson:"currentIntakeKcal" json:"current_intake_kcal"`
	CurrentBurnKcal   float64 `bson:"currentBurnKcal" json:"current_burn_kcal"`
	CalorieGapKcal    float64 `bson:"calorieGapKcal" json:"calorie_gap_kcal"`
}

type NutritionTargets struct {
	RecommendedCaloriesKcal float64 `bson:"recommendedCaloriesKcal" json:"recommended_calories_kcal"`
	ProteinG                float64 `bson:"proteinG" json:"protein_g"`
	WaterL                  float64 `bson:"waterL" json:"water_l"`
	CarbsGRange             *Range  `bson:"carbsGRange,omitempty" json:"carbs_g_range"`
	FatsGRange              *Range  `bson:"fatsGRange,omitempty" json:"fats_g_range"`
}

type BodyComposition struct {
	EstimatedBFPercent  float64    `bson:"estimatedBfPercent" json:"estimated_bf_percent"`
	BFIdealBand         Range      `bson:"bfIdealBand" json:"bf_ideal_band"`
	BFStatus            BandStatus `bson:"bfStatus" json:"bf_status"`
	EstimatedTBWPercent float64    `bson:"estimatedTbwPercent" json:"estimated_tbw_percent"`
	TBWTypicalBand      Range      `bson:"tbwTypicalBand" json:"tbw_typical_band"`
	TBWStatus           BandStatus `bson:"tbwStatus" json:"tbw_status"`
}

// Flag is a detected lifestyle issue.
type Flag struct {
	Issue    string   `bson:"issue" json:"issue"`
	Severity Severity `bson:"severity" json:"severity"`
	Why      string   `bson:"why" json:"why"`
}

// Validate checks the artifact invariants: finite numbers and enumerated statuses.
func (r *ReportArtifact) Validate() error {
	var errs []error
	numbers := map[string]float64{
		"numbers.current_intake_kcal":                 r.Numbers.CurrentIntakeKcal,
		"numbers.current_burn_kcal":                   r.Numbers.CurrentBurnKcal,
		"numbers.calorie_gap_kcal":                    r.Numbers.CalorieGapKcal,
		"nutrition_targets.recommended_calories_kcal": r.NutritionTargets.RecommendedCaloriesKcal,
		"nutrition_targets.protein_g":                 r.NutritionTargets.ProteinG,
		"nutrition_targets.water_l":                   r.NutritionTargets.WaterL,
		"body_comp.estimated_bf_percent":              r.BodyComp.EstimatedBFPercent,
		"body_comp.estimated_tbw_percent":             r.BodyComp.EstimatedTBWPercent,
	}
	for field, v := range numbers {
		if !isFinite(v) {
			errs = append(errs, fmt.Errorf("%s is not a finite number", field))
		}
	}
	ranges := map[string]*Range{
		"nutrition_targets.carbs_g_range": r.NutritionTargets.CarbsGRange,
		"nutrition_targets.fats_g_range":  r.NutritionTargets.FatsGRange,
		"body_comp.bf_ideal_band":         &r.BodyComp.BFIdealBand,
		"body_comp.tbw_typical_band":      &r.BodyComp.TBWTypicalBand,
	}
	for field, rg := range ranges {
		if rg == nil {
			continue
		}
		if !isFinite(rg[0]) || !isFinite(rg[1]) {
			errs = append(errs, fmt.Errorf("%s contains a non-finite bound", field))
		}
	}
	if r.NutritionTargets.RecommendedCaloriesKcal <= 0 {
		errs = append(errs, errors.New("nutrition_targets.recommended_calories_kcal must be positive"))
	}
	if !r.BodyComp.BFStatus.Valid() {
		errs = append(errs, fmt.Errorf("body_comp.bf_status %q is not one of below/within/above", r.BodyComp.BFStatus))
	}
	if !r.BodyComp.TBWStatus.Valid() {
		errs = append(errs, fmt.Errorf("body_comp.tbw_status %q is not one of below/within/above", r.BodyComp.TBWStatus))
	}
	for i, f := range r.Flags {
		if !f.Severity.Valid() {
			errs = append(errs, fmt.Errorf("flags[%d].severity %q is not one of low/medium/high", i, f.Severity))
		}
	}
	return errors.Join(errs...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
