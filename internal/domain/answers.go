package domain

import "time"

// Goal is the headline fitness goal picked in the questionnaire.
type Goal string

const (
	GoalLoseWeight  Goal = "lose_weight"
	GoalGainMuscle  Goal = "gain_muscle"
	GoalGetShredded Goal = "get_shredded"
)

// AnswerRecord is one completed questionnaire. It is never mutated after it has been
// handed to plan generation; a new assessment produces a new record.
type AnswerRecord struct {
	Name               string   `bson:"name" json:"name"`
	Email              string   `bson:"email" json:"email"`
	Gender             string   `bson:"gender" json:"gender"`
	Age                float64  `bson:"age" json:"age"`
	CurrentWeight      float64  `bson:"currentWeight" json:"currentWeight"`
	Height             float64  `bson:"height" json:"height"`
	WaistCm            *float64 `bson:"waistCm,omitempty" json:"waistCm,omitempty"`
	Goal               Goal     `bson:"goal" json:"goal"`
	TargetWeight       float64  `bson:"targetWeight" json:"targetWeight"`
	TargetPeriodWeeks  float64  `bson:"targetPeriodWeeks" json:"targetPeriodWeeks"`
	BodyImage          string   `bson:"bodyImage,omitempty" json:"bodyImage,omitempty"` // data URL, optional
	DailyActivity      string   `bson:"dailyActivity" json:"dailyActivity"`
	AvgStepsPerDay     *float64 `bson:"avgStepsPerDay,omitempty" json:"avgStepsPerDay,omitempty"`
	SittingHoursPerDay *float64 `bson:"sittingHoursPerDay,omitempty" json:"sittingHoursPerDay,omitempty"`
	FitnessLevel       string   `bson:"fitnessLevel" json:"fitnessLevel"`
	GymDaysPerWeek     float64  `bson:"gymDaysPerWeek" json:"gymDaysPerWeek"`
	MinutesPerSession  *float64 `bson:"minutesPerSession,omitempty" json:"minutesPerSession,omitempty"`
	WorkoutLocation    string   `bson:"workoutLocation" json:"workoutLocation"`
	SleepHours         string   `bson:"sleepHours" json:"sleepHours"`
	StressLevel        string   `bson:"stressLevel,omitempty" json:"stressLevel,omitempty"`
	WaterIntakeLiters  float64  `bson:"waterIntakeLiters" json:"waterIntakeLiters"`
	JunkMealsPerWeek   *float64 `bson:"junkMealsPerWeek,omitempty" json:"junkMealsPerWeek,omitempty"`
	SugaryDrinksPerDay *float64 `bson:"sugaryDrinksPerDay,omitempty" json:"sugaryDrinksPerDay,omitempty"`
	EveningHunger      string   `bson:"eveningHunger,omitempty" json:"eveningHunger,omitempty"`
	DietType           string   `bson:"dietType" json:"dietType"`
	Motivation         string   `bson:"motivation" json:"motivation"`
}

// Clone returns a deep copy so plans can hold a read-only snapshot.
func (a *AnswerRecord) Clone() *AnswerRecord {
	if a == nil {
		return nil
	}
	c := *a
	c.WaistCm = cloneFloat(a.WaistCm)
	c.AvgStepsPerDay = cloneFloat(a.AvgStepsPerDay)
	c.SittingHoursPerDay = cloneFloat(a.SittingHoursPerDay)
	c.MinutesPerSession = cloneFloat(a.MinutesPerSession)
	c.JunkMealsPerWeek = cloneFloat(a.JunkMealsPerWeek)
	c.SugaryDrinksPerDay = cloneFloat(a.SugaryDrinksPerDay)
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Assessment is the "latest assessment" kept per identity: the answers plus the report
// generated from them.
type Assessment struct {
	Answers     AnswerRecord    `bson:"answers" json:"answers"`
	Report      *ReportArtifact `bson:"report,omitempty" json:"report,omitempty"`
	CompletedAt time.Time       `bson:"completedAt" json:"completedAt"`
}
