package survey

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	steps, err := DefaultSteps()
	require.NoError(t, err)
	e, err := NewEngine(steps)
	require.NoError(t, err)
	return e
}

func validAnswers() Answers {
	return Answers{
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

func indexOf(t *testing.T, e *Engine, id string) int {
	t.Helper()
	for i, s := range e.Steps() {
		if s.ID == id {
			return i
		}
	}
	t.Fatalf("step %q not configured", id)
	return -1
}

func TestDefaultSteps(t *testing.T) {
	e := defaultEngine(t)
	assert.Equal(t, 18, e.Len())

	first, err := e.Step(0)
	require.NoError(t, err)
	assert.Equal(t, "name", first.ID)

	img, err := e.Step(indexOf(t, e, "bodyImage"))
	require.NoError(t, err)
	assert.False(t, img.Required)
	assert.Equal(t, KindImage, img.Kind)

	sleep, err := e.Step(indexOf(t, e, "sleepHours"))
	require.NoError(t, err)
	assert.True(t, sleep.hasOption("5_to_6"))
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrNoSteps)

	_, err = NewEngine([]StepConfig{{ID: "a", Kind: KindText}, {ID: "a", Kind: KindText}})
	assert.ErrorContains(t, err, "duplicated")

	_, err = NewEngine([]StepConfig{{ID: "pick", Kind: KindSingleSelect}})
	assert.ErrorContains(t, err, "without options")

	_, err = LoadSteps([]byte("steps: []"))
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestEngine_Advance(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		name    string
		stepID  string
		value   any
		wantErr string
	}{
		{name: "required text empty", stepID: "name", value: "   ", wantErr: "required"},
		{name: "required text missing", stepID: "name", value: nil, wantErr: "required"},
		{name: "text ok", stepID: "name", value: "Sam"},
		{name: "email invalid", stepID: "email", value: "sam-at-x", wantErr: "valid email"},
		{name: "email ok", stepID: "email", value: " sam@x.com "},
		{name: "number below min", stepID: "age", value: 12.0, wantErr: "at least 13"},
		{name: "number above max", stepID: "age", value: 100, wantErr: "no more than 99"},
		{name: "number as string", stepID: "age", value: "30"},
		{name: "number not numeric", stepID: "age", value: "thirty", wantErr: "valid number"},
		{name: "number not finite", stepID: "waterIntakeLiters", value: "NaN", wantErr: "valid number"},
		{name: "decimal within bounds", stepID: "waterIntakeLiters", value: 2.5},
		{name: "zero is a valid answer", stepID: "gymDaysPerWeek", value: 0.0},
		{name: "unknown option", stepID: "goal", value: "bulk", wantErr: "listed options"},
		{name: "known option", stepID: "goal", value: "gain_muscle"},
		{name: "optional image empty", stepID: "bodyImage", value: ""},
		{name: "optional image not an image", stepID: "bodyImage", value: "hello", wantErr: "image"},
		{name: "optional image data url", stepID: "bodyImage", value: "data:image/jpeg;base64,AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := indexOf(t, e, tt.stepID)
			res, err := e.Advance(Answers{tt.stepID: tt.value}, idx)
			if tt.wantErr != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.stepID, verr.StepID)
				assert.Equal(t, idx, verr.Index)
				assert.Contains(t, verr.Message, tt.wantErr)
				assert.Equal(t, idx, res.Next, "stays on the same step")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, idx+1, res.Next)
			assert.False(t, res.Complete)
		})
	}
}

func TestEngine_AdvanceCompletesOnlyWhenEverythingValidates(t *testing.T) {
	e := defaultEngine(t)
	last := e.Len() - 1

	res, err := e.Advance(validAnswers(), last)
	require.NoError(t, err)
	assert.True(t, res.Complete)

	bad := validAnswers()
	bad["motivation"] = ""
	res, err = e.Advance(bad, last)
	assert.Error(t, err)
	assert.False(t, res.Complete)

	earlier := validAnswers()
	earlier["height"] = 400.0
	res, err = e.Advance(earlier, last)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "height", verr.StepID)
	assert.False(t, res.Complete)
}

func TestEngine_Retreat(t *testing.T) {
	e := defaultEngine(t)
	assert.Equal(t, 0, e.Retreat(0))
	assert.Equal(t, 0, e.Retreat(-4))
	assert.Equal(t, 4, e.Retreat(5))
	assert.Equal(t, e.Len()-1, e.Retreat(e.Len()+10))
}

func TestEngine_Skip(t *testing.T) {
	e := defaultEngine(t)

	_, err := e.Skip(Answers{}, indexOf(t, e, "name"))
	assert.ErrorIs(t, err, ErrStepNotSkippable)

	idx := indexOf(t, e, "bodyImage")
	res, err := e.Skip(Answers{"bodyImage": "garbage"}, idx)
	require.NoError(t, err)
	assert.Equal(t, idx+1, res.Next)

	_, err = e.Skip(Answers{}, 99)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
}

func TestEngine_SkipLastOptionalStep(t *testing.T) {
	e, err := NewEngine([]StepConfig{
		{ID: "name", Kind: KindText, Required: true},
		{ID: "photo", Kind: KindImage},
	})
	require.NoError(t, err)

	res, err := e.Skip(Answers{"name": "Sam", "photo": "stale"}, 1)
	require.NoError(t, err)
	assert.True(t, res.Complete)

	res, err = e.Skip(Answers{}, 1)
	assert.Error(t, err)
	assert.False(t, res.Complete)
}

// Each generated code describes one numeric step: even codes are required, and
// code/2 picks the answer state (0 absent, 1 valid, 2 out of range).
func TestEngine_CompletionInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.MaxSize = 20
	properties := gopter.NewProperties(parameters)

	build := func(codes []int) ([]StepConfig, Answers) {
		steps := make([]StepConfig, len(codes))
		answers := Answers{}
		for i, c := range codes {
			id := string(rune('a' + i))
			steps[i] = StepConfig{ID: id, Kind: KindNumber, Min: ptr(0), Max: ptr(10), Required: c%2 == 0}
			switch c / 2 {
			case 1:
				answers[id] = 5.0
			case 2:
				answers[id] = 50.0
			}
		}
		return steps, answers
	}

	properties.Property("completion only when every answer validates", prop.ForAll(
		func(codes []int) bool {
			steps, answers := build(codes)
			e, err := NewEngine(steps)
			if len(codes) == 0 {
				return errors.Is(err, ErrNoSteps)
			}
			if err != nil {
				return false
			}

			allValid := true
			for _, c := range codes {
				required, state := c%2 == 0, c/2
				if state == 2 || (state == 0 && required) {
					allValid = false
				}
			}
			res, err := e.Advance(answers, len(steps)-1)
			return res.Complete == allValid && (err == nil) == allValid
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.Property("a full walk completes iff required steps validate", prop.ForAll(
		func(codes []int) bool {
			if len(codes) == 0 {
				return true
			}
			steps, answers := build(codes)
			e, err := NewEngine(steps)
			if err != nil {
				return false
			}

			requiredValid := true
			for _, c := range codes {
				if c%2 == 0 && c/2 != 1 {
					requiredValid = false
				}
			}

			idx, complete := 0, false
			for i := 0; i <= len(steps) && !complete; i++ {
				res, err := e.Advance(answers, idx)
				if err != nil {
					step, _ := e.Step(idx)
					if step.Required {
						break
					}
					delete(answers, step.ID)
					if res, err = e.Skip(answers, idx); err != nil {
						break
					}
				}
				idx, complete = res.Next, res.Complete
			}
			return complete == requiredValid
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}

func TestEngine_BuildRecord(t *testing.T) {
	e := defaultEngine(t)

	answers := validAnswers()
	answers["age"] = "30"
	answers["name"] = "  Sam "
	answers["waistCm"] = 88.0

	rec, err := e.BuildRecord(answers)
	require.NoError(t, err)
	assert.Equal(t, "Sam", rec.Name)
	assert.Equal(t, 30.0, rec.Age)
	assert.Equal(t, "lose_weight", string(rec.Goal))
	assert.Equal(t, 2.5, rec.WaterIntakeLiters)
	assert.Empty(t, rec.BodyImage)
	if assert.NotNil(t, rec.WaistCm) {
		assert.Equal(t, 88.0, *rec.WaistCm)
	}
	assert.Nil(t, rec.AvgStepsPerDay)

	delete(answers, "goal")
	_, err = e.BuildRecord(answers)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "goal", verr.StepID)
}
