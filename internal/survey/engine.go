package survey

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoSteps          = errors.New("survey: step list is empty")
	ErrStepOutOfRange   = errors.New("survey: step index out of range")
	ErrStepNotSkippable = errors.New("survey: required step cannot be skipped")
)

// ValidationError is a per-step answer problem. The caller re-prompts the same step.
type ValidationError struct {
	StepID  string `json:"stepId"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("survey step %q: %s", e.StepID, e.Message)
}

// Answers is the partial answer record keyed by step id.
type Answers map[string]any

// Result is where the walk goes next. Complete is only ever set by the last step.
type Result struct {
	Next     int  `json:"next"`
	Complete bool `json:"complete"`
}

// Engine walks an ordered step list. It holds no per-user state.
type Engine struct {
	steps    []StepConfig
	validate *validator.Validate
}

// NewEngine fails fast on an unusable step list.
func NewEngine(steps []StepConfig) (*Engine, error) {
	if err := checkSteps(steps); err != nil {
		return nil, err
	}
	cp := make([]StepConfig, len(steps))
	copy(cp, steps)
	return &Engine{steps: cp, validate: validator.New()}, nil
}

func (e *Engine) Len() int { return len(e.steps) }

// Steps returns a copy of the configured steps.
func (e *Engine) Steps() []StepConfig {
	cp := make([]StepConfig, len(e.steps))
	copy(cp, e.steps)
	return cp
}

func (e *Engine) Step(idx int) (StepConfig, error) {
	if idx < 0 || idx >= len(e.steps) {
		return StepConfig{}, fmt.Errorf("%w: %d", ErrStepOutOfRange, idx)
	}
	return e.steps[idx], nil
}

// Advance validates the answer for step idx and moves forward. On the last step it
// checks every step before signalling completion.
func (e *Engine) Advance(answers Answers, idx int) (Result, error) {
	step, err := e.Step(idx)
	if err != nil {
		return Result{}, err
	}
	if err := e.validateAt(idx, step, answers[step.ID]); err != nil {
		return Result{Next: idx}, err
	}
	return e.forward(answers, idx)
}

// Retreat never validates. It floors at zero.
func (e *Engine) Retreat(idx int) int {
	if idx <= 0 {
		return 0
	}
	if idx > len(e.steps) {
		return len(e.steps) - 1
	}
	return idx - 1
}

// Skip moves past an optional step without recording a value.
func (e *Engine) Skip(answers Answers, idx int) (Result, error) {
	step, err := e.Step(idx)
	if err != nil {
		return Result{}, err
	}
	if step.Required {
		return Result{Next: idx}, fmt.Errorf("%w: %q", ErrStepNotSkippable, step.ID)
	}
	if _, ok := answers[step.ID]; ok {
		rest := make(Answers, len(answers))
		for k, v := range answers {
			rest[k] = v
		}
		delete(rest, step.ID)
		answers = rest
	}
	return e.forward(answers, idx)
}

func (e *Engine) forward(answers Answers, idx int) (Result, error) {
	if idx < len(e.steps)-1 {
		return Result{Next: idx + 1}, nil
	}
	if err := e.Validate(answers); err != nil {
		return Result{Next: idx}, err
	}
	return Result{Next: idx, Complete: true}, nil
}

// Validate checks a whole answer set and returns the first failing step.
func (e *Engine) Validate(answers Answers) error {
	for i, step := range e.steps {
		if err := e.validateAt(i, step, answers[step.ID]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStep checks one answer against its step constraints.
func (e *Engine) ValidateStep(step StepConfig, value any) error {
	msg := e.check(step, value)
	if msg == "" {
		return nil
	}
	return &ValidationError{StepID: step.ID, Message: msg}
}

func (e *Engine) validateAt(idx int, step StepConfig, value any) error {
	msg := e.check(step, value)
	if msg == "" {
		return nil
	}
	return &ValidationError{StepID: step.ID, Index: idx, Message: msg}
}

func (e *Engine) check(step StepConfig, value any) string {
	if isEmpty(value) {
		if step.Required {
			return "This field is required."
		}
		return ""
	}

	switch step.Kind {
	case KindNumber:
		num, ok := toNumber(value)
		if !ok {
			return "Please enter a valid number."
		}
		if step.Min != nil && num < *step.Min {
			return fmt.Sprintf("Value must be at least %s.", formatBound(*step.Min))
		}
		if step.Max != nil && num > *step.Max {
			return fmt.Sprintf("Value must be no more than %s.", formatBound(*step.Max))
		}
	case KindSingleSelect:
		s, ok := value.(string)
		if !ok || !step.hasOption(s) {
			return "Please choose one of the listed options."
		}
	case KindImage:
		s, ok := value.(string)
		if !ok || !strings.HasPrefix(s, "data:image/") {
			return "Please provide an image."
		}
	case KindText:
		s, ok := value.(string)
		if !ok {
			return "Please enter text."
		}
		if step.InputType == InputTypeEmail {
			if err := e.validate.Var(strings.TrimSpace(s), "required,email"); err != nil {
				return "Please enter a valid email address."
			}
		}
	}
	return ""
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// toNumber accepts JSON numbers and numeric strings. Non-finite values are rejected.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case interface{ Float64() (float64, error) }: // json.Number
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
