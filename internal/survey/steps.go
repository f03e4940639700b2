package survey

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// InputKind is how a step collects its answer.
type InputKind string

const (
	KindText         InputKind = "text_input"
	KindNumber       InputKind = "number_input"
	KindSingleSelect InputKind = "single_select"
	KindImage        InputKind = "camera_input"
)

// InputTypeEmail marks a text step whose answer must be an email address.
const InputTypeEmail = "email"

type Option struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Desc  string `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// StepConfig describes one question. ID doubles as the answer key.
type StepConfig struct {
	ID          string    `yaml:"id" json:"id"`
	Question    string    `yaml:"question" json:"question"`
	Subtitle    string    `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Kind        InputKind `yaml:"type" json:"type"`
	InputType   string    `yaml:"input_type,omitempty" json:"inputType,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Unit        string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	Options     []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Min         *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Required    bool      `yaml:"required" json:"required"`
}

func (s StepConfig) hasOption(id string) bool {
	for _, o := range s.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

//go:embed steps.yaml
var defaultStepsYAML []byte

type stepsFile struct {
	Steps []StepConfig `yaml:"steps"`
}

// LoadSteps parses a YAML step list and checks it is a usable configuration.
func LoadSteps(data []byte) ([]StepConfig, error) {
	var f stepsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse survey steps: %w", err)
	}
	if err := checkSteps(f.Steps); err != nil {
		return nil, err
	}
	return f.Steps, nil
}

// DefaultSteps returns the embedded questionnaire.
func DefaultSteps() ([]StepConfig, error) {
	return LoadSteps(defaultStepsYAML)
}

func checkSteps(steps []StepConfig) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	seen := make(map[string]struct{}, len(steps))
	var errs []error
	for i, s := range steps {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("step %d has no id", i))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			errs = append(errs, fmt.Errorf("step id %q is duplicated", s.ID))
		}
		seen[s.ID] = struct{}{}
		switch s.Kind {
		case KindText, KindNumber, KindImage:
		case KindSingleSelect:
			if len(s.Options) == 0 {
				errs = append(errs, fmt.Errorf("step %q is single_select without options", s.ID))
			}
		default:
			errs = append(errs, fmt.Errorf("step %q has unknown type %q", s.ID, s.Kind))
		}
		if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
			errs = append(errs, fmt.Errorf("step %q has min greater than max", s.ID))
		}
	}
	return errors.Join(errs...)
}
