package survey

import (
	"encoding/json"
	"fmt"
	"strings"

	"alcyxob/ifit-coach/internal/domain"
)

// BuildRecord validates a finished answer set and converts it into an AnswerRecord.
// Numeric answers given as strings are coerced; keys without a step are passed through.
func (e *Engine) BuildRecord(answers Answers) (*domain.AnswerRecord, error) {
	if err := e.Validate(answers); err != nil {
		return nil, err
	}

	normalized := make(map[string]any, len(answers))
	for k, v := range answers {
		normalized[k] = v
	}
	for _, step := range e.steps {
		v, ok := normalized[step.ID]
		if !ok {
			continue
		}
		if isEmpty(v) {
			delete(normalized, step.ID)
			continue
		}
		switch step.Kind {
		case KindNumber:
			n, _ := toNumber(v)
			normalized[step.ID] = n
		case KindText:
			normalized[step.ID] = strings.TrimSpace(v.(string))
		}
	}

	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	var rec domain.AnswerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode answers into record: %w", err)
	}
	return &rec, nil
}
