package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerValue holds what a user picked: a single option id or a set of ids.
// It encodes as a JSON string for single-select and as an array for multiple-select.
type AnswerValue struct {
	Option   string
	Options  []string
	Multiple bool
}

// SingleAnswer wraps a single option id.
func SingleAnswer(id string) AnswerValue {
	return AnswerValue{Option: id}
}

// MultipleAnswer wraps a set of option ids.
func MultipleAnswer(ids []string) AnswerValue {
	return AnswerValue{Options: append([]string{}, ids...), Multiple: true}
}

// IsEmpty reports whether nothing was selected.
func (a AnswerValue) IsEmpty() bool {
	if a.Multiple {
		return len(a.Options) == 0
	}
	return a.Option == ""
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.Multiple {
		if a.Options == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Options)
	}
	if a.Option == "" {
		return []byte("null"), nil
	}
	return json.Marshal(a.Option)
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = AnswerValue{}
		return nil
	case data[0] == '[':
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("decode answer set: %w", err)
		}
		*a = MultipleAnswer(ids)
		return nil
	default:
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode answer: %w", err)
		}
		*a = SingleAnswer(id)
		return nil
	}
}

// SubmittedAnswer is one entry of a quiz submission.
type SubmittedAnswer struct {
	QuestionID      string   `json:"questionId"`
	SelectedOption  string   `json:"selectedOption,omitempty"`
	SelectedOptions []string `json:"selectedOptions,omitempty"`
}
