package domain

import (
	"fmt"
	"strings"
)

// NormalizeQuestion trims text, assigns positional option ids and defaults marks and category.
func NormalizeQuestion(q Question) Question {
	q.Text = strings.TrimSpace(q.Text)
	if q.Marks <= 0 {
		q.Marks = 1
	}
	if q.Category == "" {
		q.Category = "general"
	}
	opts := make([]Option, 0, len(q.Options))
	for i, opt := range q.Options {
		opts = append(opts, Option{
			ID:        fmt.Sprintf("opt%d", i+1),
			Text:      strings.TrimSpace(opt.Text),
			IsCorrect: opt.IsCorrect,
		})
	}
	q.Options = opts
	return q
}

// ValidateQuestion enforces the correct-option count for the question type.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return Invalid("Question text is required")
	}
	if len(q.Options) < 2 {
		return Invalid("A question needs at least two options")
	}
	correct := len(q.CorrectOptionIDs())
	switch q.Type {
	case QuestionSingle:
		if correct != 1 {
			return Invalid("Single choice questions must have exactly one correct answer")
		}
	case QuestionMultiple:
		if correct < 2 {
			return Invalid("Multiple choice questions must have at least two correct answers")
		}
	default:
		return Invalid(fmt.Sprintf("Unknown question type %q", q.Type))
	}
	return nil
}
