package app

import (
	"sort"

	"exam-quiz-service/internal/domain"
)

// GradeReport is the outcome of grading one submission.
type GradeReport struct {
	Score          int
	CorrectAnswers int
	TotalQuestions int
	Responses      []domain.Response
}

// Grade scores answers against the assigned questions. Exactly one response is
// produced per assigned id, in assigned order; answers for questions outside the
// assignment are ignored and unanswered questions grade as incorrect. Assigned
// questions that no longer exist in the pool grade as incorrect too.
func Grade(assigned []string, questions map[string]domain.Question, answers []domain.SubmittedAnswer) GradeReport {
	byQuestion := make(map[string]domain.SubmittedAnswer, len(answers))
	for _, ans := range answers {
		if _, seen := byQuestion[ans.QuestionID]; !seen {
			byQuestion[ans.QuestionID] = ans
		}
	}

	report := GradeReport{
		TotalQuestions: len(assigned),
		Responses:      make([]domain.Response, 0, len(assigned)),
	}
	for _, id := range assigned {
		ans := byQuestion[id]
		q, ok := questions[id]
		if !ok {
			report.Responses = append(report.Responses, domain.Response{
				QuestionID:    id,
				UserAnswer:    looseAnswer(ans),
				CorrectAnswer: []string{},
			})
			continue
		}
		resp := gradeQuestion(q, ans)
		if resp.IsCorrect {
			report.Score += resp.MarksAwarded
			report.CorrectAnswers++
		}
		report.Responses = append(report.Responses, resp)
	}
	return report
}

func gradeQuestion(q domain.Question, ans domain.SubmittedAnswer) domain.Response {
	correct := q.CorrectOptionIDs()
	resp := domain.Response{
		QuestionID:    q.ID,
		CorrectAnswer: correct,
	}

	switch q.Type {
	case domain.QuestionMultiple:
		resp.UserAnswer = domain.MultipleAnswer(ans.SelectedOptions)
		resp.IsCorrect = sameSet(correct, ans.SelectedOptions)
	default:
		resp.UserAnswer = domain.SingleAnswer(ans.SelectedOption)
		resp.IsCorrect = len(correct) == 1 && ans.SelectedOption != "" && ans.SelectedOption == correct[0]
	}
	if resp.IsCorrect {
		resp.MarksAwarded = q.MarksOrDefault()
	}
	return resp
}

// sameSet compares two id collections as sets, ignoring order and repeats.
func sameSet(want, got []string) bool {
	a, b := uniqueSorted(want), uniqueSorted(got)
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uniqueSorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}

func looseAnswer(ans domain.SubmittedAnswer) domain.AnswerValue {
	if len(ans.SelectedOptions) > 0 {
		return domain.MultipleAnswer(ans.SelectedOptions)
	}
	return domain.SingleAnswer(ans.SelectedOption)
}
