package app_test

import (
	"math/rand"
	"testing"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
)

func questionMap() map[string]domain.Question {
	out := make(map[string]domain.Question)
	for _, q := range scenarioQuestions() {
		out[q.ID] = q
	}
	return out
}

func TestGradeAllCorrectScenario(t *testing.T) {
	report := app.Grade([]string{"q3", "q1", "q2"}, questionMap(), correctAnswers())
	if report.Score != 6 || report.CorrectAnswers != 3 || report.TotalQuestions != 3 {
		t.Fatalf("expected 6/3/3, got %d/%d/%d", report.Score, report.CorrectAnswers, report.TotalQuestions)
	}
	for i, id := range []string{"q3", "q1", "q2"} {
		if report.Responses[i].QuestionID != id {
			t.Fatalf("response %d: expected %s, got %s", i, id, report.Responses[i].QuestionID)
		}
	}
	if got := report.Responses[2].CorrectAnswer; len(got) != 2 || got[0] != "opt1" || got[1] != "opt2" {
		t.Fatalf("expected correct answer snapshot [opt1 opt2], got %v", got)
	}
}

func TestGradeSingleSelect(t *testing.T) {
	cases := []struct {
		selected string
		want     bool
	}{
		{"opt1", true},
		{"opt2", false},
		{"", false},
		{"opt9", false},
	}
	for _, tc := range cases {
		report := app.Grade([]string{"q1"}, questionMap(), []domain.SubmittedAnswer{{QuestionID: "q1", SelectedOption: tc.selected}})
		if report.Responses[0].IsCorrect != tc.want {
			t.Fatalf("selected %q: expected %v", tc.selected, tc.want)
		}
		if tc.want && report.Responses[0].MarksAwarded != 1 {
			t.Fatalf("expected 1 mark, got %d", report.Responses[0].MarksAwarded)
		}
		if !tc.want && report.Responses[0].MarksAwarded != 0 {
			t.Fatalf("incorrect answer must award 0 marks, got %d", report.Responses[0].MarksAwarded)
		}
	}
}

func TestGradeMultipleSelectIsSetEquality(t *testing.T) {
	q := domain.Question{
		ID:    "m",
		Type:  domain.QuestionMultiple,
		Marks: 2,
		Options: []domain.Option{
			{ID: "opt1", IsCorrect: true},
			{ID: "opt2"},
			{ID: "opt3", IsCorrect: true},
		},
	}
	questions := map[string]domain.Question{"m": q}
	cases := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"order irrelevant", []string{"opt3", "opt1"}, true},
		{"subset", []string{"opt1"}, false},
		{"superset", []string{"opt1", "opt2", "opt3"}, false},
		{"repeats ignored", []string{"opt1", "opt3", "opt1"}, true},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		report := app.Grade([]string{"m"}, questions, []domain.SubmittedAnswer{{QuestionID: "m", SelectedOptions: tc.selected}})
		if report.Responses[0].IsCorrect != tc.want {
			t.Fatalf("%s: expected %v", tc.name, tc.want)
		}
	}
}

func TestGradeIgnoresUnassignedAndMissing(t *testing.T) {
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: "opt1"},
		{QuestionID: "q3", SelectedOption: "opt2"},
		{QuestionID: "not-assigned", SelectedOption: "opt1"},
	}
	report := app.Grade([]string{"q1", "q2"}, questionMap(), answers)
	if len(report.Responses) != 2 {
		t.Fatalf("expected one response per assigned question, got %d", len(report.Responses))
	}
	if report.Score != 1 || report.CorrectAnswers != 1 {
		t.Fatalf("expected only q1 to count, got score=%d correct=%d", report.Score, report.CorrectAnswers)
	}
	if report.Responses[1].IsCorrect || !report.Responses[1].UserAnswer.IsEmpty() {
		t.Fatalf("unanswered q2 should be incorrect and empty, got %+v", report.Responses[1])
	}
}

func TestGradeDeletedQuestionIsIncorrect(t *testing.T) {
	questions := questionMap()
	delete(questions, "q3")
	report := app.Grade([]string{"q1", "q3"}, questions, correctAnswers())
	if report.TotalQuestions != 2 || report.CorrectAnswers != 1 || report.Score != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Responses[1].IsCorrect || len(report.Responses[1].CorrectAnswer) != 0 {
		t.Fatalf("deleted question must grade incorrect, got %+v", report.Responses[1])
	}
}

func TestGradeNeverExceedsPossibleMarks(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	questions := questionMap()
	ids := []string{"q1", "q2", "q3"}
	options := []string{"opt1", "opt2", "opt3"}
	for i := 0; i < 500; i++ {
		var answers []domain.SubmittedAnswer
		for _, id := range ids {
			ans := domain.SubmittedAnswer{QuestionID: id, SelectedOption: options[rnd.Intn(3)]}
			for _, opt := range options {
				if rnd.Intn(2) == 0 {
					ans.SelectedOptions = append(ans.SelectedOptions, opt)
				}
			}
			answers = append(answers, ans)
		}
		report := app.Grade(ids, questions, answers)
		if report.Score > 6 || report.CorrectAnswers > report.TotalQuestions {
			t.Fatalf("bounds violated: %+v", report)
		}
	}
}
