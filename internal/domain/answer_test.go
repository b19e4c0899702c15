package domain

import (
	"encoding/json"
	"testing"
)

func TestAnswerValueEncoding(t *testing.T) {
	cases := []struct {
		name string
		in   AnswerValue
		want string
	}{
		{"single", SingleAnswer("opt2"), `"opt2"`},
		{"multiple", MultipleAnswer([]string{"opt1", "opt3"}), `["opt1","opt3"]`},
		{"unanswered single", AnswerValue{}, `null`},
		{"unanswered multiple", AnswerValue{Multiple: true}, `[]`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		if string(data) != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, data)
		}
	}
}

func TestAnswerValueDecoding(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"questionId":"q1","userAnswer":["opt1","opt2"]}`), &resp); err != nil {
		t.Fatalf("decode array: %v", err)
	}
	if !resp.UserAnswer.Multiple || len(resp.UserAnswer.Options) != 2 {
		t.Fatalf("expected a multiple answer, got %+v", resp.UserAnswer)
	}

	if err := json.Unmarshal([]byte(`{"userAnswer":"opt3"}`), &resp); err != nil {
		t.Fatalf("decode string: %v", err)
	}
	if resp.UserAnswer.Multiple || resp.UserAnswer.Option != "opt3" {
		t.Fatalf("expected a single answer, got %+v", resp.UserAnswer)
	}

	if err := json.Unmarshal([]byte(`{"userAnswer":null}`), &resp); err != nil {
		t.Fatalf("decode null: %v", err)
	}
	if !resp.UserAnswer.IsEmpty() {
		t.Fatalf("expected an empty answer, got %+v", resp.UserAnswer)
	}

	if err := json.Unmarshal([]byte(`{"userAnswer":42}`), &resp); err == nil {
		t.Fatalf("expected numbers to be rejected")
	}
}
