package domain

import "time"

// QuestionType distinguishes single-select from multiple-select questions.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Option is a possible answer for a question. IDs are positional tokens (opt1, opt2, ...).
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models a single- or multiple-select question.
type Question struct {
	ID        string       `json:"id"`
	Text      string       `json:"question"`
	Type      QuestionType `json:"type"`
	Marks     int          `json:"marks"` // defaults to 1 if zero
	Category  string       `json:"category,omitempty"`
	Options   []Option     `json:"options"`
	CreatedAt time.Time    `json:"createdAt"`
}

// MarksOrDefault returns the marks for the question, treating non-positive values as 1.
func (q Question) MarksOrDefault() int {
	if q.Marks <= 0 {
		return 1
	}
	return q.Marks
}

// CorrectOptionIDs returns the ids of every option flagged correct, in option order.
func (q Question) CorrectOptionIDs() []string {
	ids := make([]string, 0, 2)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// PublicOption is an option with its correctness flag stripped.
type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PublicQuestion is the sanitized view of a question handed to quiz takers.
type PublicQuestion struct {
	ID      string         `json:"id"`
	Text    string         `json:"question"`
	Type    QuestionType   `json:"type"`
	Marks   int            `json:"marks"`
	Options []PublicOption `json:"options"`
}

// Sanitize drops every correctness flag from the question.
func (q Question) Sanitize() PublicQuestion {
	opts := make([]PublicOption, 0, len(q.Options))
	for _, opt := range q.Options {
		opts = append(opts, PublicOption{ID: opt.ID, Text: opt.Text})
	}
	return PublicQuestion{
		ID:      q.ID,
		Text:    q.Text,
		Type:    q.Type,
		Marks:   q.MarksOrDefault(),
		Options: opts,
	}
}

// Response is the graded outcome of one assigned question, embedded in the user record.
type Response struct {
	QuestionID    string      `json:"questionId"`
	UserAnswer    AnswerValue `json:"userAnswer"`
	CorrectAnswer []string    `json:"correctAnswer"`
	IsCorrect     bool        `json:"isCorrect"`
	MarksAwarded  int         `json:"marks"`
}

// User is a registered quiz taker together with their attempt state.
type User struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	RegisterNo         string     `json:"registerNo"`
	Email              string     `json:"email"`
	RegisteredAt       time.Time  `json:"registeredAt"`
	HasAttempted       bool       `json:"hasAttempted"`
	AttemptCount       int        `json:"attemptCount"`
	AssignedQuestions  []string   `json:"assignedQuestions"`
	QuizStartedAt      *time.Time `json:"quizStartedAt"`
	TotalPossibleMarks int        `json:"totalPossibleMarks"`
	Score              int        `json:"score"`
	CorrectAnswers     int        `json:"correctAnswers"`
	TotalQuestions     int        `json:"totalQuestions"`
	SubmittedAt        *time.Time `json:"submittedAt"`
	Responses          []Response `json:"responses"`
}

// Assignment is the randomized question set bound to a user for one attempt.
type Assignment struct {
	QuestionIDs        []string
	StartedAt          time.Time
	TotalPossibleMarks int
}

// Apply writes the assignment onto the user record.
func (a Assignment) Apply(u *User) {
	u.AssignedQuestions = append([]string(nil), a.QuestionIDs...)
	started := a.StartedAt
	u.QuizStartedAt = &started
	u.TotalPossibleMarks = a.TotalPossibleMarks
}

// AttemptResult carries the graded outcome written to the user record in one update.
// AssignedQuestions and QuizStartedAt identify the assignment that was graded.
type AttemptResult struct {
	Score             int
	CorrectAnswers    int
	TotalQuestions    int
	SubmittedAt       time.Time
	Responses         []Response
	AssignedQuestions []string
	QuizStartedAt     *time.Time
}

// GradedAgainst reports whether u still holds the assignment the result was graded against.
func (r AttemptResult) GradedAgainst(u User) bool {
	if len(r.AssignedQuestions) != len(u.AssignedQuestions) {
		return false
	}
	for i := range r.AssignedQuestions {
		if r.AssignedQuestions[i] != u.AssignedQuestions[i] {
			return false
		}
	}
	if r.QuizStartedAt == nil || u.QuizStartedAt == nil {
		return r.QuizStartedAt == nil && u.QuizStartedAt == nil
	}
	return r.QuizStartedAt.Equal(*u.QuizStartedAt)
}

// Apply marks the user as attempted and records the result.
func (r AttemptResult) Apply(u *User) {
	u.HasAttempted = true
	u.AttemptCount++
	u.Score = r.Score
	u.CorrectAnswers = r.CorrectAnswers
	u.TotalQuestions = r.TotalQuestions
	submitted := r.SubmittedAt
	u.SubmittedAt = &submitted
	u.Responses = r.Responses
}

// ResetAttempt rolls the user back to the pre-assignment state.
func ResetAttempt(u *User) {
	u.HasAttempted = false
	u.AttemptCount = 0
	u.Score = 0
	u.CorrectAnswers = 0
	u.TotalQuestions = 0
	u.TotalPossibleMarks = 0
	u.SubmittedAt = nil
	u.AssignedQuestions = []string{}
	u.QuizStartedAt = nil
	u.Responses = []Response{}
}

// Settings is the singleton quiz configuration managed by admins.
type Settings struct {
	IsActive            bool      `json:"isActive"`
	QuizDurationSeconds int       `json:"quizDuration"`
	QuestionsPerUser    int       `json:"questionsPerUser"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultSettings is used when no settings document has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		IsActive:            false,
		QuizDurationSeconds: 1200,
		QuestionsPerUser:    20,
		Title:               "Quiz",
	}
}

// LeaderboardEntry is the denormalized, append-only projection of one completed attempt.
type LeaderboardEntry struct {
	Seq              int64     `json:"-"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	RegisterNo       string    `json:"registerNo"`
	Score            int       `json:"score"`
	CorrectAnswers   int       `json:"correctAnswers"`
	TotalQuestions   int       `json:"totalQuestions"`
	TimeTakenSeconds int64     `json:"timeTaken"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

// RankedEntry is a leaderboard entry with its 1-based rank.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

// Leaderboard captures the ordered scoreboard at a point in time.
type Leaderboard struct {
	Entries   []RankedEntry `json:"leaderboard"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
