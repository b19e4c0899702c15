package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/domain"
	"exam-quiz-service/internal/infra/memory"
)

func TestApplySeedFromBundledFile(t *testing.T) {
	seed, err := LoadSeedFile(filepath.Join("..", "..", "config", "questions.yaml"))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	ctx := context.Background()
	store := memory.NewStore()
	admin := app.NewAdminService(store, app.NewLeaderboard(store, nil), nil)

	n, err := ApplySeed(ctx, admin, seed)
	if err != nil {
		t.Fatalf("apply seed: %v", err)
	}
	pool, _ := store.ListQuestions(ctx)
	if n != len(seed.Questions) || len(pool) != n {
		t.Fatalf("expected %d questions, got n=%d pool=%d", len(seed.Questions), n, len(pool))
	}
	if pool[0].Options[0].ID != "opt1" {
		t.Fatalf("seeded options should get positional ids, got %+v", pool[0].Options)
	}
	settings, _ := store.GetSettings(ctx)
	if settings.QuizDurationSeconds != 1200 || settings.QuestionsPerUser != 20 {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func TestApplySeedStopsOnInvalidQuestion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte(`questions:
  - question: ok
    type: single
    options:
      - text: a
        isCorrect: true
      - text: b
  - question: broken
    type: single
    options:
      - text: a
        isCorrect: true
      - text: b
        isCorrect: true
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	seed, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	store := memory.NewStore()
	admin := app.NewAdminService(store, app.NewLeaderboard(store, nil), nil)

	n, err := ApplySeed(context.Background(), admin, seed)
	if !errors.Is(err, domain.ErrValidation) || n != 1 {
		t.Fatalf("expected failure on the second question, got n=%d err=%v", n, err)
	}
	settings, _ := store.GetSettings(context.Background())
	if settings != domain.DefaultSettings() {
		t.Fatalf("settings should be untouched without a settings block, got %+v", settings)
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
