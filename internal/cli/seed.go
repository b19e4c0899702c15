package cli

import (
	"context"
	"fmt"
	"os"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Settings  *SeedSettings  `yaml:"settings"`
	Questions []SeedQuestion `yaml:"questions"`
}

type SeedSettings struct {
	IsActive         *bool   `yaml:"isActive"`
	QuizDuration     *int    `yaml:"quizDuration"`
	QuestionsPerUser *int    `yaml:"questionsPerUser"`
	Title            *string `yaml:"title"`
	Description      *string `yaml:"description"`
}

type SeedQuestion struct {
	Question string       `yaml:"question"`
	Type     string       `yaml:"type"`
	Marks    int          `yaml:"marks"`
	Category string       `yaml:"category"`
	Options  []SeedOption `yaml:"options"`
}

type SeedOption struct {
	Text      string `yaml:"text"`
	IsCorrect bool   `yaml:"isCorrect"`
}

// NewSeedCmd loads questions (and optionally settings) from a YAML file.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions and settings from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := newLogger(cfg)
			defer log.Sync() //nolint:errcheck

			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}
			seed, err := LoadSeedFile(file)
			if err != nil {
				return err
			}
			b, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			admin := app.NewAdminService(b.store, app.NewLeaderboard(b.store, log), log)
			n, err := ApplySeed(ctx, admin, seed)
			if err != nil {
				return err
			}
			log.Info("seed applied", zap.Int("questions", n), zap.String("file", file))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/questions.yaml", "YAML file with questions")
	return cmd
}

func LoadSeedFile(path string) (SeedFile, error) {
	var seed SeedFile
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, err
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

// ApplySeed creates every question through the admin path, so seeded questions
// get the same validation and option ids as ones typed into the console.
func ApplySeed(ctx context.Context, admin *app.AdminService, seed SeedFile) (int, error) {
	if s := seed.Settings; s != nil {
		if _, err := admin.UpdateSettings(ctx, app.SettingsPatch{
			IsActive:         s.IsActive,
			QuizDuration:     s.QuizDuration,
			QuestionsPerUser: s.QuestionsPerUser,
			Title:            s.Title,
			Description:      s.Description,
		}); err != nil {
			return 0, fmt.Errorf("seed settings: %w", err)
		}
	}
	for i, q := range seed.Questions {
		in := app.QuestionInput{
			Question: q.Question,
			Type:     q.Type,
			Marks:    q.Marks,
			Category: q.Category,
		}
		for _, o := range q.Options {
			in.Options = append(in.Options, app.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		if _, err := admin.CreateQuestion(ctx, in); err != nil {
			return i, fmt.Errorf("seed question %d: %w", i+1, err)
		}
	}
	return len(seed.Questions), nil
}
