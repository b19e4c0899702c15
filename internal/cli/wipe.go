package cli

import (
	"fmt"

	"exam-quiz-service/internal/app"
	"exam-quiz-service/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewWipeCmd deletes every user and leaderboard entry. Questions and settings are kept.
func NewWipeCmd(configPath *string) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all users and leaderboard entries (irreversible)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to wipe without --yes")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := newLogger(cfg)
			defer log.Sync() //nolint:errcheck

			b, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			n, err := app.NewLeaderboard(b.store, log).WipeAll(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("wipe complete", zap.Int("users", n))
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the wipe")
	return cmd
}
