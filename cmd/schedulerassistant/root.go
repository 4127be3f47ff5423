package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scheduler-assistant/internal/config"
)

// app carries state shared by every subcommand once the root has run.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	startedAt time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "scheduler-assistant",
		Short: "Scheduler Assistant - events, daily sessions and focus timers",
		Long: `Scheduler Assistant serves the scheduling API used by the web client,
tracks attendance for daily time windows and sends a Telegram digest.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			log, err := cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			a.cfg = cfg
			a.log = log.With(zap.String("run_id", uuid.NewString()))
			a.startedAt = time.Now()
			a.log.Debug("command start", zap.String("command", cmd.CommandPath()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log == nil {
				return
			}
			a.log.Debug("command end",
				zap.String("command", cmd.CommandPath()),
				zap.Duration("took", time.Since(a.startedAt)),
			)
			_ = a.log.Sync()
		},
	}

	root.AddCommand(newServeCmd(a), newImportCmd(a))
	return root
}
