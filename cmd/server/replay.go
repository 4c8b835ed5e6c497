package main

import (
	"fmt"

	"lizard-state/internal/engine"
	"lizard-state/internal/infrastructure/storage"
	"lizard-state/pkg/logger"
	"lizard-state/pkg/scenario"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.lzrp>",
	Short: "Re-run a recorded session and print its events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		// 1. Запись и сценарий из неё
		record, err := storage.LoadFile(args[0])
		if err != nil {
			return err
		}
		scn, err := scenario.Parse([]byte(record.Scenario))
		if err != nil {
			return fmt.Errorf("recorded scenario: %w", err)
		}
		floor, _, err := scn.Build()
		if err != nil {
			return fmt.Errorf("recorded scenario: %w", err)
		}

		logger.Log.WithFields(logrus.Fields{
			"file":    args[0],
			"actions": len(record.Actions),
		}).Info("Replaying session")

		// 2. Повтор
		session, events, err := engine.Replay(cmd.Context(), floor, record, cfg)
		if err != nil {
			logger.Log.WithError(err).Error("Replay diverged")
		}
		if printErr := printRun(cmd, session, events); printErr != nil {
			return printErr
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
