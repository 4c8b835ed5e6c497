package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine"
	"lizard-state/pkg/api"
	"lizard-state/pkg/logger"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play the scenario headless, every entity driven by its strategy",
	Long: `Runs the floor with autopilot: player-controlled entities act through
their own strategies. Events are printed to stdout as JSON lines, the
final summary goes last.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		cfg.Autopilot = true

		floor, source, err := loadFloor(cfg.ScenarioPath)
		if err != nil {
			return err
		}

		session := engine.NewSession(floor, source, cfg)
		events, err := session.Advance(cmd.Context())
		switch {
		case errors.Is(err, engine.ErrTurnLimit):
			logger.Log.WithField("limit", cfg.MaxNPCTurns).Warn("Simulation stopped by the turn limit")
		case err != nil:
			return err
		}

		return printRun(cmd, session, events)
	},
}

// runSummary - последняя строка вывода simulate и replay.
type runSummary struct {
	Session  string           `json:"session"`
	Phase    string           `json:"phase"`
	EndState string           `json:"endState"`
	Events   int              `json:"events"`
	Entities []api.EntityView `json:"entities"`
}

func printRun(cmd *cobra.Command, session *engine.Session, events []domain.Event) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, view := range engine.EventViews(session.Floor(), events) {
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}

	summary := runSummary{
		Session:  session.ID.String(),
		Phase:    session.Phase(),
		EndState: session.EndState().String(),
		Events:   len(events),
		Entities: engine.EntityViews(session.Floor().Entities()),
	}
	return enc.Encode(summary)
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
