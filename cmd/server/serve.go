package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lizard-state/internal/agent"
	"lizard-state/internal/engine"
	"lizard-state/internal/infrastructure/storage"
	"lizard-state/internal/server"
	"lizard-state/internal/version"
	"lizard-state/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WebSocket game server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		logger.Log.Info("Starting Lizard State...")
		logger.Log.Info(version.String())

		// 1. Начальный этаж
		floor, source, err := loadFloor(cfg.ScenarioPath)
		if err != nil {
			return err
		}

		// 2. Хранилище записей партий
		var replays *storage.ReplayService
		if cfg.ReplayDir != "" {
			if replays, err = storage.NewReplayService(cfg.ReplayDir); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 3. Ядро
		session := engine.NewSession(floor, source, cfg)
		gameService := engine.NewService(session, replays)
		if err := gameService.Start(ctx); err != nil {
			if !errors.Is(err, engine.ErrTurnLimit) {
				return err
			}
			logger.Log.WithError(err).Warn("Session stalled before the first player turn")
		}

		// 4. Боты на свободные места
		if bots, _ := cmd.Flags().GetInt("bots"); bots > 0 {
			startBots(ctx, gameService, bots)
		}

		// 5. Сервер
		srv := server.New(gameService, cfg.Port)
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Run() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("Server shutdown failed")
		}

		// Незаконченная партия тоже сохраняется.
		if path, err := gameService.SaveReplay(); err != nil {
			logger.Log.WithError(err).Error("Failed to save replay")
		} else if path != "" {
			logger.Log.WithFields(logrus.Fields{"path": path, "phase": gameService.Phase()}).Info("Done.")
		}
		return nil
	},
}

// startBots занимает до n свободных сущностей игрока ботами.
func startBots(ctx context.Context, svc *engine.GameService, n int) {
	for i := 0; i < n; i++ {
		bot, err := agent.NewBot(svc, "")
		if err != nil {
			logger.Log.WithError(err).Warn("No more entities for bots")
			return
		}
		go bot.Run(ctx)
	}
}

func init() {
	serveCmd.Flags().String("port", engine.NewConfig().Port, "HTTP port")
	serveCmd.Flags().Int("bots", 0, "let bots control this many free player entities")
	rootCmd.AddCommand(serveCmd)
}
