package main

import (
	"errors"
	"fmt"
	"strings"

	"lizard-state/internal/domain"
	"lizard-state/internal/engine"
	"lizard-state/pkg/logger"
	"lizard-state/pkg/scenario"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lizard-state",
	Short: "Turn-based tactical roguelike simulation",
	Long: `Lizard State runs a single dungeon floor: NPCs act on their own,
players act through WebSocket clients. Every setting can also come from
lizard.yaml or from LIZARD_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

func init() {
	defaults := engine.NewConfig()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./lizard.yaml)")
	flags.String("scenario", "", "scenario YAML (empty - built-in generated floor)")
	flags.String("replay-dir", defaults.ReplayDir, "where finished sessions are recorded (empty - nowhere)")
	flags.Int("max-npc-turns", defaults.MaxNPCTurns, "NPC turns allowed between two player turns")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", defaults.LogFormat, "log format: text or json")
}

func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lizard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// LIZARD_MAX_NPC_TURNS -> max-npc-turns
	viper.SetEnvPrefix("LIZARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.Configure(viper.GetString("log-level"), viper.GetString("log-format"))
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Log.WithField("config", used).Debug("Config file loaded")
	}
	return nil
}

// loadConfig собирает engine.Config из флагов, файла и окружения.
func loadConfig() engine.Config {
	cfg := engine.NewConfig()
	cfg.ScenarioPath = viper.GetString("scenario")
	cfg.ReplayDir = viper.GetString("replay-dir")
	cfg.MaxNPCTurns = viper.GetInt("max-npc-turns")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.LogFormat = viper.GetString("log-format")
	if viper.IsSet("port") {
		cfg.Port = viper.GetString("port")
	}
	cfg.Autopilot = viper.GetBool("autopilot")
	return cfg
}

// defaultScenario - этаж, если сценарий не указан.
const defaultScenario = `name: default
vision_radius: 8
downing: true
generate:
  seed: 1
  rooms: 8
entities:
  - template: hero
  - template: companion
  - template: lizard
  - template: lizard
  - template: brute
  - template: sentry
`

// loadFloor строит начальный этаж. Второе значение - исходный текст
// сценария для записи партии.
func loadFloor(path string) (*domain.Floor, string, error) {
	var (
		scn *scenario.Scenario
		raw []byte
		err error
	)
	if path == "" {
		raw = []byte(defaultScenario)
		scn, err = scenario.Parse(raw)
	} else {
		scn, raw, err = scenario.Load(path)
	}
	if err != nil {
		return nil, "", err
	}

	floor, _, err := scn.Build()
	if err != nil {
		return nil, "", err
	}
	return floor, string(raw), nil
}
