package engine

// Config хранит параметры запуска движка
type Config struct {
	Port         string
	ScenarioPath string
	// ReplayDir - куда сохранять записи партий. Пусто - не сохранять.
	ReplayDir string

	// MaxNPCTurns ограничивает число ходов NPC за один Advance.
	// Защищает от зацикливания, если игрок так и не получает ход.
	MaxNPCTurns int
	// Autopilot отдаёт игровых персонажей их стратегиям.
	Autopilot bool

	LogLevel  string
	LogFormat string
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		Port:        "8080",
		ReplayDir:   "replays",
		MaxNPCTurns: 10000,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}
