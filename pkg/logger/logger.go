package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init/Configure используется логгер logrus по умолчанию.
var Log = logrus.New()

// Init инициализирует глобальный логгер из переменных окружения
// LOG_LEVEL и LOG_FORMAT.
func Init() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure выставляет уровень и формат логирования.
// Пустой или неизвестный уровень означает "info".
func Configure(logLevel, logFormat string) {
	Log = logrus.New()

	// 1. Уровень логирования. Для отладки можно выставить "debug".
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// 2. Форматтер.
	// "json" - для продакшена и сбора логов.
	// "text" - для удобной разработки.
	if strings.ToLower(logFormat) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// 3. Пишем в стандартный поток ошибок, stdout занят выводом симуляции.
	Log.SetOutput(os.Stderr)
}

