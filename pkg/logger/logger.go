package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с настройками logrus по умолчанию,
// чтобы пакеты симуляции можно было использовать без инициализации (тесты, утилиты).
var Log = logrus.New()

// Init инициализирует глобальный логгер из переменных окружения.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	Log = logrus.New()

	// 1. Уровень логирования из LOG_LEVEL. По умолчанию - "info".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}

	// 2. Форматтер из LOG_FORMAT: "json" - для продакшена, "text" - для разработки.
	Configure(logLevel, os.Getenv("LOG_FORMAT"))

	// 3. Пишем в стандартный вывод.
	Log.SetOutput(os.Stdout)
}

// Configure переопределяет уровень и формат (например, из YAML-конфига).
// Пустые значения оставляют текущие настройки.
func Configure(level, format string) {
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Log.SetLevel(lvl)
	}

	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		if format == "" && Log.Formatter != nil {
			if _, isJSON := Log.Formatter.(*logrus.JSONFormatter); isJSON {
				return
			}
		}
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}
}
