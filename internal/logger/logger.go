package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log - общий логгер приложения. До вызова Init пишет в stderr с уровнем info.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Discard отключает вывод логов (для тестов).
func Discard() {
	Log.SetOutput(io.Discard)
}

// recoveryLogger передаёт паники горутин в общий логгер.
type recoveryLogger struct{}

func (recoveryLogger) Errorf(format string, args ...interface{}) {
	Log.Errorf(format, args...)
}

// RecoveryLogger возвращает адаптер логгера для обработчика паник.
func RecoveryLogger() interface {
	Errorf(format string, args ...interface{})
} {
	return recoveryLogger{}
}
