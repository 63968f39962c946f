package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log - глобальный логгер. До Init пишет текстом в stderr на уровне info.
var Log = logrus.New()

// Init настраивает уровень и формат: JSON для production, текст для development.
func Init(level string, production bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	SetTextFormatter()
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// SetOutput перенаправляет вывод, в тестах обычно в io.Discard.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
