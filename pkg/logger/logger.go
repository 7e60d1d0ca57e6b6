package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Log zerolog.Logger

// Init configures the global logger. Console output in development, JSON
// everywhere else.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "development" {
		Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
			With().
			Timestamp().
			Logger()
	} else {
		Log = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
}

func Info() *zerolog.Event {
	return Log.Info()
}

func Error() *zerolog.Event {
	return Log.Error()
}

func Warn() *zerolog.Event {
	return Log.Warn()
}

func Debug() *zerolog.Event {
	return Log.Debug()
}

func Fatal() *zerolog.Event {
	return Log.Fatal()
}
