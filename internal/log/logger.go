package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func New(environment, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		if environment == "production" {
			parsed = zerolog.InfoLevel
		} else {
			parsed = zerolog.DebugLevel
		}
	}
	zerolog.SetGlobalLevel(parsed)

	return logger
}
