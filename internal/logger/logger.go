package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup returns the process logger. Dev mode logs at debug level through the
// console writer, otherwise JSON lines at info level go to stderr.
func Setup(dev bool) zerolog.Logger {
	return setup(os.Stderr, dev)
}

// Install sets up the logger and makes it the global one, which is what the
// build packages log through.
func Install(dev bool) zerolog.Logger {
	l := Setup(dev)
	log.Logger = l
	return l
}

func setup(w io.Writer, dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}
