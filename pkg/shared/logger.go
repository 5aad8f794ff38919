package shared

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const LogLevelEnv = "ILOCK_LOG_LEVEL"

type LoggerOptions struct {
	// Level is a zerolog level name. Empty falls back to ILOCK_LOG_LEVEL, then info.
	Level string
	// Console selects the human-readable writer instead of JSON lines.
	Console bool
	Output  io.Writer
}

// NewLogger builds the process logger.
func NewLogger(options LoggerOptions) zerolog.Logger {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}
	if options.Console {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(ParseLogLevel(firstNonEmpty(options.Level, os.Getenv(LogLevelEnv)))).
		With().
		Timestamp().
		Logger()
}

// ParseLogLevel maps a level name to a zerolog level, defaulting to info.
func ParseLogLevel(value string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
