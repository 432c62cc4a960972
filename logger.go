package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	envLogLevel  = "QRSHARE_LOG_LEVEL"
	envLogFormat = "QRSHARE_LOG_FORMAT"
)

// newLogger builds the process logger. Level and format come from the
// environment; unknown or empty levels mean info.
func newLogger(w io.Writer, getenv func(string) string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(getenv(envLogLevel))))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(getenv(envLogFormat), "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
