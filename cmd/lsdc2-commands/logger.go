package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

func InitLogger(level string, jsonOutput bool) {
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, level, jsonOutput)))
}

func newLogHandler(w io.Writer, level string, jsonOutput bool) slog.Handler {
	lvl := parseLevel(level)
	if jsonOutput {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.RFC1123Z,
	})
}

// parseLevel falls back to info for unknown names.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
