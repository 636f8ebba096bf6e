package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"ai_news_generator/logging"

	"github.com/m-mizutani/gt"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		gt.Equal(t, logging.ParseLevel(in), want)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("warn", buf)

	logger.Info("quiet message")
	logger.Warn("loud message")

	gt.S(t, buf.String()).NotContains("quiet message")
	gt.S(t, buf.String()).Contains("loud message")
}

func TestWithAndFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", buf).With("component", "history")
	ctx := logging.With(context.Background(), logger)

	got := logging.From(ctx)
	gt.Equal(t, got, logger)

	got.Debug("loaded")
	gt.S(t, buf.String()).Contains("loaded")
	gt.S(t, buf.String()).Contains("history")
}

func TestFromFallsBackToDefault(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	custom := logging.New("info", buf)
	logging.SetDefault(custom)

	gt.Equal(t, logging.From(context.Background()), custom)
	logging.SetDefault(nil)
	gt.Equal(t, logging.Default(), custom)
}
