package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("FromContext falls back to default", func(t *testing.T) {
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	})

	t.Run("domain fields are attached", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithMineral(ctx, "record.quartz.0xabc")
		ctx = logging.WithLanguage(ctx, "es")
		ctx = logging.WithDraft(ctx, "d1")
		ctx = logging.WithOperation(ctx, "publish")

		logging.Ctx(ctx).Info().Msg("hello")

		tl.AssertContains(t, `"mineral":"record.quartz.0xabc"`)
		tl.AssertContains(t, `"lang":"es"`)
		tl.AssertContains(t, `"draft_id":"d1"`)
		tl.AssertContains(t, `"operation":"publish"`)
	})

	t.Run("request id round trip", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRequestID(ctx, "req-1")

		assert.Equal(t, "req-1", logging.RequestID(ctx))
		logging.FromContext(ctx).Warn().Msg("x")
		tl.AssertContains(t, `"request_id":"req-1"`)
		assert.Empty(t, logging.RequestID(context.Background()))
	})

	t.Run("WithFields", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithFields(ctx, map[string]any{"count": 3, "ok": true})
		logging.FromContext(ctx).Info().Msg("fields")

		tl.AssertContains(t, `"count":3`)
		tl.AssertContains(t, `"ok":true`)
	})
}

func TestNewLoggerFromConfig(t *testing.T) {
	old := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"warning alias", "warning", zerolog.WarnLevel},
		{"off", "off", zerolog.Disabled},
		{"garbage", "loud", zerolog.InfoLevel},
		{"empty", "", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.NewLoggerFromConfig(&logging.Config{Level: tt.level, Output: "discard", Format: "json"})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNewLoggerFromConfigFields(t *testing.T) {
	old := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "info",
		Output: "discard",
		Format: "json",
		Fields: map[string]any{"service": "minerals"},
	})
	var buf bytes.Buffer
	out := logger.Output(&buf)
	out.Info().Msg("started")
	require.Contains(t, buf.String(), `"service":"minerals"`)
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	tl.Info().Msg("one")
	tl.Debug().Msg("two")

	assert.Len(t, tl.Lines(), 2)
	assert.True(t, tl.Contains("two"))
}
