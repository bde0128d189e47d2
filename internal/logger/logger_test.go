package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slogctx "github.com/veqryn/slog-context"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogctx.NewCtx(context.Background(), New(&buf, "info", "json"))
	ctx = WithComponent(ctx, "resolver")

	slogctx.Info(ctx, "type resolved", "type", "Mat")
	slogctx.Debug(ctx, "filtered out")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "type resolved", rec["msg"])
	assert.Equal(t, "resolver", rec["component"])
	assert.Equal(t, "Mat", rec["type"])
}

func TestNew_PlainText(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "plain")
	l.Debug("searching", "type", "Foo")

	out := buf.String()
	assert.Contains(t, out, "searching")
	assert.Contains(t, out, "type=Foo")
	assert.NotContains(t, out, "\x1b[")
}
