package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := New(&buf, "debug", "json")
	ctx := WithLogger(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	FromContext(ctx).Debug("cache miss", "key", "k1")
	require.Contains(t, buf.String(), `"msg":"cache miss"`)
	require.Contains(t, buf.String(), `"key":"k1"`)
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, "warn", "text")
	l.Info("dropped")
	require.Empty(t, buf.String())

	l.Warn("kept")
	require.Contains(t, buf.String(), "msg=kept")
}
