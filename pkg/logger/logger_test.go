package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ignite/pkg/logger"
)

func TestSetup_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger.Setup("production", &buf)
	t.Cleanup(func() { logger.Setup("local", os.Stdout) })

	logger.Info("hello", "port", "8080")
	logger.Debug("dropped")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "8080", line["port"])
}

func TestSetup_LocalWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger.Setup("local", &buf)
	t.Cleanup(func() { logger.Setup("local", os.Stdout) })

	logger.Debug("booting")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "msg=booting")
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))

	scoped := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := logger.InjectLogger(context.Background(), scoped)
	assert.Same(t, scoped, logger.WithCtx(ctx))
}
