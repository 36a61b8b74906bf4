package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smcore "github.com/aws/sagemaker-core-sub001"
)

func TestLoggingSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handle := Logging(smcore.ClientFunc(func(ctx context.Context, operation string, input map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}), logger)

	resp, err := handle.Call(context.Background(), "DescribeTrainingJob", nil)
	require.NoError(t, err)
	assert.Equal(t, true, resp["ok"])

	out := buf.String()
	assert.Contains(t, out, "call started")
	assert.Contains(t, out, "call completed")
	assert.Contains(t, out, "DescribeTrainingJob")
}

func TestLoggingError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handle := Logging(smcore.ClientFunc(func(ctx context.Context, operation string, input map[string]any) (map[string]any, error) {
		return nil, assert.AnError
	}), logger)

	_, err := handle.Call(context.Background(), "CreateTrainingJob", nil)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "call failed")
	assert.Contains(t, out, "CreateTrainingJob")
	assert.NotContains(t, out, "call completed")
}
