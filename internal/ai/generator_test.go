package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHonorsConfiguredTimeout(t *testing.T) {
	generator := NewOpenAIGenerator("test-key", "gpt-4o-mini", 0.1, 100, time.Nanosecond)

	_, err := generator.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateZeroTimeoutKeepsCallerContext(t *testing.T) {
	generator := NewOpenAIGenerator("test-key", "gpt-4o-mini", 0.1, 100, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generator.Generate(ctx, "prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
