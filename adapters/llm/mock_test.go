package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

func TestMockBackend_Generate(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewMockBackend("Mock")
	m.now = func() time.Time { return at }

	req := domain.PromptRequest{SystemPrompt: "Be brief.", UserPrompt: "Hello"}
	resp, err := m.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Mock", resp.ModelName)
	assert.Equal(t, at, resp.CreatedAt)
	assert.Contains(t, resp.ResponseText, "Prompt: Hello")
	assert.Contains(t, resp.ResponseText, "System prompt: Be brief.")
	assert.Equal(t, domain.CountTokens(resp.ResponseText), resp.TokenCount)
	assert.GreaterOrEqual(t, resp.TokenCount, 1)
}

func TestMockBackend_Deterministic(t *testing.T) {
	m := NewMockBackend("Gemini")
	req := domain.PromptRequest{UserPrompt: "What is 2+2?"}

	a, err := m.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := m.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.ResponseText, b.ResponseText)
	assert.Contains(t, a.ResponseText, "System prompt: (none)")

	other, err := NewMockBackend("Mock").Generate(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, a.ResponseText, other.ResponseText)
}

func TestMockBackend_ModelName(t *testing.T) {
	assert.Equal(t, "GPT-4o mini", NewMockBackend("GPT-4o mini").ModelName())
}
