package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b, err := NewOpenAIBackend("GPT-4o mini", "gpt-4o-mini", "sk-test", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return b
}

func TestOpenAIBackend_Generate(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	b := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Four, obviously."}}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 2, "total_tokens": 11}
		}`))
	})

	resp, err := b.Generate(context.Background(), domain.PromptRequest{SystemPrompt: "Be terse.", UserPrompt: "2+2?"})
	require.NoError(t, err)

	assert.Equal(t, "GPT-4o mini", resp.ModelName)
	assert.Equal(t, "Four, obviously.", resp.ResponseText)
	assert.Equal(t, 2, resp.TokenCount)
	assert.False(t, resp.CreatedAt.IsZero())

	assert.Equal(t, "gpt-4o-mini", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "user", body.Messages[1].Role)
}

func TestOpenAIBackend_InvalidKey(t *testing.T) {
	b := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	})

	_, err := b.Generate(context.Background(), domain.PromptRequest{UserPrompt: "hi"})

	var berr *domain.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, domain.BackendInvalidCredentials, berr.Reason)
	assert.Equal(t, "GPT-4o mini", berr.Model)
}

func TestOpenAIBackend_NoChoices(t *testing.T) {
	b := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	})

	_, err := b.Generate(context.Background(), domain.PromptRequest{UserPrompt: "hi"})

	var berr *domain.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, domain.BackendProviderError, berr.Reason)
}

func TestOpenAIBackend_StalledServerTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	b, err := NewOpenAIBackend("GPT-4o mini", "gpt-4o-mini", "sk-test", srv.URL+"/", 100*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = b.Generate(context.Background(), domain.PromptRequest{UserPrompt: "hi"})

	var berr *domain.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, domain.BackendTimeout, berr.Reason)
	assert.Equal(t, "GPT-4o mini", berr.Model)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOpenAIBackend_CallerCancels(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case arrived <- struct{}{}:
		default:
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	b, err := NewOpenAIBackend("GPT-4o mini", "gpt-4o-mini", "sk-test", srv.URL+"/", 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()
	_, err = b.Generate(ctx, domain.PromptRequest{UserPrompt: "hi"})

	var berr *domain.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, domain.BackendUnavailable, berr.Reason)
}

func TestNewOpenAIBackend_RequiresKey(t *testing.T) {
	_, err := NewOpenAIBackend("GPT-4o mini", "gpt-4o-mini", "", "", time.Second)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ProviderOpenAI, cfgErr.Provider)
}
