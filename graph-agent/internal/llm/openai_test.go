package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChatServer(t *testing.T, status int, content string) (*httptest.Server, *string) {
	t.Helper()
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content + " " + req.Messages[0].Content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &gotModel
}

func TestOpenAIComplete(t *testing.T) {
	srv, gotModel := fakeChatServer(t, http.StatusOK, "echo:")

	c, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"}, nil)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", out)
	assert.Equal(t, "gpt-4o-mini", *gotModel)
}

func TestOpenAICompleteError(t *testing.T) {
	srv, _ := fakeChatServer(t, http.StatusTooManyRequests, "")

	c, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewOpenAIRequiresKeyAndModel(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{Model: "m"}, nil)
	assert.Error(t, err)
	_, err = NewOpenAI(OpenAIConfig{APIKey: "k"}, nil)
	assert.Error(t, err)
}
