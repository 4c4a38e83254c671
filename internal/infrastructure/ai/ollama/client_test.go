package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Generate(t *testing.T) {
	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(ChatResponse{
			Model:           "llama-test",
			Message:         ChatMessage{Role: "assistant", Content: "\n# Dal\n"},
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       30,
		})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL + "/", Model: "llama-test", MaxTokens: 256, Temperature: 0.4}, zap.NewNop())

	out, err := client.Generate(context.Background(), "lentils please")

	require.NoError(t, err)
	assert.Equal(t, "# Dal", out.Content)
	assert.Equal(t, 42, out.Usage.TotalTokens)
	assert.False(t, captured.Stream)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "lentils please", captured.Messages[1].Content)
	assert.EqualValues(t, 256, captured.Options["num_predict"])
	assert.InDelta(t, 0.4, captured.Options["temperature"], 0.0001)
}

func TestClient_GenerateErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewClient(Options{BaseURL: server.URL}, zap.NewNop()).Generate(context.Background(), "x")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "model not found")
	})

	t.Run("blank message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"  "},"done":true}`))
		}))
		defer server.Close()

		_, err := NewClient(Options{BaseURL: server.URL}, zap.NewNop()).Generate(context.Background(), "x")

		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestClient_HealthCheck(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer server.Close()
	client := NewClient(Options{BaseURL: server.URL}, zap.NewNop())

	assert.NoError(t, client.HealthCheck(context.Background()))

	status = http.StatusInternalServerError
	assert.Error(t, client.HealthCheck(context.Background()))
}
