package vllm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/callcoach/internal/ai/vllm"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_SendsConfiguredModel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "qwen2.5-7b", body.Model)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "{}"}, "finish_reason": "stop"}},
		})
	}))
	defer ts.Close()

	p := vllm.NewProvider(config.VLLMConfig{BaseURL: ts.URL, Model: "qwen2.5-7b"})
	resp, err := p.Complete(context.Background(), models.CompletionRequest{UserPrompt: "u"})
	require.NoError(t, err)
	assert.Equal(t, "vllm", p.Name())
	assert.Equal(t, "{}", resp.Content)
}
