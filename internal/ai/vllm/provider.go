package vllm

import (
	"github.com/kiranshivaraju/callcoach/internal/ai/openai"
	"github.com/kiranshivaraju/callcoach/internal/config"
)

// NewProvider returns a provider for a vLLM server, which serves the
// OpenAI-compatible chat completions API.
func NewProvider(cfg config.VLLMConfig) *openai.Provider {
	return openai.NewCompatible("vllm", cfg.BaseURL, "", cfg.Model)
}
