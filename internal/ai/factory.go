package ai

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kiranshivaraju/callcoach/internal/ai/anthropic"
	"github.com/kiranshivaraju/callcoach/internal/ai/mock"
	"github.com/kiranshivaraju/callcoach/internal/ai/ollama"
	"github.com/kiranshivaraju/callcoach/internal/ai/openai"
	"github.com/kiranshivaraju/callcoach/internal/ai/vllm"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

var constructors = map[string]func(config.AIConfig) models.AIProvider{
	"ollama":    func(c config.AIConfig) models.AIProvider { return ollama.NewProvider(c.Ollama) },
	"vllm":      func(c config.AIConfig) models.AIProvider { return vllm.NewProvider(c.VLLM) },
	"openai":    func(c config.AIConfig) models.AIProvider { return openai.NewProvider(c.OpenAI) },
	"anthropic": func(c config.AIConfig) models.AIProvider { return anthropic.NewProvider(c.Anthropic) },
	"mock":      func(config.AIConfig) models.AIProvider { return mock.NewMockProvider() },
}

// Providers lists the accepted AI_PROVIDER values in sorted order.
func Providers() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewProvider constructs the configured provider wrapped with completion
// logging. Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	ctor, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown AI provider %q: must be one of %s",
			cfg.Provider, strings.Join(Providers(), ", "))
	}
	return WithLogging(ctor(cfg)), nil
}
