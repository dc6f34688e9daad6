package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/callcoach/internal/ai/aihttp"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// Provider implements models.AIProvider against any OpenAI-compatible
// chat completions endpoint.
type Provider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	return NewCompatible("openai", base, cfg.APIKey, cfg.Model)
}

// NewCompatible builds a provider for a self-hosted OpenAI-compatible server.
// apiKey may be empty.
func NewCompatible(name, baseURL, apiKey, model string) *Provider {
	return &Provider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	msgs := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{
		Model:       p.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var resp chatResponse
	if err := aihttp.PostJSON(ctx, p.client, p.baseURL+"/v1/chat/completions", headers, body, &resp); err != nil {
		return models.CompletionResponse{}, fmt.Errorf("%s: %w", p.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return models.CompletionResponse{}, fmt.Errorf("%s: %w", p.name, aihttp.ErrEmptyResponse)
	}

	return models.CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		StopReason:   resp.Choices[0].FinishReason,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

var _ models.AIProvider = (*Provider)(nil)
