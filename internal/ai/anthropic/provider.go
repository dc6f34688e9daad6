package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/callcoach/internal/ai/aihttp"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

const apiVersion = "2023-06-01"

// Provider implements models.AIProvider using the Anthropic Messages API.
type Provider struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	// deadlines come from the caller's context
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	body := messagesRequest{
		Model:       p.cfg.Model,
		MaxTokens:   req.MaxTokens,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
		Messages:    []message{{Role: "user", Content: req.UserPrompt}},
	}
	headers := map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": apiVersion,
	}

	var resp messagesResponse
	if err := aihttp.PostJSON(ctx, p.client, p.cfg.BaseURL+"/v1/messages", headers, body, &resp); err != nil {
		return models.CompletionResponse{}, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return models.CompletionResponse{}, fmt.Errorf("anthropic: %w", aihttp.ErrEmptyResponse)
	}

	return models.CompletionResponse{
		Content:      text.String(),
		Model:        resp.Model,
		StopReason:   resp.StopReason,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

var _ models.AIProvider = (*Provider)(nil)
