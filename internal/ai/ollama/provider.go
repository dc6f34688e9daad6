package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/callcoach/internal/ai/aihttp"
	"github.com/kiranshivaraju/callcoach/internal/config"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// Provider implements models.AIProvider using Ollama's chat API.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	body := chatRequest{
		Model:  p.cfg.Model,
		Stream: false,
		Format: "json",
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	}
	body.Options.Temperature = req.Temperature
	body.Options.NumPredict = req.MaxTokens

	var resp chatResponse
	if err := aihttp.PostJSON(ctx, p.client, p.cfg.BaseURL+"/api/chat", nil, body, &resp); err != nil {
		return models.CompletionResponse{}, fmt.Errorf("ollama: %w", err)
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return models.CompletionResponse{}, fmt.Errorf("ollama: %w", aihttp.ErrEmptyResponse)
	}

	return models.CompletionResponse{
		Content:      resp.Message.Content,
		Model:        resp.Model,
		StopReason:   resp.DoneReason,
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	DoneReason      string      `json:"done_reason"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

var _ models.AIProvider = (*Provider)(nil)
