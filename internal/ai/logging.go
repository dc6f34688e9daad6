package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// truncatedStops are stop reasons meaning the model ran out of output budget.
var truncatedStops = map[string]bool{
	"max_tokens": true,
	"length":     true,
}

type loggingProvider struct {
	models.AIProvider
}

// WithLogging logs the latency, token usage and outcome of every completion.
func WithLogging(p models.AIProvider) models.AIProvider {
	return loggingProvider{AIProvider: p}
}

func (l loggingProvider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	start := time.Now()
	resp, err := l.AIProvider.Complete(ctx, req)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		slog.Warn("completion failed",
			"provider", l.Name(),
			"duration_ms", elapsed,
			"error", err,
		)
		return resp, err
	}

	attrs := []any{
		"provider", l.Name(),
		"model", resp.Model,
		"duration_ms", elapsed,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
	}
	if truncatedStops[resp.StopReason] {
		slog.Warn("completion hit the output token limit", attrs...)
	} else {
		slog.Info("completion", attrs...)
	}
	return resp, nil
}
