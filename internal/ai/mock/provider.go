package mock

import (
	"context"

	"github.com/kiranshivaraju/callcoach/internal/ai/aihttp"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// DefaultResponse is a minimal well-formed analysis returned by NewMockProvider.
const DefaultResponse = `{
  "overallScore": 7,
  "components": [],
  "executiveSummary": {
    "strengths": ["Clear agenda set at the start of the call"],
    "weaknesses": ["Next steps were not confirmed with a date"],
    "recommendations": ["Close every call with a dated next step"]
  }
}`

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return models.CompletionResponse{}, nil
}

// NewMockProvider returns a MockProvider with a sensible default response.
func NewMockProvider() *MockProvider {
	return NewStaticProvider(DefaultResponse)
}

// NewStaticProvider returns a MockProvider that always answers with content.
func NewStaticProvider(content string) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (models.CompletionResponse, error) {
			return models.CompletionResponse{
				Content:    content,
				Model:      "mock-v1",
				StopReason: "end_turn",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (models.CompletionResponse, error) {
			return models.CompletionResponse{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (models.CompletionResponse, error) {
			<-ctx.Done()
			return models.CompletionResponse{}, aihttp.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
