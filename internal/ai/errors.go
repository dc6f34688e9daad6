package ai

import "github.com/kiranshivaraju/callcoach/internal/ai/aihttp"

// Provider errors. Every provider wraps one of these so callers can use errors.Is
// without importing provider packages.
var (
	ErrProviderUnavailable = aihttp.ErrProviderUnavailable
	ErrInferenceTimeout    = aihttp.ErrInferenceTimeout
	ErrInvalidResponse     = aihttp.ErrInvalidResponse
	ErrEmptyResponse       = aihttp.ErrEmptyResponse
)
