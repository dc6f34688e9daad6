// Package mock provides a function-field fake of recording.Client.
package mock

import (
	"context"
	"time"

	"github.com/kiranshivaraju/callcoach/internal/recording"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// Client satisfies recording.Client. Nil funcs return empty results.
type Client struct {
	ListCallsFunc         func(ctx context.Context, from, to time.Time) ([]models.CallRecord, error)
	GetCallFunc           func(ctx context.Context, callID string) (*models.CallRecord, error)
	GetCallsExtensiveFunc func(ctx context.Context, callIDs []string) ([]models.CallRecord, error)
	GetTranscriptsFunc    func(ctx context.Context, callIDs []string) (map[string][]recording.Monologue, error)
	GetUserFunc           func(ctx context.Context, userID string) (*recording.User, error)
	ListUsersFunc         func(ctx context.Context) ([]recording.User, error)
}

func (c *Client) ListCalls(ctx context.Context, from, to time.Time) ([]models.CallRecord, error) {
	if c.ListCallsFunc != nil {
		return c.ListCallsFunc(ctx, from, to)
	}
	return []models.CallRecord{}, nil
}

func (c *Client) GetCall(ctx context.Context, callID string) (*models.CallRecord, error) {
	if c.GetCallFunc != nil {
		return c.GetCallFunc(ctx, callID)
	}
	return nil, recording.ErrNotFound
}

func (c *Client) GetCallsExtensive(ctx context.Context, callIDs []string) ([]models.CallRecord, error) {
	if c.GetCallsExtensiveFunc != nil {
		return c.GetCallsExtensiveFunc(ctx, callIDs)
	}
	return []models.CallRecord{}, nil
}

func (c *Client) GetTranscripts(ctx context.Context, callIDs []string) (map[string][]recording.Monologue, error) {
	if c.GetTranscriptsFunc != nil {
		return c.GetTranscriptsFunc(ctx, callIDs)
	}
	return map[string][]recording.Monologue{}, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*recording.User, error) {
	if c.GetUserFunc != nil {
		return c.GetUserFunc(ctx, userID)
	}
	return nil, recording.ErrNotFound
}

func (c *Client) ListUsers(ctx context.Context) ([]recording.User, error) {
	if c.ListUsersFunc != nil {
		return c.ListUsersFunc(ctx)
	}
	return []recording.User{}, nil
}

// WithCalls returns a Client serving a fixed set of calls and transcripts.
// Calls are listed regardless of date; lookups by ID honour the set.
func WithCalls(calls []models.CallRecord, transcripts map[string][]recording.Monologue) *Client {
	byID := make(map[string]models.CallRecord, len(calls))
	for _, c := range calls {
		byID[c.ID] = c
	}
	return &Client{
		ListCallsFunc: func(_ context.Context, _, _ time.Time) ([]models.CallRecord, error) {
			return calls, nil
		},
		GetCallFunc: func(_ context.Context, id string) (*models.CallRecord, error) {
			c, ok := byID[id]
			if !ok {
				return nil, recording.ErrNotFound
			}
			return &c, nil
		},
		GetCallsExtensiveFunc: func(_ context.Context, ids []string) ([]models.CallRecord, error) {
			out := []models.CallRecord{}
			for _, id := range ids {
				if c, ok := byID[id]; ok {
					out = append(out, c)
				}
			}
			return out, nil
		},
		GetTranscriptsFunc: func(_ context.Context, ids []string) (map[string][]recording.Monologue, error) {
			out := map[string][]recording.Monologue{}
			for _, id := range ids {
				if t, ok := transcripts[id]; ok {
					out[id] = t
				}
			}
			return out, nil
		},
	}
}

var _ recording.Client = (*Client)(nil)
