// Package recording is the client for the call-recording platform's REST API.
package recording

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// Sentinel errors for recording platform failures.
var (
	ErrNotFound    = errors.New("recording: not found")
	ErrRateLimited = errors.New("recording: rate limited")
	ErrAuthFailed  = errors.New("recording: authentication failed")
	ErrForbidden   = errors.New("recording: forbidden")
	ErrUnreachable = errors.New("recording: unreachable")
	ErrUpstream    = errors.New("recording: upstream error")
)

// Client is the interface for reading calls, transcripts and users.
type Client interface {
	ListCalls(ctx context.Context, from, to time.Time) ([]models.CallRecord, error)
	GetCall(ctx context.Context, callID string) (*models.CallRecord, error)
	GetCallsExtensive(ctx context.Context, callIDs []string) ([]models.CallRecord, error)
	GetTranscripts(ctx context.Context, callIDs []string) (map[string][]Monologue, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Config holds HTTPClient settings.
type Config struct {
	BaseURL      string
	AccessKey    string
	AccessSecret string
	Timeout      time.Duration
	PageSize     int
	MaxPages     int
	MaxRetries   int
	// RetryBaseDelay and RetryMaxDelay bound the exponential wait between 429 retries.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

const (
	defaultPageSize   = 100
	defaultMaxPages   = 50
	defaultMaxRetries = 3
	defaultRetryBase  = 3 * time.Second
	defaultRetryMax   = 60 * time.Second
	maxErrorBodyBytes = 512
)

// HTTPClient implements Client using the platform's HTTP API.
type HTTPClient struct {
	baseURL      string
	accessKey    string
	accessSecret string
	pageSize     int
	maxPages     int
	maxRetries   int
	retryBase    time.Duration
	retryMax     time.Duration
	client       *http.Client
}

// NewHTTPClient creates a new recording platform client. Zero values fall back to defaults.
func NewHTTPClient(cfg Config) *HTTPClient {
	c := &HTTPClient{
		baseURL:      cfg.BaseURL,
		accessKey:    cfg.AccessKey,
		accessSecret: cfg.AccessSecret,
		pageSize:     cfg.PageSize,
		maxPages:     cfg.MaxPages,
		maxRetries:   cfg.MaxRetries,
		retryBase:    cfg.RetryBaseDelay,
		retryMax:     cfg.RetryMaxDelay,
		client:       &http.Client{Timeout: cfg.Timeout},
	}
	if c.pageSize <= 0 || c.pageSize > defaultPageSize {
		c.pageSize = defaultPageSize
	}
	if c.maxPages <= 0 {
		c.maxPages = defaultMaxPages
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryBase <= 0 {
		c.retryBase = defaultRetryBase
	}
	if c.retryMax <= 0 {
		c.retryMax = defaultRetryMax
	}
	return c
}

// ListCalls returns call metadata started within [from, to], following the
// pagination cursor up to the configured page limit.
func (c *HTTPClient) ListCalls(ctx context.Context, from, to time.Time) ([]models.CallRecord, error) {
	calls := []models.CallRecord{}
	cursor := ""
	for page := 0; page < c.maxPages; page++ {
		params := url.Values{
			"fromDateTime": {from.UTC().Format(time.RFC3339)},
			"toDateTime":   {to.UTC().Format(time.RFC3339)},
			"limit":        {strconv.Itoa(c.pageSize)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp listCallsResponse
		err := c.do(ctx, http.MethodGet, "/v2/calls", params, nil, &resp)
		if errors.Is(err, ErrNotFound) {
			// the platform answers 404 when no call matches the filter
			return calls, nil
		}
		if err != nil {
			return nil, err
		}

		for _, wc := range resp.Calls {
			calls = append(calls, wc.toModel())
		}
		cursor = resp.Records.Cursor
		if cursor == "" {
			return calls, nil
		}
	}

	slog.Warn("call listing truncated at page limit",
		"max_pages", c.maxPages,
		"calls", len(calls),
	)
	return calls, nil
}

func (c *HTTPClient) GetCall(ctx context.Context, callID string) (*models.CallRecord, error) {
	var resp getCallResponse
	if err := c.do(ctx, http.MethodGet, "/v2/calls/"+url.PathEscape(callID), nil, nil, &resp); err != nil {
		return nil, err
	}
	call := resp.Call.toModel()
	return &call, nil
}

// GetCallsExtensive returns calls with their participant lists.
func (c *HTTPClient) GetCallsExtensive(ctx context.Context, callIDs []string) ([]models.CallRecord, error) {
	calls := []models.CallRecord{}
	if len(callIDs) == 0 {
		return calls, nil
	}

	cursor := ""
	for page := 0; page < c.maxPages; page++ {
		body := extensiveRequest{
			Cursor: cursor,
			Filter: callFilter{CallIDs: callIDs},
		}
		body.ContentSelector.ExposedFields.Parties = true

		var resp extensiveResponse
		if err := c.do(ctx, http.MethodPost, "/v2/calls/extensive", nil, body, &resp); err != nil {
			return nil, err
		}
		for _, ec := range resp.Calls {
			call := ec.MetaData.toModel()
			call.Participants = make([]models.Participant, 0, len(ec.Parties))
			for _, p := range ec.Parties {
				call.Participants = append(call.Participants, p.toModel())
			}
			calls = append(calls, call)
		}
		cursor = resp.Records.Cursor
		if cursor == "" {
			break
		}
	}
	return calls, nil
}

// GetTranscripts returns transcript monologues keyed by call ID. Calls without
// a transcript are absent from the map.
func (c *HTTPClient) GetTranscripts(ctx context.Context, callIDs []string) (map[string][]Monologue, error) {
	out := make(map[string][]Monologue, len(callIDs))
	if len(callIDs) == 0 {
		return out, nil
	}

	cursor := ""
	for page := 0; page < c.maxPages; page++ {
		body := transcriptRequest{Cursor: cursor, Filter: callFilter{CallIDs: callIDs}}

		var resp transcriptResponse
		err := c.do(ctx, http.MethodPost, "/v2/calls/transcript", nil, body, &resp)
		if errors.Is(err, ErrNotFound) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for _, ct := range resp.CallTranscripts {
			out[ct.CallID] = append(out[ct.CallID], ct.Transcript...)
		}
		cursor = resp.Records.Cursor
		if cursor == "" {
			break
		}
	}
	return out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*User, error) {
	var resp getUserResponse
	if err := c.do(ctx, http.MethodGet, "/v2/users/"+url.PathEscape(userID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListUsers returns the whole user directory.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	cursor := ""
	for page := 0; page < c.maxPages; page++ {
		params := url.Values{"limit": {strconv.Itoa(c.pageSize)}}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		var resp listUsersResponse
		if err := c.do(ctx, http.MethodGet, "/v2/users", params, nil, &resp); err != nil {
			return nil, err
		}
		users = append(users, resp.Users...)
		cursor = resp.Records.Cursor
		if cursor == "" {
			break
		}
	}
	return users, nil
}

// do performs one logical request, retrying on 429 with exponential backoff.
// A Retry-After header, when present, replaces the computed wait for that attempt.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryBase
	eb.MaxInterval = c.retryMax
	eb.MaxElapsedTime = 0
	policy := &retryAfterBackOff{
		BackOff: backoff.WithMaxRetries(eb, uint64(c.maxRetries)),
		max:     c.retryMax,
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.once(ctx, method, path, params, payload, out)
		var rl *rateLimitError
		if errors.As(err, &rl) {
			policy.next = rl.retryAfter
			slog.Warn("recording platform rate limited",
				"path", path,
				"attempt", attempt,
				"retry_after", rl.retryAfter,
			)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}

func (c *HTTPClient) once(ctx context.Context, method, path string, params url.Values, payload []byte, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(req, payload != nil)

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request, hasBody bool) {
	if c.accessKey != "" && c.accessSecret != "" {
		req.SetBasicAuth(c.accessKey, c.accessSecret)
	}
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// statusError maps non-2xx responses to sentinel errors.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())}
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, bytes.TrimSpace(snippet))
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	if e.retryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", ErrRateLimited, e.retryAfter)
	}
	return ErrRateLimited.Error()
}

func (e *rateLimitError) Unwrap() error { return ErrRateLimited }

// parseRetryAfter reads either delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// retryAfterBackOff lets a server-provided wait override the next computed interval.
type retryAfterBackOff struct {
	backoff.BackOff
	next time.Duration
	max  time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	d := b.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.next > 0 {
		d = min(b.next, b.max)
		b.next = 0
	}
	return d
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
