// Package coach exposes call search, selection, details and framework analysis
// as one service.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kiranshivaraju/callcoach/internal/aggregate"
	"github.com/kiranshivaraju/callcoach/internal/analysis"
	"github.com/kiranshivaraju/callcoach/internal/calls"
	"github.com/kiranshivaraju/callcoach/internal/daterange"
	"github.com/kiranshivaraju/callcoach/internal/framework"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// ErrInvalidInput marks requests that fail validation.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultWorkers = 4
	defaultTimeout = 10 * time.Minute
)

// CallFinder searches and selects calls.
type CallFinder interface {
	Search(ctx context.Context, customerName string, dr daterange.Request) (*calls.SearchResult, error)
	SelectByNumber(ctx context.Context, customerName string, dr daterange.Request, n int) (*calls.Match, error)
	SelectByID(ctx context.Context, callID string) (*models.CallRecord, error)
}

// DetailsFetcher returns a call with its resolved transcript.
type DetailsFetcher interface {
	GetCallDetails(ctx context.Context, callID string) (*models.CallDetails, error)
}

// FrameworkSource returns framework definitions by name.
type FrameworkSource interface {
	Get(ctx context.Context, name string) (*models.FrameworkDefinition, error)
}

// Analyzer scores one call against one framework. It must not fail.
type Analyzer interface {
	Analyze(ctx context.Context, call *models.CallDetails, def *models.FrameworkDefinition, opts analysis.Options) models.CallAnalysis
}

// Service orchestrates the call coaching operations.
type Service struct {
	calls      CallFinder
	details    DetailsFetcher
	frameworks FrameworkSource
	analyzer   Analyzer
	workers    int
	timeout    time.Duration
}

type Option func(*Service)

// WithWorkers bounds concurrent (call, framework) units.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout bounds a whole AnalyzeCallsFramework request.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(finder CallFinder, details DetailsFetcher, frameworks FrameworkSource, analyzer Analyzer, opts ...Option) *Service {
	s := &Service{
		calls:      finder,
		details:    details,
		frameworks: frameworks,
		analyzer:   analyzer,
		workers:    defaultWorkers,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchRequest selects calls by customer name and an optional date range.
type SearchRequest struct {
	CustomerName string
	FromDate     string
	ToDate       string
	DateRange    string
}

func (r SearchRequest) dates() daterange.Request {
	return daterange.Request{From: r.FromDate, To: r.ToDate, Phrase: r.DateRange}
}

// SearchCalls ranks calls whose titles mention the customer.
func (s *Service) SearchCalls(ctx context.Context, req SearchRequest) (*calls.SearchResult, error) {
	res, err := s.calls.Search(ctx, req.CustomerName, req.dates())
	if err != nil {
		return nil, inputError(err)
	}
	return res, nil
}

// SelectRequest picks a call either by ID or by its number in a search result.
type SelectRequest struct {
	CallID          string
	SelectionNumber int
	SearchRequest
}

// SelectCall returns the chosen call. A direct ID needs no prior search.
func (s *Service) SelectCall(ctx context.Context, req SelectRequest) (*calls.Match, error) {
	if id := strings.TrimSpace(req.CallID); id != "" {
		rec, err := s.calls.SelectByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &calls.Match{CallRecord: *rec}, nil
	}
	if req.SelectionNumber == 0 || strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: callId or selectionNumber with customerName is required", ErrInvalidInput)
	}
	m, err := s.calls.SelectByNumber(ctx, req.CustomerName, req.dates(), req.SelectionNumber)
	if err != nil {
		return nil, inputError(err)
	}
	return m, nil
}

// GetCallDetails returns metadata, resolved transcript and summary for a call.
func (s *Service) GetCallDetails(ctx context.Context, callID string) (*models.CallDetails, error) {
	id := strings.TrimSpace(callID)
	if id == "" {
		return nil, fmt.Errorf("%w: callId is required", ErrInvalidInput)
	}
	return s.details.GetCallDetails(ctx, id)
}

// AnalyzeRequest asks for every call to be scored against every framework.
type AnalyzeRequest struct {
	CallIDs                 []string
	Frameworks              []string
	IncludeParticipantRoles bool
}

type unit struct {
	callIdx int
	def     *models.FrameworkDefinition
}

// AnalyzeCallsFramework scores each (call, framework) pair and aggregates the
// results. A call that cannot be fetched, or a framework that cannot be
// scored, is reported in FailedUnits without affecting the other pairs.
// Only input errors and a request with nothing analyzable fail as a whole.
func (s *Service) AnalyzeCallsFramework(ctx context.Context, req AnalyzeRequest) (*models.AggregateAnalysis, error) {
	callIDs := dedupe(req.CallIDs, strings.TrimSpace)
	names := dedupe(req.Frameworks, framework.Normalize)
	if len(callIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one callId is required", ErrInvalidInput)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one framework is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)
	log.Info("framework analysis started", "calls", len(callIDs), "frameworks", names)
	start := time.Now()

	var failed []models.UnitFailure
	defs := make([]*models.FrameworkDefinition, 0, len(names))
	for _, name := range names {
		def, err := s.frameworks.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if !def.Scoreable() {
			log.Warn("framework unscoreable", "framework", name)
			for _, id := range callIDs {
				failed = append(failed, models.UnitFailure{CallID: id, Framework: name, Error: "framework definition unavailable"})
			}
			continue
		}
		defs = append(defs, def)
	}

	details := s.fetchDetails(ctx, callIDs)
	titles := make(map[string]string, len(callIDs))
	var units []unit
	for i, id := range callIDs {
		if details[i].err != nil {
			log.Warn("call unavailable for analysis", "call_id", id, "error", details[i].err)
			failed = append(failed, models.UnitFailure{CallID: id, Error: details[i].err.Error()})
			continue
		}
		titles[id] = details[i].call.Title
		for _, def := range defs {
			units = append(units, unit{callIdx: i, def: def})
		}
	}

	results := make([]models.CallAnalysis, len(units))
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, u := range units {
		g.Go(func() error {
			results[i] = s.analyzer.Analyze(ctx, details[u.callIdx].call, u.def, analysis.Options{
				IncludeParticipantRoles: req.IncludeParticipantRoles,
			})
			return nil
		})
	}
	_ = g.Wait()

	agg, err := aggregate.Aggregate(aggregate.Input{
		RequestID:  requestID,
		Frameworks: names,
		Analyses:   results,
		Failed:     failed,
		CallTitles: titles,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("framework analysis: %w", ctxErr)
		}
		log.Warn("framework analysis produced nothing", "failed_units", len(failed))
		if len(failed) > 0 {
			return nil, fmt.Errorf("%w: %d units failed, first: %s", err, len(failed), failed[0].Error)
		}
		return nil, err
	}

	log.Info("framework analysis completed",
		"analyses", len(results),
		"failed_units", len(failed),
		"overall_score", agg.OverallScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return agg, nil
}

type fetched struct {
	call *models.CallDetails
	err  error
}

func (s *Service) fetchDetails(ctx context.Context, callIDs []string) []fetched {
	out := make([]fetched, len(callIDs))
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, id := range callIDs {
		g.Go(func() error {
			call, err := s.details.GetCallDetails(ctx, id)
			out[i] = fetched{call: call, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// inputError marks caller mistakes surfaced by lower layers as ErrInvalidInput.
func inputError(err error) error {
	if errors.Is(err, calls.ErrEmptyQuery) || errors.Is(err, daterange.ErrInvalidDate) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func dedupe(in []string, norm func(string) string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = norm(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
