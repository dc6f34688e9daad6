// Package calls finds recorded calls for a customer by title.
package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/kiranshivaraju/callcoach/internal/daterange"
	"github.com/kiranshivaraju/callcoach/internal/recording"
	"github.com/kiranshivaraju/callcoach/internal/similarity"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

var (
	ErrNotFound   = errors.New("call not found")
	ErrEmptyQuery = errors.New("customer name is required")
)

// Match types.
const (
	MatchExact = "exact"
	MatchFuzzy = "fuzzy"
)

const (
	exactScore    = 100
	minFuzzyScore = 50
)

// Match is one ranked search hit. SelectionNumber is 1-based in result order.
type Match struct {
	models.CallRecord
	Score           int    `json:"score"`
	MatchType       string `json:"matchType"`
	SelectionNumber int    `json:"selectionNumber"`
}

// SearchResult is the ranked outcome of a title search.
type SearchResult struct {
	Query        string          `json:"query"`
	DateRange    daterange.Range `json:"dateRange"`
	TotalInRange int             `json:"totalInRange"`
	Matches      []Match         `json:"matches"`
}

// Resolver searches and selects calls.
type Resolver struct {
	client recording.Client
	dates  *daterange.Resolver
}

func NewResolver(client recording.Client, dates *daterange.Resolver) *Resolver {
	return &Resolver{client: client, dates: dates}
}

// Search lists calls in the resolved date range and ranks those whose titles
// mention customerName. Whole-word hits score 100 and, when present, are the
// only matches; otherwise fuzzy hits scoring at least 50 are returned.
// Results are ordered by score, then most recent first.
func (r *Resolver) Search(ctx context.Context, customerName string, dr daterange.Request) (*SearchResult, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrEmptyQuery
	}

	rng, err := r.dates.Resolve(dr)
	if err != nil {
		return nil, err
	}

	all, err := r.client.ListCalls(ctx, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("listing calls: %w", err)
	}

	matches := rank(all, name)
	slog.Debug("call search completed",
		"query", name,
		"in_range", len(all),
		"matches", len(matches),
	)

	return &SearchResult{
		Query:        name,
		DateRange:    rng,
		TotalInRange: len(all),
		Matches:      matches,
	}, nil
}

// SelectByNumber re-runs the search and returns the n-th match (1-based).
func (r *Resolver) SelectByNumber(ctx context.Context, customerName string, dr daterange.Request, n int) (*Match, error) {
	res, err := r.Search(ctx, customerName, dr)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(res.Matches) {
		return nil, fmt.Errorf("%w: selection %d out of range (%d matches)", ErrNotFound, n, len(res.Matches))
	}
	m := res.Matches[n-1]
	return &m, nil
}

// SelectByID fetches a call directly.
func (r *Resolver) SelectByID(ctx context.Context, callID string) (*models.CallRecord, error) {
	call, err := r.client.GetCall(ctx, callID)
	if errors.Is(err, recording.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, callID)
	}
	if err != nil {
		return nil, err
	}
	return call, nil
}

// wholeWord matches name as a standalone word. RE2's \b is ASCII-only, so
// the boundaries are spelled out to cover letters like "É".
func wholeWord(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(name) + `(?:$|[^\p{L}\p{N}])`)
}

// rank returns whole-word hits when there are any; fuzzy matching only runs
// when none of the titles mention the name exactly.
func rank(all []models.CallRecord, name string) []Match {
	exact := wholeWord(name)

	matches := make([]Match, 0)
	for _, call := range all {
		if exact.MatchString(call.Title) {
			matches = append(matches, Match{CallRecord: call, Score: exactScore, MatchType: MatchExact})
		}
	}

	if len(matches) == 0 {
		for _, call := range all {
			if !similarity.FlexibleMatch(call.Title, name) {
				continue
			}
			if score := similarity.MatchScore(call.Title, name); score >= minFuzzyScore {
				matches = append(matches, Match{CallRecord: call, Score: score, MatchType: MatchFuzzy})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].StartedAt.After(matches[j].StartedAt)
	})
	for i := range matches {
		matches[i].SelectionNumber = i + 1
	}
	return matches
}
