// Package daterange turns explicit or natural-language date ranges into absolute intervals.
package daterange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when an explicit date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

const (
	defaultPhraseWindowDays = 14
	defaultWindowMonths     = 6
)

// Request carries the caller's date inputs. Any field may be empty.
type Request struct {
	From   string
	To     string
	Phrase string
}

// Range is a closed interval with From <= To.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Resolver resolves Requests relative to a clock.
type Resolver struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock fixes the resolver's notion of now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLocation sets the location used for day boundaries and date parsing.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) { r.loc = loc }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies, in order: both explicit dates, phrase, only from, only to, default window.
// The result always satisfies From <= To.
func (r *Resolver) Resolve(req Request) (Range, error) {
	now := r.now().In(r.loc)
	fromStr := strings.TrimSpace(req.From)
	toStr := strings.TrimSpace(req.To)
	phrase := strings.TrimSpace(req.Phrase)

	var out Range
	switch {
	case fromStr != "" && toStr != "":
		from, err := r.parse(fromStr)
		if err != nil {
			return Range{}, err
		}
		to, err := r.parse(toStr)
		if err != nil {
			return Range{}, err
		}
		if from.After(to) {
			from, to = to, from
		}
		out = Range{From: startOfDay(from), To: endOfDay(to)}
	case phrase != "":
		out = r.resolvePhrase(phrase, now)
	case fromStr != "":
		from, err := r.parse(fromStr)
		if err != nil {
			return Range{}, err
		}
		out = Range{From: startOfDay(from), To: now}
	case toStr != "":
		to, err := r.parse(toStr)
		if err != nil {
			return Range{}, err
		}
		out = Range{From: startOfDay(to.AddDate(0, -defaultWindowMonths, 0)), To: endOfDay(to)}
	default:
		out = Range{From: now.AddDate(0, -defaultWindowMonths, 0), To: now}
	}

	if out.From.After(out.To) {
		out.From, out.To = out.To, out.From
	}
	return out, nil
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (r *Resolver) parse(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t.In(r.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD or RFC3339)", ErrInvalidDate, s)
}

// window is one entry of the relative-window table. Multi-word and numeric
// periods come before bare unit words so "2 weeks" wins over "week".
type window struct {
	pattern *regexp.Regexp
	resolve func(now time.Time, m []string) Range
}

func daysBack(days int) func(time.Time, []string) Range {
	return func(now time.Time, _ []string) Range {
		return Range{From: startOfDay(now.AddDate(0, 0, -days)), To: endOfDay(now)}
	}
}

func monthsBack(months int) func(time.Time, []string) Range {
	return func(now time.Time, _ []string) Range {
		return Range{From: startOfDay(now.AddDate(0, -months, 0)), To: endOfDay(now)}
	}
}

func countBack(unit string) func(time.Time, []string) Range {
	return func(now time.Time, m []string) Range {
		n, _ := strconv.Atoi(m[1])
		var from time.Time
		switch unit {
		case "day":
			from = now.AddDate(0, 0, -n)
		case "week":
			from = now.AddDate(0, 0, -7*n)
		case "month":
			from = now.AddDate(0, -n, 0)
		case "year":
			from = now.AddDate(-n, 0, 0)
		}
		return Range{From: startOfDay(from), To: endOfDay(now)}
	}
}

var windows = []window{
	{regexp.MustCompile(`\btoday\b`), func(now time.Time, _ []string) Range {
		return Range{From: startOfDay(now), To: endOfDay(now)}
	}},
	{regexp.MustCompile(`\byesterday\b`), func(now time.Time, _ []string) Range {
		y := now.AddDate(0, 0, -1)
		return Range{From: startOfDay(y), To: endOfDay(y)}
	}},
	{regexp.MustCompile(`\bthis\s+week\b`), func(now time.Time, _ []string) Range {
		offset := (int(now.Weekday()) + 6) % 7 // weeks start on Monday
		return Range{From: startOfDay(now.AddDate(0, 0, -offset)), To: endOfDay(now)}
	}},
	{regexp.MustCompile(`\bthis\s+month\b`), func(now time.Time, _ []string) Range {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: endOfDay(now)}
	}},
	{regexp.MustCompile(`\bthis\s+quarter\b`), func(now time.Time, _ []string) Range {
		qMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		first := time.Date(now.Year(), qMonth, 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: endOfDay(now)}
	}},
	{regexp.MustCompile(`\bthis\s+year\b`), func(now time.Time, _ []string) Range {
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: endOfDay(now)}
	}},
	{regexp.MustCompile(`(\d+)\s*days?\b`), countBack("day")},
	{regexp.MustCompile(`(\d+)\s*weeks?\b`), countBack("week")},
	{regexp.MustCompile(`(\d+)\s*months?\b`), countBack("month")},
	{regexp.MustCompile(`(\d+)\s*years?\b`), countBack("year")},
	{regexp.MustCompile(`\bfortnight\b`), daysBack(14)},
	{regexp.MustCompile(`\bquarter\b`), monthsBack(3)},
	{regexp.MustCompile(`\bweek\b`), daysBack(7)},
	{regexp.MustCompile(`\bmonth\b`), monthsBack(1)},
	{regexp.MustCompile(`\byear\b`), monthsBack(12)},
	{regexp.MustCompile(`\bday\b`), daysBack(1)},
}

func (r *Resolver) resolvePhrase(phrase string, now time.Time) Range {
	p := strings.ToLower(phrase)
	for _, w := range windows {
		if m := w.pattern.FindStringSubmatch(p); m != nil {
			return w.resolve(now, m)
		}
	}
	return daysBack(defaultPhraseWindowDays)(now, nil)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
