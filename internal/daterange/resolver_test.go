package daterange_test

import (
	"testing"
	"time"

	"github.com/kiranshivaraju/callcoach/internal/daterange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newResolver() *daterange.Resolver {
	return daterange.NewResolver(daterange.WithClock(func() time.Time { return fixedNow }))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, time.UTC)
}

func TestResolve_ExplicitBoth_NormalizedToDayBoundaries(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{From: "2025-03-01", To: "2025-03-10T14:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 3, 1), r.From)
	assert.Equal(t, endDay(2025, 3, 10), r.To)
}

func TestResolve_ExplicitBothWinOverPhrase(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{From: "2025-01-01", To: "2025-01-02", Phrase: "today"})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 1, 1), r.From)
}

func TestResolve_LastTwoWeeks(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{Phrase: "last 2 weeks"})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 1), r.From)
	assert.Equal(t, endDay(2025, 6, 15), r.To)
}

func TestResolve_Phrases(t *testing.T) {
	tests := []struct {
		phrase string
		from   time.Time
		to     time.Time
	}{
		{"today", day(2025, 6, 15), endDay(2025, 6, 15)},
		{"yesterday", day(2025, 6, 14), endDay(2025, 6, 14)},
		{"this month", day(2025, 6, 1), endDay(2025, 6, 15)},
		{"this week", day(2025, 6, 9), endDay(2025, 6, 15)}, // 2025-06-15 is a Sunday
		{"this quarter", day(2025, 4, 1), endDay(2025, 6, 15)},
		{"this year", day(2025, 1, 1), endDay(2025, 6, 15)},
		{"past week", day(2025, 6, 8), endDay(2025, 6, 15)},
		{"last 10 days", day(2025, 6, 5), endDay(2025, 6, 15)},
		{"last 3 months", day(2025, 3, 15), endDay(2025, 6, 15)},
		{"Last Month", day(2025, 5, 15), endDay(2025, 6, 15)},
		{"last year", day(2024, 6, 15), endDay(2025, 6, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			r, err := newResolver().Resolve(daterange.Request{Phrase: tt.phrase})
			require.NoError(t, err)
			assert.Equal(t, tt.from, r.From)
			assert.Equal(t, tt.to, r.To)
		})
	}
}

func TestResolve_UnmatchedPhrase_DefaultsToFourteenDays(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{Phrase: "recently-ish"})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 1), r.From)
	assert.Equal(t, endDay(2025, 6, 15), r.To)
}

func TestResolve_OnlyFrom_ToIsNow(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{From: "2025-05-01"})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 5, 1), r.From)
	assert.Equal(t, fixedNow, r.To)
}

func TestResolve_OnlyTo_FromIsSixMonthsEarlier(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{To: "2025-04-30"})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 10, 30), r.From)
	assert.Equal(t, endDay(2025, 4, 30), r.To)
}

func TestResolve_Nothing_DefaultSixMonthWindow(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, -6, 0), r.From)
	assert.Equal(t, fixedNow, r.To)
}

func TestResolve_InvertedRangeIsSwapped(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{From: "2025-06-10", To: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 1), r.From)
	assert.Equal(t, endDay(2025, 6, 10), r.To)
}

func TestResolve_OnlyFromInFuture_IsSwapped(t *testing.T) {
	r, err := newResolver().Resolve(daterange.Request{From: "2025-07-01"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, r.From)
	assert.Equal(t, day(2025, 7, 1), r.To)
}

func TestResolve_AlwaysOrdered(t *testing.T) {
	inputs := []daterange.Request{
		{From: "2025-12-31", To: "2020-01-01"},
		{From: "2030-01-01"},
		{To: "1999-01-01"},
		{Phrase: "2 weeks"},
		{},
	}
	for _, in := range inputs {
		r, err := newResolver().Resolve(in)
		require.NoError(t, err)
		assert.False(t, r.From.After(r.To), "input %+v", in)
	}
}

func TestResolve_InvalidDate(t *testing.T) {
	_, err := newResolver().Resolve(daterange.Request{From: "06/01/2025", To: "2025-06-10"})
	require.Error(t, err)
	assert.ErrorIs(t, err, daterange.ErrInvalidDate)
}
