// Package aggregate reduces per-call framework analyses into a coaching report.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// ErrNoAnalyzableCalls means no analysis carried an overall score.
var ErrNoAnalyzableCalls = errors.New("no analyzable calls")

const (
	topInsights          = 5
	topImprovements      = 3
	weakScoreThreshold   = 6.0
	meaningfulDifference = 1.0
)

// Input is one request's worth of analyses.
type Input struct {
	RequestID  string
	Frameworks []string
	Analyses   []models.CallAnalysis
	Failed     []models.UnitFailure
	// CallTitles maps call ID to title for readable recommendations. Optional.
	CallTitles map[string]string
}

// Aggregate builds the cross-call report. It fails only when no analysis has
// an overall score.
func Aggregate(in Input) (*models.AggregateAnalysis, error) {
	var sum float64
	var scored int
	perCall := make(map[string][]float64)
	var dist models.ScoreDistribution
	for _, a := range in.Analyses {
		if a.OverallScore == nil {
			continue
		}
		s := *a.OverallScore
		sum += s
		scored++
		perCall[a.CallID] = append(perCall[a.CallID], s)
		bucket(&dist, s)
	}
	if scored == 0 {
		return nil, ErrNoAnalyzableCalls
	}

	perCallScores := make(map[string]float64, len(perCall))
	for id, scores := range perCall {
		perCallScores[id] = round2(mean(scores))
	}

	completed := completedOnly(in.Analyses)
	weak := weakAreas(completed)

	out := &models.AggregateAnalysis{
		RequestID:     in.RequestID,
		TotalCalls:    countCalls(in.Analyses),
		Frameworks:    in.Frameworks,
		OverallScore:  round2(sum / float64(scored)),
		PerCallScores: perCallScores,
		CallAnalyses:  in.Analyses,
		AggregateInsights: models.AggregateInsights{
			CommonStrengths:          topStrings(completed, func(a models.CallAnalysis) []string { return a.ExecutiveSummary.Strengths }),
			CommonWeaknesses:         topStrings(completed, func(a models.CallAnalysis) []string { return a.ExecutiveSummary.Weaknesses }),
			ImprovementOpportunities: improvementText(weak, len(completed)),
			ScoreDistribution:        dist,
		},
		FailedUnits: in.Failed,
	}
	if len(in.Frameworks) > 1 {
		out.AggregateInsights.FrameworkComparison = compareFrameworks(in.Frameworks, in.Analyses)
	}
	out.Recommendations = recommend(in, weak, len(completed))
	return out, nil
}

func bucket(d *models.ScoreDistribution, s float64) {
	switch {
	case s >= 8:
		d.Excellent++
	case s >= 6:
		d.Good++
	case s >= 4:
		d.Fair++
	default:
		d.Poor++
	}
}

// completedOnly drops fallback analyses; their neutral scores and generic
// text would otherwise dominate the insight counts.
func completedOnly(analyses []models.CallAnalysis) []models.CallAnalysis {
	out := make([]models.CallAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if a.Status != models.AnalysisStatusFallback {
			out = append(out, a)
		}
	}
	return out
}

func countCalls(analyses []models.CallAnalysis) int {
	seen := make(map[string]struct{})
	for _, a := range analyses {
		seen[a.CallID] = struct{}{}
	}
	return len(seen)
}

// topStrings counts exact strings across analyses and returns the most
// frequent, first-seen order breaking ties.
func topStrings(analyses []models.CallAnalysis, pick func(models.CallAnalysis) []string) []models.InsightCount {
	counts := make(map[string]int)
	var order []string
	for _, a := range analyses {
		for _, s := range pick(a) {
			if s == "" {
				continue
			}
			if counts[s] == 0 {
				order = append(order, s)
			}
			counts[s]++
		}
	}
	out := make([]models.InsightCount, 0, len(order))
	for _, s := range order {
		out = append(out, models.InsightCount{Text: s, Count: counts[s]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topInsights {
		out = out[:topInsights]
	}
	return out
}

type weakArea struct {
	name  string
	count int
}

// weakAreas counts, per sub-component name, the analyses scoring it at or
// below the weak threshold. Most frequent first, first-seen order on ties.
func weakAreas(analyses []models.CallAnalysis) []weakArea {
	counts := make(map[string]int)
	var order []string
	for _, a := range analyses {
		seen := make(map[string]bool)
		for _, c := range a.Components {
			for _, sc := range c.SubComponents {
				if sc.Score == nil || *sc.Score > weakScoreThreshold || seen[sc.Name] {
					continue
				}
				seen[sc.Name] = true
				if counts[sc.Name] == 0 {
					order = append(order, sc.Name)
				}
				counts[sc.Name]++
			}
		}
	}
	out := make([]weakArea, 0, len(order))
	for _, n := range order {
		out = append(out, weakArea{name: n, count: counts[n]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func improvementText(weak []weakArea, total int) []string {
	out := make([]string, 0, topImprovements)
	for i := 0; i < len(weak) && i < topImprovements; i++ {
		out = append(out, fmt.Sprintf("%s — weak in %d of %d analyses", weak[i].name, weak[i].count, total))
	}
	return out
}

func compareFrameworks(frameworks []string, analyses []models.CallAnalysis) *models.FrameworkComparison {
	scores := make(map[string][]float64)
	for _, a := range analyses {
		if a.OverallScore != nil {
			scores[a.Framework] = append(scores[a.Framework], *a.OverallScore)
		}
	}

	means := make(map[string]float64, len(scores))
	best, worst := "", ""
	for _, f := range frameworks {
		s, ok := scores[f]
		if !ok {
			continue
		}
		m := round2(mean(s))
		means[f] = m
		if best == "" || m > means[best] {
			best = f
		}
		if worst == "" || m < means[worst] {
			worst = f
		}
	}

	var statement string
	switch {
	case len(means) < 2:
		statement = "Not enough scored frameworks to compare."
	case means[best]-means[worst] >= meaningfulDifference:
		statement = fmt.Sprintf("Calls align best with %s (%.1f) and worst with %s (%.1f); focus coaching on %s behaviours.",
			strings.ToUpper(best), means[best], strings.ToUpper(worst), means[worst], strings.ToUpper(worst))
	default:
		statement = fmt.Sprintf("Scores are consistent across frameworks (within %.1f point); no framework stands out.", meaningfulDifference)
	}
	return &models.FrameworkComparison{MeanScores: means, Statement: statement}
}

func recommend(in Input, weak []weakArea, completed int) models.Recommendations {
	rec := models.Recommendations{
		Immediate: []string{},
		Strategic: []string{},
		Coaching: []string{
			"Role-play the weakest framework areas in weekly team sessions using excerpts from these calls.",
			"Set a measurable target for the next review period, such as raising the lowest area by one point.",
			"Pair reps with a peer who scores well in their weak areas for call shadowing.",
		},
	}

	if low := lowestCall(in.Analyses); low != nil {
		title := in.CallTitles[low.CallID]
		if title == "" {
			title = low.CallID
		}
		line := fmt.Sprintf("Review %q (%s score %.1f) with the rep first", title, strings.ToUpper(low.Framework), *low.OverallScore)
		if areas := lowestSubComponents(*low, 2); len(areas) > 0 {
			line += ", concentrating on " + strings.Join(areas, " and ")
		}
		rec.Immediate = append(rec.Immediate, line+".")
	}

	for i := 0; i < len(weak) && i < topImprovements; i++ {
		rec.Strategic = append(rec.Strategic, fmt.Sprintf(
			"Build a team playbook for %s, which was weak in %d of %d analyses.", weak[i].name, weak[i].count, completed))
	}
	if len(rec.Strategic) == 0 {
		rec.Strategic = append(rec.Strategic, "No recurring weak areas; keep reinforcing current practices.")
	}
	return rec
}

func lowestCall(analyses []models.CallAnalysis) *models.CallAnalysis {
	var low *models.CallAnalysis
	for i := range analyses {
		a := &analyses[i]
		if a.OverallScore == nil {
			continue
		}
		if low == nil || *a.OverallScore < *low.OverallScore {
			low = a
		}
	}
	return low
}

func lowestSubComponents(a models.CallAnalysis, n int) []string {
	type scored struct {
		name  string
		score float64
	}
	var subs []scored
	for _, c := range a.Components {
		for _, sc := range c.SubComponents {
			if sc.Score != nil {
				subs = append(subs, scored{sc.Name, *sc.Score})
			}
		}
	}
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].score < subs[j].score })
	out := make([]string, 0, n)
	for i := 0; i < len(subs) && i < n; i++ {
		out = append(out, subs[i].name)
	}
	return out
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
