// Package analysis scores one call against one framework with a language model.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// ErrAnalysisFailed is recorded on fallback analyses. Analyze never returns it.
var ErrAnalysisFailed = errors.New("analysis failed")

const (
	defaultMaxTokens          = 8000
	defaultMaxTranscriptChars = 120000
	defaultTimeout            = 120 * time.Second

	fallbackScore = 5.0
	placeholderBy = "System"
)

// Options are per-request analysis switches.
type Options struct {
	IncludeParticipantRoles bool
}

// Engine turns a call transcript and a framework into a CallAnalysis.
type Engine struct {
	provider           models.AIProvider
	maxTokens          int
	maxTranscriptChars int
	timeout            time.Duration
	now                func() time.Time
}

type Option func(*Engine)

func WithMaxTokens(n int) Option { return func(e *Engine) { e.maxTokens = n } }

func WithMaxTranscriptChars(n int) Option { return func(e *Engine) { e.maxTranscriptChars = n } }

// WithTimeout bounds a single model call.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func NewEngine(provider models.AIProvider, opts ...Option) *Engine {
	e := &Engine{
		provider:           provider,
		maxTokens:          defaultMaxTokens,
		maxTranscriptChars: defaultMaxTranscriptChars,
		timeout:            defaultTimeout,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze scores call against def. It always returns a CallAnalysis: model,
// network and parse failures, responses without any score, and panics yield
// a fallback with status
// "fallback" and the cause in Error.
func (e *Engine) Analyze(ctx context.Context, call *models.CallDetails, def *models.FrameworkDefinition, opts Options) (result models.CallAnalysis) {
	hasTranscript := len(call.Transcript) > 0
	log := slog.With("call_id", call.ID, "framework", def.Name)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during analysis", "error", r)
			result = e.fallback(call.ID, def, hasTranscript, fmt.Errorf("%w: panic: %v", ErrAnalysisFailed, r))
		}
	}()

	prompt := BuildPrompt(PromptInput{
		Call:                    call,
		Framework:               def,
		IncludeParticipantRoles: opts.IncludeParticipantRoles,
		MaxTranscriptChars:      e.maxTranscriptChars,
	})

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.provider.Complete(callCtx, models.CompletionRequest{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    e.maxTokens,
		Temperature:  0.2,
	})
	if err != nil {
		log.Error("model call failed", "provider", e.provider.Name(), "error", err)
		return e.fallback(call.ID, def, hasTranscript, fmt.Errorf("%w: %v", ErrAnalysisFailed, err))
	}
	if strings.TrimSpace(resp.Content) == "" {
		log.Error("model returned empty response", "provider", e.provider.Name())
		return e.fallback(call.ID, def, hasTranscript, fmt.Errorf("%w: empty model response", ErrAnalysisFailed))
	}

	parsed, repaired, err := parseResponse(resp.Content)
	if err != nil {
		log.Error("model response unusable", "error", err, "response_chars", len(resp.Content))
		return e.fallback(call.ID, def, hasTranscript, fmt.Errorf("%w: %v", ErrAnalysisFailed, err))
	}
	if !parsed.scored() {
		log.Error("model response has no scores", "response_chars", len(resp.Content))
		return e.fallback(call.ID, def, hasTranscript, fmt.Errorf("%w: model response has no scores", ErrAnalysisFailed))
	}
	if repaired {
		log.Warn("model response repaired", "stop_reason", resp.StopReason)
	}
	for _, p := range validate(parsed) {
		log.Warn("model response validation", "problem", p)
	}

	analysis := assemble(parsed, def)
	enforceCitations(&analysis, hasTranscript)

	analysis.CallID = call.ID
	analysis.Framework = def.Name
	analysis.Status = models.AnalysisStatusCompleted
	analysis.Provider = e.provider.Name()
	analysis.AnalyzedAt = e.now().UTC()

	log.Info("call analyzed",
		"provider", analysis.Provider,
		"model", resp.Model,
		"overall_score", scoreAttr(analysis.OverallScore),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return analysis
}

// assemble converts a model response into a CallAnalysis shaped like def:
// framework components and sub-components come first in definition order,
// filled from the response where names match, followed by anything extra the
// model returned.
func assemble(resp *modelResponse, def *models.FrameworkDefinition) models.CallAnalysis {
	byName := make(map[string]modelComponent, len(resp.Components))
	var order []string
	for _, c := range resp.Components {
		key := nameKey(c.Name)
		if _, dup := byName[key]; !dup {
			order = append(order, key)
		}
		byName[key] = c
	}

	components := make([]models.ComponentAnalysis, 0, len(def.Components)+len(resp.Components))
	used := make(map[string]bool)
	for _, dc := range def.Components {
		key := nameKey(dc.Name)
		mc, ok := byName[key]
		if ok {
			used[key] = true
		}
		components = append(components, alignComponent(dc, mc, ok))
	}
	for _, key := range order {
		if used[key] || key == "" {
			continue
		}
		components = append(components, convertComponent(byName[key]))
	}

	out := models.CallAnalysis{
		OverallScore: resp.OverallScore.Value,
		Components:   components,
		ExecutiveSummary: models.ExecutiveSummary{
			Strengths:       nonNil(resp.ExecutiveSummary.Strengths),
			Weaknesses:      nonNil(resp.ExecutiveSummary.Weaknesses),
			Recommendations: nonNil(resp.ExecutiveSummary.Recommendations),
		},
	}
	if out.OverallScore == nil {
		out.OverallScore = meanComponentScores(components)
	}
	return out
}

func alignComponent(dc models.FrameworkComponent, mc modelComponent, found bool) models.ComponentAnalysis {
	subs := make(map[string]modelSubComponent, len(mc.SubComponents))
	for _, sc := range mc.SubComponents {
		subs[nameKey(sc.Name)] = sc
	}

	out := models.ComponentAnalysis{
		Name:          dc.Name,
		Score:         mc.Score.Value,
		Summary:       string(mc.Summary),
		SubComponents: make([]models.SubComponentScore, 0, len(dc.SubComponents)),
	}
	for _, ds := range dc.SubComponents {
		ms, ok := subs[nameKey(ds.Name)]
		if !ok {
			out.SubComponents = append(out.SubComponents, models.SubComponentScore{
				Name:                   ds.Name,
				Evidence:               []models.Citation{},
				QualitativeAssessment:  "Not assessed in the model response.",
				ImprovementSuggestions: []string{},
			})
			continue
		}
		sub := convertSubComponent(ms)
		sub.Name = ds.Name
		out.SubComponents = append(out.SubComponents, sub)
	}
	if !found {
		out.Summary = "Not assessed in the model response."
	}
	if out.Score == nil {
		out.Score = meanSubScores(out.SubComponents)
	}
	return out
}

func convertComponent(mc modelComponent) models.ComponentAnalysis {
	out := models.ComponentAnalysis{
		Name:          mc.Name,
		Score:         mc.Score.Value,
		Summary:       string(mc.Summary),
		SubComponents: make([]models.SubComponentScore, 0, len(mc.SubComponents)),
	}
	for _, ms := range mc.SubComponents {
		out.SubComponents = append(out.SubComponents, convertSubComponent(ms))
	}
	if out.Score == nil {
		out.Score = meanSubScores(out.SubComponents)
	}
	return out
}

func convertSubComponent(ms modelSubComponent) models.SubComponentScore {
	evidence := make([]models.Citation, 0, len(ms.Evidence))
	for _, ev := range ms.Evidence {
		c := models.Citation{
			Speaker:   strings.TrimSpace(string(ev.Speaker)),
			Timestamp: strings.TrimSpace(string(ev.Timestamp)),
			Quote:     strings.TrimSpace(string(ev.Quote)),
			Context:   strings.TrimSpace(string(ev.Context)),
		}
		if c.Valid() {
			evidence = append(evidence, c)
		}
	}
	return models.SubComponentScore{
		Name:                   ms.Name,
		Score:                  ms.Score.Value,
		Evidence:               evidence,
		QualitativeAssessment:  string(ms.QualitativeAssessment),
		ImprovementSuggestions: nonNil(ms.ImprovementSuggestions),
	}
}

// enforceCitations gives every sub-component without evidence one placeholder
// citation. Without a transcript any model-supplied quotes are discarded and
// the placeholder states that the transcript is missing.
func enforceCitations(a *models.CallAnalysis, hasTranscript bool) {
	for i := range a.Components {
		for j := range a.Components[i].SubComponents {
			sub := &a.Components[i].SubComponents[j]
			switch {
			case !hasTranscript:
				sub.Evidence = []models.Citation{missingTranscriptCitation()}
			case len(sub.Evidence) == 0:
				sub.Evidence = []models.Citation{{
					Speaker: placeholderBy,
					Quote:   "No supporting quote was cited for this sub-component.",
					Context: "The score is not backed by transcript evidence; review the call before relying on it.",
				}}
			}
		}
	}
}

func missingTranscriptCitation() models.Citation {
	return models.Citation{
		Speaker: placeholderBy,
		Quote:   "No transcript is available for this call.",
		Context: "Evidence cannot be cited without a transcript.",
	}
}

// fallback builds the neutral analysis used when the model step fails.
func (e *Engine) fallback(callID string, def *models.FrameworkDefinition, hasTranscript bool, cause error) models.CallAnalysis {
	evidence := models.Citation{
		Speaker: placeholderBy,
		Quote:   "Automated analysis could not be completed for this call.",
		Context: "A neutral score of 5 was assigned. Re-run the analysis or review the call manually.",
	}
	if !hasTranscript {
		evidence = missingTranscriptCitation()
	}

	components := make([]models.ComponentAnalysis, 0, len(def.Components))
	for _, dc := range def.Components {
		subs := make([]models.SubComponentScore, 0, len(dc.SubComponents))
		for _, ds := range dc.SubComponents {
			subs = append(subs, models.SubComponentScore{
				Name:                   ds.Name,
				Score:                  models.Float(fallbackScore),
				Evidence:               []models.Citation{evidence},
				QualitativeAssessment:  "Not assessed: the analysis step failed.",
				ImprovementSuggestions: []string{"Review this area manually against the framework criteria."},
			})
		}
		components = append(components, models.ComponentAnalysis{
			Name:          dc.Name,
			Score:         models.Float(fallbackScore),
			Summary:       "Neutral score assigned after an analysis failure.",
			SubComponents: subs,
		})
	}

	provider := ""
	if e.provider != nil {
		provider = e.provider.Name()
	}
	return models.CallAnalysis{
		CallID:       callID,
		Framework:    def.Name,
		Status:       models.AnalysisStatusFallback,
		OverallScore: models.Float(fallbackScore),
		Components:   components,
		ExecutiveSummary: models.ExecutiveSummary{
			Strengths:  []string{},
			Weaknesses: []string{},
			Recommendations: []string{
				"Re-run the analysis for this call once the language model is available.",
				"Review the call recording manually against the " + strings.ToUpper(def.Name) + " criteria.",
			},
		},
		Error:      cause.Error(),
		Provider:   provider,
		AnalyzedAt: e.now().UTC(),
	}
}

func meanSubScores(subs []models.SubComponentScore) *float64 {
	var sum float64
	var n int
	for _, s := range subs {
		if s.Score != nil {
			sum += *s.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return models.Float(sum / float64(n))
}

func meanComponentScores(components []models.ComponentAnalysis) *float64 {
	var all []models.SubComponentScore
	for _, c := range components {
		all = append(all, c.SubComponents...)
	}
	return meanSubScores(all)
}

func nameKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scoreAttr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
