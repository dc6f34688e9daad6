package models

import "time"

// AnalysisStatus distinguishes model-scored analyses from neutral fallbacks.
type AnalysisStatus string

const (
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFallback  AnalysisStatus = "fallback"
)

// Citation is a reference into the transcript. Valid only when Speaker and Quote are set.
type Citation struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Quote     string `json:"quote"`
	Context   string `json:"context,omitempty"`
}

// Valid reports whether the citation carries both a speaker and a quote.
func (c Citation) Valid() bool {
	return c.Speaker != "" && c.Quote != ""
}

type SubComponentScore struct {
	Name                   string     `json:"name"`
	Score                  *float64   `json:"score"`
	Evidence               []Citation `json:"evidence"`
	QualitativeAssessment  string     `json:"qualitativeAssessment"`
	ImprovementSuggestions []string   `json:"improvementSuggestions"`
}

type ComponentAnalysis struct {
	Name          string              `json:"name"`
	Score         *float64            `json:"score"`
	Summary       string              `json:"summary,omitempty"`
	SubComponents []SubComponentScore `json:"subComponents"`
}

type ExecutiveSummary struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// CallAnalysis is the result of scoring one call against one framework.
// It is never mutated after creation; a failed unit yields a fallback record.
type CallAnalysis struct {
	CallID           string              `json:"callId"`
	Framework        string              `json:"framework"`
	Status           AnalysisStatus      `json:"status"`
	OverallScore     *float64            `json:"overallScore"`
	Components       []ComponentAnalysis `json:"components"`
	ExecutiveSummary ExecutiveSummary    `json:"executiveSummary"`
	Error            string              `json:"error,omitempty"`
	Provider         string              `json:"provider,omitempty"`
	AnalyzedAt       time.Time           `json:"analyzedAt"`
}

// Float returns a pointer to v. Scores are optional, so they travel as pointers.
func Float(v float64) *float64 {
	return &v
}
