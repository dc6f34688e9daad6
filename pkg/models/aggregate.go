package models

// AggregateAnalysis is a pure reduction over every CallAnalysis of one request.
type AggregateAnalysis struct {
	RequestID         string             `json:"requestId"`
	TotalCalls        int                `json:"totalCalls"`
	Frameworks        []string           `json:"frameworks"`
	OverallScore      float64            `json:"overallScore"`
	PerCallScores     map[string]float64 `json:"perCallScores"`
	CallAnalyses      []CallAnalysis     `json:"callAnalyses"`
	AggregateInsights AggregateInsights  `json:"aggregateInsights"`
	Recommendations   Recommendations    `json:"recommendations"`
	FailedUnits       []UnitFailure      `json:"failedUnits,omitempty"`
}

// InsightCount is a summary string and how many analyses produced it.
type InsightCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type AggregateInsights struct {
	CommonStrengths          []InsightCount       `json:"commonStrengths"`
	CommonWeaknesses         []InsightCount       `json:"commonWeaknesses"`
	ImprovementOpportunities []string             `json:"improvementOpportunities"`
	FrameworkComparison      *FrameworkComparison `json:"frameworkComparison,omitempty"`
	ScoreDistribution        ScoreDistribution    `json:"scoreDistribution"`
}

type FrameworkComparison struct {
	MeanScores map[string]float64 `json:"meanScores"`
	Statement  string             `json:"statement"`
}

// ScoreDistribution buckets analyses by overall score:
// excellent >= 8, good >= 6, fair >= 4, poor below 4.
type ScoreDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

type Recommendations struct {
	Immediate []string `json:"immediate"`
	Strategic []string `json:"strategic"`
	Coaching  []string `json:"coaching"`
}

// UnitFailure records a call (or call/framework pair) that could not be analyzed at all.
type UnitFailure struct {
	CallID    string `json:"callId"`
	Framework string `json:"framework,omitempty"`
	Error     string `json:"error"`
}
