package models

// FrameworkDefinition is a named scoring rubric. Definitions are read-only configuration.
type FrameworkDefinition struct {
	Name        string               `json:"name"        yaml:"name"`
	Description string               `json:"description" yaml:"description"`
	Components  []FrameworkComponent `json:"components"  yaml:"components"`
}

type FrameworkComponent struct {
	Name          string                   `json:"name"          yaml:"name"`
	Description   string                   `json:"description"   yaml:"description"`
	SubComponents []SubComponentDefinition `json:"subComponents" yaml:"sub_components"`
}

type SubComponentDefinition struct {
	Name            string          `json:"name"            yaml:"name"`
	Description     string          `json:"description"     yaml:"description"`
	Keywords        []string        `json:"keywords"        yaml:"keywords"`
	ScoringCriteria ScoringCriteria `json:"scoringCriteria" yaml:"scoring_criteria"`
}

// ScoringCriteria describes the four score tiers of a sub-component.
type ScoringCriteria struct {
	Excellent string `json:"excellent" yaml:"excellent"`
	Good      string `json:"good"      yaml:"good"`
	Fair      string `json:"fair"      yaml:"fair"`
	Poor      string `json:"poor"      yaml:"poor"`
}

// Scoreable reports whether the framework has anything to score against.
// A stub definition (load failure) has no components.
func (f FrameworkDefinition) Scoreable() bool {
	return len(f.Components) > 0
}
