package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// modelResponse is the JSON shape the model is asked to produce. Field types
// are lenient because models routinely quote numbers or collapse lists.
type modelResponse struct {
	OverallScore     flexScore        `json:"overallScore"`
	Components       []modelComponent `json:"components"`
	ExecutiveSummary struct {
		Strengths       flexStrings `json:"strengths"`
		Weaknesses      flexStrings `json:"weaknesses"`
		Recommendations flexStrings `json:"recommendations"`
	} `json:"executiveSummary"`
}

type modelComponent struct {
	Name          string              `json:"name"`
	Score         flexScore           `json:"score"`
	Summary       flexString          `json:"summary"`
	SubComponents []modelSubComponent `json:"subComponents"`
}

type modelSubComponent struct {
	Name                   string          `json:"name"`
	Score                  flexScore       `json:"score"`
	Evidence               []modelCitation `json:"evidence"`
	QualitativeAssessment  flexString      `json:"qualitativeAssessment"`
	ImprovementSuggestions flexStrings     `json:"improvementSuggestions"`
}

type modelCitation struct {
	Speaker   flexString `json:"speaker"`
	Timestamp flexString `json:"timestamp"`
	Quote     flexString `json:"quote"`
	Context   flexString `json:"context"`
}

// flexScore accepts 7, 7.5, "7", "7/10" or null. Anything else leaves it
// unset with the raw text kept for validation messages.
type flexScore struct {
	Value *float64
	Raw   string
}

var scorePattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*(?:/\s*10)?\s*$`)

func (f *flexScore) UnmarshalJSON(b []byte) error {
	f.Raw = string(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.Value = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if m := scorePattern.FindStringSubmatch(s); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				f.Value = &v
			}
		}
	}
	return nil
}

// flexString accepts a string, number or bool.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	*f = flexString(strings.Trim(string(b), `"`))
	return nil
}

// flexStrings accepts a list of strings or a single string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	var list []flexString
	if err := json.Unmarshal(b, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if t := strings.TrimSpace(string(s)); t != "" {
				out = append(out, t)
			}
		}
		*f = out
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil && strings.TrimSpace(s) != "" {
		*f = []string{strings.TrimSpace(s)}
	}
	return nil
}

// scored reports whether the response carries at least one numeric score at
// any level.
func (r *modelResponse) scored() bool {
	if r.OverallScore.Value != nil {
		return true
	}
	for _, c := range r.Components {
		if c.Score.Value != nil {
			return true
		}
		for _, sc := range c.SubComponents {
			if sc.Score.Value != nil {
				return true
			}
		}
	}
	return false
}

// parseResponse pulls a modelResponse out of raw model text, repairing
// truncated or sloppy JSON when the strict parse fails.
func parseResponse(raw string) (*modelResponse, bool, error) {
	span, complete := ExtractJSONObject(raw)
	if span == "" {
		return nil, false, fmt.Errorf("no JSON object in model response")
	}

	var resp modelResponse
	if complete {
		if err := json.Unmarshal([]byte(span), &resp); err == nil {
			return &resp, false, nil
		}
	}

	repaired, ok := Repair(span)
	if !ok {
		return nil, false, fmt.Errorf("model response could not be repaired")
	}
	resp = modelResponse{}
	if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
		return nil, false, fmt.Errorf("parsing repaired response: %w", err)
	}
	return &resp, true, nil
}
