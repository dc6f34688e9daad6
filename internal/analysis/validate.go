package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

var timestampPattern = regexp.MustCompile(`^\d{1,3}:[0-5]\d(?:\s*[-–]\s*\d{1,3}:[0-5]\d)?$`)

// ValidTimestamp reports whether ts is "mm:ss" or a "mm:ss-mm:ss" range.
// The en dash is accepted as the range separator too.
func ValidTimestamp(ts string) bool {
	return timestampPattern.MatchString(strings.TrimSpace(ts))
}

// validate lists structural problems in a parsed response. None of them stop
// the response from being used.
func validate(resp *modelResponse) []string {
	var problems []string
	checkScore := func(where string, s flexScore) {
		switch {
		case s.Value == nil && s.Raw != "" && s.Raw != "null":
			problems = append(problems, fmt.Sprintf("%s: score %s is not a number", where, s.Raw))
		case s.Value != nil && (*s.Value < 1 || *s.Value > 10):
			problems = append(problems, fmt.Sprintf("%s: score %g outside 1-10", where, *s.Value))
		}
	}

	checkScore("overall", resp.OverallScore)
	for i, c := range resp.Components {
		where := c.Name
		if strings.TrimSpace(c.Name) == "" {
			where = fmt.Sprintf("component[%d]", i)
			problems = append(problems, where+": missing name")
		}
		checkScore(where, c.Score)
		for j, sc := range c.SubComponents {
			subWhere := where + "/" + sc.Name
			if strings.TrimSpace(sc.Name) == "" {
				subWhere = fmt.Sprintf("%s/sub[%d]", where, j)
				problems = append(problems, subWhere+": missing name")
			}
			if sc.Score.Raw == "" || sc.Score.Raw == "null" {
				problems = append(problems, subWhere+": missing score")
			} else {
				checkScore(subWhere, sc.Score)
			}
			for _, ev := range sc.Evidence {
				if ts := string(ev.Timestamp); ts != "" && !ValidTimestamp(ts) {
					problems = append(problems, fmt.Sprintf("%s: citation timestamp %q not mm:ss", subWhere, ts))
				}
			}
		}
	}
	return problems
}
