package transcript

import (
	"regexp"
	"strings"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// topicVocabulary is matched as whole words against the transcript text.
// Order is the order topics are reported in.
var topicVocabulary = []string{
	"pricing", "budget", "timeline", "decision", "approval", "procurement",
	"contract", "renewal", "legal", "security", "compliance", "integration",
	"implementation", "onboarding", "training", "support", "roi", "competitor",
	"pain", "requirements", "demo", "pilot", "proposal", "discount", "champion",
	"stakeholder", "migration", "roadmap", "metrics",
}

var topicPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(topicVocabulary))
	for i, w := range topicVocabulary {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `s?\b`)
	}
	return out
}()

// Summarize derives speaker statistics and key topics from resolved entries.
func Summarize(entries []models.TranscriptEntry) models.TranscriptSummary {
	summary := models.TranscriptSummary{
		KeyTopics: []string{},
		Speakers:  make(map[string]models.SpeakerStats),
	}
	if len(entries) == 0 {
		return summary
	}

	var text strings.Builder
	first, last := entries[0].StartTimeSeconds, entries[0].EndTimeSeconds
	for _, e := range entries {
		st := summary.Speakers[e.ResolvedSpeakerName]
		st.Messages++
		if d := e.EndTimeSeconds - e.StartTimeSeconds; d > 0 {
			st.SpeakingSeconds += d
		}
		summary.Speakers[e.ResolvedSpeakerName] = st

		first = min(first, e.StartTimeSeconds)
		last = max(last, e.EndTimeSeconds)
		text.WriteString(strings.ToLower(e.Text))
		text.WriteByte('\n')
	}

	summary.TotalSpeakers = len(summary.Speakers)
	summary.TotalDuration = last - first

	lower := text.String()
	for i, re := range topicPatterns {
		if re.MatchString(lower) {
			summary.KeyTopics = append(summary.KeyTopics, topicVocabulary[i])
		}
	}
	return summary
}
