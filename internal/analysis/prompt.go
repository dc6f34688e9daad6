package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// SystemPrompt is sent with every analysis request.
const SystemPrompt = `You are an experienced sales coach who scores recorded sales calls against named sales methodologies.
Respond with exactly one JSON object and nothing else: no markdown fences, no commentary before or after it.
Base every score on evidence quoted from the transcript. Do not invent quotes.`

// FormatTimestamp renders seconds as mm:ss. Minutes are not wrapped into hours.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// PromptInput is everything a prompt is built from.
type PromptInput struct {
	Call                    *models.CallDetails
	Framework               *models.FrameworkDefinition
	IncludeParticipantRoles bool
	MaxTranscriptChars      int
}

// BuildPrompt renders the user prompt for one (call, framework) unit.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder
	call := in.Call
	def := in.Framework
	label := strings.ToUpper(def.Name)

	fmt.Fprintf(&b, "Score this sales call against the %s framework.\n\n", label)

	b.WriteString("## Call\n")
	fmt.Fprintf(&b, "Title: %s\n", call.Title)
	if !call.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", call.StartedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	if call.DurationSeconds > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", (time.Duration(call.DurationSeconds) * time.Second).String())
	}
	if names := call.ParticipantNames(); len(names) > 0 {
		fmt.Fprintf(&b, "Participants: %s\n", strings.Join(names, ", "))
	}

	if in.IncludeParticipantRoles && len(call.Participants) > 0 {
		b.WriteString("\n## Participant roles\n")
		for _, p := range call.Participants {
			writeParticipantRole(&b, p)
		}
	}

	fmt.Fprintf(&b, "\n## Framework: %s\n", label)
	if def.Description != "" {
		b.WriteString(def.Description + "\n")
	}
	for _, c := range def.Components {
		fmt.Fprintf(&b, "\n### Component: %s\n", c.Name)
		if c.Description != "" {
			b.WriteString(c.Description + "\n")
		}
		for _, sc := range c.SubComponents {
			fmt.Fprintf(&b, "- Sub-component: %s\n", sc.Name)
			if sc.Description != "" {
				fmt.Fprintf(&b, "  Description: %s\n", sc.Description)
			}
			if len(sc.Keywords) > 0 {
				fmt.Fprintf(&b, "  Listen for: %s\n", strings.Join(sc.Keywords, ", "))
			}
			fmt.Fprintf(&b, "  Excellent (9-10): %s\n", sc.ScoringCriteria.Excellent)
			fmt.Fprintf(&b, "  Good (7-8): %s\n", sc.ScoringCriteria.Good)
			fmt.Fprintf(&b, "  Fair (4-6): %s\n", sc.ScoringCriteria.Fair)
			fmt.Fprintf(&b, "  Poor (1-3): %s\n", sc.ScoringCriteria.Poor)
		}
	}

	b.WriteString("\n## Transcript\n")
	writeTranscript(&b, call.Transcript, in.MaxTranscriptChars)

	b.WriteString("\n## Instructions\n")
	b.WriteString(instructions)
	return b.String()
}

func writeParticipantRole(b *strings.Builder, p models.Participant) {
	name := p.Name
	if name == "" {
		name = p.Email
	}
	if name == "" {
		return
	}
	side := "affiliation unknown"
	switch p.Affiliation {
	case models.AffiliationInternal:
		side = "internal (seller)"
	case models.AffiliationExternal:
		side = "external (prospect or customer)"
	}
	if p.Title != "" {
		fmt.Fprintf(b, "- %s, %s: %s\n", name, p.Title, side)
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", name, side)
}

// writeTranscript renders "[mm:ss] Speaker: text" lines until budget runs out.
// A budget of zero or less means no limit.
func writeTranscript(b *strings.Builder, entries []models.TranscriptEntry, budget int) {
	if len(entries) == 0 {
		b.WriteString("(no transcript is available for this call)\n")
		return
	}
	used := 0
	for i, e := range entries {
		line := fmt.Sprintf("[%s] %s: %s\n", FormatTimestamp(e.StartTimeSeconds), e.ResolvedSpeakerName, e.Text)
		if budget > 0 && used+len(line) > budget {
			fmt.Fprintf(b, "(transcript truncated: %d of %d entries shown)\n", i, len(entries))
			return
		}
		b.WriteString(line)
		used += len(line)
	}
}

const instructions = `- Score every sub-component listed above from 1 to 10 using its criteria. Use the whole range:
  most real calls score between 4 and 7, reserve 9-10 for textbook execution and 1-3 for absent behaviour.
- Every sub-component needs at least one evidence entry quoting the transcript verbatim, with the speaker
  name exactly as it appears in the transcript and the timestamp as "mm:ss" or "mm:ss-mm:ss".
- If the transcript has no evidence for a sub-component, score it low and say so in qualitativeAssessment.
- Give each component a score and a one-sentence summary.
- overallScore is your holistic 1-10 judgement of the call against this framework.

Return this JSON shape:
{
  "overallScore": 6,
  "components": [
    {
      "name": "<component name>",
      "score": 6,
      "summary": "<one sentence>",
      "subComponents": [
        {
          "name": "<sub-component name>",
          "score": 5,
          "evidence": [{"speaker": "<name>", "timestamp": "mm:ss", "quote": "<verbatim>", "context": "<why it matters>"}],
          "qualitativeAssessment": "<two or three sentences>",
          "improvementSuggestions": ["<concrete suggestion>"]
        }
      ]
    }
  ],
  "executiveSummary": {
    "strengths": ["<short phrase>"],
    "weaknesses": ["<short phrase>"],
    "recommendations": ["<short imperative>"]
  }
}
`
