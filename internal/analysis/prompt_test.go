package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

func sampleFramework() *models.FrameworkDefinition {
	return &models.FrameworkDefinition{
		Name:        "bant",
		Description: "Lead qualification.",
		Components: []models.FrameworkComponent{
			{
				Name: "Qualification",
				SubComponents: []models.SubComponentDefinition{
					{Name: "Budget", Keywords: []string{"budget", "price"}, ScoringCriteria: models.ScoringCriteria{
						Excellent: "Range confirmed", Good: "Range discussed", Fair: "Mentioned", Poor: "Never raised",
					}},
					{Name: "Authority"},
				},
			},
			{
				Name: "Fit and Timing",
				SubComponents: []models.SubComponentDefinition{
					{Name: "Need"},
					{Name: "Timeline"},
				},
			},
		},
	}
}

func sampleCall() *models.CallDetails {
	return &models.CallDetails{
		CallRecord: models.CallRecord{
			ID:              "c1",
			Title:           "Acme discovery",
			StartedAt:       time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC),
			DurationSeconds: 1930,
			Participants: []models.Participant{
				{Name: "Jane Doe", Title: "AE", Affiliation: models.AffiliationInternal},
				{Name: "Bob Smith", Affiliation: models.AffiliationExternal},
			},
		},
		Transcript: []models.TranscriptEntry{
			{ResolvedSpeakerName: "Jane Doe (AE)", Text: "What budget have you set aside?", StartTimeSeconds: 65},
			{ResolvedSpeakerName: "Bob Smith", Text: "Around fifty thousand.", StartTimeSeconds: 3725.9},
		},
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00", FormatTimestamp(0))
	assert.Equal(t, "01:05", FormatTimestamp(65.4))
	assert.Equal(t, "62:05", FormatTimestamp(3725.9))
	assert.Equal(t, "00:00", FormatTimestamp(-3))
}

func TestBuildPrompt_Contents(t *testing.T) {
	p := BuildPrompt(PromptInput{Call: sampleCall(), Framework: sampleFramework()})

	assert.Contains(t, p, "against the BANT framework")
	assert.Contains(t, p, "Title: Acme discovery")
	assert.Contains(t, p, "Duration: 32m10s")
	assert.Contains(t, p, "Participants: Jane Doe, Bob Smith")
	assert.Contains(t, p, "### Component: Qualification")
	assert.Contains(t, p, "- Sub-component: Budget")
	assert.Contains(t, p, "Listen for: budget, price")
	assert.Contains(t, p, "Excellent (9-10): Range confirmed")
	assert.Contains(t, p, "[01:05] Jane Doe (AE): What budget have you set aside?")
	assert.Contains(t, p, "[62:05] Bob Smith: Around fifty thousand.")
	assert.Contains(t, p, `"overallScore"`)
	assert.NotContains(t, p, "## Participant roles")
}

func TestBuildPrompt_ParticipantRoles(t *testing.T) {
	p := BuildPrompt(PromptInput{Call: sampleCall(), Framework: sampleFramework(), IncludeParticipantRoles: true})

	assert.Contains(t, p, "## Participant roles")
	assert.Contains(t, p, "- Jane Doe, AE: internal (seller)")
	assert.Contains(t, p, "- Bob Smith: external (prospect or customer)")
}

func TestBuildPrompt_TruncatesTranscript(t *testing.T) {
	call := sampleCall()
	call.Transcript = nil
	for i := 0; i < 50; i++ {
		call.Transcript = append(call.Transcript, models.TranscriptEntry{
			ResolvedSpeakerName: "Jane Doe", Text: strings.Repeat("x", 80), StartTimeSeconds: float64(i * 10),
		})
	}

	p := BuildPrompt(PromptInput{Call: call, Framework: sampleFramework(), MaxTranscriptChars: 500})
	assert.Contains(t, p, "(transcript truncated: 5 of 50 entries shown)")
	assert.Equal(t, 5, strings.Count(p, "] Jane Doe: "))
}

func TestBuildPrompt_NoTranscript(t *testing.T) {
	call := sampleCall()
	call.Transcript = nil
	p := BuildPrompt(PromptInput{Call: call, Framework: sampleFramework()})
	assert.Contains(t, p, "(no transcript is available for this call)")
}
