package models

import "time"

// Participant affiliations as reported by the recording provider.
const (
	AffiliationInternal = "internal"
	AffiliationExternal = "external"
	AffiliationUnknown  = "unknown"
)

// Participant is a party on a recorded call.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Title       string `json:"title,omitempty"`
	UserID      string `json:"userId,omitempty"`
	SpeakerID   string `json:"speakerId,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

// CallRecord is call metadata fetched from the recording provider.
// It is immutable for the life of a request.
type CallRecord struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	StartedAt       time.Time     `json:"startedAt"`
	DurationSeconds int           `json:"durationSeconds"`
	URL             string        `json:"url"`
	Participants    []Participant `json:"participants"`
}

// ParticipantNames returns the non-empty participant display names in order.
func (c CallRecord) ParticipantNames() []string {
	names := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// TranscriptEntry is one normalized transcript segment. SpeakerID is provider-assigned
// and unstable across calls; ResolvedSpeakerName is best-effort.
type TranscriptEntry struct {
	SpeakerID           string  `json:"speakerId"`
	ResolvedSpeakerName string  `json:"resolvedSpeakerName"`
	Text                string  `json:"text"`
	StartTimeSeconds    float64 `json:"startTimeSeconds"`
	EndTimeSeconds      float64 `json:"endTimeSeconds"`
	Topic               string  `json:"topic,omitempty"`
}

// SpeakerStats counts messages and speaking time for one resolved speaker.
type SpeakerStats struct {
	Messages        int     `json:"messages"`
	SpeakingSeconds float64 `json:"speakingSeconds"`
}

// TranscriptSummary is derived from a resolved transcript.
type TranscriptSummary struct {
	TotalSpeakers int                     `json:"totalSpeakers"`
	TotalDuration float64                 `json:"totalDuration"`
	KeyTopics     []string                `json:"keyTopics"`
	Speakers      map[string]SpeakerStats `json:"speakers"`
}

// CallDetails bundles metadata, the resolved transcript and its summary.
type CallDetails struct {
	CallRecord
	Transcript []TranscriptEntry `json:"transcript"`
	Summary    TranscriptSummary `json:"transcriptSummary"`
}
