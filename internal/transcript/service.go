// Package transcript fetches call transcripts and attributes each segment to a
// human-readable speaker.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/kiranshivaraju/callcoach/internal/recording"
	"github.com/kiranshivaraju/callcoach/internal/similarity"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// ErrNotFound is returned when the recording platform has no such call.
var ErrNotFound = errors.New("call not found")

// closestParticipantRatio is the minimum similarity for substituting a
// participant name during cross-validation.
const closestParticipantRatio = 0.6

// Service builds CallDetails from the recording platform.
type Service struct {
	client    recording.Client
	resolvers []SpeakerResolver
}

type Option func(*Service)

// WithResolvers replaces the default resolution chain.
func WithResolvers(rs ...SpeakerResolver) Option {
	return func(s *Service) { s.resolvers = rs }
}

func NewService(client recording.Client, opts ...Option) *Service {
	s := &Service{client: client, resolvers: DefaultResolvers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCallDetails fetches metadata, participants and transcript for one call and
// returns them with speakers resolved and a summary computed.
func (s *Service) GetCallDetails(ctx context.Context, callID string) (*models.CallDetails, error) {
	found, err := s.client.GetCallsExtensive(ctx, []string{callID})
	if errors.Is(err, recording.ErrNotFound) || (err == nil && len(found) == 0) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, callID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching call %s: %w", callID, err)
	}
	call := found[0]

	monologues, err := s.client.GetTranscripts(ctx, []string{callID})
	if err != nil {
		return nil, fmt.Errorf("fetching transcript for %s: %w", callID, err)
	}

	rc := s.buildContext(ctx, &call)
	entries := s.normalize(call.ID, monologues[callID], rc)

	return &models.CallDetails{
		CallRecord: call,
		Transcript: entries,
		Summary:    Summarize(entries),
	}, nil
}

// buildContext fills in participant names and titles from the user directory
// and indexes them by speaker, user and email. Calls with no participant list
// fall back to the whole directory.
func (s *Service) buildContext(ctx context.Context, call *models.CallRecord) ResolveContext {
	dir := make(map[string]string)
	call.Participants = append([]models.Participant(nil), call.Participants...)

	for i := range call.Participants {
		p := &call.Participants[i]
		if p.UserID != "" && (p.Name == "" || p.Title == "") {
			u, err := s.client.GetUser(ctx, p.UserID)
			if err != nil {
				slog.Debug("user lookup failed", "call_id", call.ID, "user_id", p.UserID, "error", err)
			} else {
				if p.Name == "" {
					p.Name = u.DisplayName()
				}
				if p.Title == "" {
					p.Title = u.Title
				}
			}
		}
		if p.Name == "" {
			continue
		}
		display := withTitle(p.Name, p.Title)
		for _, key := range []string{p.SpeakerID, p.UserID, p.Email} {
			if key != "" {
				dir[key] = display
			}
		}
	}

	if len(call.Participants) == 0 {
		users, err := s.client.ListUsers(ctx)
		if err != nil {
			slog.Warn("user directory unavailable", "call_id", call.ID, "error", err)
		}
		for _, u := range users {
			display := withTitle(u.DisplayName(), u.Title)
			if u.ID != "" {
				dir[u.ID] = display
			}
			if u.EmailAddress != "" {
				dir[u.EmailAddress] = display
			}
		}
	}

	return ResolveContext{Directory: dir, Participants: call.Participants}
}

func (s *Service) normalize(callID string, monologues []recording.Monologue, rc ResolveContext) []models.TranscriptEntry {
	entries := make([]models.TranscriptEntry, 0, len(monologues))
	names := make(map[string]string)

	for _, m := range monologues {
		if len(m.Sentences) == 0 {
			continue
		}
		parts := make([]string, 0, len(m.Sentences))
		for _, sen := range m.Sentences {
			if t := strings.TrimSpace(sen.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) == 0 {
			continue
		}

		name, ok := names[m.SpeakerID]
		if !ok {
			name = s.resolveSpeaker(callID, m.SpeakerID, rc)
			names[m.SpeakerID] = name
		}

		entries = append(entries, models.TranscriptEntry{
			SpeakerID:           m.SpeakerID,
			ResolvedSpeakerName: name,
			Text:                strings.Join(parts, " "),
			StartTimeSeconds:    float64(m.Sentences[0].Start) / 1000,
			EndTimeSeconds:      float64(m.Sentences[len(m.Sentences)-1].End) / 1000,
			Topic:               m.Topic,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTimeSeconds < entries[j].StartTimeSeconds
	})
	return entries
}

func (s *Service) resolveSpeaker(callID, speakerID string, rc ResolveContext) string {
	name := Resolve(speakerID, rc, s.resolvers)
	if len(rc.Participants) == 0 || matchesAnyParticipant(name, rc.Participants) {
		return name
	}

	if p, ok := closestParticipant(name, rc.Participants); ok {
		substitute := withTitle(p.Name, p.Title)
		slog.Warn("speaker name not in participant list",
			"call_id", callID,
			"speaker_id", speakerID,
			"resolved", name,
			"substituted", substitute,
		)
		return substitute
	}

	slog.Debug("speaker has no matching participant",
		"call_id", callID,
		"speaker_id", speakerID,
		"resolved", name,
	)
	return name
}

// matchesAnyParticipant accepts exact, substring in either direction, or
// first or last name equality, ignoring case and title suffixes.
func matchesAnyParticipant(name string, participants []models.Participant) bool {
	n := strings.ToLower(strings.TrimSpace(baseName(name)))
	if n == "" {
		return false
	}
	nf := strings.Fields(n)
	for _, p := range participants {
		pn := strings.ToLower(strings.TrimSpace(p.Name))
		if pn == "" {
			continue
		}
		if n == pn || strings.Contains(n, pn) || strings.Contains(pn, n) {
			return true
		}
		pf := strings.Fields(pn)
		if len(nf) > 0 && len(pf) > 0 && (nf[0] == pf[0] || nf[len(nf)-1] == pf[len(pf)-1]) {
			return true
		}
	}
	return false
}

// closestParticipant picks the participant a mismatched name most likely
// refers to. The matching rules are reapplied to punctuation-free tokens so
// forms like "Doe, Jane" or "jane_doe" still match; the most shared tokens
// win and similarity breaks ties. Without any shared token the most similar
// participant is used if it clears closestParticipantRatio.
func closestParticipant(name string, participants []models.Participant) (models.Participant, bool) {
	n := similarity.Normalize(baseName(name))
	nt := strings.Fields(n)

	var best models.Participant
	bestShared, bestScore := 0, 0.0
	for _, p := range participants {
		pn := similarity.Normalize(p.Name)
		if pn == "" {
			continue
		}
		shared := sharedTokens(nt, strings.Fields(pn))
		score := similarity.Similarity(n, pn)
		if shared > bestShared || (shared == bestShared && score > bestScore) {
			best, bestShared, bestScore = p, shared, score
		}
	}
	if bestShared > 0 {
		return best, true
	}
	return best, bestScore >= closestParticipantRatio
}

func sharedTokens(a, b []string) int {
	n := 0
	for _, x := range a {
		if slices.Contains(b, x) {
			n++
		}
	}
	return n
}
