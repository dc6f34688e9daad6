package transcript

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// ResolveContext is everything a SpeakerResolver may consult.
type ResolveContext struct {
	// Directory maps provider speaker and user IDs to display names,
	// already carrying a job title suffix where one is known.
	Directory    map[string]string
	Participants []models.Participant
}

// SpeakerResolver maps a speaker ID to a name, or reports no opinion.
type SpeakerResolver func(speakerID string, rc ResolveContext) (string, bool)

// DefaultResolvers is the resolution chain in priority order. The last entry
// always succeeds.
var DefaultResolvers = []SpeakerResolver{
	ResolveFromDirectory,
	ResolveByPartialDirectoryKey,
	ResolveByParticipantName,
	ResolveByParticipantIndex,
	ResolveFromEmail,
	ResolveOpaque,
}

// Resolve runs resolvers in order and returns the first hit.
func Resolve(speakerID string, rc ResolveContext, resolvers []SpeakerResolver) string {
	for _, r := range resolvers {
		if name, ok := r(speakerID, rc); ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	name, _ := ResolveOpaque(speakerID, rc)
	return name
}

func ResolveFromDirectory(speakerID string, rc ResolveContext) (string, bool) {
	name, ok := rc.Directory[speakerID]
	return name, ok && name != ""
}

const minPartialKeyLen = 4

// ResolveByPartialDirectoryKey matches when the speaker ID and a directory key
// contain one another. Keys are tried in sorted order so results are stable.
func ResolveByPartialDirectoryKey(speakerID string, rc ResolveContext) (string, bool) {
	if len(speakerID) < minPartialKeyLen {
		return "", false
	}
	keys := make([]string, 0, len(rc.Directory))
	for k := range rc.Directory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(k) < minPartialKeyLen {
			continue
		}
		if strings.Contains(k, speakerID) || strings.Contains(speakerID, k) {
			return rc.Directory[k], true
		}
	}
	return "", false
}

// ResolveByParticipantName handles providers that label speakers by name.
func ResolveByParticipantName(speakerID string, rc ResolveContext) (string, bool) {
	for _, p := range rc.Participants {
		if p.Name != "" && strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(speakerID)) {
			return withTitle(p.Name, p.Title), true
		}
	}
	return "", false
}

// ResolveByParticipantIndex treats small numeric IDs as 1-based participant positions.
func ResolveByParticipantIndex(speakerID string, rc ResolveContext) (string, bool) {
	n, err := strconv.Atoi(speakerID)
	if err != nil || n < 1 || n > len(rc.Participants) {
		return "", false
	}
	p := rc.Participants[n-1]
	if p.Name == "" {
		return "", false
	}
	return withTitle(p.Name, p.Title), true
}

var emailLike = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ResolveFromEmail humanizes the local part of an email-like ID:
// "jane.doe@acme.com" becomes "Jane Doe".
func ResolveFromEmail(speakerID string, _ ResolveContext) (string, bool) {
	if !emailLike.MatchString(speakerID) {
		return "", false
	}
	local := speakerID[:strings.IndexByte(speakerID, '@')]
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsDigit(r)
	})
	if len(parts) == 0 {
		return "", false
	}
	for i, p := range parts {
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " "), true
}

const shortIDLen = 4

// ResolveOpaque labels the speaker by the tail of its ID.
func ResolveOpaque(speakerID string, _ ResolveContext) (string, bool) {
	id := strings.TrimSpace(speakerID)
	if id == "" {
		return "Unknown Speaker", true
	}
	if r := []rune(id); len(r) > shortIDLen {
		id = string(r[len(r)-shortIDLen:])
	}
	return "Speaker (" + id + ")", true
}

func withTitle(name, title string) string {
	name = strings.TrimSpace(name)
	title = strings.TrimSpace(title)
	if title == "" {
		return name
	}
	return name + " (" + title + ")"
}

// baseName strips a trailing " (title)" suffix.
func baseName(name string) string {
	if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
		return name[:i]
	}
	return name
}
