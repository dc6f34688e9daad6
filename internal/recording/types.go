package recording

import (
	"strings"
	"time"

	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// User is one entry of the platform's user directory.
type User struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Title        string `json:"title"`
}

// DisplayName joins first and last name, falling back to the email address.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.EmailAddress
	}
	return name
}

// Monologue is a contiguous run of sentences from one speaker.
type Monologue struct {
	SpeakerID string     `json:"speakerId"`
	Topic     string     `json:"topic"`
	Sentences []Sentence `json:"sentences"`
}

// Sentence offsets are milliseconds from the start of the call.
type Sentence struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Text  string `json:"text"`
}

// --- wire types ---

type records struct {
	TotalRecords    int    `json:"totalRecords"`
	CurrentPageSize int    `json:"currentPageSize"`
	Cursor          string `json:"cursor"`
}

type wireCall struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Started  string `json:"started"`
	Duration int    `json:"duration"`
	URL      string `json:"url"`
}

func (w wireCall) toModel() models.CallRecord {
	started, _ := time.Parse(time.RFC3339, w.Started)
	return models.CallRecord{
		ID:              w.ID,
		Title:           w.Title,
		StartedAt:       started.UTC(),
		DurationSeconds: w.Duration,
		URL:             w.URL,
	}
}

type wireParty struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
	Title        string `json:"title"`
	UserID       string `json:"userId"`
	SpeakerID    string `json:"speakerId"`
	Affiliation  string `json:"affiliation"`
}

func (w wireParty) toModel() models.Participant {
	return models.Participant{
		ID:          w.ID,
		Name:        w.Name,
		Email:       w.EmailAddress,
		Title:       w.Title,
		UserID:      w.UserID,
		SpeakerID:   w.SpeakerID,
		Affiliation: parseAffiliation(w.Affiliation),
	}
}

func parseAffiliation(s string) string {
	switch strings.ToLower(s) {
	case "internal":
		return models.AffiliationInternal
	case "external":
		return models.AffiliationExternal
	default:
		return models.AffiliationUnknown
	}
}

type listCallsResponse struct {
	Records records    `json:"records"`
	Calls   []wireCall `json:"calls"`
}

type getCallResponse struct {
	Call wireCall `json:"call"`
}

type callFilter struct {
	CallIDs []string `json:"callIds"`
}

type extensiveRequest struct {
	Cursor          string     `json:"cursor,omitempty"`
	Filter          callFilter `json:"filter"`
	ContentSelector struct {
		ExposedFields struct {
			Parties bool `json:"parties"`
		} `json:"exposedFields"`
	} `json:"contentSelector"`
}

type extensiveCall struct {
	MetaData wireCall    `json:"metaData"`
	Parties  []wireParty `json:"parties"`
}

type extensiveResponse struct {
	Records records         `json:"records"`
	Calls   []extensiveCall `json:"calls"`
}

type transcriptRequest struct {
	Cursor string     `json:"cursor,omitempty"`
	Filter callFilter `json:"filter"`
}

type callTranscript struct {
	CallID     string      `json:"callId"`
	Transcript []Monologue `json:"transcript"`
}

type transcriptResponse struct {
	Records         records          `json:"records"`
	CallTranscripts []callTranscript `json:"callTranscripts"`
}

type getUserResponse struct {
	User User `json:"user"`
}

type listUsersResponse struct {
	Records records `json:"records"`
	Users   []User  `json:"users"`
}
