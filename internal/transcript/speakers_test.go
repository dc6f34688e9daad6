package transcript

import (
	"testing"

	"github.com/kiranshivaraju/callcoach/pkg/models"
	"github.com/stretchr/testify/assert"
)

func sampleContext() ResolveContext {
	return ResolveContext{
		Directory: map[string]string{
			"5551234000": "Jane Doe (Account Executive)",
			"u-77":       "Raj Patel",
		},
		Participants: []models.Participant{
			{Name: "Jane Doe", Title: "Account Executive", SpeakerID: "5551234000"},
			{Name: "Bob Buyer", Title: "VP Operations"},
			{Name: "Raj Patel"},
		},
	}
}

func TestResolveFromDirectory(t *testing.T) {
	name, ok := ResolveFromDirectory("5551234000", sampleContext())
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe (Account Executive)", name)

	_, ok = ResolveFromDirectory("nope", sampleContext())
	assert.False(t, ok)
}

func TestResolveByPartialDirectoryKey(t *testing.T) {
	name, ok := ResolveByPartialDirectoryKey("555123400099", sampleContext())
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe (Account Executive)", name)

	_, ok = ResolveByPartialDirectoryKey("u-7", sampleContext())
	assert.False(t, ok, "ids shorter than the minimum are not partially matched")
}

func TestResolveByParticipantName(t *testing.T) {
	name, ok := ResolveByParticipantName("bob buyer", sampleContext())
	assert.True(t, ok)
	assert.Equal(t, "Bob Buyer (VP Operations)", name)
}

func TestResolveByParticipantIndex(t *testing.T) {
	name, ok := ResolveByParticipantIndex("2", sampleContext())
	assert.True(t, ok)
	assert.Equal(t, "Bob Buyer (VP Operations)", name)

	_, ok = ResolveByParticipantIndex("0", sampleContext())
	assert.False(t, ok)
	_, ok = ResolveByParticipantIndex("4", sampleContext())
	assert.False(t, ok)
	_, ok = ResolveByParticipantIndex("x", sampleContext())
	assert.False(t, ok)
}

func TestResolveFromEmail(t *testing.T) {
	tests := map[string]string{
		"jane.doe@acme.com":   "Jane Doe",
		"BOB_BUYER@acme.io":   "Bob Buyer",
		"raj-k.patel@x.co.uk": "Raj K Patel",
	}
	for in, want := range tests {
		name, ok := ResolveFromEmail(in, ResolveContext{})
		assert.True(t, ok, in)
		assert.Equal(t, want, name)
	}

	_, ok := ResolveFromEmail("not-an-email", ResolveContext{})
	assert.False(t, ok)
}

func TestResolveOpaque(t *testing.T) {
	name, ok := ResolveOpaque("7782342274025937895", ResolveContext{})
	assert.True(t, ok)
	assert.Equal(t, "Speaker (7895)", name)

	name, _ = ResolveOpaque("ab", ResolveContext{})
	assert.Equal(t, "Speaker (ab)", name)

	name, _ = ResolveOpaque("", ResolveContext{})
	assert.Equal(t, "Unknown Speaker", name)
}

func TestResolve_OrderMatters(t *testing.T) {
	rc := ResolveContext{
		Directory:    map[string]string{"1": "Directory Name"},
		Participants: []models.Participant{{Name: "Index Name"}},
	}
	assert.Equal(t, "Directory Name", Resolve("1", rc, DefaultResolvers))
	assert.Equal(t, "Index Name", Resolve("1", rc, []SpeakerResolver{ResolveByParticipantIndex}))
}

func TestResolve_AlwaysReturnsAName(t *testing.T) {
	assert.Equal(t, "Speaker (9999)", Resolve("123459999", ResolveContext{}, nil))
}

func TestMatchesAnyParticipant(t *testing.T) {
	ps := sampleContext().Participants
	assert.True(t, matchesAnyParticipant("Jane Doe (Account Executive)", ps))
	assert.True(t, matchesAnyParticipant("jane", ps), "substring")
	assert.True(t, matchesAnyParticipant("Bob Smith", ps), "first name")
	assert.True(t, matchesAnyParticipant("Priya Patel", ps), "last name")
	assert.False(t, matchesAnyParticipant("Speaker (7895)", ps))
	assert.False(t, matchesAnyParticipant("", ps))
}

func TestClosestParticipant(t *testing.T) {
	ps := sampleContext().Participants
	p, ok := closestParticipant("Bobb Buyr", ps)
	assert.True(t, ok)
	assert.Equal(t, "Bob Buyer", p.Name)

	_, ok = closestParticipant("Speaker (7895)", ps)
	assert.False(t, ok)
}

func TestClosestParticipant_MatchingRulesBeforeSimilarity(t *testing.T) {
	ps := sampleContext().Participants
	tests := map[string]string{
		"Doe, Jane":      "Jane Doe",
		"patel_raj":      "Raj Patel",
		"BUYER-BOB (VP)": "Bob Buyer",
	}
	for in, want := range tests {
		assert.False(t, matchesAnyParticipant(in, ps), in)
		p, ok := closestParticipant(in, ps)
		assert.True(t, ok, in)
		assert.Equal(t, want, p.Name, in)
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Jane Doe", baseName("Jane Doe (AE)"))
	assert.Equal(t, "Jane Doe", baseName("Jane Doe"))
	assert.Equal(t, "(x)", baseName("(x)"))
}
