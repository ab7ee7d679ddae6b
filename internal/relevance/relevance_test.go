package relevance_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/civic-radar/backend/internal/relevance"
)

func newFilter() *relevance.Filter {
	return relevance.New(relevance.Keywords{
		Person: []string{"senator", "senate", "governor", "congress", "election", "vote", "primary",
			"campaign", "representative", "house", "democrat", "republican", "political"},
		State: []string{"governor", "senate", "senator", "congress", "election", "legislature",
			"primary", "ballot", "vote", "race", "campaign", "political", "democrat", "republican"},
	})
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		person string
		state  string
		text   string
		want   relevance.Rule
	}{
		{
			name:   "full name",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Susie Lee re-election odds improve",
			want:   relevance.RuleFullName,
		},
		{
			name:   "full name ignores case and spacing",
			person: "  susie   LEE ",
			text:   "Will SUSIE LEE win?",
			want:   relevance.RuleFullName,
		},
		{
			name:   "bare surname without context",
			person: "Susie Lee",
			text:   "Spike Lee directs new film",
			want:   relevance.RuleNone,
		},
		{
			name:   "surname with political keyword",
			person: "Susie Lee",
			text:   "Rep. Lee leads house campaign fundraising",
			want:   relevance.RuleLastNameContext,
		},
		{
			name:   "surname with state as context",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Lee tours Nevada solar farm",
			want:   relevance.RuleLastNameContext,
		},
		{
			name:   "compound surname",
			person: "Catherine Cortez Masto",
			text:   "Cortez Masto introduces water bill",
			want:   relevance.RuleCompoundSurname,
		},
		{
			name:   "bare state",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Nevada weather forecast",
			want:   relevance.RuleNone,
		},
		{
			name:   "state with keyword",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Nevada governor race tightens",
			want:   relevance.RuleStateContext,
		},
		{
			name:  "state only query",
			state: "Nevada",
			text:  "Nevada ballot question 3",
			want:  relevance.RuleStateContext,
		},
		{
			name:   "state keyword inside another word",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Nevada embraces tourism boom",
			want:   relevance.RuleNone,
		},
		{
			name:   "grace is not race",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Nevada grace period for late car registration",
			want:   relevance.RuleNone,
		},
		{
			name:   "vote inside devoted",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Spike Lee devoted fans flock to premiere",
			want:   relevance.RuleNone,
		},
		{
			name:   "house inside lighthouse",
			person: "Susie Lee",
			state:  "Nevada",
			text:   "Spike Lee lighthouse film premieres",
			want:   relevance.RuleNone,
		},
		{
			name:   "surname inside another word",
			person: "Susie Lee",
			text:   "Fleet owners vote on new senate rules",
			want:   relevance.RuleNone,
		},
		{
			name:   "inflected keyword",
			person: "Susie Lee",
			text:   "Lee courts Democratic voters",
			want:   relevance.RuleLastNameContext,
		},
		{
			name:   "hyphenated compound surname",
			person: "Catherine Cortez Masto",
			text:   "Cortez-Masto's office responds",
			want:   relevance.RuleCompoundSurname,
		},
		{
			name:  "multi-word state",
			state: "New Mexico",
			text:  "New Mexico legislature adjourns",
			want:  relevance.RuleStateContext,
		},
		{
			name: "nothing to match",
			text: "Anything at all",
			want: relevance.RuleNone,
		},
	}

	f := newFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Match(tt.person, tt.state, tt.text)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want != relevance.RuleNone, f.Relevant(tt.person, tt.state, tt.text))
		})
	}
}

func TestSelectDeduplicatesByID(t *testing.T) {
	type item struct{ id, text string }
	items := []item{
		{"a", "Susie Lee wins primary"},
		{"b", "Spike Lee directs new film"},
		{"a", "Susie Lee wins primary (repeat from second term)"},
		{"", "Susie Lee without an id"},
		{"c", "Nevada governor race tightens"},
	}

	got := relevance.Select(newFilter(), "Susie Lee", "Nevada", items, func(i item) (string, string) {
		return i.id, i.text
	})
	require.Equal(t, []item{items[0], items[4]}, got)
}
