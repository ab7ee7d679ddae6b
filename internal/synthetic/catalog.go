package synthetic

import "strings"

// Level is the government level an official serves at.
type Level string

const (
	LevelFederal Level = "federal"
	LevelState   Level = "state"
	LevelLocal   Level = "local"
)

// Party groups are the keys of Catalog.Industries.
const (
	PartyDemocratic  = "democratic"
	PartyRepublican  = "republican"
	PartyIndependent = "independent"
)

// Catalog is the fixed vocabulary the generator draws categories from.
type Catalog struct {
	Cycle string
	// Scale is the base fundraising amount per level, in dollars.
	Scale map[Level]float64
	// Industries lists donor industries per party group, most typical first.
	Industries map[string][]string
	// IssueAreas are scored in this order.
	IssueAreas []string
}

// DefaultCatalog returns the catalog used by the API.
func DefaultCatalog() Catalog {
	return Catalog{
		Cycle: "2024",
		Scale: map[Level]float64{
			LevelFederal: 1_000_000,
			LevelState:   100_000,
			LevelLocal:   10_000,
		},
		Industries: map[string][]string{
			PartyDemocratic: {
				"Lawyers & Law Firms", "Education", "Health Professionals", "Labor Unions",
				"Entertainment", "Environmental Groups", "Technology", "Retired",
			},
			PartyRepublican: {
				"Oil & Gas", "Real Estate", "Agribusiness", "Small Business",
				"Finance & Insurance", "Mining", "Construction", "Retired",
			},
			PartyIndependent: {
				"Retired", "Technology", "Real Estate", "Health Professionals",
				"Small Business", "Education", "Finance & Insurance", "Agribusiness",
			},
		},
		IssueAreas: []string{
			"Economy", "Education", "Energy", "Environment", "Healthcare",
			"Housing", "Immigration", "Public Safety", "Transportation", "Water",
		},
	}
}

// PartyGroup maps a free-form party label onto a Catalog.Industries key.
func PartyGroup(party string) string {
	p := strings.ToLower(strings.TrimSpace(party))
	switch {
	case p == "d" || strings.HasPrefix(p, "democrat"):
		return PartyDemocratic
	case p == "r" || strings.HasPrefix(p, "republican"):
		return PartyRepublican
	default:
		return PartyIndependent
	}
}

// ParseLevel accepts a level label case-insensitively.
func ParseLevel(raw string) (Level, bool) {
	switch l := Level(strings.ToLower(strings.TrimSpace(raw))); l {
	case LevelFederal, LevelState, LevelLocal:
		return l, true
	default:
		return "", false
	}
}
