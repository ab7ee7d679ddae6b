package synthetic

import (
	"fmt"
	"math"
	"strings"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

// FundingSource is one slice of total receipts.
type FundingSource struct {
	Source  string  `json:"source"`
	Amount  int64   `json:"amount"`
	Percent float64 `json:"percent"`
}

// IndustryTotal is the amount raised from one industry.
type IndustryTotal struct {
	Industry string `json:"industry"`
	Amount   int64  `json:"amount"`
}

// Finance is a synthetic campaign finance summary.
type Finance struct {
	EntityID          string          `json:"entityId"`
	Cycle             string          `json:"cycle"`
	Level             Level           `json:"level"`
	TotalRaised       int64           `json:"totalRaised"`
	TotalSpent        int64           `json:"totalSpent"`
	CashOnHand        int64           `json:"cashOnHand"`
	Sources           []FundingSource `json:"sources"`
	TopIndustries     []IndustryTotal `json:"topIndustries"`
	DonorCount        int             `json:"donorCount"`
	SmallDonorPercent float64         `json:"smallDonorPercent"`
	Synthetic         bool            `json:"synthetic"`
}

// IssueScore rates voting alignment in one issue area.
type IssueScore struct {
	Area     string `json:"area"`
	Score    int    `json:"score"`
	Grade    string `json:"grade"`
	KeyIssue bool   `json:"keyIssue"`
}

// VotingRecord is a synthetic voting summary.
type VotingRecord struct {
	EntityID          string       `json:"entityId"`
	TotalVotes        int          `json:"totalVotes"`
	MissedVotes       int          `json:"missedVotes"`
	AttendancePercent float64      `json:"attendancePercent"`
	PartyLinePercent  float64      `json:"partyLinePercent"`
	YeaVotes          int          `json:"yeaVotes"`
	NayVotes          int          `json:"nayVotes"`
	Issues            []IssueScore `json:"issues"`
	Synthetic         bool         `json:"synthetic"`
}

const topIndustryCount = 5

// Generator produces synthetic profiles from a fixed catalog.
type Generator struct {
	catalog Catalog
}

// New creates a generator.
func New(catalog Catalog) *Generator {
	return &Generator{catalog: catalog}
}

// Finance returns the finance profile of entityID. Every number is drawn from
// a source seeded with entityID + ":finance".
func (g *Generator) Finance(entityID, party, level string) (Finance, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return Finance{}, fmt.Errorf("%w: entityId is required", models.ErrInvalidInput)
	}
	lvl, ok := ParseLevel(level)
	if !ok {
		return Finance{}, fmt.Errorf("%w: level must be federal, state or local", models.ErrInvalidInput)
	}

	src := NewSource(entityID + ":finance")
	scale := g.catalog.Scale[lvl]

	raised := math.Round(scale * src.Range(0.5, 5))
	spent := math.Round(raised * src.Range(0.55, 0.95))

	shares := []struct {
		name   string
		weight float64
	}{
		{"individual", src.Range(40, 70)},
		{"pac", src.Range(10, 35)},
		{"party", src.Range(0, 10)},
		{"self", src.Range(0, 8)},
	}
	var weightSum float64
	for _, s := range shares {
		weightSum += s.weight
	}

	sources := make([]FundingSource, 0, len(shares))
	var allocated int64
	for i, s := range shares {
		amount := int64(math.Round(raised * s.weight / weightSum))
		if i == len(shares)-1 {
			amount = int64(raised) - allocated
		}
		allocated += amount
		sources = append(sources, FundingSource{
			Source:  s.name,
			Amount:  amount,
			Percent: round1(s.weight / weightSum * 100),
		})
	}

	industries := g.pickIndustries(src, PartyGroup(party))
	top := make([]IndustryTotal, 0, len(industries))
	for i, name := range industries {
		share := (0.12 - float64(i)*0.02) * src.Range(0.7, 1.3)
		top = append(top, IndustryTotal{Industry: name, Amount: int64(math.Round(raised * share))})
	}

	avgDonation := src.Range(50, 500)
	return Finance{
		EntityID:          entityID,
		Cycle:             g.catalog.Cycle,
		Level:             lvl,
		TotalRaised:       int64(raised),
		TotalSpent:        int64(spent),
		CashOnHand:        int64(raised - spent),
		Sources:           sources,
		TopIndustries:     top,
		DonorCount:        int(float64(sources[0].Amount) / avgDonation),
		SmallDonorPercent: round1(src.Range(15, 65)),
		Synthetic:         true,
	}, nil
}

// pickIndustries shuffles the party list with src and keeps the first few.
func (g *Generator) pickIndustries(src *Source, group string) []string {
	list := g.catalog.Industries[group]
	if len(list) == 0 {
		list = g.catalog.Industries[PartyIndependent]
	}
	shuffled := append([]string(nil), list...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if len(shuffled) > topIndustryCount {
		shuffled = shuffled[:topIndustryCount]
	}
	return shuffled
}

// VotingRecord returns the voting summary of entityID. Issue areas named in
// keyIssues score in [75, 100), the rest in [40, 85).
func (g *Generator) VotingRecord(entityID, party string, keyIssues []string) (VotingRecord, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return VotingRecord{}, fmt.Errorf("%w: entityId is required", models.ErrInvalidInput)
	}

	key := make(map[string]struct{}, len(keyIssues))
	for _, issue := range keyIssues {
		key[strings.ToLower(strings.TrimSpace(issue))] = struct{}{}
	}

	src := NewSource(entityID + ":voting")

	total := 300 + src.Intn(900)
	attendance := round1(src.Range(85, 99.5))
	missed := total - int(math.Round(float64(total)*attendance/100))
	cast := total - missed
	yea := int(math.Round(float64(cast) * src.Range(0.55, 0.8)))

	var partyLine float64
	if PartyGroup(party) == PartyIndependent {
		partyLine = round1(src.Range(40, 70))
	} else {
		partyLine = round1(src.Range(70, 98))
	}

	issues := make([]IssueScore, 0, len(g.catalog.IssueAreas))
	for _, area := range g.catalog.IssueAreas {
		_, isKey := key[strings.ToLower(area)]
		var score int
		if isKey {
			score = int(src.Range(75, 100))
		} else {
			score = int(src.Range(40, 85))
		}
		issues = append(issues, IssueScore{
			Area:     area,
			Score:    score,
			Grade:    grade(score),
			KeyIssue: isKey,
		})
	}

	return VotingRecord{
		EntityID:          entityID,
		TotalVotes:        total,
		MissedVotes:       missed,
		AttendancePercent: attendance,
		PartyLinePercent:  partyLine,
		YeaVotes:          yea,
		NayVotes:          cast - yea,
		Issues:            issues,
		Synthetic:         true,
	}, nil
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
