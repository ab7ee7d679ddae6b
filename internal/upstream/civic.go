package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceCivic = "google-civic"

var civicOfficialFields = FieldMap{
	"photo": {"photoUrl", "photo_url"},
}

// Civic looks up elected officials for an address via Google Civic.
type Civic struct {
	c      *Client
	base   string
	apiKey string
}

// NewCivic creates the adapter. An empty apiKey makes every call fail with
// ErrNotConfigured.
func NewCivic(c *Client, baseURL, apiKey string) *Civic {
	return &Civic{c: c, base: baseURL, apiKey: apiKey}
}

// Representatives returns the officials for address grouped by level.
func (g *Civic) Representatives(ctx context.Context, address string) (*models.Representatives, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", models.ErrInvalidInput)
	}
	if g.apiKey == "" {
		return nil, NotConfigured(sourceCivic)
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)

	res, err := g.c.GetJSON(ctx, Request{
		Source: sourceCivic,
		URL:    endpoint(g.base, "representatives"),
		Query:  params,
	})
	if err != nil {
		return nil, err
	}

	out := &models.Representatives{
		Address: address,
		Federal: []models.Official{},
		State:   []models.Official{},
		County:  []models.Official{},
		Local:   []models.Official{},
	}
	if normalized := res.Get("normalizedInput"); normalized.Exists() {
		out.Address = strings.Join(strings.Fields(strings.Join([]string{
			normalized.Get("line1").String(),
			normalized.Get("city").String(),
			normalized.Get("state").String(),
			normalized.Get("zip").String(),
		}, " ")), " ")
	}

	officials := res.Get("officials").Array()
	for _, office := range res.Get("offices").Array() {
		level := officeLevel(office)
		for _, idx := range office.Get("officialIndices").Array() {
			i := int(idx.Int())
			if i < 0 || i >= len(officials) {
				continue
			}
			o := officials[i]
			official := models.Official{
				Name:     o.Get("name").String(),
				Office:   office.Get("name").String(),
				Party:    o.Get("party").String(),
				Phones:   civicOfficialFields.Strings(o, "phones"),
				Emails:   civicOfficialFields.Strings(o, "emails"),
				URLs:     civicOfficialFields.Strings(o, "urls"),
				PhotoURL: civicOfficialFields.String(o, "photo"),
				Division: office.Get("divisionId").String(),
			}
			switch level {
			case models.LevelFederal:
				out.Federal = append(out.Federal, official)
			case models.LevelState:
				out.State = append(out.State, official)
			case models.LevelCounty:
				out.County = append(out.County, official)
			default:
				out.Local = append(out.Local, official)
			}
		}
	}
	return out, nil
}

// officeLevel classifies an office by its declared levels, falling back to
// the shape of its OCD division id.
func officeLevel(office gjson.Result) models.GovernmentLevel {
	for _, l := range office.Get("levels").Array() {
		switch l.String() {
		case "country":
			return models.LevelFederal
		case "administrativeArea1":
			return models.LevelState
		case "administrativeArea2":
			return models.LevelCounty
		case "locality", "subLocality1", "subLocality2", "regional", "special":
			return models.LevelLocal
		}
	}

	division := office.Get("divisionId").String()
	switch {
	case strings.Contains(division, "/county:"):
		return models.LevelCounty
	case strings.Contains(division, "/place:"), strings.Contains(division, "/council_district:"):
		return models.LevelLocal
	case strings.Contains(division, "/state:"), strings.Contains(division, "/district:"):
		return models.LevelState
	case strings.HasSuffix(division, "country:us"):
		return models.LevelFederal
	default:
		return models.LevelLocal
	}
}
