package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceLDA = "senate-lda"

var lobbyingFields = FieldMap{
	"id":         {"filing_uuid", "filingUuid", "id"},
	"registrant": {"registrant.name", "registrant_name"},
	"client":     {"client.name", "client_name"},
	"filingType": {"filing_type_display", "filing_type"},
	"period":     {"filing_period_display", "filing_period"},
	"year":       {"filing_year", "filingYear"},
	"income":     {"income"},
	"expenses":   {"expenses"},
	"issues":     {"lobbying_activities.#.general_issue_code_display", "issues"},
	"posted":     {"dt_posted", "posted"},
	"url":        {"filing_document_url", "url"},
}

// LDA searches Senate Lobbying Disclosure Act filings.
type LDA struct {
	c     *Client
	base  string
	token string
}

// NewLDA creates the adapter. The token is optional.
func NewLDA(c *Client, baseURL, token string) *LDA {
	return &LDA{c: c, base: baseURL, token: token}
}

// SearchFilings returns the most recently posted filings whose specific
// lobbying issues mention query.
func (l *LDA) SearchFilings(ctx context.Context, query string, limit int) ([]models.LobbyingFiling, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("filing_specific_lobbying_issues", query)
	params.Set("ordering", "-dt_posted")
	params.Set("page_size", strconv.Itoa(clamp(limit, 20, 25)))

	headers := map[string]string{}
	if l.token != "" {
		headers["Authorization"] = "Token " + l.token
	}

	res, err := l.c.GetJSON(ctx, Request{
		Source:  sourceLDA,
		URL:     endpoint(l.base, "filings/"),
		Query:   params,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}

	items := res.Get("results").Array()
	out := make([]models.LobbyingFiling, 0, len(items))
	for _, r := range items {
		id := lobbyingFields.String(r, "id")
		if id == "" {
			continue
		}
		amount, ok := lobbyingFields.Float(r, "income")
		if !ok {
			amount, _ = lobbyingFields.Float(r, "expenses")
		}
		out = append(out, models.LobbyingFiling{
			ID:         "lda-" + id,
			Registrant: lobbyingFields.String(r, "registrant"),
			Client:     lobbyingFields.String(r, "client"),
			FilingType: lobbyingFields.String(r, "filingType"),
			Period:     lobbyingFields.String(r, "period"),
			Year:       lobbyingFields.Int(r, "year"),
			Amount:     amount,
			Issues:     uniqueStrings(lobbyingFields.Strings(r, "issues")),
			Posted:     dateOf(lobbyingFields.String(r, "posted")),
			URL:        lobbyingFields.String(r, "url"),
		})
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
