package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceCourtListener = "courtlistener"

const courtListenerSite = "https://www.courtlistener.com"

var courtCaseFields = FieldMap{
	"id":           {"cluster_id", "id"},
	"caseName":     {"caseName", "case_name", "caseNameFull"},
	"court":        {"court", "court_citation_string"},
	"docketNumber": {"docketNumber", "docket_number"},
	"dateFiled":    {"dateFiled", "date_filed"},
	"snippet":      {"snippet", "opinions.0.snippet"},
	"url":          {"absolute_url", "absoluteUrl"},
}

// CourtListener searches court opinions.
type CourtListener struct {
	c     *Client
	base  string
	token string
}

// NewCourtListener creates the adapter. The token is optional and raises the
// upstream rate limit when present.
func NewCourtListener(c *Client, baseURL, token string) *CourtListener {
	return &CourtListener{c: c, base: baseURL, token: token}
}

// SearchCases returns opinion clusters matching query, most relevant first.
func (l *CourtListener) SearchCases(ctx context.Context, query string, limit int) ([]models.CourtCase, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "o")
	params.Set("order_by", "score desc")

	headers := map[string]string{}
	if l.token != "" {
		headers["Authorization"] = "Token " + l.token
	}

	res, err := l.c.GetJSON(ctx, Request{
		Source:  sourceCourtListener,
		URL:     endpoint(l.base, "search/"),
		Query:   params,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}

	limit = clamp(limit, 20, 50)
	out := make([]models.CourtCase, 0, limit)
	for _, r := range res.Get("results").Array() {
		id := courtCaseFields.String(r, "id")
		if id == "" {
			continue
		}
		link := courtCaseFields.String(r, "url")
		if strings.HasPrefix(link, "/") {
			link = courtListenerSite + link
		}
		out = append(out, models.CourtCase{
			ID:           "cl-" + id,
			CaseName:     courtCaseFields.String(r, "caseName"),
			Court:        courtCaseFields.String(r, "court"),
			DocketNumber: courtCaseFields.String(r, "docketNumber"),
			DateFiled:    dateOf(courtCaseFields.String(r, "dateFiled")),
			Snippet:      summary(courtCaseFields.String(r, "snippet")),
			URL:          link,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
