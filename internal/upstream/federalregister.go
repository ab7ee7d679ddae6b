package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceFederalRegister = "federal-register"

var regulationFields = FieldMap{
	"documentNumber":  {"document_number", "documentNumber"},
	"publicationDate": {"publication_date", "publicationDate"},
	"url":             {"html_url", "htmlUrl"},
	"agencies":        {"agencies.#.name", "agency_names"},
}

// FederalRegister searches Federal Register documents. It needs no key.
type FederalRegister struct {
	c    *Client
	base string
}

// NewFederalRegister creates the adapter.
func NewFederalRegister(c *Client, baseURL string) *FederalRegister {
	return &FederalRegister{c: c, base: baseURL}
}

// SearchDocuments returns the newest documents matching query.
func (f *FederalRegister) SearchDocuments(ctx context.Context, query string, limit int) ([]models.Regulation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("conditions[term]", query)
	params.Set("per_page", strconv.Itoa(clamp(limit, 20, 100)))
	params.Set("order", "newest")

	res, err := f.c.GetJSON(ctx, Request{
		Source: sourceFederalRegister,
		URL:    endpoint(f.base, "documents.json"),
		Query:  params,
	})
	if err != nil {
		return nil, err
	}

	items := res.Get("results").Array()
	out := make([]models.Regulation, 0, len(items))
	for _, r := range items {
		number := regulationFields.String(r, "documentNumber")
		if number == "" {
			continue
		}
		out = append(out, models.Regulation{
			ID:              "fr-" + number,
			DocumentNumber:  number,
			Title:           r.Get("title").String(),
			Abstract:        summary(r.Get("abstract").String()),
			Type:            r.Get("type").String(),
			Agencies:        regulationFields.Strings(r, "agencies"),
			PublicationDate: dateOf(regulationFields.String(r, "publicationDate")),
			URL:             regulationFields.String(r, "url"),
		})
	}
	return out, nil
}
