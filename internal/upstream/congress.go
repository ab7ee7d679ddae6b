package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceCongress = "congress"

var congressBillFields = FieldMap{
	"originChamber":    {"originChamber", "origin_chamber"},
	"latestAction":     {"latestAction.text", "latest_action.text"},
	"latestActionDate": {"latestAction.actionDate", "latest_action.action_date", "updateDate"},
}

// congressBillPaths maps API bill types to the congress.gov URL segment.
var congressBillPaths = map[string]string{
	"HR":      "house-bill",
	"S":       "senate-bill",
	"HRES":    "house-resolution",
	"SRES":    "senate-resolution",
	"HJRES":   "house-joint-resolution",
	"SJRES":   "senate-joint-resolution",
	"HCONRES": "house-concurrent-resolution",
	"SCONRES": "senate-concurrent-resolution",
}

// FederalBillQuery filters Congress.gov bills.
type FederalBillQuery struct {
	Search   string
	Congress int
	Limit    int
}

// Congress reads federal bills from the Congress.gov API.
type Congress struct {
	c      *Client
	base   string
	apiKey string
}

// NewCongress creates the adapter. An empty apiKey makes every call fail with
// ErrNotConfigured.
func NewCongress(c *Client, baseURL, apiKey string) *Congress {
	return &Congress{c: c, base: baseURL, apiKey: apiKey}
}

// SearchBills lists recently updated bills. The API has no text search, so a
// non-empty Search keeps only bills whose number or title contains it.
func (g *Congress) SearchBills(ctx context.Context, q FederalBillQuery) ([]models.FederalBill, error) {
	if g.apiKey == "" {
		return nil, NotConfigured(sourceCongress)
	}

	limit := clamp(q.Limit, 20, 250)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	params := url.Values{}
	params.Set("api_key", g.apiKey)
	params.Set("format", "json")
	params.Set("sort", "updateDate desc")
	if search != "" {
		params.Set("limit", "250")
	} else {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "bill"
	if q.Congress > 0 {
		path = fmt.Sprintf("bill/%d", q.Congress)
	}

	res, err := g.c.GetJSON(ctx, Request{
		Source: sourceCongress,
		URL:    endpoint(g.base, path),
		Query:  params,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.FederalBill, 0, limit)
	for _, r := range res.Get("bills").Array() {
		bill := mapCongressBill(r)
		if search != "" && !matchesFederalBill(bill, search) {
			continue
		}
		out = append(out, bill)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func matchesFederalBill(b models.FederalBill, search string) bool {
	return strings.Contains(strings.ToLower(b.Title), search) ||
		strings.Contains(strings.ToLower(b.BillNumber), search)
}

func mapCongressBill(r gjson.Result) models.FederalBill {
	congress := int(r.Get("congress").Int())
	billType := strings.ToUpper(r.Get("type").String())
	number := r.Get("number").String()

	bill := models.FederalBill{
		ID:               fmt.Sprintf("congress-%d-%s-%s", congress, strings.ToLower(billType), number),
		BillNumber:       strings.TrimSpace(billType + " " + number),
		Title:            r.Get("title").String(),
		Congress:         congress,
		OriginChamber:    congressBillFields.String(r, "originChamber"),
		LatestAction:     congressBillFields.String(r, "latestAction"),
		LatestActionDate: dateOf(congressBillFields.String(r, "latestActionDate")),
	}
	if segment, ok := congressBillPaths[billType]; ok && congress > 0 && number != "" {
		bill.URL = fmt.Sprintf("https://www.congress.gov/bill/%s-congress/%s/%s", ordinal(congress), segment, number)
	}
	return bill
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
