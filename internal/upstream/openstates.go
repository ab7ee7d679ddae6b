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

const sourceOpenStates = "openstates"

var openStatesBillFields = FieldMap{
	"billNumber":       {"identifier", "bill_id"},
	"session":          {"session", "legislative_session.identifier"},
	"jurisdiction":     {"jurisdiction.name", "jurisdiction"},
	"latestAction":     {"latest_action_description", "latestActionDescription"},
	"latestActionDate": {"latest_action_date", "latestActionDate", "updated_at"},
	"url":              {"openstates_url", "openstatesUrl"},
	"subjects":         {"subject", "subjects"},
}

var openStatesVoteFields = FieldMap{
	"motion":  {"motion_text", "motionText"},
	"date":    {"start_date", "startDate"},
	"chamber": {"organization.classification", "chamber"},
}

var openStatesPersonFields = FieldMap{
	"title":    {"current_role.title", "currentRole.title"},
	"chamber":  {"current_role.org_classification", "currentRole.orgClassification"},
	"district": {"current_role.district", "currentRole.district"},
	"photo":    {"image", "photo_url"},
	"url":      {"openstates_url", "openstatesUrl"},
}

var openStatesCommitteeFields = FieldMap{
	"chamber":  {"chamber", "parent.classification"},
	"parentID": {"parent_id", "parentId"},
}

// BillQuery filters the OpenStates bills endpoint.
type BillQuery struct {
	Jurisdiction string
	Session      string
	Search       string
	PerPage      int
}

// PeopleQuery filters the OpenStates people endpoint.
type PeopleQuery struct {
	Jurisdiction string
	Name         string
	PerPage      int
}

// OpenStates reads state bills, votes, legislators and committees.
type OpenStates struct {
	c      *Client
	base   string
	apiKey string
}

// NewOpenStates creates the adapter. An empty apiKey makes every call fail
// with ErrNotConfigured.
func NewOpenStates(c *Client, baseURL, apiKey string) *OpenStates {
	return &OpenStates{c: c, base: baseURL, apiKey: apiKey}
}

// SearchBills returns matching bills and the upstream total.
func (o *OpenStates) SearchBills(ctx context.Context, q BillQuery) ([]models.Bill, int, error) {
	res, err := o.bills(ctx, q, false)
	if err != nil {
		return nil, 0, err
	}

	items := res.Get("results").Array()
	bills := make([]models.Bill, 0, len(items))
	for _, r := range items {
		bills = append(bills, mapOpenStatesBill(r))
	}

	total := int(res.Get("pagination.total_items").Int())
	if total < len(bills) {
		total = len(bills)
	}
	return bills, total, nil
}

// BillVotes returns the roll calls of matching bills, most recent bills first.
func (o *OpenStates) BillVotes(ctx context.Context, q BillQuery) ([]models.Vote, error) {
	res, err := o.bills(ctx, q, true)
	if err != nil {
		return nil, err
	}

	votes := make([]models.Vote, 0)
	for _, b := range res.Get("results").Array() {
		billID := b.Get("id").String()
		billNumber := openStatesBillFields.String(b, "billNumber")
		for _, v := range b.Get("votes").Array() {
			counts := make([]models.VoteCount, 0, 3)
			for _, c := range v.Get("counts").Array() {
				counts = append(counts, models.VoteCount{
					Option: c.Get("option").String(),
					Value:  int(c.Get("value").Int()),
				})
			}
			votes = append(votes, models.Vote{
				ID:         v.Get("id").String(),
				BillID:     billID,
				BillNumber: billNumber,
				Motion:     openStatesVoteFields.String(v, "motion"),
				Date:       dateOf(openStatesVoteFields.String(v, "date")),
				Result:     v.Get("result").String(),
				Chamber:    openStatesVoteFields.String(v, "chamber"),
				Counts:     counts,
			})
		}
	}
	return votes, nil
}

func (o *OpenStates) bills(ctx context.Context, q BillQuery, withVotes bool) (gjson.Result, error) {
	if strings.TrimSpace(q.Jurisdiction) == "" {
		return gjson.Result{}, fmt.Errorf("%w: jurisdiction is required", models.ErrInvalidInput)
	}
	if o.apiKey == "" {
		return gjson.Result{}, NotConfigured(sourceOpenStates)
	}

	params := url.Values{}
	params.Set("jurisdiction", q.Jurisdiction)
	params.Set("sort", "updated_desc")
	params.Set("per_page", strconv.Itoa(clamp(q.PerPage, 10, 20)))
	if q.Session != "" {
		params.Set("session", q.Session)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("q", s)
	}
	if withVotes {
		params.Set("include", "votes")
	}

	return o.c.GetJSON(ctx, Request{
		Source:  sourceOpenStates,
		URL:     endpoint(o.base, "bills"),
		Query:   params,
		Headers: map[string]string{"X-API-KEY": o.apiKey},
	})
}

// Legislators returns current legislators of a jurisdiction.
func (o *OpenStates) Legislators(ctx context.Context, q PeopleQuery) ([]models.Legislator, error) {
	if strings.TrimSpace(q.Jurisdiction) == "" {
		return nil, fmt.Errorf("%w: jurisdiction is required", models.ErrInvalidInput)
	}
	if o.apiKey == "" {
		return nil, NotConfigured(sourceOpenStates)
	}

	params := url.Values{}
	params.Set("jurisdiction", q.Jurisdiction)
	params.Set("per_page", strconv.Itoa(clamp(q.PerPage, 50, 50)))
	if name := strings.TrimSpace(q.Name); name != "" {
		params.Set("name", name)
	}

	res, err := o.c.GetJSON(ctx, Request{
		Source:  sourceOpenStates,
		URL:     endpoint(o.base, "people"),
		Query:   params,
		Headers: map[string]string{"X-API-KEY": o.apiKey},
	})
	if err != nil {
		return nil, err
	}

	items := res.Get("results").Array()
	out := make([]models.Legislator, 0, len(items))
	for _, r := range items {
		out = append(out, models.Legislator{
			ID:       r.Get("id").String(),
			Name:     r.Get("name").String(),
			Party:    r.Get("party").String(),
			Title:    openStatesPersonFields.String(r, "title"),
			Chamber:  openStatesPersonFields.String(r, "chamber"),
			District: openStatesPersonFields.String(r, "district"),
			Email:    r.Get("email").String(),
			PhotoURL: openStatesPersonFields.String(r, "photo"),
			URL:      openStatesPersonFields.String(r, "url"),
		})
	}
	return out, nil
}

// Committees returns the committees of a jurisdiction.
func (o *OpenStates) Committees(ctx context.Context, jurisdiction string, perPage int) ([]models.Committee, error) {
	if strings.TrimSpace(jurisdiction) == "" {
		return nil, fmt.Errorf("%w: jurisdiction is required", models.ErrInvalidInput)
	}
	if o.apiKey == "" {
		return nil, NotConfigured(sourceOpenStates)
	}

	params := url.Values{}
	params.Set("jurisdiction", jurisdiction)
	params.Set("per_page", strconv.Itoa(clamp(perPage, 20, 20)))
	params.Set("include", "memberships")

	res, err := o.c.GetJSON(ctx, Request{
		Source:  sourceOpenStates,
		URL:     endpoint(o.base, "committees"),
		Query:   params,
		Headers: map[string]string{"X-API-KEY": o.apiKey},
	})
	if err != nil {
		return nil, err
	}

	items := res.Get("results").Array()
	out := make([]models.Committee, 0, len(items))
	for _, r := range items {
		out = append(out, models.Committee{
			ID:             r.Get("id").String(),
			Name:           r.Get("name").String(),
			Classification: r.Get("classification").String(),
			Chamber:        openStatesCommitteeFields.String(r, "chamber"),
			ParentID:       openStatesCommitteeFields.String(r, "parentID"),
			MemberCount:    len(r.Get("memberships").Array()),
		})
	}
	return out, nil
}

func mapOpenStatesBill(r gjson.Result) models.Bill {
	return models.Bill{
		ID:               r.Get("id").String(),
		BillNumber:       openStatesBillFields.String(r, "billNumber"),
		Title:            r.Get("title").String(),
		Session:          openStatesBillFields.String(r, "session"),
		Jurisdiction:     openStatesBillFields.String(r, "jurisdiction"),
		Classification:   openStatesBillFields.Strings(r, "classification"),
		Subjects:         openStatesBillFields.Strings(r, "subjects"),
		LatestAction:     openStatesBillFields.String(r, "latestAction"),
		LatestActionDate: dateOf(openStatesBillFields.String(r, "latestActionDate")),
		URL:              openStatesBillFields.String(r, "url"),
	}
}
