package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourcePolymarket = "polymarket"

var polymarketMarketFields = FieldMap{
	"volume":        {"volumeNum", "volume"},
	"outcomePrices": {"outcomePrices", "outcome_prices"},
	"description":   {"description", "groupItemTitle"},
}

// Polymarket searches the public Gamma API.
type Polymarket struct {
	c    *Client
	base string
}

// NewPolymarket creates the adapter. It needs no credential.
func NewPolymarket(c *Client, baseURL string) *Polymarket {
	return &Polymarket{c: c, base: baseURL}
}

// Search returns the open markets of every event matching term. Each
// candidate carries the event and market text for relevance matching.
func (p *Polymarket) Search(ctx context.Context, term string) ([]models.MarketCandidate, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("events_status", "active")

	res, err := p.c.GetJSON(ctx, Request{
		Source: sourcePolymarket,
		URL:    endpoint(p.base, "public-search"),
		Query:  params,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.MarketCandidate, 0)
	for _, event := range res.Get("events").Array() {
		slug := event.Get("slug").String()
		eventText := strings.Join([]string{
			event.Get("title").String(),
			event.Get("description").String(),
		}, " ")
		for _, m := range event.Get("markets").Array() {
			if m.Get("closed").Bool() {
				continue
			}
			id := m.Get("id").String()
			if id == "" {
				continue
			}
			out = append(out, models.MarketCandidate{
				Market: mapPolymarketMarket(m, id, slug),
				Text: strings.Join([]string{
					m.Get("question").String(),
					polymarketMarketFields.String(m, "description"),
					eventText,
				}, " "),
			})
		}
	}
	return out, nil
}

func mapPolymarketMarket(m gjson.Result, id, eventSlug string) models.Market {
	volume, _ := polymarketMarketFields.Float(m, "volume")
	market := models.Market{
		ID:              "polymarket-" + id,
		Question:        m.Get("question").String(),
		Volume:          volume,
		VolumeFormatted: FormatVolume(volume),
		Source:          models.SourcePolymarket,
	}

	prices := outcomePrices(polymarketMarketFields.Get(m, "outcomePrices"))
	if len(prices) > 0 && prices[0] != nil {
		market.YesPercent = percent(*prices[0] * 100)
	}
	if len(prices) > 1 && prices[1] != nil {
		market.NoPercent = percent(*prices[1] * 100)
	}

	switch {
	case eventSlug != "":
		market.URL = "https://polymarket.com/event/" + eventSlug
	case m.Get("slug").String() != "":
		market.URL = "https://polymarket.com/market/" + m.Get("slug").String()
	}
	return market
}

// outcomePrices accepts both a JSON array and a string holding a JSON array.
func outcomePrices(v gjson.Result) []*float64 {
	if v.Type == gjson.String {
		v = gjson.Parse(v.Str)
	}
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]*float64, len(items))
	for i, item := range items {
		if f, ok := number(item); ok {
			out[i] = &f
		}
	}
	return out
}
