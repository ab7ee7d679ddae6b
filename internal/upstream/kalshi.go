package upstream

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceKalshi = "kalshi"

// Kalshi prices are in cents; the *_dollars variants carry the same value as
// a decimal string in dollars.
var kalshiMarketFields = FieldMap{
	"lastPrice": {"last_price", "last_price_dollars"},
	"yesBid":    {"yes_bid", "yes_bid_dollars"},
	"yesAsk":    {"yes_ask", "yes_ask_dollars"},
	"noBid":     {"no_bid", "no_bid_dollars"},
	"noAsk":     {"no_ask", "no_ask_dollars"},
	"volume":    {"volume", "volume_fp"},
	"subtitle":  {"yes_sub_title", "subtitle"},
}

// Kalshi lists open event markets. Kalshi has no full-text search, so callers
// filter the listing themselves.
type Kalshi struct {
	c    *Client
	base string
}

// NewKalshi creates the adapter. It needs no credential.
func NewKalshi(c *Client, baseURL string) *Kalshi {
	return &Kalshi{c: c, base: baseURL}
}

const (
	kalshiPageSize = 200
	kalshiMaxPages = 5
)

// List returns the open markets with their event text. It follows the
// response cursor for at most kalshiMaxPages pages of events.
func (k *Kalshi) List(ctx context.Context) ([]models.MarketCandidate, error) {
	out := make([]models.MarketCandidate, 0)
	cursor := ""
	for page := 0; page < kalshiMaxPages; page++ {
		params := url.Values{}
		params.Set("status", "open")
		params.Set("with_nested_markets", "true")
		params.Set("limit", strconv.Itoa(kalshiPageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		res, err := k.c.GetJSON(ctx, Request{
			Source: sourceKalshi,
			URL:    endpoint(k.base, "events"),
			Query:  params,
		})
		if err != nil {
			return nil, err
		}

		events := res.Get("events").Array()
		for _, event := range events {
			out = append(out, kalshiCandidates(event)...)
		}

		cursor = res.Get("cursor").String()
		if cursor == "" || len(events) == 0 {
			break
		}
	}
	return out, nil
}

func kalshiCandidates(event gjson.Result) []models.MarketCandidate {
	eventTicker := event.Get("event_ticker").String()
	eventText := strings.Join([]string{
		event.Get("title").String(),
		event.Get("sub_title").String(),
		event.Get("category").String(),
	}, " ")

	var out []models.MarketCandidate
	for _, m := range event.Get("markets").Array() {
		ticker := m.Get("ticker").String()
		if ticker == "" {
			continue
		}
		market := mapKalshiMarket(m, ticker, eventTicker)
		out = append(out, models.MarketCandidate{
			Market: market,
			Text: strings.Join([]string{
				market.Question,
				kalshiMarketFields.String(m, "subtitle"),
				eventText,
			}, " "),
		})
	}
	return out
}

func mapKalshiMarket(m gjson.Result, ticker, eventTicker string) models.Market {
	question := m.Get("title").String()
	if question == "" {
		question = ticker
	}
	// Kalshi volume counts contracts; it is still shown with the dollar format
	// used for every market.
	volume, _ := kalshiMarketFields.Float(m, "volume")

	market := models.Market{
		ID:              "kalshi-" + ticker,
		Question:        question,
		Volume:          volume,
		VolumeFormatted: FormatVolume(volume),
		Source:          models.SourceKalshi,
	}
	if eventTicker == "" {
		eventTicker = m.Get("event_ticker").String()
	}
	if eventTicker != "" {
		market.URL = "https://kalshi.com/markets/" + strings.ToLower(eventTicker)
	}

	yes, ok := kalshiCents(m, "lastPrice")
	if !ok {
		yes, ok = kalshiMidpoint(m, "yesBid", "yesAsk")
	}
	if ok {
		market.YesPercent = percent(yes)
	}

	if no, ok := kalshiMidpoint(m, "noBid", "noAsk"); ok {
		market.NoPercent = percent(no)
	} else if market.YesPercent != nil {
		market.NoPercent = percent(100 - *market.YesPercent)
	}
	return market
}

// kalshiCents reads a positive price in cents. Zero means no trade.
func kalshiCents(m gjson.Result, field string) (float64, bool) {
	paths := kalshiMarketFields[field]
	for _, path := range paths {
		v, ok := number(m.Get(path))
		if !ok {
			continue
		}
		if strings.HasSuffix(path, "_dollars") {
			v *= 100
		}
		if v <= 0 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func kalshiMidpoint(m gjson.Result, bidField, askField string) (float64, bool) {
	bid, bidOK := kalshiCents(m, bidField)
	ask, askOK := kalshiCents(m, askField)
	switch {
	case bidOK && askOK:
		return (bid + ask) / 2, true
	case askOK:
		return ask, true
	case bidOK:
		return bid, true
	default:
		return 0, false
	}
}
