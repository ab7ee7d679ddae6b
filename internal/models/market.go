package models

// MarketSource names the prediction market a Market came from.
type MarketSource string

const (
	SourcePolymarket MarketSource = "polymarket"
	SourceKalshi     MarketSource = "kalshi"
)

// Market is a prediction market question. A nil percent means the price is
// unavailable, which is different from zero. Yes and no are priced
// independently and need not sum to 100.
type Market struct {
	ID              string       `json:"id"`
	Question        string       `json:"question"`
	YesPercent      *float64     `json:"yesPercent"`
	NoPercent       *float64     `json:"noPercent"`
	Volume          float64      `json:"volume"`
	VolumeFormatted string       `json:"volumeFormatted"`
	URL             string       `json:"url"`
	Source          MarketSource `json:"source"`
}

// MarketCandidate pairs a market with the concatenated upstream text used for
// relevance matching.
type MarketCandidate struct {
	Market Market
	Text   string
}
