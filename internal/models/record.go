package models

// NormalizedRecord is the canonical shape every source is mapped into.
// ID is derived from an upstream key and never from the clock.
type NormalizedRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
	URL         string         `json:"url"`
	Meta        map[string]any `json:"meta"`
}

// SearchStatus is the terminal state of a unified search fan-out.
type SearchStatus string

const (
	SearchSucceeded      SearchStatus = "succeeded"
	SearchPartialFailure SearchStatus = "partial_failure"
)

// UnifiedSearchResult merges per-source results. Every requested source key is
// present in both Results and Counts, and TotalResults is the sum of Counts.
type UnifiedSearchResult struct {
	Query         string                        `json:"query"`
	Results       map[string][]NormalizedRecord `json:"results"`
	Counts        map[string]int                `json:"counts"`
	TotalResults  int                           `json:"totalResults"`
	Status        SearchStatus                  `json:"status"`
	FailedSources []string                      `json:"failedSources,omitempty"`
}
