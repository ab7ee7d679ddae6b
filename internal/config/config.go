package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Endpoint is the base URL and optional credential of one upstream API.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

// Upstreams holds every external API the proxies call.
type Upstreams struct {
	OpenStates      Endpoint
	Congress        Endpoint
	Civic           Endpoint
	CourtListener   Endpoint
	FederalRegister Endpoint
	LDA             Endpoint
	Polymarket      Endpoint
	Kalshi          Endpoint
	GoogleNews      Endpoint
	YouTubeFeeds    Endpoint
	GIS             Endpoint
}

// Events configures the optional Kafka diagnostic stream.
type Events struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// API describes HTTP-layer configuration.
type API struct {
	BindAddr            string
	AllowedOrigins      []string
	UpstreamTimeout     time.Duration
	FeedTimeout         time.Duration
	SearchLimit         int
	DefaultJurisdiction string
	CivicDataFile       string
	Upstreams           Upstreams
	Events              Events
}

const maxSearchLimit = 50

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		BindAddr:            getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		AllowedOrigins:      splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		UpstreamTimeout:     getDuration("UPSTREAM_TIMEOUT", "10s"),
		FeedTimeout:         getDuration("FEED_TIMEOUT", "8s"),
		SearchLimit:         getInt("SEARCH_RESULT_LIMIT", 10),
		DefaultJurisdiction: getEnv("DEFAULT_JURISDICTION", "Nevada"),
		CivicDataFile:       getEnv("CIVIC_DATA_FILE", ""),
		Upstreams: Upstreams{
			OpenStates: Endpoint{
				BaseURL: getEnv("OPENSTATES_BASE_URL", "https://v3.openstates.org"),
				APIKey:  getEnv("OPENSTATES_API_KEY", ""),
			},
			Congress: Endpoint{
				BaseURL: getEnv("CONGRESS_BASE_URL", "https://api.congress.gov/v3"),
				APIKey:  getEnv("CONGRESS_API_KEY", ""),
			},
			Civic: Endpoint{
				BaseURL: getEnv("GOOGLE_CIVIC_BASE_URL", "https://www.googleapis.com/civicinfo/v2"),
				APIKey:  getEnv("GOOGLE_CIVIC_API_KEY", ""),
			},
			CourtListener: Endpoint{
				BaseURL: getEnv("COURTLISTENER_BASE_URL", "https://www.courtlistener.com/api/rest/v4"),
				APIKey:  getEnv("COURTLISTENER_API_KEY", ""),
			},
			FederalRegister: Endpoint{
				BaseURL: getEnv("FEDERAL_REGISTER_BASE_URL", "https://www.federalregister.gov/api/v1"),
			},
			LDA: Endpoint{
				BaseURL: getEnv("LDA_BASE_URL", "https://lda.senate.gov/api/v1"),
				APIKey:  getEnv("LDA_API_KEY", ""),
			},
			Polymarket: Endpoint{
				BaseURL: getEnv("POLYMARKET_BASE_URL", "https://gamma-api.polymarket.com"),
			},
			Kalshi: Endpoint{
				BaseURL: getEnv("KALSHI_BASE_URL", "https://api.elections.kalshi.com/trade-api/v2"),
			},
			GoogleNews: Endpoint{
				BaseURL: getEnv("GOOGLE_NEWS_BASE_URL", "https://news.google.com/rss"),
			},
			YouTubeFeeds: Endpoint{
				BaseURL: getEnv("YOUTUBE_FEED_BASE_URL", "https://www.youtube.com/feeds"),
			},
			GIS: Endpoint{
				BaseURL: getEnv("GIS_BASE_URL", ""),
			},
		},
		Events: Events{
			KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "civic_events"),
		},
	}

	if len(c.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS must contain at least one origin")
	}
	if c.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.FeedTimeout <= 0 {
		return nil, fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.SearchLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_RESULT_LIMIT must be positive")
	}
	if c.SearchLimit > maxSearchLimit {
		return nil, fmt.Errorf("SEARCH_RESULT_LIMIT cannot exceed %d", maxSearchLimit)
	}
	if len(c.Events.KafkaBrokers) > 0 && c.Events.KafkaTopic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return c, nil
}

// AllowsAnyOrigin reports whether CORS is configured with the wildcard.
func (c *API) AllowsAnyOrigin() bool {
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
