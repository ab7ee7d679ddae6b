// Package news searches headlines about a politician.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/relevance"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Searcher runs one news search query, such as a Google News RSS search.
type Searcher interface {
	News(ctx context.Context, query string) ([]models.Article, error)
}

// Service runs relevance-filtered news searches.
type Service struct {
	feed   Searcher
	filter *relevance.Filter
	sink   events.Sink
}

// NewService creates a service. A nil sink discards events.
func NewService(feed Searcher, filter *relevance.Filter, sink events.Sink) *Service {
	if sink == nil {
		sink = events.Discard
	}
	return &Service{feed: feed, filter: filter, sink: sink}
}

// Queries returns the feed queries for a politician: the quoted name
// qualified by state, then the quoted name alone.
func Queries(name, state string) []string {
	name = strings.Join(strings.Fields(name), " ")
	state = strings.TrimSpace(state)
	quoted := `"` + name + `"`
	if state == "" {
		return []string{quoted}
	}
	return []string{quoted + " " + state, quoted}
}

// Search returns up to limit relevant articles, each at most once. It fails
// only when every query failed.
func (s *Service) Search(ctx context.Context, name, state string, limit int) ([]models.Article, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: politicianName is required", models.ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	queries := Queries(name, state)
	results := make([][]models.Article, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			results[i], errs[i] = s.feed.News(ctx, q)
			if errs[i] != nil {
				s.sink.Emit(ctx, events.Warn("news.query_failed",
					slog.String("query", q),
					slog.Any("error", errs[i]),
				))
			}
			return nil
		})
	}
	_ = g.Wait()

	var articles []models.Article
	failed := 0
	for i := range queries {
		if errs[i] != nil {
			failed++
			continue
		}
		articles = append(articles, results[i]...)
	}
	if failed == len(queries) {
		return nil, fmt.Errorf("every news query failed: %w", errors.Join(errs...))
	}

	kept := relevance.Select(s.filter, name, state, articles, func(a models.Article) (string, string) {
		return a.ID, a.Title + " " + a.Description
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}

	s.sink.Emit(ctx, events.Debug("news.search_completed",
		slog.String("name", name),
		slog.Int("candidates", len(articles)),
		slog.Int("kept", len(kept)),
	))
	return kept, nil
}
