// Package markets finds prediction markets about a politician across
// Polymarket and Kalshi.
package markets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/civic-radar/backend/internal/dedupe"
	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/relevance"
)

// Searcher is a market source with full-text search, such as Polymarket.
type Searcher interface {
	Search(ctx context.Context, term string) ([]models.MarketCandidate, error)
}

// Lister is a market source that can only list open markets, such as Kalshi.
type Lister interface {
	List(ctx context.Context) ([]models.MarketCandidate, error)
}

// Service runs relevance-filtered market searches.
type Service struct {
	polymarket Searcher
	kalshi     Lister
	filter     *relevance.Filter
	sink       events.Sink
}

// NewService creates a service. A nil sink discards events.
func NewService(polymarket Searcher, kalshi Lister, filter *relevance.Filter, sink events.Sink) *Service {
	if sink == nil {
		sink = events.Discard
	}
	return &Service{polymarket: polymarket, kalshi: kalshi, filter: filter, sink: sink}
}

// Terms returns the search terms for a politician: the full name, the last
// name and the state, without repeats.
func Terms(name, state string) []string {
	set := dedupe.NewSet(3)
	var out []string
	add := func(term string) {
		term = strings.Join(strings.Fields(term), " ")
		if set.Add(strings.ToLower(term)) {
			out = append(out, term)
		}
	}

	add(name)
	if parts := strings.Fields(name); len(parts) > 1 {
		add(parts[len(parts)-1])
	}
	add(state)
	return out
}

// Polymarket searches Polymarket once per term. It fails only when every
// term failed.
func (s *Service) Polymarket(ctx context.Context, name, state string) ([]models.Market, error) {
	if err := validate(name); err != nil {
		return nil, err
	}
	candidates, err := s.searchTerms(ctx, name, state)
	if err != nil {
		return nil, err
	}
	return s.relevant(name, state, candidates), nil
}

// Kalshi lists open Kalshi markets and keeps the relevant ones.
func (s *Service) Kalshi(ctx context.Context, name, state string) ([]models.Market, error) {
	if err := validate(name); err != nil {
		return nil, err
	}
	candidates, err := s.kalshi.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.relevant(name, state, candidates), nil
}

// All queries both sources concurrently. Source failures are reported as
// events and never fail the call.
func (s *Service) All(ctx context.Context, name, state string) ([]models.Market, error) {
	if err := validate(name); err != nil {
		return nil, err
	}

	var poly, kalshi []models.MarketCandidate
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if poly, err = s.searchTerms(ctx, name, state); err != nil {
			s.sourceFailed(ctx, models.SourcePolymarket, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if kalshi, err = s.kalshi.List(ctx); err != nil {
			s.sourceFailed(ctx, models.SourceKalshi, err)
		}
		return nil
	})
	_ = g.Wait()

	candidates := make([]models.MarketCandidate, 0, len(poly)+len(kalshi))
	candidates = append(candidates, poly...)
	candidates = append(candidates, kalshi...)
	return s.relevant(name, state, candidates), nil
}

// searchTerms runs every term concurrently and concatenates the results in
// term order.
func (s *Service) searchTerms(ctx context.Context, name, state string) ([]models.MarketCandidate, error) {
	terms := Terms(name, state)
	results := make([][]models.MarketCandidate, len(terms))
	errs := make([]error, len(terms))

	var g errgroup.Group
	for i, term := range terms {
		g.Go(func() error {
			results[i], errs[i] = s.polymarket.Search(ctx, term)
			if errs[i] != nil {
				s.sink.Emit(ctx, events.Warn("markets.term_failed",
					slog.String("source", string(models.SourcePolymarket)),
					slog.String("term", term),
					slog.Any("error", errs[i]),
				))
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []models.MarketCandidate
	failed := 0
	for i := range terms {
		if errs[i] != nil {
			failed++
			continue
		}
		out = append(out, results[i]...)
	}
	if failed == len(terms) {
		return nil, fmt.Errorf("every polymarket search failed: %w", errors.Join(errs...))
	}
	return out, nil
}

func (s *Service) relevant(name, state string, candidates []models.MarketCandidate) []models.Market {
	kept := relevance.Select(s.filter, name, state, candidates, func(c models.MarketCandidate) (string, string) {
		return c.Market.ID, c.Text
	})
	out := make([]models.Market, 0, len(kept))
	for _, c := range kept {
		out = append(out, c.Market)
	}
	return out
}

func (s *Service) sourceFailed(ctx context.Context, source models.MarketSource, err error) {
	s.sink.Emit(ctx, events.Warn("markets.source_failed",
		slog.String("source", string(source)),
		slog.Any("error", err),
	))
}

func validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: politicianName is required", models.ErrInvalidInput)
	}
	return nil
}
