package markets_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/markets"
	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/relevance"
	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSearcher struct {
	byTerm map[string][]models.MarketCandidate
	fail   map[string]error

	mu    sync.Mutex
	terms []string
}

func (s *stubSearcher) Search(_ context.Context, term string) ([]models.MarketCandidate, error) {
	s.mu.Lock()
	s.terms = append(s.terms, term)
	s.mu.Unlock()
	if err := s.fail[term]; err != nil {
		return nil, err
	}
	return s.byTerm[term], nil
}

type stubLister struct {
	candidates []models.MarketCandidate
	err        error
}

func (s stubLister) List(context.Context) ([]models.MarketCandidate, error) {
	return s.candidates, s.err
}

func candidate(id string, source models.MarketSource, text string) models.MarketCandidate {
	return models.MarketCandidate{
		Market: models.Market{ID: id, Question: text, Source: source},
		Text:   text,
	}
}

func filter() *relevance.Filter {
	return relevance.New(relevance.Keywords{
		Person: []string{"senator", "house", "election", "vote"},
		State:  []string{"governor", "race", "election"},
	})
}

func ids(ms []models.Market) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestTerms(t *testing.T) {
	require.Equal(t, []string{"Susie Lee", "Lee", "Nevada"}, markets.Terms(" Susie  Lee ", "Nevada"))
	require.Equal(t, []string{"Cher"}, markets.Terms("Cher", ""))
	require.Equal(t, []string{"Nevada"}, markets.Terms("Nevada", "nevada"))
}

func TestPolymarketFiltersAndDeduplicates(t *testing.T) {
	poly := &stubSearcher{byTerm: map[string][]models.MarketCandidate{
		"Susie Lee": {
			candidate("polymarket-1", models.SourcePolymarket, "Will Susie Lee win NV-03?"),
		},
		"Lee": {
			candidate("polymarket-1", models.SourcePolymarket, "Will Susie Lee win NV-03?"),
			candidate("polymarket-2", models.SourcePolymarket, "Spike Lee new film box office"),
			candidate("polymarket-3", models.SourcePolymarket, "Lee wins house election"),
		},
		"Nevada": {
			candidate("polymarket-4", models.SourcePolymarket, "Nevada weather forecast"),
			candidate("polymarket-5", models.SourcePolymarket, "Nevada governor race"),
		},
	}}
	svc := markets.NewService(poly, stubLister{}, filter(), nil)

	got, err := svc.Polymarket(context.Background(), "Susie Lee", "Nevada")
	require.NoError(t, err)
	require.Equal(t, []string{"polymarket-1", "polymarket-3", "polymarket-5"}, ids(got))
	require.ElementsMatch(t, []string{"Susie Lee", "Lee", "Nevada"}, poly.terms)
}

func TestPolymarketPartialTermFailure(t *testing.T) {
	rec := &events.Recorder{}
	poly := &stubSearcher{
		byTerm: map[string][]models.MarketCandidate{
			"Lee": {candidate("polymarket-3", models.SourcePolymarket, "Lee wins house election")},
		},
		fail: map[string]error{
			"Susie Lee": errors.New("timeout"),
			"Nevada":    errors.New("timeout"),
		},
	}
	svc := markets.NewService(poly, stubLister{}, filter(), rec)

	got, err := svc.Polymarket(context.Background(), "Susie Lee", "Nevada")
	require.NoError(t, err)
	require.Equal(t, []string{"polymarket-3"}, ids(got))
	require.Len(t, rec.Named("markets.term_failed"), 2)
}

func TestPolymarketEveryTermFails(t *testing.T) {
	unavailable := &upstream.Error{Source: "polymarket", StatusCode: 503, Err: upstream.ErrUnavailable}
	poly := &stubSearcher{fail: map[string]error{"Susie Lee": unavailable, "Lee": unavailable}}
	svc := markets.NewService(poly, stubLister{}, filter(), nil)

	_, err := svc.Polymarket(context.Background(), "Susie Lee", "")
	require.ErrorIs(t, err, upstream.ErrUnavailable)
}

func TestKalshi(t *testing.T) {
	kalshi := stubLister{candidates: []models.MarketCandidate{
		candidate("kalshi-A", models.SourceKalshi, "Nevada governor race 2026"),
		candidate("kalshi-B", models.SourceKalshi, "Fed rate cut in December"),
	}}
	svc := markets.NewService(&stubSearcher{}, kalshi, filter(), nil)

	got, err := svc.Kalshi(context.Background(), "Joe Lombardo", "Nevada")
	require.NoError(t, err)
	require.Equal(t, []string{"kalshi-A"}, ids(got))

	failing := markets.NewService(&stubSearcher{}, stubLister{err: errors.New("down")}, filter(), nil)
	_, err = failing.Kalshi(context.Background(), "Joe Lombardo", "Nevada")
	require.Error(t, err)
}

func TestAllToleratesSourceFailure(t *testing.T) {
	rec := &events.Recorder{}
	poly := &stubSearcher{fail: map[string]error{
		"Joe Lombardo": errors.New("down"),
		"Lombardo":     errors.New("down"),
		"Nevada":       errors.New("down"),
	}}
	kalshi := stubLister{candidates: []models.MarketCandidate{
		candidate("kalshi-A", models.SourceKalshi, "Will Joe Lombardo be re-elected?"),
	}}
	svc := markets.NewService(poly, kalshi, filter(), rec)

	got, err := svc.All(context.Background(), "Joe Lombardo", "Nevada")
	require.NoError(t, err)
	require.Equal(t, []string{"kalshi-A"}, ids(got))

	failed := rec.Named("markets.source_failed")
	require.Len(t, failed, 1)
	source, _ := failed[0].Attr("source")
	require.Equal(t, "polymarket", source.String())
}

func TestAllMergesSources(t *testing.T) {
	poly := &stubSearcher{byTerm: map[string][]models.MarketCandidate{
		"Joe Lombardo": {candidate("polymarket-9", models.SourcePolymarket, "Joe Lombardo approval")},
	}}
	kalshi := stubLister{candidates: []models.MarketCandidate{
		candidate("kalshi-A", models.SourceKalshi, "Will Joe Lombardo be re-elected?"),
	}}

	got, err := markets.NewService(poly, kalshi, filter(), nil).All(context.Background(), "Joe Lombardo", "")
	require.NoError(t, err)
	require.Equal(t, []string{"polymarket-9", "kalshi-A"}, ids(got))
}

func TestRequiresName(t *testing.T) {
	svc := markets.NewService(&stubSearcher{}, stubLister{}, filter(), nil)

	_, err := svc.All(context.Background(), "  ", "Nevada")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Polymarket(context.Background(), "", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Kalshi(context.Background(), "", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}
