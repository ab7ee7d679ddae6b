package search_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var defaultKeys = []string{
	search.SourceBills,
	search.SourceFederalBills,
	search.SourceCourtCases,
	search.SourceRegulations,
	search.SourceLobbying,
}

func records(prefix string, n int) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.NormalizedRecord{
			ID:    prefix + "-" + string(rune('a'+i)),
			Title: prefix,
		})
	}
	return out
}

func returning(recs []models.NormalizedRecord) search.Fetcher {
	return func(context.Context, string, int) ([]models.NormalizedRecord, error) {
		return recs, nil
	}
}

func failing(err error) search.Fetcher {
	return func(context.Context, string, int) ([]models.NormalizedRecord, error) {
		return nil, err
	}
}

func fiveSources(override map[string]search.Fetcher) []search.Source {
	out := make([]search.Source, 0, len(defaultKeys))
	for i, key := range defaultKeys {
		fetch := returning(records(key, i+1))
		if f, ok := override[key]; ok {
			fetch = f
		}
		out = append(out, search.Source{Key: key, Fetch: fetch})
	}
	return out
}

func requireInvariants(t *testing.T, res *models.UnifiedSearchResult, requested []string) {
	t.Helper()

	sum := 0
	for _, c := range res.Counts {
		require.GreaterOrEqual(t, c, 0)
		sum += c
	}
	require.Equal(t, sum, res.TotalResults)

	want := append([]string(nil), requested...)
	sort.Strings(want)
	resultKeys := make([]string, 0, len(res.Results))
	for k, v := range res.Results {
		require.NotNil(t, v, k)
		require.Len(t, v, res.Counts[k], k)
		resultKeys = append(resultKeys, k)
	}
	countKeys := make([]string, 0, len(res.Counts))
	for k := range res.Counts {
		countKeys = append(countKeys, k)
	}
	sort.Strings(resultKeys)
	sort.Strings(countKeys)
	require.Equal(t, want, resultKeys)
	require.Equal(t, want, countKeys)
}

func TestSearchAllSourcesSucceed(t *testing.T) {
	o := search.New(fiveSources(nil), 10, nil)

	res, err := o.Search(context.Background(), "  water rights ", nil)
	require.NoError(t, err)
	requireInvariants(t, res, defaultKeys)

	require.Equal(t, "water rights", res.Query)
	require.Equal(t, models.SearchSucceeded, res.Status)
	require.Empty(t, res.FailedSources)
	require.Equal(t, 1+2+3+4+5, res.TotalResults)
	require.Equal(t, 3, res.Counts[search.SourceCourtCases])
}

func TestSearchToleratesFailingSource(t *testing.T) {
	rec := &events.Recorder{}
	o := search.New(fiveSources(map[string]search.Fetcher{
		search.SourceCourtCases: failing(errors.New("courtlistener: upstream returned status 503")),
	}), 10, rec)

	res, err := o.Search(context.Background(), "water rights", nil)
	require.NoError(t, err)
	requireInvariants(t, res, defaultKeys)

	require.Equal(t, models.SearchPartialFailure, res.Status)
	require.Equal(t, []string{search.SourceCourtCases}, res.FailedSources)
	require.Empty(t, res.Results[search.SourceCourtCases])
	require.Zero(t, res.Counts[search.SourceCourtCases])
	require.Equal(t, 1, res.Counts[search.SourceBills])
	require.Equal(t, 5, res.Counts[search.SourceLobbying])

	failed := rec.Named("search.source_failed")
	require.Len(t, failed, 1)
	source, _ := failed[0].Attr("source")
	require.Equal(t, search.SourceCourtCases, source.String())
}

func TestSearchRecoversFromPanic(t *testing.T) {
	rec := &events.Recorder{}
	o := search.New(fiveSources(map[string]search.Fetcher{
		search.SourceRegulations: func(context.Context, string, int) ([]models.NormalizedRecord, error) {
			var m map[string]int
			m["boom"]++
			return nil, nil
		},
	}), 10, rec)

	res, err := o.Search(context.Background(), "water rights", nil)
	require.NoError(t, err)
	requireInvariants(t, res, defaultKeys)
	require.Equal(t, []string{search.SourceRegulations}, res.FailedSources)
	require.Len(t, rec.Named("search.source_panicked"), 1)
}

func TestSearchEverySourceFails(t *testing.T) {
	boom := errors.New("down")
	override := map[string]search.Fetcher{}
	for _, key := range defaultKeys {
		override[key] = failing(boom)
	}

	res, err := search.New(fiveSources(override), 10, nil).Search(context.Background(), "water", nil)
	require.NoError(t, err)
	requireInvariants(t, res, defaultKeys)
	require.Zero(t, res.TotalResults)
	require.Equal(t, models.SearchPartialFailure, res.Status)
	require.Equal(t, defaultKeys, res.FailedSources)
}

func TestSearchRejectsShortQueryBeforeFetching(t *testing.T) {
	var calls atomic.Int32
	counting := func(context.Context, string, int) ([]models.NormalizedRecord, error) {
		calls.Add(1)
		return nil, nil
	}
	o := search.New([]search.Source{{Key: search.SourceBills, Fetch: counting}}, 10, nil)

	for _, q := range []string{"", "   ", "a", "  a\t", "a "} {
		_, err := o.Search(context.Background(), q, nil)
		require.ErrorIs(t, err, models.ErrInvalidInput, "%q", q)
	}
	_, err := o.Search(context.Background(), "a b", nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestSearchSourceSelection(t *testing.T) {
	o := search.New(fiveSources(nil), 10, nil)

	res, err := o.Search(context.Background(), "water", []string{"lobbying", " bills ", "lobbying"})
	require.NoError(t, err)
	requireInvariants(t, res, []string{search.SourceLobbying, search.SourceBills})
	require.Equal(t, 6, res.TotalResults)

	_, err = o.Search(context.Background(), "water", []string{"bills", "tweets"})
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSearchIssuesCallsConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(len(defaultKeys))
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	barrier := func(ctx context.Context, _ string, _ int) ([]models.NormalizedRecord, error) {
		started.Done()
		select {
		case <-release:
			return records("x", 1), nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("sources were called one at a time")
		}
	}
	override := map[string]search.Fetcher{}
	for _, key := range defaultKeys {
		override[key] = barrier
	}

	res, err := search.New(fiveSources(override), 10, nil).Search(context.Background(), "water", nil)
	require.NoError(t, err)
	require.Equal(t, models.SearchSucceeded, res.Status)
	require.Equal(t, len(defaultKeys), res.TotalResults)
}

func TestSearchNormalizesRecords(t *testing.T) {
	recs := []models.NormalizedRecord{
		{ID: "a", Title: "first"},
		{ID: "a", Title: "duplicate"},
		{ID: "", Title: "no id"},
		{ID: "b"},
		{ID: "c"},
		{ID: "d"},
	}
	o := search.New([]search.Source{{Key: search.SourceBills, Fetch: returning(recs)}}, 3, nil)

	res, err := o.Search(context.Background(), "water", nil)
	require.NoError(t, err)

	got := res.Results[search.SourceBills]
	require.Len(t, got, 3)
	require.Equal(t, "first", got[0].Title)
	require.Equal(t, "b", got[1].ID)
	require.Equal(t, "c", got[2].ID)
	for _, r := range got {
		require.NotNil(t, r.Meta)
	}
}

func TestSearchPassesQueryAndLimit(t *testing.T) {
	var gotQuery string
	var gotLimit int
	fetch := func(_ context.Context, q string, limit int) ([]models.NormalizedRecord, error) {
		gotQuery, gotLimit = q, limit
		return nil, nil
	}

	res, err := search.New([]search.Source{{Key: search.SourceBills, Fetch: fetch}}, 7, nil).
		Search(context.Background(), " water ", nil)
	require.NoError(t, err)
	require.Equal(t, "water", gotQuery)
	require.Equal(t, 7, gotLimit)
	require.Equal(t, []models.NormalizedRecord{}, res.Results[search.SourceBills])
}
