// Package search fans one free-text query out to several sources at once and
// merges whatever comes back into a single UnifiedSearchResult.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/civic-radar/backend/internal/dedupe"
	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/models"
)

// Source keys understood by the default orchestrator.
const (
	SourceBills        = "bills"
	SourceFederalBills = "federalBills"
	SourceCourtCases   = "courtCases"
	SourceRegulations  = "regulations"
	SourceLobbying     = "lobbying"
)

const minQueryChars = 2

// Fetcher runs query against one source and returns at most limit records.
type Fetcher func(ctx context.Context, query string, limit int) ([]models.NormalizedRecord, error)

// Source is a named fetcher.
type Source struct {
	Key   string
	Fetch Fetcher
}

// Orchestrator runs unified searches. It keeps no per-request state and is
// safe for concurrent use.
type Orchestrator struct {
	sources  map[string]Fetcher
	defaults []string
	limit    int
	sink     events.Sink
}

// New creates an orchestrator. The order of sources is the default source set
// used when a search names none. limit caps the records kept per source.
func New(sources []Source, limit int, sink events.Sink) *Orchestrator {
	if sink == nil {
		sink = events.Discard
	}
	o := &Orchestrator{
		sources: make(map[string]Fetcher, len(sources)),
		limit:   limit,
		sink:    sink,
	}
	for _, s := range sources {
		if _, dup := o.sources[s.Key]; dup || s.Fetch == nil {
			continue
		}
		o.sources[s.Key] = s.Fetch
		o.defaults = append(o.defaults, s.Key)
	}
	return o
}

// Sources returns the default source keys in order.
func (o *Orchestrator) Sources() []string {
	return append([]string(nil), o.defaults...)
}

type outcome struct {
	records []models.NormalizedRecord
	err     error
}

// Search validates the query and source keys, then calls every requested
// source concurrently. Source failures never fail the search: the source is
// reported with no results and listed in FailedSources. Only invalid input
// returns an error, and it does so before any source is called.
func (o *Orchestrator) Search(ctx context.Context, query string, keys []string) (*models.UnifiedSearchResult, error) {
	query = strings.TrimSpace(query)
	if countNonSpace(query) < minQueryChars {
		return nil, fmt.Errorf("%w: query must contain at least %d non-whitespace characters", models.ErrInvalidInput, minQueryChars)
	}
	requested, err := o.resolve(keys)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcomes := make([]outcome, len(requested))

	var g errgroup.Group
	for i, key := range requested {
		fetch := o.sources[key]
		g.Go(func() error {
			outcomes[i] = o.run(ctx, key, fetch, query)
			return nil
		})
	}
	_ = g.Wait()

	result := &models.UnifiedSearchResult{
		Query:   query,
		Results: make(map[string][]models.NormalizedRecord, len(requested)),
		Counts:  make(map[string]int, len(requested)),
		Status:  models.SearchSucceeded,
	}
	for i, key := range requested {
		out := outcomes[i]
		if out.err != nil {
			o.sink.Emit(ctx, events.Warn("search.source_failed",
				slog.String("source", key),
				slog.Any("error", out.err),
			))
			result.Results[key] = []models.NormalizedRecord{}
			result.Counts[key] = 0
			result.FailedSources = append(result.FailedSources, key)
			continue
		}
		result.Results[key] = out.records
		result.Counts[key] = len(out.records)
		result.TotalResults += len(out.records)
	}
	if len(result.FailedSources) > 0 {
		result.Status = models.SearchPartialFailure
	}

	o.sink.Emit(ctx, events.Info("search.completed",
		slog.String("query", query),
		slog.Int("sources", len(requested)),
		slog.Int("failed", len(result.FailedSources)),
		slog.Int("total", result.TotalResults),
		slog.Duration("elapsed", time.Since(start)),
	))
	return result, nil
}

// run calls one source, turning a panic into an error.
func (o *Orchestrator) run(ctx context.Context, key string, fetch Fetcher, query string) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.sink.Emit(ctx, events.Warn("search.source_panicked",
				slog.String("source", key),
				slog.Any("panic", r),
			))
			out = outcome{err: fmt.Errorf("source %s panicked: %v", key, r)}
		}
	}()

	records, err := fetch(ctx, query, o.limit)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{records: normalize(records, o.limit)}
}

// resolve returns the requested keys in order without duplicates, or the
// defaults when none are given.
func (o *Orchestrator) resolve(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return o.Sources(), nil
	}
	seen := dedupe.NewSet(len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if _, ok := o.sources[k]; !ok {
			return nil, fmt.Errorf("%w: unknown source %q", models.ErrInvalidInput, k)
		}
		seen.Add(k)
	}
	return seen.Keys(), nil
}

// normalize drops records without an id or with a repeated id, fills in nil
// metadata and applies the per-source cap.
func normalize(records []models.NormalizedRecord, limit int) []models.NormalizedRecord {
	out := dedupe.Unique(records, func(r models.NormalizedRecord) string { return r.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		if out[i].Meta == nil {
			out[i].Meta = map[string]any{}
		}
	}
	return out
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
