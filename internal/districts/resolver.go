// Package districts fetches congressional and state legislative district
// boundaries for a state and works out which GIS layer holds which chamber.
package districts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/civic-radar/backend/internal/config"
	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/models"
)

// LayerFetcher queries one GIS layer for the features of a state.
type LayerFetcher interface {
	QueryLayer(ctx context.Context, index int, stateFIPS string) (models.DistrictFeatureCollection, error)
}

type role string

const (
	roleCongressional role = "congressional"
	roleUpper         role = "upper"
	roleLower         role = "lower"
)

// Resolver fetches the three district layers of a state. The upstream layer
// indices of the two legislative chambers are not reliable, so each role
// walks its own ordered candidate list and the results are reassigned by
// feature count afterwards.
type Resolver struct {
	fetcher LayerFetcher
	data    *config.CivicData
	sink    events.Sink
}

// New creates a resolver. A nil sink discards events.
func New(fetcher LayerFetcher, data *config.CivicData, sink events.Sink) *Resolver {
	if sink == nil {
		sink = events.Discard
	}
	return &Resolver{fetcher: fetcher, data: data, sink: sink}
}

// Resolve returns the district layers of the state with the given postal
// abbreviation. A role whose candidates all fail comes back empty; only an
// unknown state is an error.
func (r *Resolver) Resolve(ctx context.Context, stateAbbr string) (*models.StateDistricts, error) {
	abbr := strings.ToUpper(strings.TrimSpace(stateAbbr))
	info, ok := r.data.State(abbr)
	if !ok {
		return nil, fmt.Errorf("%w: unknown state %q", models.ErrInvalidInput, stateAbbr)
	}

	var congressional, upper, lower models.DistrictFeatureCollection
	var g errgroup.Group
	g.Go(func() error {
		congressional = r.fetchRole(ctx, abbr, info.FIPS, roleCongressional, r.data.GIS.CongressionalLayers)
		return nil
	})
	g.Go(func() error {
		upper = r.fetchRole(ctx, abbr, info.FIPS, roleUpper, r.data.GIS.UpperLayers)
		return nil
	})
	g.Go(func() error {
		lower = r.fetchRole(ctx, abbr, info.FIPS, roleLower, r.data.GIS.LowerLayers)
		return nil
	})
	_ = g.Wait()

	swapped := shouldSwap(upper.Len(), lower.Len(), info)
	if swapped {
		upper, lower = lower, upper
	}

	out := &models.StateDistricts{
		StateAbbr:     abbr,
		Congressional: tag(congressional, models.LayerCongressional),
		StateSenate:   tag(upper, models.LayerStateSenate),
		StateHouse:    tag(lower, lowerLayer(info)),
		Swapped:       swapped,
	}
	if info.HasChamberCounts() {
		out.Expected = &models.DistrictCounts{
			Congressional: info.Congressional,
			Upper:         info.Upper,
			Lower:         info.Lower,
		}
	}

	r.sink.Emit(ctx, events.Debug("districts.resolved",
		slog.String("state", abbr),
		slog.Int("congressional", out.Congressional.Len()),
		slog.Int("upper", out.StateSenate.Len()),
		slog.Int("lower", out.StateHouse.Len()),
		slog.Bool("swapped", swapped),
	))
	return out, nil
}

// fetchRole tries each candidate index in order and keeps the first
// non-empty collection.
func (r *Resolver) fetchRole(ctx context.Context, abbr, fips string, rl role, candidates []int) models.DistrictFeatureCollection {
	for i, index := range candidates {
		fc, err := r.fetcher.QueryLayer(ctx, index, fips)
		if err != nil {
			r.sink.Emit(ctx, events.Warn("districts.layer_failed",
				slog.String("state", abbr),
				slog.String("role", string(rl)),
				slog.Int("layer", index),
				slog.Any("error", err),
			))
			continue
		}
		if fc.Len() == 0 {
			r.sink.Emit(ctx, events.Debug("districts.layer_empty",
				slog.String("state", abbr),
				slog.String("role", string(rl)),
				slog.Int("layer", index),
			))
			continue
		}
		if i > 0 {
			r.sink.Emit(ctx, events.Info("districts.layer_fallback",
				slog.String("state", abbr),
				slog.String("role", string(rl)),
				slog.Int("layer", index),
				slog.Int("attempt", i+1),
			))
		}
		fc.LayerIndex = index
		return fc
	}

	r.sink.Emit(ctx, events.Warn("districts.role_unresolved",
		slog.String("state", abbr),
		slog.String("role", string(rl)),
		slog.Any("candidates", candidates),
	))
	return models.NewDistrictFeatureCollection("")
}

// shouldSwap reports whether the collection fetched for the lower role is
// really the upper chamber. With known counts, the layer closer to the
// expected upper count wins and ties keep the fetched assignment. Without
// them, the layer with fewer districts is the upper chamber.
func shouldSwap(upper, lower int, info config.StateInfo) bool {
	if upper == 0 && lower == 0 {
		return false
	}
	if info.HasChamberCounts() {
		return distance(lower, info.Upper) < distance(upper, info.Upper)
	}
	if upper == 0 || lower == 0 {
		return false
	}
	return lower < upper
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func lowerLayer(info config.StateInfo) models.DistrictLayer {
	if strings.EqualFold(info.LowerChamber, string(models.LayerAssembly)) {
		return models.LayerAssembly
	}
	return models.LayerStateHouse
}

func tag(fc models.DistrictFeatureCollection, layer models.DistrictLayer) models.DistrictFeatureCollection {
	fc.Layer = layer
	if fc.Type == "" {
		fc.Type = "FeatureCollection"
	}
	if fc.Features == nil {
		fc.Features = []models.DistrictFeature{}
	}
	return fc
}
