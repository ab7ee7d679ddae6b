package districts_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/civic-radar/backend/internal/config"
	"github.com/DeafMist/civic-radar/backend/internal/districts"
	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/models"
)

type stubFetcher struct {
	counts map[int]int
	fail   map[int]bool

	mu    sync.Mutex
	calls []int
}

func (s *stubFetcher) QueryLayer(_ context.Context, index int, fips string) (models.DistrictFeatureCollection, error) {
	s.mu.Lock()
	s.calls = append(s.calls, index)
	s.mu.Unlock()

	fc := models.NewDistrictFeatureCollection("")
	if s.fail[index] {
		return fc, errors.New("layer " + strconv.Itoa(index) + " unavailable")
	}
	for i := 1; i <= s.counts[index]; i++ {
		fc.Features = append(fc.Features, models.DistrictFeature{
			Type:     "Feature",
			District: strconv.Itoa(i),
			Properties: map[string]any{
				"STATE": fips,
			},
		})
	}
	return fc, nil
}

func civicData() *config.CivicData {
	return &config.CivicData{
		GIS: config.GISLayers{
			CongressionalLayers: []int{0},
			UpperLayers:         []int{1, 2},
			LowerLayers:         []int{2, 1},
		},
		States: map[string]config.StateInfo{
			"NV": {FIPS: "32", Name: "Nevada", Congressional: 4, Upper: 21, Lower: 42, LowerChamber: "assembly"},
			"OR": {FIPS: "41", Name: "Oregon", Congressional: 6, Upper: 30, Lower: 60},
			"ZZ": {FIPS: "99", Name: "Unknown counts"},
		},
	}
}

func TestResolveSwapsByExpectedCount(t *testing.T) {
	tests := []struct {
		name        string
		counts      map[int]int
		wantSwapped bool
	}{
		{name: "layers reversed upstream", counts: map[int]int{0: 4, 1: 42, 2: 21}, wantSwapped: true},
		{name: "layers in expected order", counts: map[int]int{0: 4, 1: 21, 2: 42}, wantSwapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := districts.New(&stubFetcher{counts: tt.counts}, civicData(), nil)

			got, err := r.Resolve(context.Background(), " nv ")
			require.NoError(t, err)
			require.Equal(t, "NV", got.StateAbbr)
			require.Equal(t, tt.wantSwapped, got.Swapped)

			require.Equal(t, models.LayerCongressional, got.Congressional.Layer)
			require.Equal(t, 4, got.Congressional.Len())
			require.Equal(t, models.LayerStateSenate, got.StateSenate.Layer)
			require.Equal(t, 21, got.StateSenate.Len())
			require.Equal(t, models.LayerAssembly, got.StateHouse.Layer)
			require.Equal(t, 42, got.StateHouse.Len())
			require.Equal(t, &models.DistrictCounts{Congressional: 4, Upper: 21, Lower: 42}, got.Expected)
		})
	}
}

func TestResolveFallsBackThroughCandidates(t *testing.T) {
	rec := &events.Recorder{}
	fetcher := &stubFetcher{
		counts: map[int]int{0: 6, 2: 30},
		fail:   map[int]bool{1: true},
	}
	r := districts.New(fetcher, civicData(), rec)

	got, err := r.Resolve(context.Background(), "OR")
	require.NoError(t, err)

	require.Equal(t, 2, got.StateSenate.LayerIndex)
	require.Equal(t, 30, got.StateSenate.Len())
	require.Equal(t, models.LayerStateHouse, got.StateHouse.Layer)
	require.False(t, got.Swapped)

	require.NotEmpty(t, rec.Named("districts.layer_failed"))
	fallback := rec.Named("districts.layer_fallback")
	require.Len(t, fallback, 1)
	role, ok := fallback[0].Attr("role")
	require.True(t, ok)
	require.Equal(t, "upper", role.String())
}

func TestResolveUnresolvedRoleIsEmpty(t *testing.T) {
	rec := &events.Recorder{}
	fetcher := &stubFetcher{
		counts: map[int]int{0: 4, 2: 0},
		fail:   map[int]bool{1: true},
	}
	r := districts.New(fetcher, civicData(), rec)

	got, err := r.Resolve(context.Background(), "NV")
	require.NoError(t, err)
	require.Equal(t, 4, got.Congressional.Len())
	require.Zero(t, got.StateSenate.Len())
	require.Zero(t, got.StateHouse.Len())
	require.Equal(t, -1, got.StateSenate.LayerIndex)
	require.NotNil(t, got.StateSenate.Features)
	require.False(t, got.Swapped)
	require.Len(t, rec.Named("districts.role_unresolved"), 2)
}

func TestResolveCongressionalFailureIsIndependent(t *testing.T) {
	fetcher := &stubFetcher{
		counts: map[int]int{1: 21, 2: 42},
		fail:   map[int]bool{0: true},
	}

	got, err := districts.New(fetcher, civicData(), nil).Resolve(context.Background(), "NV")
	require.NoError(t, err)
	require.Zero(t, got.Congressional.Len())
	require.Equal(t, 21, got.StateSenate.Len())
	require.Equal(t, 42, got.StateHouse.Len())
}

func TestResolveUnknownCountsUsesFewerDistricts(t *testing.T) {
	tests := []struct {
		name        string
		counts      map[int]int
		wantSwapped bool
		wantUpper   int
		wantLower   int
	}{
		{name: "lower role has fewer", counts: map[int]int{1: 80, 2: 40}, wantSwapped: true, wantUpper: 40, wantLower: 80},
		{name: "upper role has fewer", counts: map[int]int{1: 40, 2: 80}, wantSwapped: false, wantUpper: 40, wantLower: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := districts.New(&stubFetcher{counts: tt.counts}, civicData(), nil).Resolve(context.Background(), "ZZ")
			require.NoError(t, err)
			require.Equal(t, tt.wantSwapped, got.Swapped)
			require.Equal(t, tt.wantUpper, got.StateSenate.Len())
			require.Equal(t, tt.wantLower, got.StateHouse.Len())
			require.Nil(t, got.Expected)
		})
	}
}

func TestResolveSameLayerForBothRoles(t *testing.T) {
	// Only layer 2 has data, so both roles end up on it after fallback.
	got, err := districts.New(&stubFetcher{counts: map[int]int{2: 40}}, civicData(), nil).Resolve(context.Background(), "ZZ")
	require.NoError(t, err)
	require.False(t, got.Swapped)
	require.Equal(t, 40, got.StateSenate.Len())
	require.Equal(t, 40, got.StateHouse.Len())
}

func TestResolveUnknownState(t *testing.T) {
	fetcher := &stubFetcher{}

	_, err := districts.New(fetcher, civicData(), nil).Resolve(context.Background(), "QQ")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Empty(t, fetcher.calls)
}
