package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DeafMist/civic-radar/backend/internal/models"
)

const sourceGIS = "gis"

var fipsPattern = regexp.MustCompile(`^[0-9]{2}$`)

// Server-side generalization to about 50 m in WGS84 degrees.
const (
	gisMaxAllowableOffset = "0.0005"
	gisGeometryPrecision  = "5"
)

// District numbers live under different property names per layer and
// vintage. Congressional layers come first so a combined layer reports the
// congressional number.
var districtFeatureFields = FieldMap{
	"district": {
		"properties.CD119FP",
		"properties.CD118FP",
		"properties.CD116FP",
		"properties.SLDUST",
		"properties.SLDLST",
		"properties.DISTRICT",
		"properties.BASENAME",
		"properties.NAME",
	},
}

// GIS queries a TIGERweb style ArcGIS MapServer for district boundaries.
type GIS struct {
	c    *Client
	base string
}

// NewGIS creates the adapter. baseURL points at the MapServer root.
func NewGIS(c *Client, baseURL string) *GIS {
	return &GIS{c: c, base: baseURL}
}

// QueryLayer returns every feature of layer index within the state with the
// given FIPS code, as GeoJSON in WGS84. The returned collection is untagged;
// the caller decides which chamber it belongs to.
func (g *GIS) QueryLayer(ctx context.Context, index int, stateFIPS string) (models.DistrictFeatureCollection, error) {
	out := models.NewDistrictFeatureCollection("")
	if index < 0 {
		return out, fmt.Errorf("%w: layer index must not be negative", models.ErrInvalidInput)
	}
	if !fipsPattern.MatchString(stateFIPS) {
		return out, fmt.Errorf("%w: state FIPS code must be two digits", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("where", fmt.Sprintf("STATE='%s'", stateFIPS))
	params.Set("outFields", "*")
	params.Set("returnGeometry", "true")
	params.Set("outSR", "4326")
	params.Set("maxAllowableOffset", gisMaxAllowableOffset)
	params.Set("geometryPrecision", gisGeometryPrecision)
	params.Set("f", "geojson")

	res, err := g.c.GetJSON(ctx, Request{
		Source: sourceGIS,
		URL:    endpoint(g.base, strconv.Itoa(index)+"/query"),
		Query:  params,
	})
	if err != nil {
		return out, err
	}

	// ArcGIS reports query failures with a 200 and an error body.
	if e := res.Get("error"); e.Exists() {
		return out, statusError(sourceGIS, int(e.Get("code").Int()), e.Get("message").String())
	}

	out.LayerIndex = index
	for _, f := range res.Get("features").Array() {
		geometry := f.Get("geometry")
		if !geometry.Exists() || geometry.Type == gjson.Null {
			continue
		}
		props, _ := f.Get("properties").Value().(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		out.Features = append(out.Features, models.DistrictFeature{
			Type:       "Feature",
			District:   districtNumber(districtFeatureFields.String(f, "district")),
			Properties: props,
			Geometry:   json.RawMessage(geometry.Raw),
		})
	}
	return out, nil
}

// districtNumber drops the zero padding of FIPS style district codes while
// keeping a lone "0" (at-large) and non-numeric names intact.
func districtNumber(raw string) string {
	if raw == "" {
		return ""
	}
	if _, err := strconv.Atoi(raw); err != nil {
		return raw
	}
	trimmed := strings.TrimLeft(raw, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
