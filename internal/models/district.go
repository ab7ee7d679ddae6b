package models

import "encoding/json"

// DistrictLayer identifies the logical chamber a feature collection belongs to.
type DistrictLayer string

const (
	LayerCongressional DistrictLayer = "congressional"
	LayerStateSenate   DistrictLayer = "state-senate"
	LayerStateHouse    DistrictLayer = "state-house"
	LayerAssembly      DistrictLayer = "assembly"
)

// DistrictFeature is one district polygon or multipolygon.
type DistrictFeature struct {
	Type       string          `json:"type"`
	District   string          `json:"district"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// DistrictFeatureCollection is a GeoJSON feature collection tagged with its layer.
type DistrictFeatureCollection struct {
	Type       string            `json:"type"`
	Layer      DistrictLayer     `json:"layer"`
	LayerIndex int               `json:"layerIndex"`
	Features   []DistrictFeature `json:"features"`
}

// NewDistrictFeatureCollection returns an empty collection for layer.
func NewDistrictFeatureCollection(layer DistrictLayer) DistrictFeatureCollection {
	return DistrictFeatureCollection{
		Type:       "FeatureCollection",
		Layer:      layer,
		LayerIndex: -1,
		Features:   []DistrictFeature{},
	}
}

// Len reports the number of features.
func (c DistrictFeatureCollection) Len() int {
	return len(c.Features)
}

// DistrictCounts holds the expected number of districts per chamber.
type DistrictCounts struct {
	Congressional int `json:"congressional"`
	Upper         int `json:"upper"`
	Lower         int `json:"lower"`
}

// StateDistricts is the district resolver output for a state.
type StateDistricts struct {
	StateAbbr     string                    `json:"stateAbbr"`
	Congressional DistrictFeatureCollection `json:"congressional"`
	StateSenate   DistrictFeatureCollection `json:"stateSenate"`
	StateHouse    DistrictFeatureCollection `json:"stateHouse"`
	Expected      *DistrictCounts           `json:"expected,omitempty"`
	Swapped       bool                      `json:"swapped"`
}
