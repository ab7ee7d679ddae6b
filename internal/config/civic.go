package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed civic.yaml
var defaultCivicData []byte

// Civic data validation errors.
var (
	ErrNoStates          = errors.New("civic data must list at least one state")
	ErrStateMissingFIPS  = errors.New("state fips code is required")
	ErrNoLayerCandidates = errors.New("gis layer candidates are required for every role")
	ErrNoKeywords        = errors.New("relevance keyword sets must not be empty")
)

// CivicData is the immutable reference data injected into the district
// resolver, the relevance filter and the API.
type CivicData struct {
	GIS       GISLayers            `yaml:"gis"`
	Relevance RelevanceKeywords    `yaml:"relevance"`
	States    map[string]StateInfo `yaml:"states"`
}

// GISLayers lists candidate MapServer layer indices per chamber role, in the
// order they are tried.
type GISLayers struct {
	BaseURL             string `yaml:"base_url"`
	CongressionalLayers []int  `yaml:"congressional_layers"`
	UpperLayers         []int  `yaml:"upper_layers"`
	LowerLayers         []int  `yaml:"lower_layers"`
}

// RelevanceKeywords are the political-context words that qualify a bare last
// name or bare state match.
type RelevanceKeywords struct {
	PersonKeywords []string `yaml:"person_keywords"`
	StateKeywords  []string `yaml:"state_keywords"`
}

// StateInfo describes one state. Zero counts mean the count is unknown.
type StateInfo struct {
	FIPS          string `yaml:"fips"`
	Name          string `yaml:"name"`
	Congressional int    `yaml:"congressional"`
	Upper         int    `yaml:"upper"`
	Lower         int    `yaml:"lower"`
	LowerChamber  string `yaml:"lower_chamber"`
}

// HasChamberCounts reports whether the expected upper chamber count is known.
func (s StateInfo) HasChamberCounts() bool {
	return s.Upper > 0
}

// LoadCivicData parses the reference data at path, or the embedded copy when
// path is empty.
func LoadCivicData(path string) (*CivicData, error) {
	raw := defaultCivicData
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read civic data: %w", err)
		}
		raw = data
	}
	return ParseCivicData(raw)
}

// ParseCivicData decodes and validates a civic data document.
func ParseCivicData(raw []byte) (*CivicData, error) {
	var data CivicData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode civic data: %w", err)
	}

	states := make(map[string]StateInfo, len(data.States))
	for abbr, info := range data.States {
		states[strings.ToUpper(strings.TrimSpace(abbr))] = info
	}
	data.States = states

	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *CivicData) validate() error {
	if len(d.States) == 0 {
		return ErrNoStates
	}
	for abbr, info := range d.States {
		if strings.TrimSpace(info.FIPS) == "" {
			return fmt.Errorf("%s: %w", abbr, ErrStateMissingFIPS)
		}
	}
	if len(d.GIS.CongressionalLayers) == 0 || len(d.GIS.UpperLayers) == 0 || len(d.GIS.LowerLayers) == 0 {
		return ErrNoLayerCandidates
	}
	if len(d.Relevance.PersonKeywords) == 0 || len(d.Relevance.StateKeywords) == 0 {
		return ErrNoKeywords
	}
	return nil
}

// State looks up a state by its postal abbreviation, case-insensitively.
func (d *CivicData) State(abbr string) (StateInfo, bool) {
	info, ok := d.States[strings.ToUpper(strings.TrimSpace(abbr))]
	return info, ok
}
