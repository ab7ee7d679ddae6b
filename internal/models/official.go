package models

// GovernmentLevel groups officials returned by the civic lookup.
type GovernmentLevel string

const (
	LevelFederal GovernmentLevel = "federal"
	LevelState   GovernmentLevel = "state"
	LevelCounty  GovernmentLevel = "county"
	LevelLocal   GovernmentLevel = "local"
)

// Official is an elected representative for an address.
type Official struct {
	Name     string   `json:"name"`
	Office   string   `json:"office"`
	Party    string   `json:"party"`
	Phones   []string `json:"phones"`
	Emails   []string `json:"emails"`
	URLs     []string `json:"urls"`
	PhotoURL string   `json:"photoUrl"`
	Division string   `json:"division"`
}

// Representatives is the civic lookup response grouped by level.
type Representatives struct {
	Address string     `json:"address"`
	Federal []Official `json:"federal"`
	State   []Official `json:"state"`
	County  []Official `json:"county"`
	Local   []Official `json:"local"`
}
