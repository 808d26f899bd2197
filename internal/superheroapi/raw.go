package superheroapi

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Stat accepts the catalog's power stat values, which arrive as strings,
// occasionally as bare numbers, and as null.
type Stat string

func (s *Stat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Stat(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = Stat(n.String())
	return nil
}

type RawPowerStats struct {
	Intelligence Stat `json:"intelligence"`
	Strength     Stat `json:"strength"`
	Speed        Stat `json:"speed"`
	Durability   Stat `json:"durability"`
	Power        Stat `json:"power"`
	Combat       Stat `json:"combat"`
}

type RawBiography struct {
	FullName        string   `json:"full-name"`
	AlterEgos       string   `json:"alter-egos"`
	Aliases         []string `json:"aliases"`
	PlaceOfBirth    string   `json:"place-of-birth"`
	FirstAppearance string   `json:"first-appearance"`
	Publisher       string   `json:"publisher"`
	Alignment       string   `json:"alignment"`
}

type RawAppearance struct {
	Gender    string   `json:"gender"`
	Race      string   `json:"race"`
	Height    []string `json:"height"`
	Weight    []string `json:"weight"`
	EyeColor  string   `json:"eye-color"`
	HairColor string   `json:"hair-color"`
}

type RawWork struct {
	Occupation string `json:"occupation"`
	Base       string `json:"base"`
}

type RawConnections struct {
	GroupAffiliation string `json:"group-affiliation"`
	Relatives        string `json:"relatives"`
}

type RawImage struct {
	URL string `json:"url"`
}

// RawHero mirrors one catalog record as the API sends it.
type RawHero struct {
	Response    string         `json:"response,omitempty"`
	Error       string         `json:"error,omitempty"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PowerStats  RawPowerStats  `json:"powerstats"`
	Biography   RawBiography   `json:"biography"`
	Appearance  RawAppearance  `json:"appearance"`
	Work        RawWork        `json:"work"`
	Connections RawConnections `json:"connections"`
	Image       RawImage       `json:"image"`
}

// NumericID parses the string id the catalog uses.
func (r RawHero) NumericID() (int64, error) {
	return strconv.ParseInt(r.ID, 10, 64)
}

type searchResponse struct {
	Response   string    `json:"response"`
	Error      string    `json:"error"`
	ResultsFor string    `json:"results-for"`
	Results    []RawHero `json:"results"`
}

const responseError = "error"
