package superheroapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

// ToHero maps a raw catalog record onto the stored shape. Missing or null
// power stats become DefaultPowerStat and missing lists become empty.
func ToHero(raw RawHero, fetchedAt time.Time) (domain.Hero, error) {
	id, err := raw.NumericID()
	if err != nil || id < 1 {
		return domain.Hero{}, fmt.Errorf("%w: id %q", ErrInvalidRecord, raw.ID)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return domain.Hero{}, fmt.Errorf("%w: hero %d has no name", ErrInvalidRecord, id)
	}

	return domain.Hero{
		ID:   id,
		Name: raw.Name,
		PowerStats: domain.PowerStats{
			Intelligence: statOrDefault(raw.PowerStats.Intelligence),
			Strength:     statOrDefault(raw.PowerStats.Strength),
			Speed:        statOrDefault(raw.PowerStats.Speed),
			Durability:   statOrDefault(raw.PowerStats.Durability),
			Power:        statOrDefault(raw.PowerStats.Power),
			Combat:       statOrDefault(raw.PowerStats.Combat),
		},
		Biography: domain.Biography{
			FullName:        raw.Biography.FullName,
			AlterEgos:       raw.Biography.AlterEgos,
			Aliases:         listOrEmpty(raw.Biography.Aliases),
			PlaceOfBirth:    raw.Biography.PlaceOfBirth,
			FirstAppearance: raw.Biography.FirstAppearance,
			Publisher:       raw.Biography.Publisher,
			Alignment:       raw.Biography.Alignment,
		},
		Appearance: domain.Appearance{
			Gender:    raw.Appearance.Gender,
			Race:      raw.Appearance.Race,
			Height:    listOrEmpty(raw.Appearance.Height),
			Weight:    listOrEmpty(raw.Appearance.Weight),
			EyeColor:  raw.Appearance.EyeColor,
			HairColor: raw.Appearance.HairColor,
		},
		Work: domain.Work{
			Occupation: raw.Work.Occupation,
			Base:       raw.Work.Base,
		},
		Connections: domain.Connections{
			GroupAffiliation: raw.Connections.GroupAffiliation,
			Relatives:        raw.Connections.Relatives,
		},
		ImageURL:  raw.Image.URL,
		FetchedAt: fetchedAt,
	}, nil
}

func statOrDefault(s Stat) string {
	v := strings.TrimSpace(string(s))
	if v == "" || v == "null" {
		return domain.DefaultPowerStat
	}
	return v
}

func listOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
