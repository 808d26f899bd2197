package repository

import (
	"strings"
	"time"

	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

type powerStatsColumns struct {
	Intelligence string
	Strength     string
	Speed        string
	Durability   string
	Power        string
	Combat       string
}

type biographyColumns struct {
	FullName        string   `gorm:"index"`
	AlterEgos       string
	Aliases         []string `gorm:"serializer:json;type:text"`
	PlaceOfBirth    string
	FirstAppearance string
	Publisher       string `gorm:"index"`
	Alignment       string
}

type appearanceColumns struct {
	Gender    string
	Race      string
	Height    []string `gorm:"serializer:json;type:text"`
	Weight    []string `gorm:"serializer:json;type:text"`
	EyeColor  string
	HairColor string
}

type workColumns struct {
	Occupation string
	Base       string
}

type connectionsColumns struct {
	GroupAffiliation string
	Relatives        string
}

type heroModel struct {
	ID             int64              `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name           string             `gorm:"column:name;not null;index"`
	PowerStats     powerStatsColumns  `gorm:"embedded;embeddedPrefix:powerstats_"`
	Biography      biographyColumns   `gorm:"embedded;embeddedPrefix:biography_"`
	Appearance     appearanceColumns  `gorm:"embedded;embeddedPrefix:appearance_"`
	Work           workColumns        `gorm:"embedded;embeddedPrefix:work_"`
	Connections    connectionsColumns `gorm:"embedded;embeddedPrefix:connections_"`
	ImageURL       string             `gorm:"column:image_url"`
	SearchKey      string             `gorm:"column:search_key;not null;default:''"`
	FetchedAt      time.Time          `gorm:"column:fetched_at;index"`
	FavoritesCount int64              `gorm:"column:favorites_count;not null;default:0;index"`
	CreatedAt      time.Time          `gorm:"column:created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at"`
}

func (heroModel) TableName() string { return "heroes" }

// heroRefreshColumns are overwritten on conflict. favorites_count and
// created_at are deliberately absent.
var heroRefreshColumns = []string{
	"name",
	"powerstats_intelligence", "powerstats_strength", "powerstats_speed",
	"powerstats_durability", "powerstats_power", "powerstats_combat",
	"biography_full_name", "biography_alter_egos", "biography_aliases",
	"biography_place_of_birth", "biography_first_appearance",
	"biography_publisher", "biography_alignment",
	"appearance_gender", "appearance_race", "appearance_height",
	"appearance_weight", "appearance_eye_color", "appearance_hair_color",
	"work_occupation", "work_base",
	"connections_group_affiliation", "connections_relatives",
	"image_url", "search_key", "fetched_at", "updated_at",
}

// searchKey is the Unicode-lowercased text the search queries match
// against. Folding happens here because SQLite LOWER and LIKE only fold ASCII.
func searchKey(name, fullName, publisher string) string {
	return strings.ToLower(name + "\n" + fullName + "\n" + publisher)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func toDomainHero(m heroModel) domain.Hero {
	return domain.Hero{
		ID:   m.ID,
		Name: m.Name,
		PowerStats: domain.PowerStats{
			Intelligence: m.PowerStats.Intelligence,
			Strength:     m.PowerStats.Strength,
			Speed:        m.PowerStats.Speed,
			Durability:   m.PowerStats.Durability,
			Power:        m.PowerStats.Power,
			Combat:       m.PowerStats.Combat,
		},
		Biography: domain.Biography{
			FullName:        m.Biography.FullName,
			AlterEgos:       m.Biography.AlterEgos,
			Aliases:         nonNil(m.Biography.Aliases),
			PlaceOfBirth:    m.Biography.PlaceOfBirth,
			FirstAppearance: m.Biography.FirstAppearance,
			Publisher:       m.Biography.Publisher,
			Alignment:       m.Biography.Alignment,
		},
		Appearance: domain.Appearance{
			Gender:    m.Appearance.Gender,
			Race:      m.Appearance.Race,
			Height:    nonNil(m.Appearance.Height),
			Weight:    nonNil(m.Appearance.Weight),
			EyeColor:  m.Appearance.EyeColor,
			HairColor: m.Appearance.HairColor,
		},
		Work: domain.Work{
			Occupation: m.Work.Occupation,
			Base:       m.Work.Base,
		},
		Connections: domain.Connections{
			GroupAffiliation: m.Connections.GroupAffiliation,
			Relatives:        m.Connections.Relatives,
		},
		ImageURL:       m.ImageURL,
		FetchedAt:      m.FetchedAt,
		FavoritesCount: m.FavoritesCount,
	}
}

func toHeroModel(h *domain.Hero) heroModel {
	return heroModel{
		ID:   h.ID,
		Name: h.Name,
		PowerStats: powerStatsColumns{
			Intelligence: statOrDefault(h.PowerStats.Intelligence),
			Strength:     statOrDefault(h.PowerStats.Strength),
			Speed:        statOrDefault(h.PowerStats.Speed),
			Durability:   statOrDefault(h.PowerStats.Durability),
			Power:        statOrDefault(h.PowerStats.Power),
			Combat:       statOrDefault(h.PowerStats.Combat),
		},
		Biography: biographyColumns{
			FullName:        h.Biography.FullName,
			AlterEgos:       h.Biography.AlterEgos,
			Aliases:         nonNil(h.Biography.Aliases),
			PlaceOfBirth:    h.Biography.PlaceOfBirth,
			FirstAppearance: h.Biography.FirstAppearance,
			Publisher:       h.Biography.Publisher,
			Alignment:       h.Biography.Alignment,
		},
		Appearance: appearanceColumns{
			Gender:    h.Appearance.Gender,
			Race:      h.Appearance.Race,
			Height:    nonNil(h.Appearance.Height),
			Weight:    nonNil(h.Appearance.Weight),
			EyeColor:  h.Appearance.EyeColor,
			HairColor: h.Appearance.HairColor,
		},
		Work: workColumns{
			Occupation: h.Work.Occupation,
			Base:       h.Work.Base,
		},
		Connections: connectionsColumns{
			GroupAffiliation: h.Connections.GroupAffiliation,
			Relatives:        h.Connections.Relatives,
		},
		ImageURL:  h.ImageURL,
		SearchKey: searchKey(h.Name, h.Biography.FullName, h.Biography.Publisher),
		FetchedAt: h.FetchedAt,
	}
}

func statOrDefault(s string) string {
	if s == "" {
		return domain.DefaultPowerStat
	}
	return s
}
