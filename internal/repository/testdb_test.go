package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Maximillionair/eksamen-superhelter/internal/database"
	"github.com/Maximillionair/eksamen-superhelter/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func sampleHero(id int64, name, fullName, publisher string) *domain.Hero {
	return &domain.Hero{
		ID:   id,
		Name: name,
		PowerStats: domain.PowerStats{
			Intelligence: "50", Strength: "50", Speed: "50",
			Durability: "50", Power: "50", Combat: "50",
		},
		Biography: domain.Biography{
			FullName:  fullName,
			Aliases:   []string{},
			Publisher: publisher,
		},
		Appearance: domain.Appearance{Height: []string{}, Weight: []string{}},
		ImageURL:   fmt.Sprintf("https://example.test/%d.jpg", id),
		FetchedAt:  time.Now().UTC(),
	}
}

func seedHeroes(t *testing.T, repo *HeroRepository, heroes ...*domain.Hero) {
	t.Helper()
	for _, h := range heroes {
		_, err := repo.Upsert(context.Background(), h)
		require.NoError(t, err)
	}
}
