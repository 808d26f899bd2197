package main

import (
	"embed"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

//go:embed data/*.json
var seedData embed.FS

// testHeroIDs are the ids of the records in data/test_heroes.json.
var testHeroIDs = []int64{1001, 1002, 1003}

func loadSeed(name string) ([]superheroapi.RawHero, error) {
	b, err := seedData.ReadFile("data/" + name)
	if err != nil {
		return nil, err
	}
	var raws []superheroapi.RawHero
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return raws, nil
}

func newSeedCmd(e *env) *cobra.Command {
	var withTest bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the bundled hero set without calling the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			files := []string{"heroes.json"}
			if withTest {
				files = append(files, "test_heroes.json")
			}

			now := time.Now().UTC()
			stored := 0
			for _, f := range files {
				raws, err := loadSeed(f)
				if err != nil {
					return err
				}
				for _, raw := range raws {
					h, err := superheroapi.ToHero(raw, now)
					if err != nil {
						return fmt.Errorf("seed record %q: %w", raw.ID, err)
					}
					saved, err := e.heroes.Upsert(cmd.Context(), &h)
					if err != nil {
						return err
					}
					e.printf("seeded %d %s\n", saved.ID, saved.Name)
					stored++
				}
			}

			total, err := e.heroes.Count(cmd.Context())
			if err != nil {
				return err
			}
			e.printf("%d heroes seeded, %d in store\n", stored, total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withTest, "test", false, "also seed the test heroes (ids 1001-1003)")
	return cmd
}
