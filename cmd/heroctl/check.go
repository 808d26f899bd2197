package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newCheckCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report store size, staleness and the most favorited heroes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			total, err := e.heroes.Count(ctx)
			if err != nil {
				return err
			}
			stale, err := e.heroes.CountStale(ctx, time.Now().UTC().Add(-e.cfg.Cache.Freshness))
			if err != nil {
				return err
			}
			e.printf("heroes: %d (stale: %d, freshness %s)\n", total, stale, e.cfg.Cache.Freshness)
			if total == 0 {
				e.printf("store is empty, run `heroctl seed` or `heroctl fetch`\n")
				return nil
			}

			sample, _, err := e.heroes.FindPage(ctx, 0, 5)
			if err != nil {
				return err
			}
			e.printf("sample:\n")
			for _, h := range sample {
				e.printf("  %4d %s (%s)\n", h.ID, h.Name, publisherOrUnknown(h.Biography.Publisher))
			}

			top, err := e.heroes.TopFavorited(ctx, e.cfg.Cache.TopLimit)
			if err != nil {
				return err
			}
			e.printf("top favorited:\n")
			if len(top) == 0 {
				e.printf("  none yet\n")
			}
			for _, h := range top {
				e.printf("  %4d %s: %d\n", h.ID, h.Name, h.FavoritesCount)
			}
			return nil
		},
	}
}

func publisherOrUnknown(p string) string {
	if p == "" {
		return "Unknown publisher"
	}
	return p
}
