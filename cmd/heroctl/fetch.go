package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/Maximillionair/eksamen-superhelter/internal/modules/hero"
	"github.com/Maximillionair/eksamen-superhelter/internal/superheroapi"
)

func newFetchCmd(e *env) *cobra.Command {
	var (
		start int64
		count int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load a range of heroes from the remote catalog into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := hero.NewService(e.heroes, superheroapi.NewClient(e.cfg.Catalog), hero.Options{
				Freshness:    e.cfg.Cache.Freshness,
				BatchMax:     e.cfg.Cache.BatchMax,
				BatchWorkers: e.cfg.Cache.BatchWorkers,
				SearchLimit:  e.cfg.Cache.SearchLimit,
			})

			res := svc.FetchHeroBatch(cmd.Context(), start, count)

			sort.Slice(res.Heroes, func(i, j int) bool { return res.Heroes[i].ID < res.Heroes[j].ID })
			sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i].ID < res.Errors[j].ID })
			for _, h := range res.Heroes {
				e.printf("ok     %4d %s\n", h.ID, h.Name)
			}
			for _, f := range res.Errors {
				e.printf("failed %4d %s\n", f.ID, f.Error)
			}
			e.printf("fetched %d, failed %d\n", res.TotalFetched, len(res.Errors))
			return nil
		},
	}
	cmd.Flags().Int64Var(&start, "start", 1, "first hero id")
	cmd.Flags().IntVar(&count, "count", 20, "number of consecutive ids (capped by cache.batch_max)")
	return cmd
}
