package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newPruneCmd(e *env) *cobra.Command {
	var (
		ids      []int64
		testOnly bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete heroes from the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := ids
			if testOnly {
				target = append(target, testHeroIDs...)
			}
			if len(target) == 0 {
				return errors.New("nothing to prune: pass --ids or --test")
			}

			before, err := e.heroes.Count(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := e.heroes.Delete(cmd.Context(), target)
			if err != nil {
				return err
			}
			e.printf("removed %d heroes (%d -> %d)\n", removed, before, before-removed)
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "hero ids to delete")
	cmd.Flags().BoolVar(&testOnly, "test", false, "delete the seeded test heroes")
	return cmd
}
