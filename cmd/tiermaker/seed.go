package main

import (
	"fmt"

	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/storage"
	"github.com/meur/tiermaker/internal/tierlist"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "seed [db]",
		Short: "Create a tier list file with the standard S-F tiers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := dbPathArg(args)
			if err != nil {
				return err
			}

			e := tierlist.NewWithTiers(models.DefaultTiers()...)
			e.SetTitle(title)

			store, err := storage.Open(ctx, path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(ctx, e.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s with %d tiers\n", path, len(models.DefaultTiers()))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", models.DefaultTitle, "tier list title")
	return cmd
}
