package main

import (
	"fmt"
	"io"

	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/workspace"
	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [db]",
		Short: "Print a stored tier list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := dbPathArg(args)
			if err != nil {
				return err
			}

			ws, err := workspace.New(workspace.Options{})
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.Load(cmd.Context(), path); err != nil {
				return err
			}
			printTierList(cmd.OutOrStdout(), ws.Engine().Snapshot())
			return nil
		},
	}
}

func printTierList(w io.Writer, tl *models.TierList) {
	fmt.Fprintf(w, "%s\n", tl.Title)
	for _, t := range tl.Tiers {
		fmt.Fprintf(w, "\n[%s]\n", t.Title)
		printItems(w, tl, t.Items)
	}
	fmt.Fprintf(w, "\n[pool]\n")
	printItems(w, tl, tl.Pool)
}

func printItems(w io.Writer, tl *models.TierList, ids []models.ItemID) {
	for _, id := range ids {
		it := tl.Items[id]
		thumb := ""
		if it.HasThumb() {
			thumb = " (thumb)"
		}
		fmt.Fprintf(w, "  %d. %s  %s%s\n", id, it.Name, it.URL, thumb)
	}
}
