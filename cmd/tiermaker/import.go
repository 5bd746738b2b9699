package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/tierlist"
	"github.com/meur/tiermaker/internal/workspace"
	"github.com/spf13/cobra"
)

// ImportFile is the JSON accepted by the import command
type ImportFile struct {
	Title string       `json:"title,omitempty"`
	Tiers []string     `json:"tiers,omitempty"`
	Items []ImportItem `json:"items"`
}

// ImportItem is one item to import. An empty Tier puts the item in the pool.
type ImportItem struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Thumb string `json:"thumb,omitempty"`
	Tier  string `json:"tier,omitempty"`
}

func importCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file.json> [db]",
		Short: "Import items from a JSON file into a tier list file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := dbPathArg(args[1:])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var in ImportFile
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}

			ws, err := workspace.New(workspace.Options{ScratchDir: cfg.ScratchDir})
			if err != nil {
				return err
			}
			defer ws.Close()

			if _, err := os.Stat(path); err == nil && !replace {
				if err := ws.Load(ctx, path); err != nil {
					return err
				}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			added, err := applyImport(ws.Engine(), in)
			if err != nil {
				return err
			}
			if err := ws.Save(ctx, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items into %s\n", added, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "discard the existing contents of the file")
	return cmd
}

// applyImport adds the file's tiers and items to e. Tiers are matched by
// title; unknown tier titles are appended as new tiers.
func applyImport(e *tierlist.Engine, in ImportFile) (int, error) {
	if in.Title != "" {
		e.SetTitle(in.Title)
	}

	tierIDs := map[string]models.TierID{}
	for _, t := range e.Snapshot().Tiers {
		tierIDs[t.Title] = t.ID
	}
	ensureTier := func(title string) (models.TierID, error) {
		if id, ok := tierIDs[title]; ok {
			return id, nil
		}
		id, err := e.AddNewTier(title, len(e.Snapshot().Tiers))
		if err != nil {
			return 0, err
		}
		tierIDs[title] = id
		return id, nil
	}

	for _, title := range in.Tiers {
		if _, err := ensureTier(title); err != nil {
			return 0, err
		}
	}

	for i, it := range in.Items {
		if it.Name == "" {
			return i, fmt.Errorf("item %d: name is required", i)
		}
		var thumb *string
		if it.Thumb != "" {
			thumb = &it.Thumb
		}
		id := e.AddNewItem(it.Name, it.URL, thumb)
		if it.Tier == "" {
			continue
		}
		tierID, err := ensureTier(it.Tier)
		if err != nil {
			return i, err
		}
		tl := e.Snapshot()
		end := len(tl.Tiers[tl.TierIndex(tierID)].Items)
		if err := e.MoveItem(id, models.InTier(tierID), end); err != nil {
			return i, err
		}
	}
	return len(in.Items), nil
}
