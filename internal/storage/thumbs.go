package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/meur/tiermaker/internal/models"
	"golang.org/x/sync/errgroup"
)

// ThumbPrefix starts the name of every thumbnail materialized from the store.
// The item id completes the name, so files never collide within a directory.
const ThumbPrefix = "_indb_"

const thumbIOLimit = 8

// ThumbPath returns where the thumbnail of item id is materialized inside dir
func ThumbPath(dir string, id models.ItemID) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d", ThumbPrefix, id))
}

// materializeThumbs writes every non-NULL blob to dir and returns the file
// path per item. It returns only after all writes have finished.
func materializeThumbs(ctx context.Context, dir string, items []ItemRow) (map[models.ItemID]string, error) {
	var (
		mu    sync.Mutex
		paths = make(map[models.ItemID]string)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(thumbIOLimit)
	for _, it := range items {
		if it.Thumb == nil {
			continue
		}
		it := it
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := ThumbPath(dir, it.ID)
			if err := os.WriteFile(path, it.Thumb, 0o600); err != nil {
				return fmt.Errorf("%w: item %d: %w", ErrThumbnail, it.ID, err)
			}
			mu.Lock()
			paths[it.ID] = path
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// readThumbs loads the full contents of every referenced thumbnail file.
func readThumbs(ctx context.Context, items map[models.ItemID]models.Item) (map[models.ItemID][]byte, error) {
	var (
		mu     sync.Mutex
		thumbs = make(map[models.ItemID][]byte)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(thumbIOLimit)
	for id, it := range items {
		if !it.HasThumb() {
			continue
		}
		path := *it.Thumb
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("%w: item %d: %w", ErrThumbnail, id, err)
			}
			mu.Lock()
			thumbs[id] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return thumbs, nil
}
