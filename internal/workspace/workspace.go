// Package workspace ties one editing session together: the in-memory tier
// list, the store it is saved to, the scratch directory holding thumbnails,
// and the scraper used to create items from product pages.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/meur/tiermaker/internal/logging"
	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/scraper"
	"github.com/meur/tiermaker/internal/storage"
	"github.com/meur/tiermaker/internal/tierlist"
)

// ImageSource finds a product image and title and fetches the image
type ImageSource interface {
	scraper.Scraper
	Download(ctx context.Context, dir, imageURL string) (string, error)
}

// Options configures a Workspace
type Options struct {
	// ScratchDir holds materialized thumbnails. Empty creates a temporary
	// directory that is removed on Close.
	ScratchDir string
	Images     ImageSource
}

// Workspace is one editing session. Load, Save and Close are serialized so a
// store switch and the read or write that follows it happen as one step.
type Workspace struct {
	mu           sync.Mutex
	engine       *tierlist.Engine
	store        *storage.Store
	images       ImageSource
	scratchDir   string
	ownedScratch bool
	// thumbnails of the last successful load
	loadDir string
}

// New creates a workspace with an empty tier list and a closed store
func New(opts Options) (*Workspace, error) {
	w := &Workspace{
		engine:     tierlist.New(),
		store:      storage.New(),
		images:     opts.Images,
		scratchDir: opts.ScratchDir,
	}
	if w.scratchDir == "" {
		dir, err := os.MkdirTemp("", "tiermaker-imgs-")
		if err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		w.scratchDir = dir
		w.ownedScratch = true
	} else if err := os.MkdirAll(w.scratchDir, 0o750); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return w, nil
}

// Engine returns the tier list engine for direct mutation
func (w *Workspace) Engine() *tierlist.Engine {
	return w.engine
}

// ScratchDir returns the directory holding thumbnails for this session
func (w *Workspace) ScratchDir() string {
	return w.scratchDir
}

// StorePath returns the path of the open store, or ""
func (w *Workspace) StorePath() string {
	return w.store.Path()
}

// StoreOpen reports whether the session has a store to save to
func (w *Workspace) StoreOpen() bool {
	return w.store.IsOpen()
}

// Load opens the store at path and replaces the in-memory tier list with its
// contents. Thumbnails go to a fresh directory under the scratch dir, so files
// referenced by the current list are never overwritten. On error the in-memory
// tier list is left untouched and the store is closed, so a later Save must
// name its target.
func (w *Workspace) Load(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	log := logging.FromContext(logging.WithComponent(ctx, "workspace"))

	if err := w.store.Open(ctx, path); err != nil {
		return err
	}
	dir, err := os.MkdirTemp(w.scratchDir, "load-")
	if err != nil {
		err = fmt.Errorf("%w: %w", storage.ErrThumbnail, err)
		return errors.Join(err, w.store.Close())
	}
	tl, err := w.store.Load(ctx, dir)
	if err != nil {
		return errors.Join(err, os.RemoveAll(dir), w.store.Close())
	}
	w.engine.Replace(tl)

	if w.loadDir != "" {
		if err := os.RemoveAll(w.loadDir); err != nil {
			log.Warn().Err(err).Str("dir", w.loadDir).Msg("could not remove previous thumbnails")
		}
	}
	w.loadDir = dir
	return nil
}

// Save writes the current tier list. A non-empty path switches the session to
// a store at that path first; an empty path reuses the open store.
func (w *Workspace) Save(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if path != "" && path != w.store.Path() {
		if err := w.store.Open(ctx, path); err != nil {
			return err
		}
	}
	return w.store.Save(ctx, w.engine.Snapshot())
}

// AddFromURL scrapes a product page, downloads its image into the scratch
// directory and adds the product to the pool.
func (w *Workspace) AddFromURL(ctx context.Context, pageURL string) (models.ItemID, error) {
	if w.images == nil {
		return 0, errors.New("no image source configured")
	}
	res, err := w.images.Scrape(ctx, pageURL)
	if err != nil {
		return 0, err
	}
	thumb, err := w.images.Download(ctx, w.scratchDir, res.ImageURL)
	if err != nil {
		return 0, err
	}
	id := w.engine.AddNewItem(res.Title, pageURL, &thumb)
	logging.FromContext(logging.WithComponent(ctx, "workspace")).Info().Int64("item_id", id).Str("url", pageURL).Msg("item added from url")
	return id, nil
}

// Close closes the store, removes loaded thumbnails and removes a scratch
// directory created by New
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.store.Close()
	if w.loadDir != "" {
		err = errors.Join(err, os.RemoveAll(w.loadDir))
		w.loadDir = ""
	}
	if w.ownedScratch {
		err = errors.Join(err, os.RemoveAll(w.scratchDir))
	}
	return err
}
