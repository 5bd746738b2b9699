// Package tierlist maintains a tier list in memory. Every item lives in exactly
// one place: one tier's sequence or the pool.
package tierlist

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/meur/tiermaker/internal/models"
)

var (
	ErrUnknownItem   = errors.New("unknown item")
	ErrUnknownTier   = errors.New("unknown tier")
	ErrOutOfRange    = errors.New("position out of range")
	ErrNotPlaced     = errors.New("item is not placed")
	ErrAlreadyPlaced = errors.New("item is already placed")
)

// Engine is the single owner of a tier list. All methods are safe for
// concurrent use; each one runs under an exclusive lock.
type Engine struct {
	mu sync.Mutex
	tl *models.TierList
}

// New creates an engine holding an empty tier list
func New() *Engine {
	return &Engine{tl: models.Empty()}
}

// NewWithTiers creates an engine holding empty tiers with the given titles, in order
func NewWithTiers(titles ...string) *Engine {
	e := New()
	for i, title := range titles {
		// cannot fail: i == len(tiers)
		_, _ = e.AddNewTier(title, i)
	}
	return e
}

// Snapshot returns a deep copy of the current tier list
func (e *Engine) Snapshot() *models.TierList {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tl.Clone()
}

// Replace swaps the whole state for tl. The engine takes ownership of tl.
func (e *Engine) Replace(tl *models.TierList) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tl = tl
}

// Reset discards the current state
func (e *Engine) Reset() {
	e.Replace(models.Empty())
}

// SetTitle renames the tier list
func (e *Engine) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tl.Title = title
}

// AddNewItem registers a new item and appends it to the end of the pool.
func (e *Engine) AddNewItem(name, url string, thumb *string) models.ItemID {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tl.ItemMaxID++
	id := e.tl.ItemMaxID
	e.tl.Items[id] = models.Item{ID: id, Name: name, URL: url, Thumb: thumb}.Clone()
	e.tl.Pool = append(e.tl.Pool, id)
	return id
}

// UpdateItem replaces the item's name, url and thumbnail reference
func (e *Engine) UpdateItem(id models.ItemID, name, url string, thumb *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.tl.Items[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	e.tl.Items[id] = models.Item{ID: id, Name: name, URL: url, Thumb: thumb}.Clone()
	return nil
}

// DeleteItem removes the item from its container and from the registry.
func (e *Engine) DeleteItem(id models.ItemID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.tl.Items[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	if _, _, err := e.remove(id); err != nil && !errors.Is(err, ErrNotPlaced) {
		return err
	}
	delete(e.tl.Items, id)
	return nil
}

// RemoveItem takes the item out of whichever container holds it and reports
// that container. The item stays registered.
func (e *Engine) RemoveItem(id models.ItemID) (models.Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, _, err := e.remove(id)
	return c, err
}

// AddItem inserts a registered, currently unplaced item at pos in target.
func (e *Engine) AddItem(id models.ItemID, target models.Container, pos int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.add(id, target, pos)
}

// MoveItem moves the item to pos in target as one step. On failure the item
// stays where it was.
func (e *Engine) MoveItem(id models.ItemID, target models.Container, pos int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkTarget(target, pos, id); err != nil {
		return err
	}
	src, srcPos, err := e.remove(id)
	if err != nil {
		return err
	}
	if err := e.add(id, target, pos); err != nil {
		if restoreErr := e.add(id, src, srcPos); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}

// AddNewTier inserts an empty tier at pos in the tier ordering. The id
// counter advances even when pos is rejected.
func (e *Engine) AddNewTier(title string, pos int) (models.TierID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tl.TierMaxID++
	id := e.tl.TierMaxID
	if pos < 0 || pos > len(e.tl.Tiers) {
		return 0, fmt.Errorf("%w: tier position %d of %d", ErrOutOfRange, pos, len(e.tl.Tiers))
	}
	e.tl.Tiers = slices.Insert(e.tl.Tiers, pos, models.Tier{ID: id, Title: title, Items: []models.ItemID{}})
	return id, nil
}

// RenameTier changes a tier's title
func (e *Engine) RenameTier(id models.TierID, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.tl.TierIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownTier, id)
	}
	e.tl.Tiers[idx].Title = title
	return nil
}

// DeleteTier appends the tier's items to the pool, in order, and removes the tier.
func (e *Engine) DeleteTier(id models.TierID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.tl.TierIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownTier, id)
	}
	e.tl.Pool = append(e.tl.Pool, e.tl.Tiers[idx].Items...)
	e.tl.Tiers = slices.Delete(e.tl.Tiers, idx, idx+1)
	return nil
}

// MoveTier reinserts the tier at pos; pos indexes the ordering without the moved tier.
func (e *Engine) MoveTier(id models.TierID, pos int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.tl.TierIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownTier, id)
	}
	if pos < 0 || pos >= len(e.tl.Tiers) {
		return fmt.Errorf("%w: tier position %d of %d", ErrOutOfRange, pos, len(e.tl.Tiers)-1)
	}
	tier := e.tl.Tiers[idx]
	e.tl.Tiers = slices.Delete(e.tl.Tiers, idx, idx+1)
	e.tl.Tiers = slices.Insert(e.tl.Tiers, pos, tier)
	return nil
}

// Locate reports the container holding the item and its index there
func (e *Engine) Locate(id models.ItemID) (models.Container, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, seq := e.locate(id)
	if seq == nil {
		return models.Container{}, -1, fmt.Errorf("%w: %d", ErrNotPlaced, id)
	}
	return c, slices.Index(*seq, id), nil
}

func (e *Engine) locate(id models.ItemID) (models.Container, *[]models.ItemID) {
	for i := range e.tl.Tiers {
		if slices.Contains(e.tl.Tiers[i].Items, id) {
			return models.InTier(e.tl.Tiers[i].ID), &e.tl.Tiers[i].Items
		}
	}
	if slices.Contains(e.tl.Pool, id) {
		return models.InPool(), &e.tl.Pool
	}
	return models.Container{}, nil
}

func (e *Engine) sequence(c models.Container) (*[]models.ItemID, error) {
	tierID, ok := c.Tier()
	if !ok {
		return &e.tl.Pool, nil
	}
	idx := e.tl.TierIndex(tierID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tierID)
	}
	return &e.tl.Tiers[idx].Items, nil
}

func (e *Engine) remove(id models.ItemID) (models.Container, int, error) {
	c, seq := e.locate(id)
	if seq == nil {
		return models.Container{}, -1, fmt.Errorf("%w: %d", ErrNotPlaced, id)
	}
	pos := slices.Index(*seq, id)
	*seq = slices.Delete(*seq, pos, pos+1)
	return c, pos, nil
}

func (e *Engine) checkTarget(target models.Container, pos int, moving models.ItemID) error {
	if _, ok := e.tl.Items[moving]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, moving)
	}
	seq, err := e.sequence(target)
	if err != nil {
		return err
	}
	n := len(*seq)
	if slices.Contains(*seq, moving) {
		n--
	}
	if pos < 0 || pos > n {
		return fmt.Errorf("%w: %d in %s of %d", ErrOutOfRange, pos, target, n)
	}
	return nil
}

func (e *Engine) add(id models.ItemID, target models.Container, pos int) error {
	if _, ok := e.tl.Items[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	seq, err := e.sequence(target)
	if err != nil {
		return err
	}
	if pos < 0 || pos > len(*seq) {
		return fmt.Errorf("%w: %d in %s of %d", ErrOutOfRange, pos, target, len(*seq))
	}
	if c, placed := e.locate(id); placed != nil {
		return fmt.Errorf("%w: %d in %s", ErrAlreadyPlaced, id, c)
	}
	*seq = slices.Insert(*seq, pos, id)
	return nil
}
