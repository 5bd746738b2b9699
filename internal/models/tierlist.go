package models

import (
	"errors"
	"fmt"
)

// TierID identifies a tier within a tier list
type TierID = int64

// DefaultTitle is the title of a freshly created tier list
const DefaultTitle = "Untitled"

// ErrInvariant is returned by Validate when an item is placed zero or several times
var ErrInvariant = errors.New("tier list invariant violated")

// TierList is the aggregate root: ordered tiers, the unranked pool and the item registry.
// Tiers and the pool hold item ids only; Items is the sole owner of item data.
type TierList struct {
	Title     string          `json:"title"`
	Tiers     []Tier          `json:"tiers"`
	TierMaxID TierID          `json:"tier_max_id"`
	Items     map[ItemID]Item `json:"items"`
	Pool      []ItemID        `json:"pool"`
	ItemMaxID ItemID          `json:"item_max_id"`
}

// Tier represents a single tier in a tier list
type Tier struct {
	ID    TierID   `json:"id"`
	Title string   `json:"title"`
	Items []ItemID `json:"items"` // Item IDs in order
}

// Empty returns a tier list with no tiers and no items
func Empty() *TierList {
	return &TierList{
		Title: DefaultTitle,
		Tiers: []Tier{},
		Items: map[ItemID]Item{},
		Pool:  []ItemID{},
	}
}

// DefaultTiers returns standard S-F tier titles
func DefaultTiers() []string {
	return []string{"S", "A", "B", "C", "D", "F"}
}

// TierIndex returns the position of the tier in the tier ordering, or -1
func (tl *TierList) TierIndex(id TierID) int {
	for i := range tl.Tiers {
		if tl.Tiers[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares no slices or maps with tl.
func (tl *TierList) Clone() *TierList {
	c := &TierList{
		Title:     tl.Title,
		Tiers:     make([]Tier, len(tl.Tiers)),
		TierMaxID: tl.TierMaxID,
		Items:     make(map[ItemID]Item, len(tl.Items)),
		Pool:      append([]ItemID{}, tl.Pool...),
		ItemMaxID: tl.ItemMaxID,
	}
	for i, t := range tl.Tiers {
		c.Tiers[i] = Tier{ID: t.ID, Title: t.Title, Items: append([]ItemID{}, t.Items...)}
	}
	for id, it := range tl.Items {
		c.Items[id] = it.Clone()
	}
	return c
}

// Validate checks that every registered item appears exactly once across the
// tiers and the pool, and that nothing else does.
func (tl *TierList) Validate() error {
	seen, err := tl.placements()
	if err != nil {
		return err
	}
	if len(seen) != len(tl.Items) {
		for id := range tl.Items {
			if _, ok := seen[id]; !ok {
				return fmt.Errorf("%w: item %d is not placed", ErrInvariant, id)
			}
		}
	}
	return nil
}

// CheckPlacements is Validate without the requirement that every item be
// placed. A registered item missing from every container belongs to the pool,
// which is how a list looks between RemoveItem and AddItem.
func (tl *TierList) CheckPlacements() error {
	_, err := tl.placements()
	return err
}

func (tl *TierList) placements() (map[ItemID]Container, error) {
	seen := make(map[ItemID]Container, len(tl.Items))
	place := func(id ItemID, c Container) error {
		if _, ok := tl.Items[id]; !ok {
			return fmt.Errorf("%w: item %d in %s is not registered", ErrInvariant, id, c)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: item %d placed in both %s and %s", ErrInvariant, id, prev, c)
		}
		seen[id] = c
		return nil
	}

	tierIDs := make(map[TierID]bool, len(tl.Tiers))
	for _, t := range tl.Tiers {
		if tierIDs[t.ID] {
			return nil, fmt.Errorf("%w: duplicate tier id %d", ErrInvariant, t.ID)
		}
		tierIDs[t.ID] = true
		for _, id := range t.Items {
			if err := place(id, InTier(t.ID)); err != nil {
				return nil, err
			}
		}
	}
	for _, id := range tl.Pool {
		if err := place(id, InPool()); err != nil {
			return nil, err
		}
	}
	return seen, nil
}
