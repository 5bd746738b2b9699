package storage

import (
	"fmt"
	"slices"

	"github.com/meur/tiermaker/internal/models"
)

// Rows is the relational form of a tier list, one slice per table.
type Rows struct {
	Title     string
	Tiers     []TierRow
	Items     []ItemRow
	Positions []PositionRow
}

// TierRow is a row of the tiers table
type TierRow struct {
	ID    models.TierID
	Pos   int64
	Title string
}

// ItemRow is a row of the items table. Thumb is nil for a NULL blob.
type ItemRow struct {
	ID    models.ItemID
	Name  string
	URL   string
	Thumb []byte
}

// PositionRow places an item in a tier at an ordinal index
type PositionRow struct {
	ItemID models.ItemID
	TierID models.TierID
	Pos    int64
}

// Serialize flattens tl into rows. thumbs holds the thumbnail bytes per item;
// items missing from it get a NULL blob. The pool produces no rows.
func Serialize(tl *models.TierList, thumbs map[models.ItemID][]byte) Rows {
	rows := Rows{
		Title: tl.Title,
		Tiers: make([]TierRow, 0, len(tl.Tiers)),
		Items: make([]ItemRow, 0, len(tl.Items)),
	}

	for pos, t := range tl.Tiers {
		rows.Tiers = append(rows.Tiers, TierRow{ID: t.ID, Pos: int64(pos), Title: t.Title})
		for itemPos, id := range t.Items {
			rows.Positions = append(rows.Positions, PositionRow{ItemID: id, TierID: t.ID, Pos: int64(itemPos)})
		}
	}

	ids := make([]models.ItemID, 0, len(tl.Items))
	for id := range tl.Items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		it := tl.Items[id]
		rows.Items = append(rows.Items, ItemRow{ID: id, Name: it.Name, URL: it.URL, Thumb: thumbs[id]})
	}
	return rows
}

// Deserialize rebuilds a tier list from rows. Tiers and positions must already
// be ordered by their pos column. Registered items without a position row go to
// the pool in the order of rows.Items. Thumbnail references are left unset.
func Deserialize(rows Rows) (*models.TierList, error) {
	tl := models.Empty()
	tl.Title = rows.Title

	tierIdx := make(map[models.TierID]int, len(rows.Tiers))
	for _, r := range rows.Tiers {
		if _, dup := tierIdx[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate tier id %d", ErrConsistency, r.ID)
		}
		tl.Tiers = append(tl.Tiers, models.Tier{ID: r.ID, Title: r.Title, Items: []models.ItemID{}})
		tl.TierMaxID = max(tl.TierMaxID, r.ID)
		tierIdx[r.ID] = len(tl.Tiers) - 1
	}

	for _, r := range rows.Items {
		tl.Items[r.ID] = models.Item{ID: r.ID, Name: r.Name, URL: r.URL}
		tl.ItemMaxID = max(tl.ItemMaxID, r.ID)
	}

	placed := make(map[models.ItemID]bool, len(rows.Positions))
	for _, p := range rows.Positions {
		idx, ok := tierIdx[p.TierID]
		if !ok {
			return nil, fmt.Errorf("%w: invalid tier id %d", ErrConsistency, p.TierID)
		}
		if _, ok := tl.Items[p.ItemID]; !ok {
			return nil, fmt.Errorf("%w: invalid item id %d", ErrConsistency, p.ItemID)
		}
		if placed[p.ItemID] {
			return nil, fmt.Errorf("%w: item %d placed twice", ErrConsistency, p.ItemID)
		}
		tl.Tiers[idx].Items = append(tl.Tiers[idx].Items, p.ItemID)
		placed[p.ItemID] = true
	}

	for _, r := range rows.Items {
		if !placed[r.ID] {
			tl.Pool = append(tl.Pool, r.ID)
		}
	}
	return tl, nil
}
