package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meur/tiermaker/internal/models"
)

// Load reads the whole tier list. Thumbnail blobs are written into
// scratchDir and referenced by path. On error no tier list is returned.
func (s *Store) Load(ctx context.Context, scratchDir string) (*models.TierList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrNotOpen
	}
	if err := migrate(ctx, s.db); err != nil {
		return nil, err
	}

	rows, err := readRows(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("could not read tierlist: %w", err)
	}
	tl, err := Deserialize(rows)
	if err != nil {
		return nil, fmt.Errorf("could not read tierlist: %w", err)
	}

	paths, err := materializeThumbs(ctx, scratchDir, rows.Items)
	if err != nil {
		return nil, fmt.Errorf("could not read tierlist: %w", err)
	}
	for id, path := range paths {
		it := tl.Items[id]
		it.Thumb = &path
		tl.Items[id] = it
	}

	logger(ctx).Info().
		Str("path", s.path).
		Int("tiers", len(tl.Tiers)).
		Int("items", len(tl.Items)).
		Int("thumbs", len(paths)).
		Msg("tier list loaded")
	return tl, nil
}

// Save replaces the stored tier list with tl in a single transaction. Nothing
// is changed on disk unless every thumbnail is readable and every insert succeeds.
// Items that are registered but not placed anywhere are stored without a
// position and come back in the pool.
func (s *Store) Save(ctx context.Context, tl *models.TierList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrNotOpen
	}
	if err := tl.CheckPlacements(); err != nil {
		return fmt.Errorf("could not write tierlist: %w", err)
	}
	if err := migrate(ctx, s.db); err != nil {
		return err
	}

	thumbs, err := readThumbs(ctx, tl.Items)
	if err != nil {
		return fmt.Errorf("could not write tierlist: %w", err)
	}
	rows := Serialize(tl, thumbs)
	if err := writeRows(ctx, s.db, rows); err != nil {
		return fmt.Errorf("could not write tierlist: %w", err)
	}

	logger(ctx).Info().
		Str("path", s.path).
		Int("tiers", len(rows.Tiers)).
		Int("items", len(rows.Items)).
		Int("positions", len(rows.Positions)).
		Msg("tier list saved")
	return nil
}

func readRows(ctx context.Context, db *sql.DB) (Rows, error) {
	var rows Rows

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return rows, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT title FROM tierlist LIMIT 1`).Scan(&rows.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return rows, fmt.Errorf("%w: missing title row", ErrConsistency)
	}
	if err != nil {
		return rows, err
	}

	if rows.Tiers, err = queryTiers(ctx, tx); err != nil {
		return rows, err
	}
	if rows.Items, err = queryItems(ctx, tx); err != nil {
		return rows, err
	}
	if rows.Positions, err = queryPositions(ctx, tx); err != nil {
		return rows, err
	}
	return rows, nil
}

func queryTiers(ctx context.Context, tx *sql.Tx) ([]TierRow, error) {
	rs, err := tx.QueryContext(ctx, `SELECT id, pos, title FROM tiers ORDER BY pos ASC`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var tiers []TierRow
	for rs.Next() {
		var r TierRow
		if err := rs.Scan(&r.ID, &r.Pos, &r.Title); err != nil {
			return nil, err
		}
		tiers = append(tiers, r)
	}
	return tiers, rs.Err()
}

func queryItems(ctx context.Context, tx *sql.Tx) ([]ItemRow, error) {
	rs, err := tx.QueryContext(ctx, `SELECT id, name, url, thumb FROM items ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var items []ItemRow
	for rs.Next() {
		var r ItemRow
		if err := rs.Scan(&r.ID, &r.Name, &r.URL, &r.Thumb); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rs.Err()
}

func queryPositions(ctx context.Context, tx *sql.Tx) ([]PositionRow, error) {
	rs, err := tx.QueryContext(ctx, `SELECT item_id, tier_id, pos FROM items_pos ORDER BY pos ASC`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var positions []PositionRow
	for rs.Next() {
		var r PositionRow
		if err := rs.Scan(&r.ItemID, &r.TierID, &r.Pos); err != nil {
			return nil, err
		}
		positions = append(positions, r)
	}
	return positions, rs.Err()
}

// writeRows swaps the contents of every table for rows in one transaction
func writeRows(ctx context.Context, db *sql.DB, rows Rows) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"tierlist", "tiers", "items", "items_pos"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO tierlist (title) VALUES (?)`, rows.Title); err != nil {
		return fmt.Errorf("insert title: %w", err)
	}

	err = insertAll(ctx, tx, `INSERT INTO tiers (id, pos, title) VALUES (?, ?, ?)`, len(rows.Tiers),
		func(i int) []any {
			r := rows.Tiers[i]
			return []any{r.ID, r.Pos, r.Title}
		})
	if err != nil {
		return fmt.Errorf("insert tiers: %w", err)
	}

	err = insertAll(ctx, tx, `INSERT INTO items (id, name, url, thumb) VALUES (?, ?, ?, ?)`, len(rows.Items),
		func(i int) []any {
			r := rows.Items[i]
			var thumb any
			if r.Thumb != nil {
				thumb = r.Thumb
			}
			return []any{r.ID, r.Name, r.URL, thumb}
		})
	if err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	err = insertAll(ctx, tx, `INSERT INTO items_pos (item_id, tier_id, pos) VALUES (?, ?, ?)`, len(rows.Positions),
		func(i int) []any {
			r := rows.Positions[i]
			return []any{r.ItemID, r.TierID, r.Pos}
		})
	if err != nil {
		return fmt.Errorf("insert positions: %w", err)
	}

	return tx.Commit()
}

func insertAll(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}
