package tierlist_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/tierlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AddItemToTier(t *testing.T) {
	e := tierlist.New()

	id := e.AddNewItem("A", "u1", nil)
	assert.Equal(t, models.ItemID(1), id)
	assert.Equal(t, []models.ItemID{1}, e.Snapshot().Pool)

	tierID, err := e.AddNewTier("T1", 0)
	require.NoError(t, err)
	assert.Equal(t, models.TierID(1), tierID)

	tl := e.Snapshot()
	require.Len(t, tl.Tiers, 1)
	assert.Equal(t, models.Tier{ID: 1, Title: "T1", Items: []models.ItemID{}}, tl.Tiers[0])

	c, err := e.RemoveItem(id)
	require.NoError(t, err)
	assert.True(t, c.IsPool())
	require.NoError(t, e.AddItem(id, models.InTier(tierID), 0))

	tl = e.Snapshot()
	assert.Empty(t, tl.Pool)
	assert.Equal(t, []models.ItemID{1}, tl.Tiers[0].Items)
	require.NoError(t, tl.Validate())
}

func TestEngine_InsertAtHeadAndDeleteTier(t *testing.T) {
	e := tierlist.New()
	for _, name := range []string{"a", "b", "c"} {
		e.AddNewItem(name, "url-"+name, nil)
	}
	t1, err := e.AddNewTier("tier1", 0)
	require.NoError(t, err)
	t2, err := e.AddNewTier("tier2", 1)
	require.NoError(t, err)
	assert.Equal(t, models.TierID(1), t1)
	assert.Equal(t, models.TierID(2), t2)

	require.NoError(t, e.MoveItem(2, models.InTier(t1), 0))
	require.NoError(t, e.MoveItem(1, models.InTier(t1), 0))
	require.NoError(t, e.MoveItem(3, models.InTier(t2), 0))

	tl := e.Snapshot()
	assert.Equal(t, []models.ItemID{1, 2}, tl.Tiers[0].Items)
	assert.Empty(t, tl.Pool)

	require.NoError(t, e.DeleteTier(t2))
	tl = e.Snapshot()
	require.Len(t, tl.Tiers, 1)
	assert.Equal(t, []models.ItemID{3}, tl.Pool)
	assert.Len(t, tl.Items, 3)
	require.NoError(t, tl.Validate())
}

func TestEngine_DeleteTierKeepsMemberOrder(t *testing.T) {
	e := tierlist.NewWithTiers("S", "A")
	for i := 0; i < 5; i++ {
		e.AddNewItem("x", "u", nil)
	}
	require.NoError(t, e.MoveItem(5, models.InTier(1), 0))
	require.NoError(t, e.MoveItem(2, models.InTier(1), 1))
	require.NoError(t, e.MoveItem(4, models.InTier(1), 2))

	require.NoError(t, e.DeleteTier(1))
	tl := e.Snapshot()
	assert.Equal(t, []models.ItemID{1, 3, 5, 2, 4}, tl.Pool)
	assert.Len(t, tl.Tiers, 1)
	assert.Equal(t, "A", tl.Tiers[0].Title)
}

func TestEngine_RemoveAddPreservesOthers(t *testing.T) {
	e := tierlist.NewWithTiers("S")
	for i := 0; i < 6; i++ {
		e.AddNewItem("x", "u", nil)
	}
	for _, id := range []models.ItemID{4, 5, 6} {
		require.NoError(t, e.MoveItem(id, models.InTier(1), 0))
	}
	// tier: [6 5 4], pool: [1 2 3]
	_, err := e.RemoveItem(2)
	require.NoError(t, err)
	require.NoError(t, e.AddItem(2, models.InTier(1), 1))

	tl := e.Snapshot()
	assert.Equal(t, []models.ItemID{1, 3}, tl.Pool)
	assert.Equal(t, []models.ItemID{6, 2, 5, 4}, tl.Tiers[0].Items)
}

func TestEngine_MoveWithinContainer(t *testing.T) {
	e := tierlist.New()
	for i := 0; i < 4; i++ {
		e.AddNewItem("x", "u", nil)
	}
	require.NoError(t, e.MoveItem(1, models.InPool(), 3))
	assert.Equal(t, []models.ItemID{2, 3, 4, 1}, e.Snapshot().Pool)

	err := e.MoveItem(1, models.InPool(), 4)
	require.ErrorIs(t, err, tierlist.ErrOutOfRange)
	assert.Equal(t, []models.ItemID{2, 3, 4, 1}, e.Snapshot().Pool)
}

func TestEngine_Errors(t *testing.T) {
	e := tierlist.New()
	id := e.AddNewItem("a", "u", nil)

	require.ErrorIs(t, e.DeleteItem(42), tierlist.ErrUnknownItem)
	require.ErrorIs(t, e.AddItem(42, models.InPool(), 0), tierlist.ErrUnknownItem)
	require.ErrorIs(t, e.AddItem(id, models.InTier(9), 0), tierlist.ErrUnknownTier)
	require.ErrorIs(t, e.AddItem(id, models.InPool(), 0), tierlist.ErrAlreadyPlaced)
	require.ErrorIs(t, e.DeleteTier(9), tierlist.ErrUnknownTier)
	require.ErrorIs(t, e.MoveTier(9, 0), tierlist.ErrUnknownTier)
	require.ErrorIs(t, e.RenameTier(9, "x"), tierlist.ErrUnknownTier)
	require.ErrorIs(t, e.UpdateItem(9, "x", "y", nil), tierlist.ErrUnknownItem)

	_, err := e.RemoveItem(id)
	require.NoError(t, err)
	_, err = e.RemoveItem(id)
	require.ErrorIs(t, err, tierlist.ErrNotPlaced)
	require.ErrorIs(t, e.AddItem(id, models.InPool(), 1), tierlist.ErrOutOfRange)
	require.NoError(t, e.AddItem(id, models.InPool(), 0))
}

func TestEngine_AddNewTierBumpsCounterOnBadPosition(t *testing.T) {
	e := tierlist.New()

	_, err := e.AddNewTier("bad", 3)
	require.ErrorIs(t, err, tierlist.ErrOutOfRange)
	assert.Empty(t, e.Snapshot().Tiers)

	id, err := e.AddNewTier("good", 0)
	require.NoError(t, err)
	assert.Equal(t, models.TierID(2), id)
}

func TestEngine_MoveTier(t *testing.T) {
	e := tierlist.NewWithTiers(models.DefaultTiers()...)
	e.AddNewItem("x", "u", nil)
	require.NoError(t, e.MoveItem(1, models.InTier(1), 0))

	require.NoError(t, e.MoveTier(1, 5))
	tl := e.Snapshot()
	titles := make([]string, 0, len(tl.Tiers))
	for _, tier := range tl.Tiers {
		titles = append(titles, tier.Title)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "F", "S"}, titles)
	assert.Equal(t, []models.ItemID{1}, tl.Tiers[5].Items)

	require.ErrorIs(t, e.MoveTier(1, 6), tierlist.ErrOutOfRange)
}

func TestEngine_DeleteItem(t *testing.T) {
	e := tierlist.NewWithTiers("S")
	e.AddNewItem("a", "u", nil)
	e.AddNewItem("b", "u", nil)
	require.NoError(t, e.MoveItem(2, models.InTier(1), 0))

	require.NoError(t, e.DeleteItem(2))
	require.NoError(t, e.DeleteItem(1))
	tl := e.Snapshot()
	assert.Empty(t, tl.Items)
	assert.Empty(t, tl.Pool)
	assert.Empty(t, tl.Tiers[0].Items)

	// ids are never reused
	assert.Equal(t, models.ItemID(3), e.AddNewItem("c", "u", nil))
}

func TestEngine_SnapshotIsDetached(t *testing.T) {
	e := tierlist.New()
	thumb := "/tmp/a.png"
	e.AddNewItem("a", "u", &thumb)
	thumb = "/tmp/changed.png"

	tl := e.Snapshot()
	tl.Pool[0] = 99
	*tl.Items[1].Thumb = "/tmp/other.png"

	again := e.Snapshot()
	assert.Equal(t, []models.ItemID{1}, again.Pool)
	assert.Equal(t, "/tmp/a.png", *again.Items[1].Thumb)
}

func TestEngine_RandomOperationsKeepInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := tierlist.New()

	pickItem := func(tl *models.TierList) (models.ItemID, bool) {
		for id := range tl.Items {
			return id, true
		}
		return 0, false
	}
	pickTier := func(tl *models.TierList) (models.TierID, bool) {
		if len(tl.Tiers) == 0 {
			return 0, false
		}
		return tl.Tiers[rng.Intn(len(tl.Tiers))].ID, true
	}

	for step := 0; step < 2000; step++ {
		tl := e.Snapshot()
		switch rng.Intn(7) {
		case 0, 1:
			e.AddNewItem("item", "url", nil)
		case 2:
			_, _ = e.AddNewTier("tier", rng.Intn(len(tl.Tiers)+2))
		case 3:
			if id, ok := pickItem(tl); ok {
				require.NoError(t, e.DeleteItem(id))
			}
		case 4:
			if id, ok := pickTier(tl); ok {
				require.NoError(t, e.DeleteTier(id))
				assert.Len(t, e.Snapshot().Items, len(tl.Items))
			}
		case 5:
			if id, ok := pickTier(tl); ok {
				require.NoError(t, e.MoveTier(id, rng.Intn(len(tl.Tiers))))
			}
		case 6:
			id, ok := pickItem(tl)
			if !ok {
				break
			}
			target := models.InPool()
			n := len(tl.Pool)
			if tierID, ok := pickTier(tl); ok && rng.Intn(3) > 0 {
				target = models.InTier(tierID)
				n = len(tl.Tiers[tl.TierIndex(tierID)].Items)
			}
			_ = e.MoveItem(id, target, rng.Intn(n+1))
		}
		require.NoError(t, e.Snapshot().Validate(), "step %d", step)
	}
}

func TestEngine_ConcurrentMoves(t *testing.T) {
	e := tierlist.NewWithTiers("S", "A", "B")
	for i := 0; i < 20; i++ {
		e.AddNewItem("x", "u", nil)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				id := models.ItemID(rng.Intn(20) + 1)
				target := models.InTier(models.TierID(rng.Intn(3) + 1))
				_ = e.MoveItem(id, target, 0)
			}
		}(int64(w))
	}
	wg.Wait()

	tl := e.Snapshot()
	require.NoError(t, tl.Validate())
	assert.Len(t, tl.Items, 20)
}

func TestEngine_Locate(t *testing.T) {
	e := tierlist.NewWithTiers("S")
	e.AddNewItem("a", "u", nil)
	e.AddNewItem("b", "u", nil)
	require.NoError(t, e.MoveItem(2, models.InTier(1), 0))

	c, pos, err := e.Locate(2)
	require.NoError(t, err)
	assert.Equal(t, models.InTier(1), c)
	assert.Equal(t, 0, pos)

	c, pos, err = e.Locate(1)
	require.NoError(t, err)
	assert.True(t, c.IsPool())
	assert.Equal(t, 0, pos)

	_, _, err = e.Locate(3)
	require.ErrorIs(t, err, tierlist.ErrNotPlaced)
}

func TestEngine_UpdateItemAndRenameTier(t *testing.T) {
	e := tierlist.NewWithTiers("S")
	id := e.AddNewItem("old", "u-old", nil)
	require.NoError(t, e.MoveItem(id, models.InTier(1), 0))

	thumb := "/tmp/new.png"
	require.NoError(t, e.UpdateItem(id, "new", "u-new", &thumb))
	require.NoError(t, e.RenameTier(1, "God tier"))
	e.SetTitle("Manga")

	tl := e.Snapshot()
	assert.Equal(t, "Manga", tl.Title)
	assert.Equal(t, "God tier", tl.Tiers[0].Title)
	assert.Equal(t, models.Item{ID: id, Name: "new", URL: "u-new", Thumb: &thumb}, tl.Items[id])
	// placement is untouched
	assert.Equal(t, []models.ItemID{id}, tl.Tiers[0].Items)
}

func TestEngine_ReplaceAndReset(t *testing.T) {
	e := tierlist.New()
	e.AddNewItem("a", "u", nil)

	loaded := models.Empty()
	loaded.Title = "loaded"
	loaded.Tiers = []models.Tier{{ID: 4, Title: "S", Items: []models.ItemID{}}}
	loaded.TierMaxID = 4
	loaded.ItemMaxID = 9
	e.Replace(loaded)

	tl := e.Snapshot()
	assert.Equal(t, "loaded", tl.Title)
	assert.Empty(t, tl.Items)
	assert.Equal(t, models.ItemID(10), e.AddNewItem("b", "u", nil))
	tierID, err := e.AddNewTier("A", 1)
	require.NoError(t, err)
	assert.Equal(t, models.TierID(5), tierID)

	e.Reset()
	tl = e.Snapshot()
	assert.Equal(t, models.DefaultTitle, tl.Title)
	assert.Empty(t, tl.Tiers)
	assert.Empty(t, tl.Pool)
	assert.Equal(t, models.ItemID(1), e.AddNewItem("c", "u", nil))
}
