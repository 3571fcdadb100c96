package inventory

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func looseTile(t *testing.T, def *item.Definition, qty, slotIdx int) *Tile {
	t.Helper()
	st, err := item.NewStack(def, qty)
	require.NoError(t, err)
	return NewTile(st, at(slotIdx))
}

func TestPlacementResult_String(t *testing.T) {
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "MovedToEmpty", MovedToEmpty.String())
	assert.Equal(t, "MergedPartially", MergedPartially.String())
	assert.Equal(t, "MergedFully", MergedFully.String())
	assert.Equal(t, "PlacementResult(9)", PlacementResult(9).String())

	b, err := MergedFully.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "MergedFully", string(b))
}

func TestTryPlace_EmptyLeavesAssignmentToCaller(t *testing.T) {
	f := newFixture(t, 1, DropClosest)
	tile := looseTile(t, wood, 3, 0)
	assert.Equal(t, MovedToEmpty, f.m.TryPlace(f.slots[0], tile))
	assert.True(t, f.slots[0].Empty())
	assert.Equal(t, 3, tile.Stack().Quantity())
}

func TestTryPlace_MergedFully(t *testing.T) {
	f := newFixture(t, 1, DropClosest)
	f.spawn(t, wood, 4)
	tile := looseTile(t, wood, 3, 0)

	assert.Equal(t, MergedFully, f.m.TryPlace(f.slots[0], tile))
	assert.Equal(t, 7, qtyAt(f.slots[0]))
	assert.Nil(t, tile.Stack(), "fully merged tile is destroyed")
}

func TestTryPlace_MergedPartially(t *testing.T) {
	f := newFixture(t, 1, DropClosest)
	f.spawn(t, wood, 7)
	tile := looseTile(t, wood, 5, 0)

	assert.Equal(t, MergedPartially, f.m.TryPlace(f.slots[0], tile))
	assert.Equal(t, 10, qtyAt(f.slots[0]))
	assert.Equal(t, 2, tile.Stack().Quantity())
}

func TestTryPlace_DifferentItemFails(t *testing.T) {
	f := newFixture(t, 1, DropClosest)
	f.spawn(t, metal, 5)
	tile := looseTile(t, wood, 3, 0)

	assert.Equal(t, Failed, f.m.TryPlace(f.slots[0], tile))
	assert.Equal(t, 5, qtyAt(f.slots[0]))
	assert.Equal(t, 3, tile.Stack().Quantity())
}

func TestTryPlace_StaleTile(t *testing.T) {
	f := newFixture(t, 2, DropClosest)
	placed := f.spawn(t, wood, 4)
	f.spawn(t, wood, 2)

	// already placed in s0
	assert.Equal(t, Failed, f.m.TryPlace(f.slots[1], placed))
	assert.Equal(t, 4, qtyAt(f.slots[0]))
	assert.Equal(t, 2, qtyAt(f.slots[1]))

	empty := looseTile(t, wood, 0, 0)
	assert.Equal(t, Failed, f.m.TryPlace(f.slots[1], empty))
	assert.Equal(t, 2, qtyAt(f.slots[1]))
}

func TestPlaceFromDrag_ClosestEmpty(t *testing.T) {
	f := newFixture(t, 3, DropClosest)
	tile := looseTile(t, wood, 3, 2)

	res, err := f.m.PlaceFromDrag(tile, f.slots[0])
	require.NoError(t, err)
	assert.Equal(t, MovedToEmpty, res)
	assert.True(t, f.slots[2].Holds(tile.Stack()))
	assert.True(t, f.slots[0].Empty())
}

func TestPlaceFromDrag_ClosestIsNotValidityFiltered(t *testing.T) {
	f := newFixture(t, 3, DropClosest)
	f.spawn(t, metal, 5) // s0
	tile := looseTile(t, wood, 3, 0)
	tile.Position = mgl32.Vec3{2, 0, 0} // s0 is closest

	res, err := f.m.PlaceFromDrag(tile, f.slots[2])
	require.NoError(t, err)
	assert.Equal(t, MovedToEmpty, res)
	assert.True(t, f.slots[2].Holds(tile.Stack()), "falls back to origin, not to the empty s1")
	assert.True(t, f.slots[1].Empty())
}

func TestPlaceFromDrag_FallbackRejected(t *testing.T) {
	f := newFixture(t, 2, DropClosest)
	f.spawn(t, metal, 3) // s0
	f.spawn(t, metal, 4) // s1, occupied origin
	tile := looseTile(t, wood, 2, 0)

	res, err := f.m.PlaceFromDrag(tile, f.slots[1])
	require.ErrorIs(t, err, ErrFallbackRejected)
	assert.Equal(t, Failed, res)
	assert.Equal(t, 1, f.logs.FilterMessage("fallback placement rejected").Len())
	assert.Equal(t, 3, qtyAt(f.slots[0]))
	assert.Equal(t, 4, qtyAt(f.slots[1]))
	assert.Equal(t, 2, tile.Stack().Quantity())
}

func TestPlaceFromDrag_StaleTileIsNoop(t *testing.T) {
	f := newFixture(t, 2, DropClosest)
	f.spawn(t, wood, 4)
	tile := looseTile(t, wood, 3, 0)
	require.Equal(t, MergedFully, f.m.TryPlace(f.slots[0], tile))

	res, err := f.m.PlaceFromDrag(tile, f.slots[1])
	require.NoError(t, err)
	assert.Equal(t, Failed, res)
	assert.Equal(t, 7, qtyAt(f.slots[0]))
	assert.True(t, f.slots[1].Empty())
}
